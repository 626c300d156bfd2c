package importer

import (
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"recipe-graph/backend/internal/constants"
	"recipe-graph/backend/internal/graph"
)

// mapRecipe converts a catalog recipe into the graph's recipe input, keyed
// by the catalog's own id
func mapRecipe(cr CatalogRecipe) (string, graph.RecipeInput, []string) {
	input := graph.RecipeInput{
		Name:         strings.TrimSpace(cr.Title),
		Instructions: instructionsText(cr.Instructions),
		Calories:     calories(cr.Nutrition),
		Difficulty:   difficultyFor(cr.ReadyInMinutes),
		ImageURL:     cr.Image,
		Diets:        cr.Diets,
	}
	if cr.ReadyInMinutes > 0 {
		minutes := cr.ReadyInMinutes
		input.TimeMinutes = &minutes
	}
	if len(cr.Cuisines) > 0 {
		input.Cuisine = cr.Cuisines[0]
	}

	ingredients := make([]string, 0, len(cr.ExtendedIngredients))
	for _, ing := range cr.ExtendedIngredients {
		name := ing.NameClean
		if strings.TrimSpace(name) == "" {
			name = ing.Name
		}
		ingredients = append(ingredients, name)
	}

	return strconv.FormatInt(cr.ID, 10), input, ingredients
}

// difficultyFor derives a difficulty from the ready time; unknown stays empty
func difficultyFor(readyInMinutes int) string {
	switch {
	case readyInMinutes <= 0:
		return ""
	case readyInMinutes <= constants.EasyMaxMinutes:
		return constants.DifficultyEasy
	case readyInMinutes <= constants.MediumMaxMinutes:
		return constants.DifficultyMedium
	default:
		return constants.DifficultyHard
	}
}

func calories(nutrition *CatalogNutritionSet) *int {
	if nutrition == nil {
		return nil
	}
	for _, n := range nutrition.Nutrients {
		if strings.EqualFold(n.Name, "Calories") {
			kcal := int(math.Round(n.Amount))
			return &kcal
		}
	}
	return nil
}

// instructionsText flattens catalog HTML into one step per line
func instructionsText(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "<") {
		return collapseSpaces(raw)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return collapseSpaces(raw)
	}

	var steps []string
	for _, selector := range []string{"li", "p"} {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if text := collapseSpaces(s.Text()); text != "" {
				steps = append(steps, text)
			}
		})
		if len(steps) > 0 {
			return strings.Join(steps, "\n")
		}
	}
	return collapseSpaces(doc.Text())
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
