// Package recommend derives recipe suggestions from the current graph state.
// Both algorithms are pure functions over recipes read fresh on every call.
package recommend

import (
	"math"
	"sort"
	"strings"
	"time"

	"recipe-graph/backend/internal/constants"
	"recipe-graph/backend/internal/graph"
)

// FridgeMatch is a recipe scored by how much of it the fridge already covers
type FridgeMatch struct {
	Recipe             graph.Recipe `json:"recipe"`
	MatchedIngredients []string     `json:"matched_ingredients"`
	MissingIngredients []string     `json:"missing_ingredients"`
	MatchPercentage    float64      `json:"match_percentage"`
}

// ScoredRecipe is a recipe with its additive preference score
type ScoredRecipe struct {
	Recipe graph.Recipe `json:"recipe"`
	Score  int          `json:"score"`
}

// MatchFridge ranks recipes by the share of their ingredients present in the
// unexpired fridge items. Items without an expiry never expire; an item
// expiring exactly at now no longer counts. Recipes with no overlap are
// dropped and at most RecommendationLimit results are returned, highest
// percentage first with recipe_id breaking ties.
func MatchFridge(items []graph.FridgeItem, recipes []graph.Recipe, now time.Time) []FridgeMatch {
	stock := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ExpiresAt != nil && !item.ExpiresAt.After(now) {
			continue
		}
		if name := graph.NormalizeIngredient(item.Ingredient); name != "" {
			stock[name] = struct{}{}
		}
	}

	matches := make([]FridgeMatch, 0)
	if len(stock) == 0 {
		return matches
	}

	for _, recipe := range recipes {
		required := graph.NormalizeIngredients(recipe.Ingredients)
		if len(required) == 0 {
			continue
		}

		matched := make([]string, 0, len(required))
		missing := make([]string, 0, len(required))
		for _, name := range required {
			if _, ok := stock[name]; ok {
				matched = append(matched, name)
			} else {
				missing = append(missing, name)
			}
		}
		if len(matched) == 0 {
			continue
		}

		pct := 100 * float64(len(matched)) / float64(len(required))
		matches = append(matches, FridgeMatch{
			Recipe:             recipe,
			MatchedIngredients: matched,
			MissingIngredients: missing,
			MatchPercentage:    math.Round(pct*100) / 100,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].MatchPercentage != matches[j].MatchPercentage {
			return matches[i].MatchPercentage > matches[j].MatchPercentage
		}
		return matches[i].Recipe.RecipeID < matches[j].Recipe.RecipeID
	})
	return limit(matches)
}

// RankByPreferences filters out recipes the user cannot or will not eat and
// scores the rest: cuisine match, difficulty equal to the user's skill and a
// ready time within the preferred prep time each add their weight.
func RankByPreferences(prefs graph.Preferences, recipes []graph.Recipe) []ScoredRecipe {
	avoid := graph.NormalizeIngredients(append(append([]string{}, prefs.DislikedFoods...), prefs.Allergies...))
	cuisines := make(map[string]struct{}, len(prefs.Cuisines))
	for _, c := range prefs.Cuisines {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			cuisines[c] = struct{}{}
		}
	}
	diet := strings.ToLower(strings.TrimSpace(prefs.Diet))
	skill := strings.ToLower(strings.TrimSpace(prefs.SkillLevel))

	scored := make([]ScoredRecipe, 0)
	for _, recipe := range recipes {
		if containsAvoided(recipe, avoid) {
			continue
		}
		if !fitsDiet(recipe, diet) || !fitsCalories(recipe, prefs.CaloriePreference) {
			continue
		}

		score := 0
		if _, ok := cuisines[strings.ToLower(strings.TrimSpace(recipe.Cuisine))]; ok && recipe.Cuisine != "" {
			score += constants.CuisineMatchScore
		}
		if skill != "" && strings.EqualFold(recipe.Difficulty, skill) {
			score += constants.DifficultyMatchScore
		}
		if prefs.PrepTimePreference > 0 && recipe.TimeMinutes != nil && *recipe.TimeMinutes <= prefs.PrepTimePreference {
			score += constants.PrepTimeMatchScore
		}
		scored = append(scored, ScoredRecipe{Recipe: recipe, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Recipe.RecipeID < scored[j].Recipe.RecipeID
	})
	return limit(scored)
}

// CalorieBucket classifies a calorie count as low, medium or high
func CalorieBucket(calories int) string {
	switch {
	case calories <= constants.LowCalorieMax:
		return graph.CalorieBucketLow
	case calories <= constants.MediumCalorieMax:
		return graph.CalorieBucketMedium
	default:
		return graph.CalorieBucketHigh
	}
}

// containsAvoided reports whether any avoided token is a substring of the
// recipe name or of one of its ingredient names
func containsAvoided(recipe graph.Recipe, avoid []string) bool {
	if len(avoid) == 0 {
		return false
	}
	name := graph.NormalizeIngredient(recipe.Name)
	ingredients := graph.NormalizeIngredients(recipe.Ingredients)
	for _, token := range avoid {
		if strings.Contains(name, token) {
			return true
		}
		for _, ingredient := range ingredients {
			if strings.Contains(ingredient, token) {
				return true
			}
		}
	}
	return false
}

// fitsDiet never excludes a recipe that carries no diet tags
func fitsDiet(recipe graph.Recipe, diet string) bool {
	if diet == "" || len(recipe.Diets) == 0 {
		return true
	}
	for _, tag := range recipe.Diets {
		if strings.Contains(strings.ToLower(tag), diet) {
			return true
		}
	}
	return false
}

// fitsCalories never excludes a recipe without a calorie count
func fitsCalories(recipe graph.Recipe, bucket string) bool {
	if bucket == "" || recipe.Calories == nil {
		return true
	}
	return CalorieBucket(*recipe.Calories) == bucket
}

func limit[T any](values []T) []T {
	if len(values) > constants.RecommendationLimit {
		return values[:constants.RecommendationLimit]
	}
	return values
}
