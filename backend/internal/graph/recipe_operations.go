package graph

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	apperrors "recipe-graph/backend/pkg/errors"
)

// ============================================================================
// Recipe Operations
// ============================================================================

const recipeColumns = `
	r.recipe_id AS recipe_id, r.name AS name, r.instructions AS instructions,
	r.calories AS calories, r.time AS time, r.difficulty AS difficulty,
	r.cuisine AS cuisine, r.image_url AS image_url, r.diets AS diets,
	r.source AS source, ingredients
`

// recipeProjection expects `r` bound to a Recipe and returns one row per recipe
const recipeProjection = `
	OPTIONAL MATCH (r)-[:CONTAINS]->(i:Ingredient)
	WITH r, collect(DISTINCT i.name) AS ingredients
	RETURN ` + recipeColumns + `
	ORDER BY name, recipe_id
`

const recipeFilterClause = `
	($cuisine = '' OR toLower(r.cuisine) = $cuisine)
	AND ($difficulty = '' OR r.difficulty = $difficulty)
	AND ($author = '' OR EXISTS { MATCH (:User {email: $author})-[:AUTHORED]->(r) })
`

// CreateRecipe stores a locally authored recipe under a fresh recipe_id.
// When authorEmail is set the author must exist and gets both an AUTHORED
// and an ADDED_RECIPE edge, so the recipe shows up among the user's added ones.
func (r *Repository) CreateRecipe(ctx context.Context, input RecipeInput, ingredients []string, authorEmail string) (*Recipe, error) {
	if err := validateRecipeInput(input); err != nil {
		return nil, err
	}
	authorEmail = normalizeEmail(authorEmail)
	names := NormalizeIngredients(ingredients)
	recipeID := uuid.NewString()

	out, err := r.executeWrite(ctx, "create_recipe", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		if authorEmail != "" {
			if err := requireUser(ctx, tx, authorEmail); err != nil {
				return nil, err
			}
		}

		params := recipeParams(recipeID, SourceLocal, input)
		result, err := tx.Run(ctx, `
			CREATE (r:Recipe {
				recipe_id: $recipeID,
				name: $name,
				instructions: $instructions,
				calories: $calories,
				time: $time,
				difficulty: $difficulty,
				cuisine: $cuisine,
				image_url: $imageURL,
				diets: $diets,
				source: $source,
				created_at: datetime($now),
				updated_at: datetime($now)
			})
		`, params)
		if err != nil {
			return nil, err
		}
		if _, err := result.Consume(ctx); err != nil {
			return nil, err
		}

		if err := mergeIngredients(ctx, tx, recipeID, names); err != nil {
			return nil, err
		}

		if authorEmail != "" {
			result, err = tx.Run(ctx, `
				MATCH (u:User {email: $email})
				MATCH (r:Recipe {recipe_id: $recipeID})
				MERGE (u)-[a:AUTHORED]->(r)
				ON CREATE SET a.created_at = datetime($now)
				MERGE (u)-[added:ADDED_RECIPE]->(r)
				ON CREATE SET added.created_at = datetime($now)
			`, map[string]interface{}{
				"email":    authorEmail,
				"recipeID": recipeID,
				"now":      params["now"],
			})
			if err != nil {
				return nil, err
			}
			if _, err := result.Consume(ctx); err != nil {
				return nil, err
			}
		}

		return readRecipe(ctx, tx, recipeID)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Recipe created",
		zap.String("recipe_id", recipeID),
		zap.String("author", authorEmail),
		zap.Int("ingredients", len(names)),
	)
	return out.(*Recipe), nil
}

// UpsertRecipeFromImport merges a recipe by its external id. Scalar fields
// are overwritten and the CONTAINS edges are replaced by the supplied list.
// The boolean reports whether the recipe node was newly created.
func (r *Repository) UpsertRecipeFromImport(ctx context.Context, externalID, source string, input RecipeInput, ingredients []string) (*Recipe, bool, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, false, apperrors.NewInvalidArgument("recipe_id", "required")
	}
	if err := validateRecipeInput(input); err != nil {
		return nil, false, err
	}
	names := NormalizeIngredients(ingredients)

	type upsertResult struct {
		recipe  *Recipe
		created bool
	}

	out, err := r.executeWrite(ctx, "upsert_recipe", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MERGE (r:Recipe {recipe_id: $recipeID})
			ON CREATE SET r.created_at = datetime($now)
			SET r.name = $name,
			    r.instructions = $instructions,
			    r.calories = $calories,
			    r.time = $time,
			    r.difficulty = $difficulty,
			    r.cuisine = $cuisine,
			    r.image_url = $imageURL,
			    r.diets = $diets,
			    r.source = $source,
			    r.updated_at = datetime($now)
		`, recipeParams(externalID, source, input))
		if err != nil {
			return nil, err
		}
		summary, err := result.Consume(ctx)
		if err != nil {
			return nil, err
		}
		created := summary.Counters().NodesCreated() > 0

		result, err = tx.Run(ctx, `
			MATCH (r:Recipe {recipe_id: $recipeID})-[c:CONTAINS]->(i:Ingredient)
			WHERE NOT i.name IN $ingredients
			DELETE c
		`, map[string]interface{}{
			"recipeID":    externalID,
			"ingredients": names,
		})
		if err != nil {
			return nil, err
		}
		if _, err := result.Consume(ctx); err != nil {
			return nil, err
		}

		if err := mergeIngredients(ctx, tx, externalID, names); err != nil {
			return nil, err
		}

		recipe, err := readRecipe(ctx, tx, externalID)
		if err != nil {
			return nil, err
		}
		return upsertResult{recipe: recipe, created: created}, nil
	})
	if err != nil {
		return nil, false, err
	}

	res := out.(upsertResult)
	r.logger.Info("Recipe upserted",
		zap.String("recipe_id", externalID),
		zap.String("source", source),
		zap.Bool("created", res.created),
	)
	return res.recipe, res.created, nil
}

// GetRecipe returns a recipe with its author and interaction aggregates
func (r *Repository) GetRecipe(ctx context.Context, recipeID string) (*RecipeDetails, error) {
	out, err := r.executeRead(ctx, "get_recipe", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (r:Recipe {recipe_id: $recipeID})
			OPTIONAL MATCH (r)-[:CONTAINS]->(i:Ingredient)
			WITH r, collect(DISTINCT i.name) AS ingredients
			OPTIONAL MATCH (author:User)-[:AUTHORED]->(r)
			WITH r, ingredients, head(collect(author.name)) AS author_name
			OPTIONAL MATCH (:User)-[rated:RATED]->(r)
			WITH r, ingredients, author_name,
			     avg(rated.rating) AS average_rating, count(rated) AS rating_count
			OPTIONAL MATCH (:User)-[liked:LIKED]->(r)
			WITH r, ingredients, author_name, average_rating, rating_count,
			     count(liked) AS like_count
			RETURN `+recipeColumns+`, author_name, average_rating, rating_count, like_count
		`, map[string]interface{}{"recipeID": recipeID})
		if err != nil {
			return nil, err
		}
		record, err := singleOptional(ctx, result)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, apperrors.NewNotFound("recipe", recipeID)
		}
		return &RecipeDetails{
			Recipe:        *recipeFromRecord(record),
			AuthorName:    getStringFromRecord(record, "author_name"),
			AverageRating: getFloat64FromRecord(record, "average_rating"),
			RatingCount:   getInt64FromRecord(record, "rating_count"),
			LikeCount:     getInt64FromRecord(record, "like_count"),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*RecipeDetails), nil
}

// ListRecipes returns every recipe passing the filter, ordered by name
func (r *Repository) ListRecipes(ctx context.Context, filter RecipeFilter) ([]Recipe, error) {
	out, err := r.executeRead(ctx, "list_recipes", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		return listRecipes(ctx, tx, filter)
	})
	if err != nil {
		return nil, err
	}
	return out.([]Recipe), nil
}

func listRecipes(ctx context.Context, tx neo4j.ManagedTransaction, filter RecipeFilter) ([]Recipe, error) {
	result, err := tx.Run(ctx, `
		MATCH (r:Recipe)
		WHERE `+recipeFilterClause+recipeProjection, filterParams(filter))
	if err != nil {
		return nil, err
	}
	return recipesFromResult(ctx, result)
}

// SearchRecipes matches term case-insensitively against the name, the
// instructions and every ingredient name. An empty term matches everything.
func (r *Repository) SearchRecipes(ctx context.Context, term string, filter RecipeFilter) ([]Recipe, error) {
	params := filterParams(filter)
	params["term"] = strings.ToLower(strings.TrimSpace(term))
	params["ingredientTerm"] = NormalizeIngredient(term)

	out, err := r.executeRead(ctx, "search_recipes", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (r:Recipe)
			WHERE `+recipeFilterClause+`
			  AND ($term = ''
			       OR toLower(coalesce(r.name, '')) CONTAINS $term
			       OR toLower(coalesce(r.instructions, '')) CONTAINS $term
			       OR EXISTS {
			            MATCH (r)-[:CONTAINS]->(i:Ingredient)
			            WHERE i.name CONTAINS $ingredientTerm
			          })
		`+recipeProjection, params)
		if err != nil {
			return nil, err
		}
		return recipesFromResult(ctx, result)
	})
	if err != nil {
		return nil, err
	}
	return out.([]Recipe), nil
}

// SetRecipeImage records the hosted image URL of a recipe
func (r *Repository) SetRecipeImage(ctx context.Context, recipeID, imageURL string) error {
	_, err := r.executeWrite(ctx, "set_recipe_image", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (r:Recipe {recipe_id: $recipeID})
			SET r.image_url = $imageURL,
			    r.updated_at = datetime($now)
			RETURN r.recipe_id AS recipe_id
		`, map[string]interface{}{
			"recipeID": recipeID,
			"imageURL": imageURL,
			"now":      nowString(),
		})
		if err != nil {
			return nil, err
		}
		record, err := singleOptional(ctx, result)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, apperrors.NewNotFound("recipe", recipeID)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("Recipe image set", zap.String("recipe_id", recipeID))
	return nil
}

func mergeIngredients(ctx context.Context, tx neo4j.ManagedTransaction, recipeID string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	result, err := tx.Run(ctx, `
		MATCH (r:Recipe {recipe_id: $recipeID})
		UNWIND $ingredients AS ingredient
		MERGE (i:Ingredient {name: ingredient})
		MERGE (r)-[:CONTAINS]->(i)
	`, map[string]interface{}{
		"recipeID":    recipeID,
		"ingredients": names,
	})
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}

func readRecipe(ctx context.Context, tx neo4j.ManagedTransaction, recipeID string) (*Recipe, error) {
	result, err := tx.Run(ctx, `MATCH (r:Recipe {recipe_id: $recipeID})`+recipeProjection,
		map[string]interface{}{"recipeID": recipeID})
	if err != nil {
		return nil, err
	}
	record, err := singleOptional(ctx, result)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.NewNotFound("recipe", recipeID)
	}
	return recipeFromRecord(record), nil
}

func recipesFromResult(ctx context.Context, result neo4j.ResultWithContext) ([]Recipe, error) {
	records, err := collectRecords(ctx, result)
	if err != nil {
		return nil, err
	}
	recipes := make([]Recipe, 0, len(records))
	for _, record := range records {
		recipes = append(recipes, *recipeFromRecord(record))
	}
	return recipes, nil
}

func recipeFromRecord(record *neo4j.Record) *Recipe {
	ingredients := getStringSliceFromRecord(record, "ingredients")
	sort.Strings(ingredients)
	return &Recipe{
		RecipeID:     getStringFromRecord(record, "recipe_id"),
		Name:         getStringFromRecord(record, "name"),
		Instructions: getStringFromRecord(record, "instructions"),
		Calories:     getIntPtrFromRecord(record, "calories"),
		TimeMinutes:  getIntPtrFromRecord(record, "time"),
		Difficulty:   getStringFromRecord(record, "difficulty"),
		Cuisine:      getStringFromRecord(record, "cuisine"),
		ImageURL:     getStringFromRecord(record, "image_url"),
		Diets:        getStringSliceFromRecord(record, "diets"),
		Source:       getStringFromRecord(record, "source"),
		Ingredients:  ingredients,
	}
}

func recipeParams(recipeID, source string, input RecipeInput) map[string]interface{} {
	return map[string]interface{}{
		"recipeID":     recipeID,
		"name":         strings.TrimSpace(input.Name),
		"instructions": strings.TrimSpace(input.Instructions),
		"calories":     nullableInt(input.Calories),
		"time":         nullableInt(input.TimeMinutes),
		"difficulty":   strings.ToLower(strings.TrimSpace(input.Difficulty)),
		"cuisine":      strings.TrimSpace(input.Cuisine),
		"imageURL":     input.ImageURL,
		"diets":        lowerAll(input.Diets),
		"source":       source,
		"now":          nowString(),
	}
}

func filterParams(filter RecipeFilter) map[string]interface{} {
	return map[string]interface{}{
		"cuisine":    strings.ToLower(strings.TrimSpace(filter.Cuisine)),
		"difficulty": strings.ToLower(strings.TrimSpace(filter.Difficulty)),
		"author":     normalizeEmail(filter.AuthorEmail),
	}
}

func validateRecipeInput(input RecipeInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.NewInvalidArgument("name", "required")
	}
	if input.Calories != nil && *input.Calories < 0 {
		return apperrors.NewInvalidArgument("calories", "must not be negative")
	}
	if input.TimeMinutes != nil && *input.TimeMinutes < 0 {
		return apperrors.NewInvalidArgument("time", "must not be negative")
	}
	return nil
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
