package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Recommendation Reads
// ============================================================================

// FridgeSnapshot reads the user's fridge and every recipe in a single read
// transaction. Fails with NotFound for an unknown user.
func (r *Repository) FridgeSnapshot(ctx context.Context, email string) (*FridgeSnapshot, error) {
	email = normalizeEmail(email)

	out, err := r.executeRead(ctx, "fridge_snapshot", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		items, err := listFridgeItems(ctx, tx, email)
		if err != nil {
			return nil, err
		}
		recipes, err := listRecipes(ctx, tx, RecipeFilter{})
		if err != nil {
			return nil, err
		}
		return &FridgeSnapshot{Items: items, Recipes: recipes}, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*FridgeSnapshot), nil
}

// PreferenceSnapshot reads the user's preferences and every recipe in a
// single read transaction. Fails with NotFound when the user is unknown or
// has no saved preferences.
func (r *Repository) PreferenceSnapshot(ctx context.Context, email string) (*PreferenceSnapshot, error) {
	email = normalizeEmail(email)

	out, err := r.executeRead(ctx, "preference_snapshot", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		prefs, err := readPreferences(ctx, tx, email)
		if err != nil {
			return nil, err
		}
		recipes, err := listRecipes(ctx, tx, RecipeFilter{})
		if err != nil {
			return nil, err
		}
		return &PreferenceSnapshot{Preferences: *prefs, Recipes: recipes}, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*PreferenceSnapshot), nil
}
