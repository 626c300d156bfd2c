package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-graph/backend/internal/graph"
	apperrors "recipe-graph/backend/pkg/errors"
)

type mockStore struct {
	recipes    []graph.Recipe
	items      []graph.FridgeItem
	prefs      *graph.Preferences
	recipesErr error
	itemsErr   error
	reads      int
}

func (m *mockStore) FridgeSnapshot(ctx context.Context, email string) (*graph.FridgeSnapshot, error) {
	m.reads++
	if m.itemsErr != nil {
		return nil, m.itemsErr
	}
	if m.recipesErr != nil {
		return nil, m.recipesErr
	}
	return &graph.FridgeSnapshot{Items: m.items, Recipes: m.recipes}, nil
}

func (m *mockStore) PreferenceSnapshot(ctx context.Context, email string) (*graph.PreferenceSnapshot, error) {
	m.reads++
	if m.prefs == nil {
		return nil, apperrors.NewNotFound("preferences", email)
	}
	if m.recipesErr != nil {
		return nil, m.recipesErr
	}
	return &graph.PreferenceSnapshot{Preferences: *m.prefs, Recipes: m.recipes}, nil
}

func TestEngine_RecommendFromFridge(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &mockStore{
		recipes: []graph.Recipe{{RecipeID: "omelette", Ingredients: []string{"egg", "cheese"}}},
		items:   []graph.FridgeItem{{Ingredient: "egg"}},
	}
	engine := NewEngine(store)
	engine.now = func() time.Time { return now }

	matches, err := engine.RecommendFromFridge(context.Background(), "u@example.com")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 50.0, matches[0].MatchPercentage)
	assert.Equal(t, 1, store.reads)
}

func TestEngine_RecommendFromFridge_PropagatesErrors(t *testing.T) {
	store := &mockStore{itemsErr: apperrors.NewNotFound("user", "ghost@example.com")}
	_, err := NewEngine(store).RecommendFromFridge(context.Background(), "ghost@example.com")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	store = &mockStore{recipesErr: errors.New("boom")}
	_, err = NewEngine(store).RecommendFromFridge(context.Background(), "u@example.com")
	assert.Error(t, err)
}

func TestEngine_RecommendForUser_NoPreferences(t *testing.T) {
	_, err := NewEngine(&mockStore{}).RecommendForUser(context.Background(), "u@example.com")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
}

func TestEngine_RecommendForUser(t *testing.T) {
	store := &mockStore{
		prefs: &graph.Preferences{Cuisines: []string{"Thai"}},
		recipes: []graph.Recipe{
			{RecipeID: "a", Cuisine: "French"},
			{RecipeID: "b", Cuisine: "Thai"},
		},
	}
	ranked, err := NewEngine(store).RecommendForUser(context.Background(), "u@example.com")
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "b", ranked[0].Recipe.RecipeID)
	assert.Equal(t, 1, store.reads)
}
