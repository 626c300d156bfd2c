package recommend

import (
	"context"
	"time"

	"go.uber.org/zap"

	"recipe-graph/backend/internal/graph"
	"recipe-graph/backend/pkg/logger"
)

// Store is the read side of the graph repository the engine needs. Each
// snapshot comes from a single read transaction.
type Store interface {
	FridgeSnapshot(ctx context.Context, email string) (*graph.FridgeSnapshot, error)
	PreferenceSnapshot(ctx context.Context, email string) (*graph.PreferenceSnapshot, error)
}

// Engine answers recommendation requests against a Store
type Engine struct {
	store  Store
	now    func() time.Time
	logger *zap.Logger
}

// NewEngine creates a recommendation engine
func NewEngine(store Store) *Engine {
	return &Engine{
		store:  store,
		now:    time.Now,
		logger: logger.Named("recommend"),
	}
}

// RecommendFromFridge ranks every recipe against the user's fridge
func (e *Engine) RecommendFromFridge(ctx context.Context, email string) ([]FridgeMatch, error) {
	snap, err := e.store.FridgeSnapshot(ctx, email)
	if err != nil {
		return nil, err
	}

	matches := MatchFridge(snap.Items, snap.Recipes, e.now())
	e.logger.Debug("Fridge recommendations computed",
		zap.String("email", email),
		zap.Int("fridge_items", len(snap.Items)),
		zap.Int("recipes", len(snap.Recipes)),
		zap.Int("matches", len(matches)),
	)
	return matches, nil
}

// RecommendForUser ranks every recipe against the user's stored preferences.
// Fails with NotFound when the user never saved preferences.
func (e *Engine) RecommendForUser(ctx context.Context, email string) ([]ScoredRecipe, error) {
	snap, err := e.store.PreferenceSnapshot(ctx, email)
	if err != nil {
		return nil, err
	}

	ranked := RankByPreferences(snap.Preferences, snap.Recipes)
	e.logger.Debug("Preference recommendations computed",
		zap.String("email", email),
		zap.Int("recipes", len(snap.Recipes)),
		zap.Int("ranked", len(ranked)),
	)
	return ranked, nil
}
