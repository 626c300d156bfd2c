// Package importer pulls random recipes from an external catalog and merges
// them into the graph by their catalog id.
package importer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"recipe-graph/backend/internal/constants"
	"recipe-graph/backend/internal/graph"
	"recipe-graph/backend/internal/metrics"
	apperrors "recipe-graph/backend/pkg/errors"
	"recipe-graph/backend/pkg/logger"
)

// RecipeStore is the write side of the graph repository the importer needs
type RecipeStore interface {
	UpsertRecipeFromImport(ctx context.Context, externalID, source string, input graph.RecipeInput, ingredients []string) (*graph.Recipe, bool, error)
}

// Result summarises one import run
type Result struct {
	Imported []string `json:"imported"`
	Created  int      `json:"created"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
}

// Importer fetches catalog pages concurrently and upserts each recipe in its
// own transaction
type Importer struct {
	catalog  Catalog
	store    RecipeStore
	pageSize int
	source   string
	logger   *zap.Logger
}

// NewImporter creates an importer. source is stored on every imported recipe.
func NewImporter(catalog Catalog, store RecipeStore, pageSize int, source string) *Importer {
	if pageSize <= 0 {
		pageSize = 25
	}
	return &Importer{
		catalog:  catalog,
		store:    store,
		pageSize: pageSize,
		source:   source,
		logger:   logger.Named("importer"),
	}
}

// Import fetches n random recipes and upserts them. Recipes repeated across
// pages are written once.
func (im *Importer) Import(ctx context.Context, n int) (*Result, error) {
	if n < 1 || n > constants.MaxImportCount {
		return nil, apperrors.NewInvalidArgument("count", fmt.Sprintf("must be between 1 and %d", constants.MaxImportCount))
	}

	sizes := pageSizes(n, im.pageSize)
	pages := make([][]CatalogRecipe, len(sizes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.ImportConcurrency)
	for i, size := range sizes {
		i, size := i, size
		g.Go(func() error {
			recipes, err := im.catalog.Random(gctx, size)
			if err != nil {
				return err
			}
			pages[i] = recipes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		im.logger.Error("Catalog fetch failed", zap.Int("requested", n), zap.Error(err))
		return nil, err
	}

	result := &Result{Imported: make([]string, 0, n)}
	seen := make(map[int64]struct{}, n)
	for _, page := range pages {
		for _, cr := range page {
			if _, dup := seen[cr.ID]; dup {
				continue
			}
			seen[cr.ID] = struct{}{}

			id, input, ingredients := mapRecipe(cr)
			if input.Name == "" || cr.ID == 0 {
				im.logger.Warn("Skipping catalog recipe without id or title", zap.Int64("catalog_id", cr.ID))
				result.Skipped++
				continue
			}

			_, created, err := im.store.UpsertRecipeFromImport(ctx, id, im.source, input, ingredients)
			if err != nil {
				im.logger.Error("Recipe upsert failed", zap.String("recipe_id", id), zap.Error(err))
				return nil, err
			}

			metrics.RecipesImported.Inc()
			result.Imported = append(result.Imported, id)
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
	}

	im.logger.Info("Import finished",
		zap.Int("requested", n),
		zap.Int("imported", len(result.Imported)),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// pageSizes splits n into chunks of at most size
func pageSizes(n, size int) []int {
	sizes := make([]int, 0, (n+size-1)/size)
	for n > 0 {
		chunk := size
		if n < size {
			chunk = n
		}
		sizes = append(sizes, chunk)
		n -= chunk
	}
	return sizes
}
