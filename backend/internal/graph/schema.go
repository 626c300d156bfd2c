package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// schemaStatements are idempotent; EnsureSchema can run on every start.
var schemaStatements = []string{
	`CREATE CONSTRAINT user_email IF NOT EXISTS FOR (u:User) REQUIRE u.email IS UNIQUE`,
	`CREATE CONSTRAINT recipe_id IF NOT EXISTS FOR (r:Recipe) REQUIRE r.recipe_id IS UNIQUE`,
	`CREATE CONSTRAINT ingredient_name IF NOT EXISTS FOR (i:Ingredient) REQUIRE i.name IS UNIQUE`,
	`CREATE CONSTRAINT fridge_item_id IF NOT EXISTS FOR (f:FridgeItem) REQUIRE f.id IS UNIQUE`,
	`CREATE CONSTRAINT shopping_item_id IF NOT EXISTS FOR (s:ShoppingItem) REQUIRE s.id IS UNIQUE`,
	`CREATE CONSTRAINT survey_id IF NOT EXISTS FOR (s:Survey) REQUIRE s.id IS UNIQUE`,
	`CREATE INDEX user_verification_token IF NOT EXISTS FOR (u:User) ON (u.verification_token)`,
	`CREATE INDEX recipe_name IF NOT EXISTS FOR (r:Recipe) ON (r.name)`,
}

// EnsureSchema creates the uniqueness constraints the data model relies on
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, statement := range schemaStatements {
		stmt := statement
		_, err := r.executeWrite(ctx, "ensure_schema", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
			result, err := tx.Run(ctx, stmt, nil)
			if err != nil {
				return nil, err
			}
			_, err = result.Consume(ctx)
			return nil, err
		})
		if err != nil {
			return err
		}
	}
	r.logger.Info("Graph schema ensured", zap.Int("statements", len(schemaStatements)))
	return nil
}

// Reset removes every node. Only the seed command calls it.
func (r *Repository) Reset(ctx context.Context) error {
	_, err := r.executeWrite(ctx, "reset", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `MATCH (n) DETACH DELETE n`, nil)
		if err != nil {
			return nil, err
		}
		_, err = result.Consume(ctx)
		return nil, err
	})
	if err == nil {
		r.logger.Warn("Graph data reset")
	}
	return err
}
