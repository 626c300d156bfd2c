package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	apperrors "recipe-graph/backend/pkg/errors"
)

// ============================================================================
// User-to-Recipe Interaction Registry
// ============================================================================

// InteractionKind is the closed set of presence-only edges a user can hold
// toward a recipe
type InteractionKind string

const (
	InteractionLiked     InteractionKind = "liked"
	InteractionCooked    InteractionKind = "cooked"
	InteractionWantToTry InteractionKind = "want_to_try"
	InteractionAdded     InteractionKind = "added"
)

// InteractionKinds lists every registered kind
func InteractionKinds() []InteractionKind {
	return []InteractionKind{InteractionLiked, InteractionCooked, InteractionWantToTry, InteractionAdded}
}

// ParseInteractionKind accepts a registered kind, case-insensitively
func ParseInteractionKind(s string) (InteractionKind, error) {
	kind := InteractionKind(strings.ToLower(strings.TrimSpace(s)))
	if _, err := interactionTemplatesFor(kind); err != nil {
		return "", err
	}
	return kind, nil
}

// EdgeType returns the relationship type stored for the kind
func (k InteractionKind) EdgeType() string {
	switch k {
	case InteractionLiked:
		return "LIKED"
	case InteractionCooked:
		return "COOKED"
	case InteractionWantToTry:
		return "WANTS_TO_TRY"
	case InteractionAdded:
		return "ADDED_RECIPE"
	}
	return ""
}

const (
	interactionEndpoints = `
		MATCH (u:User {email: $email})
		MATCH (r:Recipe {recipe_id: $recipeID})
	`
	interactionMergeTail  = ` ON CREATE SET e.created_at = datetime($now) RETURN count(e) AS edges`
	interactionDeleteTail = ` DELETE e RETURN count(*) AS removed`
	interactionListHead   = `MATCH (u:User {email: $email})`
)

type interactionTemplates struct {
	merge  string
	delete string
	list   string
}

var (
	likedTemplates = interactionTemplates{
		merge:  interactionEndpoints + `MERGE (u)-[e:LIKED]->(r)` + interactionMergeTail,
		delete: interactionEndpoints + `MATCH (u)-[e:LIKED]->(r)` + interactionDeleteTail,
		list:   interactionListHead + `-[:LIKED]->(r:Recipe)` + recipeProjection,
	}
	cookedTemplates = interactionTemplates{
		merge:  interactionEndpoints + `MERGE (u)-[e:COOKED]->(r)` + interactionMergeTail,
		delete: interactionEndpoints + `MATCH (u)-[e:COOKED]->(r)` + interactionDeleteTail,
		list:   interactionListHead + `-[:COOKED]->(r:Recipe)` + recipeProjection,
	}
	wantToTryTemplates = interactionTemplates{
		merge:  interactionEndpoints + `MERGE (u)-[e:WANTS_TO_TRY]->(r)` + interactionMergeTail,
		delete: interactionEndpoints + `MATCH (u)-[e:WANTS_TO_TRY]->(r)` + interactionDeleteTail,
		list:   interactionListHead + `-[:WANTS_TO_TRY]->(r:Recipe)` + recipeProjection,
	}
	addedTemplates = interactionTemplates{
		merge:  interactionEndpoints + `MERGE (u)-[e:ADDED_RECIPE]->(r)` + interactionMergeTail,
		delete: interactionEndpoints + `MATCH (u)-[e:ADDED_RECIPE]->(r)` + interactionDeleteTail,
		list:   interactionListHead + `-[:ADDED_RECIPE]->(r:Recipe)` + recipeProjection,
	}
)

// interactionTemplatesFor selects the fixed query set for a kind. Relationship
// types are never built from caller input.
func interactionTemplatesFor(kind InteractionKind) (interactionTemplates, error) {
	switch kind {
	case InteractionLiked:
		return likedTemplates, nil
	case InteractionCooked:
		return cookedTemplates, nil
	case InteractionWantToTry:
		return wantToTryTemplates, nil
	case InteractionAdded:
		return addedTemplates, nil
	}
	return interactionTemplates{}, apperrors.NewInvalidArgument("interaction kind", fmt.Sprintf("unknown kind %q", kind))
}

// requireEndpoints fails with NotFound unless both the user and the recipe exist
func requireEndpoints(ctx context.Context, tx neo4j.ManagedTransaction, email, recipeID string) error {
	result, err := tx.Run(ctx, `
		OPTIONAL MATCH (u:User {email: $email})
		OPTIONAL MATCH (r:Recipe {recipe_id: $recipeID})
		RETURN u IS NOT NULL AS user_exists, r IS NOT NULL AS recipe_exists
	`, map[string]interface{}{"email": email, "recipeID": recipeID})
	if err != nil {
		return err
	}
	record, err := result.Single(ctx)
	if err != nil {
		return err
	}
	if !getBoolFromRecord(record, "user_exists") {
		return apperrors.NewNotFound("user", email)
	}
	if !getBoolFromRecord(record, "recipe_exists") {
		return apperrors.NewNotFound("recipe", recipeID)
	}
	return nil
}

// RecordInteraction creates the kind's edge from user to recipe. Re-issuing
// the same interaction leaves exactly one edge.
func (r *Repository) RecordInteraction(ctx context.Context, email, recipeID string, kind InteractionKind) error {
	templates, err := interactionTemplatesFor(kind)
	if err != nil {
		return err
	}
	email = normalizeEmail(email)

	_, err = r.executeWrite(ctx, "record_interaction", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		if err := requireEndpoints(ctx, tx, email, recipeID); err != nil {
			return nil, err
		}
		result, err := tx.Run(ctx, templates.merge, map[string]interface{}{
			"email":    email,
			"recipeID": recipeID,
			"now":      nowString(),
		})
		if err != nil {
			return nil, err
		}
		_, err = result.Consume(ctx)
		return nil, err
	})
	if err != nil {
		return err
	}

	r.logger.Info("Interaction recorded",
		zap.String("email", email),
		zap.String("recipe_id", recipeID),
		zap.String("kind", string(kind)),
	)
	return nil
}

// RemoveInteraction deletes the kind's edge if present. Removing an absent
// edge is not an error.
func (r *Repository) RemoveInteraction(ctx context.Context, email, recipeID string, kind InteractionKind) error {
	templates, err := interactionTemplatesFor(kind)
	if err != nil {
		return err
	}
	email = normalizeEmail(email)

	_, err = r.executeWrite(ctx, "remove_interaction", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		if err := requireEndpoints(ctx, tx, email, recipeID); err != nil {
			return nil, err
		}
		result, err := tx.Run(ctx, templates.delete, map[string]interface{}{
			"email":    email,
			"recipeID": recipeID,
		})
		if err != nil {
			return nil, err
		}
		_, err = result.Consume(ctx)
		return nil, err
	})
	if err != nil {
		return err
	}

	r.logger.Info("Interaction removed",
		zap.String("email", email),
		zap.String("recipe_id", recipeID),
		zap.String("kind", string(kind)),
	)
	return nil
}

// ListUserRecipes returns the recipes the user reaches through the kind's edge
func (r *Repository) ListUserRecipes(ctx context.Context, email string, kind InteractionKind) ([]Recipe, error) {
	templates, err := interactionTemplatesFor(kind)
	if err != nil {
		return nil, err
	}
	email = normalizeEmail(email)

	out, err := r.executeRead(ctx, "list_user_recipes", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		if err := requireUser(ctx, tx, email); err != nil {
			return nil, err
		}
		result, err := tx.Run(ctx, templates.list, map[string]interface{}{"email": email})
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

// RateRecipe stores a 1..5 rating on the user's single RATED edge
func (r *Repository) RateRecipe(ctx context.Context, email, recipeID string, rating int) error {
	if rating < 1 || rating > 5 {
		return apperrors.NewInvalidArgument("rating", "must be between 1 and 5")
	}
	email = normalizeEmail(email)

	_, err := r.executeWrite(ctx, "rate_recipe", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		if err := requireEndpoints(ctx, tx, email, recipeID); err != nil {
			return nil, err
		}
		result, err := tx.Run(ctx, interactionEndpoints+`
			MERGE (u)-[e:RATED]->(r)
			ON CREATE SET e.created_at = datetime($now)
			SET e.rating = $rating,
			    e.rated_at = datetime($now)
		`, map[string]interface{}{
			"email":    email,
			"recipeID": recipeID,
			"rating":   int64(rating),
			"now":      nowString(),
		})
		if err != nil {
			return nil, err
		}
		_, err = result.Consume(ctx)
		return nil, err
	})
	if err != nil {
		return err
	}

	r.logger.Info("Recipe rated",
		zap.String("email", email),
		zap.String("recipe_id", recipeID),
		zap.Int("rating", rating),
	)
	return nil
}

// requireUser fails with NotFound when no user carries the email
func requireUser(ctx context.Context, tx neo4j.ManagedTransaction, email string) error {
	result, err := tx.Run(ctx, `
		OPTIONAL MATCH (u:User {email: $email})
		RETURN u IS NOT NULL AS user_exists
	`, map[string]interface{}{"email": email})
	if err != nil {
		return err
	}
	record, err := result.Single(ctx)
	if err != nil {
		return err
	}
	if !getBoolFromRecord(record, "user_exists") {
		return apperrors.NewNotFound("user", email)
	}
	return nil
}
