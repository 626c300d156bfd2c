package graph

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	apperrors "recipe-graph/backend/pkg/errors"
)

// ============================================================================
// Fridge Operations
// ============================================================================

// Every lookup goes through the owner's HAS_IN_FRIDGE edge, so an id that
// belongs to another user behaves exactly like an unknown id.

const fridgeColumns = `
	RETURN f.id AS id, f.ingredient AS ingredient, f.category AS category,
	       f.amount AS amount, f.unit AS unit, f.expires_at AS expires_at,
	       f.added_at AS added_at
`

// AddFridgeItem creates a pantry entry owned by the user
func (r *Repository) AddFridgeItem(ctx context.Context, email string, input FridgeItemInput) (*FridgeItem, error) {
	params, err := fridgeParams(input)
	if err != nil {
		return nil, err
	}
	email = normalizeEmail(email)
	params["email"] = email
	params["id"] = uuid.NewString()
	params["now"] = nowString()

	out, err := r.executeWrite(ctx, "add_fridge_item", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (u:User {email: $email})
			CREATE (u)-[:HAS_IN_FRIDGE]->(f:FridgeItem {
				id: $id,
				ingredient: $ingredient,
				category: $category,
				amount: $amount,
				unit: $unit,
				expires_at: datetime($expiresAt),
				added_at: datetime($now)
			})
		`+fridgeColumns, params)
		if err != nil {
			return nil, err
		}
		record, err := singleOptional(ctx, result)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, apperrors.NewNotFound("user", email)
		}
		return fridgeItemFromRecord(record), nil
	})
	if err != nil {
		return nil, err
	}

	item := out.(*FridgeItem)
	r.logger.Info("Fridge item added",
		zap.String("email", email),
		zap.String("id", item.ID),
		zap.String("ingredient", item.Ingredient),
	)
	return item, nil
}

// ListFridgeItems returns the user's pantry, oldest entries first
func (r *Repository) ListFridgeItems(ctx context.Context, email string) ([]FridgeItem, error) {
	email = normalizeEmail(email)

	out, err := r.executeRead(ctx, "list_fridge_items", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		return listFridgeItems(ctx, tx, email)
	})
	if err != nil {
		return nil, err
	}
	return out.([]FridgeItem), nil
}

// listFridgeItems fails with NotFound for an unknown user
func listFridgeItems(ctx context.Context, tx neo4j.ManagedTransaction, email string) ([]FridgeItem, error) {
	if err := requireUser(ctx, tx, email); err != nil {
		return nil, err
	}
	result, err := tx.Run(ctx, `
		MATCH (:User {email: $email})-[:HAS_IN_FRIDGE]->(f:FridgeItem)
	`+fridgeColumns+`
		ORDER BY added_at, id
	`, map[string]interface{}{"email": email})
	if err != nil {
		return nil, err
	}
	records, err := collectRecords(ctx, result)
	if err != nil {
		return nil, err
	}
	items := make([]FridgeItem, 0, len(records))
	for _, record := range records {
		items = append(items, *fridgeItemFromRecord(record))
	}
	return items, nil
}

// UpdateFridgeItem overwrites the mutable fields of an owned item
func (r *Repository) UpdateFridgeItem(ctx context.Context, email, id string, input FridgeItemInput) (*FridgeItem, error) {
	params, err := fridgeParams(input)
	if err != nil {
		return nil, err
	}
	email = normalizeEmail(email)
	params["email"] = email
	params["id"] = id

	out, err := r.executeWrite(ctx, "update_fridge_item", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (:User {email: $email})-[:HAS_IN_FRIDGE]->(f:FridgeItem {id: $id})
			SET f.ingredient = $ingredient,
			    f.category = $category,
			    f.amount = $amount,
			    f.unit = $unit,
			    f.expires_at = datetime($expiresAt)
		`+fridgeColumns, params)
		if err != nil {
			return nil, err
		}
		record, err := singleOptional(ctx, result)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, apperrors.NewNotFound("fridge item", id)
		}
		return fridgeItemFromRecord(record), nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Fridge item updated", zap.String("email", email), zap.String("id", id))
	return out.(*FridgeItem), nil
}

// RemoveFridgeItem deletes an owned item together with its owning edge
func (r *Repository) RemoveFridgeItem(ctx context.Context, email, id string) error {
	email = normalizeEmail(email)

	_, err := r.executeWrite(ctx, "remove_fridge_item", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (:User {email: $email})-[:HAS_IN_FRIDGE]->(f:FridgeItem {id: $id})
			WITH f, f.id AS id
			DETACH DELETE f
			RETURN id
		`, map[string]interface{}{"email": email, "id": id})
		if err != nil {
			return nil, err
		}
		record, err := singleOptional(ctx, result)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, apperrors.NewNotFound("fridge item", id)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("Fridge item removed", zap.String("email", email), zap.String("id", id))
	return nil
}

func fridgeParams(input FridgeItemInput) (map[string]interface{}, error) {
	ingredient := NormalizeIngredient(input.Ingredient)
	if ingredient == "" {
		return nil, apperrors.NewInvalidArgument("ingredient", "required")
	}
	if input.Amount < 0 {
		return nil, apperrors.NewInvalidArgument("amount", "must not be negative")
	}
	return map[string]interface{}{
		"ingredient": ingredient,
		"category":   strings.TrimSpace(input.Category),
		"amount":     input.Amount,
		"unit":       strings.TrimSpace(input.Unit),
		"expiresAt":  nullableTime(input.ExpiresAt),
	}, nil
}

func fridgeItemFromRecord(record *neo4j.Record) *FridgeItem {
	return &FridgeItem{
		ID:         getStringFromRecord(record, "id"),
		Ingredient: getStringFromRecord(record, "ingredient"),
		Category:   getStringFromRecord(record, "category"),
		Amount:     getFloat64FromRecord(record, "amount"),
		Unit:       getStringFromRecord(record, "unit"),
		ExpiresAt:  getTimePtrFromRecord(record, "expires_at"),
		AddedAt:    getTimeFromRecord(record, "added_at"),
	}
}
