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
// Shopping List Operations
// ============================================================================

const shoppingColumns = `
	RETURN s.id AS id, s.name AS name, s.checked AS checked, s.added_at AS added_at
`

// AddShoppingItem appends an unchecked entry to the user's list
func (r *Repository) AddShoppingItem(ctx context.Context, email, name string) (*ShoppingItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewInvalidArgument("name", "required")
	}
	email = normalizeEmail(email)

	out, err := r.executeWrite(ctx, "add_shopping_item", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (u:User {email: $email})
			CREATE (u)-[:HAS_IN_SHOPPING_LIST]->(s:ShoppingItem {
				id: $id,
				name: $name,
				checked: false,
				added_at: datetime($now)
			})
		`+shoppingColumns, map[string]interface{}{
			"email": email,
			"id":    uuid.NewString(),
			"name":  name,
			"now":   nowString(),
		})
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
		return shoppingItemFromRecord(record), nil
	})
	if err != nil {
		return nil, err
	}

	item := out.(*ShoppingItem)
	r.logger.Info("Shopping item added", zap.String("email", email), zap.String("id", item.ID))
	return item, nil
}

// ListShoppingItems returns unchecked entries first, then by name
func (r *Repository) ListShoppingItems(ctx context.Context, email string) ([]ShoppingItem, error) {
	email = normalizeEmail(email)

	out, err := r.executeRead(ctx, "list_shopping_items", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		if err := requireUser(ctx, tx, email); err != nil {
			return nil, err
		}
		result, err := tx.Run(ctx, `
			MATCH (:User {email: $email})-[:HAS_IN_SHOPPING_LIST]->(s:ShoppingItem)
		`+shoppingColumns+`
			ORDER BY checked, toLower(name), id
		`, map[string]interface{}{"email": email})
		if err != nil {
			return nil, err
		}
		return shoppingItemsFromResult(ctx, result)
	})
	if err != nil {
		return nil, err
	}
	return out.([]ShoppingItem), nil
}

// UpdateShoppingItem applies the non-nil fields of update to an owned entry
func (r *Repository) UpdateShoppingItem(ctx context.Context, email, id string, update ShoppingItemUpdate) (*ShoppingItem, error) {
	var name interface{}
	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		if trimmed == "" {
			return nil, apperrors.NewInvalidArgument("name", "must not be empty")
		}
		name = trimmed
	}
	var checked interface{}
	if update.Checked != nil {
		checked = *update.Checked
	}
	email = normalizeEmail(email)

	out, err := r.executeWrite(ctx, "update_shopping_item", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (:User {email: $email})-[:HAS_IN_SHOPPING_LIST]->(s:ShoppingItem {id: $id})
			SET s.name = coalesce($name, s.name),
			    s.checked = coalesce($checked, s.checked)
		`+shoppingColumns, map[string]interface{}{
			"email":   email,
			"id":      id,
			"name":    name,
			"checked": checked,
		})
		if err != nil {
			return nil, err
		}
		return ownedShoppingItem(ctx, result, id)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Shopping item updated", zap.String("email", email), zap.String("id", id))
	return out.(*ShoppingItem), nil
}

// ToggleShoppingItem flips the checked flag of an owned entry
func (r *Repository) ToggleShoppingItem(ctx context.Context, email, id string) (*ShoppingItem, error) {
	email = normalizeEmail(email)

	out, err := r.executeWrite(ctx, "toggle_shopping_item", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (:User {email: $email})-[:HAS_IN_SHOPPING_LIST]->(s:ShoppingItem {id: $id})
			SET s.checked = NOT coalesce(s.checked, false)
		`+shoppingColumns, map[string]interface{}{"email": email, "id": id})
		if err != nil {
			return nil, err
		}
		return ownedShoppingItem(ctx, result, id)
	})
	if err != nil {
		return nil, err
	}

	item := out.(*ShoppingItem)
	r.logger.Info("Shopping item toggled",
		zap.String("email", email),
		zap.String("id", id),
		zap.Bool("checked", item.Checked),
	)
	return item, nil
}

// RemoveShoppingItem deletes an owned entry together with its owning edge
func (r *Repository) RemoveShoppingItem(ctx context.Context, email, id string) error {
	email = normalizeEmail(email)

	_, err := r.executeWrite(ctx, "remove_shopping_item", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (:User {email: $email})-[:HAS_IN_SHOPPING_LIST]->(s:ShoppingItem {id: $id})
			WITH s, s.id AS id
			DETACH DELETE s
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
			return nil, apperrors.NewNotFound("shopping item", id)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("Shopping item removed", zap.String("email", email), zap.String("id", id))
	return nil
}

// ClearCheckedShoppingItems deletes every checked entry and returns how many went
func (r *Repository) ClearCheckedShoppingItems(ctx context.Context, email string) (int, error) {
	email = normalizeEmail(email)

	out, err := r.executeWrite(ctx, "clear_checked_shopping_items", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		if err := requireUser(ctx, tx, email); err != nil {
			return nil, err
		}
		result, err := tx.Run(ctx, `
			OPTIONAL MATCH (:User {email: $email})-[:HAS_IN_SHOPPING_LIST]->(s:ShoppingItem {checked: true})
			WITH collect(s) AS items
			FOREACH (item IN items | DETACH DELETE item)
			RETURN size(items) AS removed
		`, map[string]interface{}{"email": email})
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		return getIntFromRecord(record, "removed"), nil
	})
	if err != nil {
		return 0, err
	}

	removed := out.(int)
	r.logger.Info("Checked shopping items cleared", zap.String("email", email), zap.Int("removed", removed))
	return removed, nil
}

// AddMissingIngredientsToShoppingList puts every ingredient of the recipe
// that is neither in the user's unexpired fridge nor already listed onto the
// shopping list. It returns only the entries it created.
func (r *Repository) AddMissingIngredientsToShoppingList(ctx context.Context, email, recipeID string) ([]ShoppingItem, error) {
	email = normalizeEmail(email)
	now := nowString()

	out, err := r.executeWrite(ctx, "add_missing_ingredients", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		if err := requireEndpoints(ctx, tx, email, recipeID); err != nil {
			return nil, err
		}

		result, err := tx.Run(ctx, `
			MATCH (u:User {email: $email})
			MATCH (r:Recipe {recipe_id: $recipeID})
			OPTIONAL MATCH (r)-[:CONTAINS]->(i:Ingredient)
			WITH u, collect(DISTINCT i.name) AS needed
			OPTIONAL MATCH (u)-[:HAS_IN_FRIDGE]->(f:FridgeItem)
			WHERE f.expires_at IS NULL OR f.expires_at > datetime($now)
			WITH u, needed, collect(DISTINCT f.ingredient) AS have
			OPTIONAL MATCH (u)-[:HAS_IN_SHOPPING_LIST]->(s:ShoppingItem)
			RETURN needed, have, collect(DISTINCT s.name) AS listed
		`, map[string]interface{}{"email": email, "recipeID": recipeID, "now": now})
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}

		missing := missingIngredients(
			getStringSliceFromRecord(record, "needed"),
			getStringSliceFromRecord(record, "have"),
			getStringSliceFromRecord(record, "listed"),
		)
		if len(missing) == 0 {
			return []ShoppingItem{}, nil
		}

		items := make([]map[string]interface{}, 0, len(missing))
		for _, name := range missing {
			items = append(items, map[string]interface{}{"id": uuid.NewString(), "name": name})
		}
		result, err = tx.Run(ctx, `
			MATCH (u:User {email: $email})
			UNWIND $items AS item
			CREATE (u)-[:HAS_IN_SHOPPING_LIST]->(s:ShoppingItem {
				id: item.id,
				name: item.name,
				checked: false,
				added_at: datetime($now)
			})
		`+shoppingColumns+`
			ORDER BY name
		`, map[string]interface{}{"email": email, "items": items, "now": now})
		if err != nil {
			return nil, err
		}
		return shoppingItemsFromResult(ctx, result)
	})
	if err != nil {
		return nil, err
	}

	created := out.([]ShoppingItem)
	r.logger.Info("Missing ingredients added to shopping list",
		zap.String("email", email),
		zap.String("recipe_id", recipeID),
		zap.Int("added", len(created)),
	)
	return created, nil
}

// missingIngredients returns the normalized names in needed that appear in
// neither have nor listed, sorted
func missingIngredients(needed, have, listed []string) []string {
	skip := make(map[string]struct{}, len(have)+len(listed))
	for _, name := range have {
		skip[NormalizeIngredient(name)] = struct{}{}
	}
	for _, name := range listed {
		skip[NormalizeIngredient(name)] = struct{}{}
	}

	missing := make([]string, 0, len(needed))
	for _, name := range NormalizeIngredients(needed) {
		if _, ok := skip[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func ownedShoppingItem(ctx context.Context, result neo4j.ResultWithContext, id string) (*ShoppingItem, error) {
	record, err := singleOptional(ctx, result)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.NewNotFound("shopping item", id)
	}
	return shoppingItemFromRecord(record), nil
}

func shoppingItemsFromResult(ctx context.Context, result neo4j.ResultWithContext) ([]ShoppingItem, error) {
	records, err := collectRecords(ctx, result)
	if err != nil {
		return nil, err
	}
	items := make([]ShoppingItem, 0, len(records))
	for _, record := range records {
		items = append(items, *shoppingItemFromRecord(record))
	}
	return items, nil
}

func shoppingItemFromRecord(record *neo4j.Record) *ShoppingItem {
	return &ShoppingItem{
		ID:      getStringFromRecord(record, "id"),
		Name:    getStringFromRecord(record, "name"),
		Checked: getBoolFromRecord(record, "checked"),
		AddedAt: getTimeFromRecord(record, "added_at"),
	}
}
