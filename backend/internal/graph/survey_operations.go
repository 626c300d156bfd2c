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
// Survey Operations
// ============================================================================

const surveyColumns = `
	RETURN s.id AS id, s.dietary_restrictions AS dietary_restrictions,
	       s.cuisine_preferences AS cuisine_preferences, s.cooking_skill AS cooking_skill,
	       s.cooking_frequency AS cooking_frequency, s.meal_preferences AS meal_preferences,
	       s.submitted_at AS submitted_at
`

// SaveSurvey replaces the user's survey. The previous Survey node and its
// edge are deleted in the same transaction; fields are never merged.
func (r *Repository) SaveSurvey(ctx context.Context, email string, survey Survey) (*Survey, error) {
	email = normalizeEmail(email)

	out, err := r.executeWrite(ctx, "save_survey", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (u:User {email: $email})
			OPTIONAL MATCH (u)-[:HAS_SURVEY]->(old:Survey)
			DETACH DELETE old
			WITH DISTINCT u
			CREATE (u)-[:HAS_SURVEY]->(s:Survey {
				id: $id,
				dietary_restrictions: $dietaryRestrictions,
				cuisine_preferences: $cuisinePreferences,
				cooking_skill: $cookingSkill,
				cooking_frequency: $cookingFrequency,
				meal_preferences: $mealPreferences,
				submitted_at: datetime($now)
			})
		`+surveyColumns, map[string]interface{}{
			"email":               email,
			"id":                  uuid.NewString(),
			"dietaryRestrictions": lowerAll(survey.DietaryRestrictions),
			"cuisinePreferences":  emptyIfNil(survey.CuisinePreferences),
			"cookingSkill":        strings.ToLower(strings.TrimSpace(survey.CookingSkill)),
			"cookingFrequency":    strings.TrimSpace(survey.CookingFrequency),
			"mealPreferences":     emptyIfNil(survey.MealPreferences),
			"now":                 nowString(),
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
		return surveyFromRecord(record), nil
	})
	if err != nil {
		return nil, err
	}

	saved := out.(*Survey)
	r.logger.Info("Survey saved", zap.String("email", email), zap.String("id", saved.ID))
	return saved, nil
}

// GetSurvey returns the user's survey, NotFound when none was submitted
func (r *Repository) GetSurvey(ctx context.Context, email string) (*Survey, error) {
	email = normalizeEmail(email)

	out, err := r.executeRead(ctx, "get_survey", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		if err := requireUser(ctx, tx, email); err != nil {
			return nil, err
		}
		result, err := tx.Run(ctx, `
			MATCH (:User {email: $email})-[:HAS_SURVEY]->(s:Survey)
		`+surveyColumns+`
			LIMIT 1
		`, map[string]interface{}{"email": email})
		if err != nil {
			return nil, err
		}
		record, err := singleOptional(ctx, result)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, apperrors.NewNotFound("survey", email)
		}
		return surveyFromRecord(record), nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*Survey), nil
}

func surveyFromRecord(record *neo4j.Record) *Survey {
	return &Survey{
		ID:                  getStringFromRecord(record, "id"),
		DietaryRestrictions: getStringSliceFromRecord(record, "dietary_restrictions"),
		CuisinePreferences:  getStringSliceFromRecord(record, "cuisine_preferences"),
		CookingSkill:        getStringFromRecord(record, "cooking_skill"),
		CookingFrequency:    getStringFromRecord(record, "cooking_frequency"),
		MealPreferences:     getStringSliceFromRecord(record, "meal_preferences"),
		SubmittedAt:         getTimeFromRecord(record, "submitted_at"),
	}
}
