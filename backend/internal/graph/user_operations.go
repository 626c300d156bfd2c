package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	apperrors "recipe-graph/backend/pkg/errors"
)

// ============================================================================
// User Operations
// ============================================================================

// CreateUser creates an unverified user and returns it together with the
// fresh verification token. Fails with Conflict when the email is taken.
func (r *Repository) CreateUser(ctx context.Context, name, email, passwordHash string) (*User, string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, "", apperrors.NewInvalidArgument("email", "required")
	}
	if passwordHash == "" {
		return nil, "", apperrors.NewInvalidArgument("password", "required")
	}

	token := uuid.NewString()
	now := nowString()

	out, err := r.executeWrite(ctx, "create_user", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			OPTIONAL MATCH (existing:User {email: $email})
			RETURN existing IS NOT NULL AS exists
		`, map[string]interface{}{"email": email})
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		if getBoolFromRecord(record, "exists") {
			return nil, apperrors.NewConflict("user", email)
		}

		result, err = tx.Run(ctx, `
			CREATE (u:User {
				email: $email,
				name: $name,
				password_hash: $passwordHash,
				verified: false,
				verification_token: $token,
				created_at: datetime($now)
			})
			RETURN u.email AS email, u.name AS name, u.verified AS verified, u.created_at AS created_at
		`, map[string]interface{}{
			"email":        email,
			"name":         strings.TrimSpace(name),
			"passwordHash": passwordHash,
			"token":        token,
			"now":          now,
		})
		if err != nil {
			return nil, err
		}
		record, err = result.Single(ctx)
		if err != nil {
			return nil, err
		}
		return userFromRecord(record), nil
	})
	if err != nil {
		if apperrors.IsErrorType(err, apperrors.ErrorTypeConflict) {
			return nil, "", apperrors.NewConflict("user", email)
		}
		return nil, "", err
	}

	r.logger.Info("User created", zap.String("email", email))
	return out.(*User), token, nil
}

// VerifyUser marks the owner of token as verified. Tokens are single use.
func (r *Repository) VerifyUser(ctx context.Context, token string) (*User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperrors.NewInvalidArgument("token", "required")
	}

	out, err := r.executeWrite(ctx, "verify_user", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (u:User {verification_token: $token})
			SET u.verified = true,
			    u.verified_at = datetime($now)
			REMOVE u.verification_token
			RETURN u.email AS email, u.name AS name, u.verified AS verified, u.created_at AS created_at
		`, map[string]interface{}{
			"token": token,
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
			return nil, apperrors.NewNotFound("verification token", "unknown or already used")
		}
		return userFromRecord(record), nil
	})
	if err != nil {
		return nil, err
	}

	user := out.(*User)
	r.logger.Info("User verified", zap.String("email", user.Email))
	return user, nil
}

// GetCredentials returns what login needs to check a password
func (r *Repository) GetCredentials(ctx context.Context, email string) (*Credentials, error) {
	email = normalizeEmail(email)

	out, err := r.executeRead(ctx, "get_credentials", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (u:User {email: $email})
			RETURN u.email AS email, u.name AS name, u.password_hash AS password_hash, u.verified AS verified
		`, map[string]interface{}{"email": email})
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
		return &Credentials{
			Email:        getStringFromRecord(record, "email"),
			Name:         getStringFromRecord(record, "name"),
			PasswordHash: getStringFromRecord(record, "password_hash"),
			Verified:     getBoolFromRecord(record, "verified"),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*Credentials), nil
}

// ============================================================================
// Profile and Preference Operations
// ============================================================================

const profileReturn = `
	RETURN u.email AS email, u.name AS name, u.age AS age,
	       u.height AS height, u.weight AS weight, u.goal AS goal
`

// GetProfile returns the body/goal attributes of a user
func (r *Repository) GetProfile(ctx context.Context, email string) (*Profile, error) {
	email = normalizeEmail(email)

	out, err := r.executeRead(ctx, "get_profile", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `MATCH (u:User {email: $email})`+profileReturn,
			map[string]interface{}{"email": email})
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
		return profileFromRecord(record), nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*Profile), nil
}

// UpdateProfile overwrites the whole profile attribute set
func (r *Repository) UpdateProfile(ctx context.Context, email string, profile Profile) (*Profile, error) {
	email = normalizeEmail(email)

	out, err := r.executeWrite(ctx, "update_profile", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (u:User {email: $email})
			SET u.name = $name,
			    u.age = $age,
			    u.height = $height,
			    u.weight = $weight,
			    u.goal = $goal,
			    u.profile_updated_at = datetime($now)
		`+profileReturn, map[string]interface{}{
			"email":  email,
			"name":   strings.TrimSpace(profile.Name),
			"age":    int64(profile.Age),
			"height": profile.Height,
			"weight": profile.Weight,
			"goal":   profile.Goal,
			"now":    nowString(),
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
		return profileFromRecord(record), nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Profile updated", zap.String("email", email))
	return out.(*Profile), nil
}

// GetPreferences returns stored preferences. Fails with NotFound when the
// user is unknown or has never saved preferences.
func (r *Repository) GetPreferences(ctx context.Context, email string) (*Preferences, error) {
	email = normalizeEmail(email)

	out, err := r.executeRead(ctx, "get_preferences", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		return readPreferences(ctx, tx, email)
	})
	if err != nil {
		return nil, err
	}
	return out.(*Preferences), nil
}

func readPreferences(ctx context.Context, tx neo4j.ManagedTransaction, email string) (*Preferences, error) {
	result, err := tx.Run(ctx, `
		MATCH (u:User {email: $email})
		OPTIONAL MATCH (u)-[:HAS_SURVEY]->(s:Survey)
		RETURN u.preferences_updated_at IS NOT NULL AS has_preferences,
		       u.diet AS diet, u.allergies AS allergies, u.cuisines AS cuisines,
		       u.disliked_foods AS disliked_foods, u.calorie_preference AS calorie_preference,
		       u.spice_preference AS spice_preference, u.prep_time_preference AS prep_time_preference,
		       s.cooking_skill AS skill_level
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
		return nil, apperrors.NewNotFound("user", email)
	}
	if !getBoolFromRecord(record, "has_preferences") {
		return nil, apperrors.NewNotFound("preferences", email)
	}
	return &Preferences{
		Diet:               getStringFromRecord(record, "diet"),
		Allergies:          getStringSliceFromRecord(record, "allergies"),
		Cuisines:           getStringSliceFromRecord(record, "cuisines"),
		DislikedFoods:      getStringSliceFromRecord(record, "disliked_foods"),
		CaloriePreference:  getStringFromRecord(record, "calorie_preference"),
		SpicePreference:    getStringFromRecord(record, "spice_preference"),
		PrepTimePreference: getIntFromRecord(record, "prep_time_preference"),
		SkillLevel:         getStringFromRecord(record, "skill_level"),
	}, nil
}

// UpdatePreferences overwrites the whole preference attribute set
func (r *Repository) UpdatePreferences(ctx context.Context, email string, prefs Preferences) error {
	email = normalizeEmail(email)

	switch prefs.CaloriePreference {
	case "", CalorieBucketLow, CalorieBucketMedium, CalorieBucketHigh:
	default:
		return apperrors.NewInvalidArgument("calorie_preference", fmt.Sprintf("unknown bucket %q", prefs.CaloriePreference))
	}
	if prefs.PrepTimePreference < 0 {
		return apperrors.NewInvalidArgument("prep_time_preference", "must not be negative")
	}

	_, err := r.executeWrite(ctx, "update_preferences", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (u:User {email: $email})
			SET u.diet = $diet,
			    u.allergies = $allergies,
			    u.cuisines = $cuisines,
			    u.disliked_foods = $dislikedFoods,
			    u.calorie_preference = $caloriePreference,
			    u.spice_preference = $spicePreference,
			    u.prep_time_preference = $prepTime,
			    u.preferences_updated_at = datetime($now)
			RETURN u.email AS email
		`, map[string]interface{}{
			"email":             email,
			"diet":              strings.ToLower(strings.TrimSpace(prefs.Diet)),
			"allergies":         NormalizeIngredients(prefs.Allergies),
			"cuisines":          emptyIfNil(prefs.Cuisines),
			"dislikedFoods":     NormalizeIngredients(prefs.DislikedFoods),
			"caloriePreference": prefs.CaloriePreference,
			"spicePreference":   prefs.SpicePreference,
			"prepTime":          int64(prefs.PrepTimePreference),
			"now":               nowString(),
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
		return nil, nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("Preferences updated", zap.String("email", email))
	return nil
}

func userFromRecord(record *neo4j.Record) *User {
	return &User{
		Email:     getStringFromRecord(record, "email"),
		Name:      getStringFromRecord(record, "name"),
		Verified:  getBoolFromRecord(record, "verified"),
		CreatedAt: getTimeFromRecord(record, "created_at"),
	}
}

func profileFromRecord(record *neo4j.Record) *Profile {
	return &Profile{
		Email:  getStringFromRecord(record, "email"),
		Name:   getStringFromRecord(record, "name"),
		Age:    getIntFromRecord(record, "age"),
		Height: getFloat64FromRecord(record, "height"),
		Weight: getFloat64FromRecord(record, "weight"),
		Goal:   getStringFromRecord(record, "goal"),
	}
}
