package api

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"recipe-graph/backend/internal/constants"
	"recipe-graph/backend/internal/graph"
)

var validatorsOnce sync.Once

var customValidators = map[string]validator.Func{
	"interaction_kind": validateInteractionKind,
	"difficulty":       validateDifficulty,
	"calorie_bucket":   validateCalorieBucket,
}

// registerValidators adds the domain tags to gin's validator. Safe to call
// more than once. A tag that fails to register panics at startup.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic("gin binding validator is not go-playground/validator")
		}
		if err := registerCustomValidators(v); err != nil {
			panic(err)
		}
	})
}

func registerCustomValidators(v *validator.Validate) error {
	for tag, fn := range customValidators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %q validator: %w", tag, err)
		}
	}
	return nil
}

func validateInteractionKind(fl validator.FieldLevel) bool {
	_, err := graph.ParseInteractionKind(fl.Field().String())
	return err == nil
}

func validateDifficulty(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case constants.DifficultyEasy, constants.DifficultyMedium, constants.DifficultyHard:
		return true
	}
	return false
}

func validateCalorieBucket(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case graph.CalorieBucketLow, graph.CalorieBucketMedium, graph.CalorieBucketHigh:
		return true
	}
	return false
}

// bindingMessage turns validator output into one readable line
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", field))
		case "min", "gte":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max", "lte":
			parts = append(parts, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email address", field))
		case "interaction_kind":
			parts = append(parts, fmt.Sprintf("%s must be one of %s", field, joinKinds()))
		case "difficulty":
			parts = append(parts, fmt.Sprintf("%s must be easy, medium or hard", field))
		case "calorie_bucket":
			parts = append(parts, fmt.Sprintf("%s must be low, medium or high", field))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func joinKinds() string {
	kinds := graph.InteractionKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
