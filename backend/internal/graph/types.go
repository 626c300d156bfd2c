package graph

import "time"

// Calorie buckets accepted as a calorie preference
const (
	CalorieBucketLow    = "low"
	CalorieBucketMedium = "medium"
	CalorieBucketHigh   = "high"
)

// SourceLocal marks recipes authored through the API
const SourceLocal = "local"

// ============================================================================
// Graph Node Types
// ============================================================================

// User represents an account node. The password hash and verification
// token never leave the repository through this type.
type User struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Credentials is what authentication needs from a User node
type Credentials struct {
	Email        string
	Name         string
	PasswordHash string
	Verified     bool
}

// Profile is the fixed set of body/goal attributes stored on a User
type Profile struct {
	Email  string  `json:"email"`
	Name   string  `json:"name"`
	Age    int     `json:"age"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
	Goal   string  `json:"goal"`
}

// Preferences drive preference-weighted recommendations. SkillLevel is
// read from the user's survey and is not written by UpdatePreferences.
type Preferences struct {
	Diet               string   `json:"diet"`
	Allergies          []string `json:"allergies"`
	Cuisines           []string `json:"cuisines"`
	DislikedFoods      []string `json:"disliked_foods"`
	CaloriePreference  string   `json:"calorie_preference"` // low, medium, high or empty
	SpicePreference    string   `json:"spice_preference"`
	PrepTimePreference int      `json:"prep_time_preference"` // minutes, 0 means no limit
	SkillLevel         string   `json:"skill_level,omitempty"`
}

// Recipe represents a recipe node with its aggregated ingredient names
type Recipe struct {
	RecipeID     string   `json:"recipe_id"`
	Name         string   `json:"name"`
	Instructions string   `json:"instructions"`
	Calories     *int     `json:"calories,omitempty"`
	TimeMinutes  *int     `json:"time,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`
	Cuisine      string   `json:"cuisine,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	Diets        []string `json:"diets,omitempty"`
	Source       string   `json:"source,omitempty"`
	Ingredients  []string `json:"ingredients"`
}

// RecipeDetails is a Recipe plus the interaction aggregates shown on its page
type RecipeDetails struct {
	Recipe
	AuthorName    string  `json:"author_name,omitempty"`
	AverageRating float64 `json:"average_rating"`
	RatingCount   int64   `json:"rating_count"`
	LikeCount     int64   `json:"like_count"`
}

// RecipeInput carries the scalar fields for creating or importing a recipe
type RecipeInput struct {
	Name         string
	Instructions string
	Calories     *int
	TimeMinutes  *int
	Difficulty   string
	Cuisine      string
	ImageURL     string
	Diets        []string
}

// RecipeFilter narrows ListRecipes and SearchRecipes. Empty fields do not filter.
type RecipeFilter struct {
	Cuisine     string
	Difficulty  string
	AuthorEmail string
}

// FridgeItem is a pantry entry owned by exactly one user
type FridgeItem struct {
	ID         string     `json:"id"`
	Ingredient string     `json:"ingredient"`
	Category   string     `json:"category,omitempty"`
	Amount     float64    `json:"amount"`
	Unit       string     `json:"unit,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	AddedAt    time.Time  `json:"added_at"`
}

// FridgeItemInput carries the mutable fields of a fridge item
type FridgeItemInput struct {
	Ingredient string
	Category   string
	Amount     float64
	Unit       string
	ExpiresAt  *time.Time
}

// ShoppingItem is a shopping-list entry owned by exactly one user
type ShoppingItem struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Checked bool      `json:"checked"`
	AddedAt time.Time `json:"added_at"`
}

// ShoppingItemUpdate holds optional changes; nil fields are left untouched
type ShoppingItemUpdate struct {
	Name    *string
	Checked *bool
}

// Survey is the onboarding questionnaire; one per user, replaced wholesale
type Survey struct {
	ID                  string    `json:"id"`
	DietaryRestrictions []string  `json:"dietary_restrictions"`
	CuisinePreferences  []string  `json:"cuisine_preferences"`
	CookingSkill        string    `json:"cooking_skill"`
	CookingFrequency    string    `json:"cooking_frequency"`
	MealPreferences     []string  `json:"meal_preferences"`
	SubmittedAt         time.Time `json:"submitted_at"`
}

// FridgeSnapshot pairs a user's fridge with the recipe catalog as read in
// one transaction
type FridgeSnapshot struct {
	Items   []FridgeItem
	Recipes []Recipe
}

// PreferenceSnapshot pairs a user's preferences with the recipe catalog as
// read in one transaction
type PreferenceSnapshot struct {
	Preferences Preferences
	Recipes     []Recipe
}
