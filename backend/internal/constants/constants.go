package constants

// Recommendation constants
const (
	// RecommendationLimit is the number of recipes either recommender returns
	RecommendationLimit = 10

	// Preference score weights
	CuisineMatchScore    = 20
	DifficultyMatchScore = 15
	PrepTimeMatchScore   = 15

	// Calorie bucket upper bounds, inclusive
	LowCalorieMax    = 200
	MediumCalorieMax = 500
)

// Import constants
const (
	// MaxImportCount caps a single import request
	MaxImportCount = 100
	// ImportConcurrency bounds concurrent catalog page fetches
	ImportConcurrency = 4

	// Ready-time thresholds in minutes used to derive a difficulty
	EasyMaxMinutes   = 30
	MediumMaxMinutes = 60
)

// Vision constants
const (
	// TopPredictions is how many labels a classification returns
	TopPredictions = 3
	// MaxImageUploadBytes bounds multipart image uploads
	MaxImageUploadBytes = 10 << 20
)

// Difficulty levels
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)
