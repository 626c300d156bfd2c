package graph

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	apperrors "recipe-graph/backend/pkg/errors"
)

// Integration tests share one Neo4j container per package run and wipe the
// graph before each test.

const testNeo4jPassword = "testpassword"

var (
	containerOnce   sync.Once
	sharedContainer testcontainers.Container
	sharedDriver    neo4j.DriverWithContext
	sharedErr       error
)

func TestMain(m *testing.M) {
	code := m.Run()
	if sharedDriver != nil {
		_ = sharedDriver.Close(context.Background())
	}
	if sharedContainer != nil {
		_ = sharedContainer.Terminate(context.Background())
	}
	os.Exit(code)
}

func startNeo4j(ctx context.Context) (testcontainers.Container, neo4j.DriverWithContext, error) {
	req := testcontainers.ContainerRequest{
		Image:        "neo4j:5",
		ExposedPorts: []string{"7687/tcp"},
		Env: map[string]string{
			"NEO4J_AUTH": "neo4j/" + testNeo4jPassword,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("Started.").WithStartupTimeout(3*time.Minute),
			wait.ForListeningPort("7687/tcp"),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, nil, err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return container, nil, err
	}
	port, err := container.MappedPort(ctx, "7687")
	if err != nil {
		return container, nil, err
	}

	driver, err := Connect(ctx, ConnectOptions{
		URI:            fmt.Sprintf("bolt://%s:%s", host, port.Port()),
		User:           "neo4j",
		Password:       testNeo4jPassword,
		MaxAttempts:    10,
		InitialBackoff: 500 * time.Millisecond,
	}, zap.NewNop())
	return container, driver, err
}

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	containerOnce.Do(func() {
		sharedContainer, sharedDriver, sharedErr = startNeo4j(context.Background())
	})
	require.NoError(t, sharedErr)

	repo := NewRepository(sharedDriver, WithQueryTimeout(30*time.Second))
	ctx := context.Background()
	require.NoError(t, repo.Reset(ctx))
	require.NoError(t, repo.EnsureSchema(ctx))
	return repo
}

// countQuery runs a single-value count inside a read transaction
func countQuery(t *testing.T, repo *Repository, query string, params map[string]interface{}) int64 {
	t.Helper()
	out, err := repo.executeRead(context.Background(), "test_count", func(ctx context.Context, tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		return getInt64FromRecord(record, "n"), nil
	})
	require.NoError(t, err)
	return out.(int64)
}

func createTestUser(t *testing.T, repo *Repository, email string) string {
	t.Helper()
	_, token, err := repo.CreateUser(context.Background(), "Test "+email, email, "$2a$10$hash")
	require.NoError(t, err)
	return token
}

func intPtr(v int) *int { return &v }

func TestRepository_CreateUser_ConflictAndVerify(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	user, token, err := repo.CreateUser(ctx, "Ada", " Ada@Example.com ", "hash")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.False(t, user.Verified)
	assert.NotEmpty(t, token)

	_, _, err = repo.CreateUser(ctx, "Ada Again", "ada@example.com", "hash")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConflict))

	verified, err := repo.VerifyUser(ctx, token)
	require.NoError(t, err)
	assert.True(t, verified.Verified)

	_, err = repo.VerifyUser(ctx, token)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	creds, err := repo.GetCredentials(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.True(t, creds.Verified)
	assert.Equal(t, "hash", creds.PasswordHash)
}

func TestRepository_IngredientDedup(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.CreateRecipe(ctx, RecipeInput{Name: "Salad"}, []string{"Tomato", "Basil"}, "")
	require.NoError(t, err)
	_, err = repo.CreateRecipe(ctx, RecipeInput{Name: "Sauce"}, []string{" tomato ", "TOMATO"}, "")
	require.NoError(t, err)

	n := countQuery(t, repo, `MATCH (i:Ingredient {name: 'tomato'}) RETURN count(i) AS n`, nil)
	assert.Equal(t, int64(1), n)
	n = countQuery(t, repo, `MATCH (:Recipe)-[c:CONTAINS]->(:Ingredient {name: 'tomato'}) RETURN count(c) AS n`, nil)
	assert.Equal(t, int64(2), n)
}

func TestRepository_CreateRecipe_RoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	createTestUser(t, repo, "chef@example.com")

	input := RecipeInput{
		Name:         "Pancakes",
		Instructions: "Mix and fry.",
		Calories:     intPtr(350),
		TimeMinutes:  intPtr(20),
		Difficulty:   "Easy",
		Cuisine:      "American",
	}
	created, err := repo.CreateRecipe(ctx, input, []string{"Flour", "egg", "Milk"}, "chef@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, created.RecipeID)
	assert.Equal(t, SourceLocal, created.Source)

	got, err := repo.GetRecipe(ctx, created.RecipeID)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", got.Name)
	assert.Equal(t, "Mix and fry.", got.Instructions)
	assert.ElementsMatch(t, []string{"flour", "egg", "milk"}, got.Ingredients)
	require.NotNil(t, got.Calories)
	assert.Equal(t, 350, *got.Calories)
	assert.Equal(t, "easy", got.Difficulty)
	assert.Equal(t, "Test chef@example.com", got.AuthorName)
	assert.Zero(t, got.RatingCount)

	authored, err := repo.ListRecipes(ctx, RecipeFilter{AuthorEmail: "chef@example.com"})
	require.NoError(t, err)
	require.Len(t, authored, 1)
	assert.Equal(t, created.RecipeID, authored[0].RecipeID)

	added, err := repo.ListUserRecipes(ctx, "chef@example.com", InteractionAdded)
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, created.RecipeID, added[0].RecipeID)
}

func TestRepository_CreateRecipe_UnknownAuthor(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.CreateRecipe(ctx, RecipeInput{Name: "Ghost"}, []string{"air"}, "nobody@example.com")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	n := countQuery(t, repo, `MATCH (r:Recipe) RETURN count(r) AS n`, nil)
	assert.Zero(t, n)
}

func TestRepository_UpsertRecipeFromImport_ReplacesIngredients(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first, created, err := repo.UpsertRecipeFromImport(ctx, "716429", "spoonacular",
		RecipeInput{Name: "Pasta", Calories: intPtr(600)}, []string{"pasta", "garlic"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "716429", first.RecipeID)

	second, created, err := repo.UpsertRecipeFromImport(ctx, "716429", "spoonacular",
		RecipeInput{Name: "Garlic Pasta"}, []string{"pasta", "olive oil"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Garlic Pasta", second.Name)
	assert.Nil(t, second.Calories)
	assert.ElementsMatch(t, []string{"pasta", "olive oil"}, second.Ingredients)

	n := countQuery(t, repo, `MATCH (r:Recipe {recipe_id: '716429'}) RETURN count(r) AS n`, nil)
	assert.Equal(t, int64(1), n)
}

func TestRepository_RecordInteraction_Idempotent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	createTestUser(t, repo, "fan@example.com")
	recipe, err := repo.CreateRecipe(ctx, RecipeInput{Name: "Soup"}, []string{"water"}, "")
	require.NoError(t, err)

	require.NoError(t, repo.RecordInteraction(ctx, "fan@example.com", recipe.RecipeID, InteractionLiked))
	require.NoError(t, repo.RecordInteraction(ctx, "fan@example.com", recipe.RecipeID, InteractionLiked))

	n := countQuery(t, repo, `MATCH (:User {email: $email})-[e:LIKED]->(:Recipe {recipe_id: $id}) RETURN count(e) AS n`,
		map[string]interface{}{"email": "fan@example.com", "id": recipe.RecipeID})
	assert.Equal(t, int64(1), n)

	liked, err := repo.ListUserRecipes(ctx, "fan@example.com", InteractionLiked)
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, recipe.RecipeID, liked[0].RecipeID)

	details, err := repo.GetRecipe(ctx, recipe.RecipeID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), details.LikeCount)

	require.NoError(t, repo.RemoveInteraction(ctx, "fan@example.com", recipe.RecipeID, InteractionLiked))
	require.NoError(t, repo.RemoveInteraction(ctx, "fan@example.com", recipe.RecipeID, InteractionLiked))
	liked, err = repo.ListUserRecipes(ctx, "fan@example.com", InteractionLiked)
	require.NoError(t, err)
	assert.Empty(t, liked)
}

func TestRepository_RecordInteraction_MissingEndpoints(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	createTestUser(t, repo, "fan@example.com")

	err := repo.RecordInteraction(ctx, "fan@example.com", "missing", InteractionCooked)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	recipe, err := repo.CreateRecipe(ctx, RecipeInput{Name: "Soup"}, nil, "")
	require.NoError(t, err)
	err = repo.RecordInteraction(ctx, "ghost@example.com", recipe.RecipeID, InteractionCooked)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	err = repo.RecordInteraction(ctx, "fan@example.com", recipe.RecipeID, InteractionKind("hated"))
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidArgument))
}

func TestRepository_RateRecipe(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	createTestUser(t, repo, "a@example.com")
	createTestUser(t, repo, "b@example.com")
	recipe, err := repo.CreateRecipe(ctx, RecipeInput{Name: "Stew"}, []string{"beef"}, "")
	require.NoError(t, err)

	require.NoError(t, repo.RateRecipe(ctx, "a@example.com", recipe.RecipeID, 2))
	require.NoError(t, repo.RateRecipe(ctx, "a@example.com", recipe.RecipeID, 4))
	require.NoError(t, repo.RateRecipe(ctx, "b@example.com", recipe.RecipeID, 5))

	err = repo.RateRecipe(ctx, "b@example.com", recipe.RecipeID, 6)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidArgument))

	details, err := repo.GetRecipe(ctx, recipe.RecipeID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), details.RatingCount)
	assert.InDelta(t, 4.5, details.AverageRating, 0.001)
}

func TestRepository_SearchRecipes(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.CreateRecipe(ctx, RecipeInput{Name: "Tomato Soup", Cuisine: "Italian", Difficulty: "easy"}, []string{"tomato"}, "")
	require.NoError(t, err)
	_, err = repo.CreateRecipe(ctx, RecipeInput{Name: "Curry", Instructions: "Simmer slowly", Cuisine: "Indian", Difficulty: "medium"}, []string{"Chickpeas"}, "")
	require.NoError(t, err)

	all, err := repo.SearchRecipes(ctx, "", RecipeFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := repo.SearchRecipes(ctx, "zucchini", RecipeFilter{})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	byIngredient, err := repo.SearchRecipes(ctx, "CHICKPEA", RecipeFilter{})
	require.NoError(t, err)
	require.Len(t, byIngredient, 1)
	assert.Equal(t, "Curry", byIngredient[0].Name)

	byInstructions, err := repo.SearchRecipes(ctx, "simmer", RecipeFilter{})
	require.NoError(t, err)
	require.Len(t, byInstructions, 1)

	filtered, err := repo.SearchRecipes(ctx, "", RecipeFilter{Cuisine: "italian"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Tomato Soup", filtered[0].Name)

	filtered, err = repo.SearchRecipes(ctx, "soup", RecipeFilter{Difficulty: "medium"})
	require.NoError(t, err)
	assert.Empty(t, filtered)
}

func TestRepository_FridgeOwnershipIsolation(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	createTestUser(t, repo, "owner@example.com")
	createTestUser(t, repo, "intruder@example.com")

	expires := time.Now().Add(48 * time.Hour)
	item, err := repo.AddFridgeItem(ctx, "owner@example.com", FridgeItemInput{
		Ingredient: " Milk ",
		Amount:     1,
		Unit:       "l",
		ExpiresAt:  &expires,
	})
	require.NoError(t, err)
	assert.Equal(t, "milk", item.Ingredient)
	require.NotNil(t, item.ExpiresAt)

	err = repo.RemoveFridgeItem(ctx, "intruder@example.com", item.ID)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	_, err = repo.UpdateFridgeItem(ctx, "intruder@example.com", item.ID, FridgeItemInput{Ingredient: "water"})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	items, err := repo.ListFridgeItems(ctx, "owner@example.com")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "milk", items[0].Ingredient)

	require.NoError(t, repo.RemoveFridgeItem(ctx, "owner@example.com", item.ID))
	n := countQuery(t, repo, `MATCH (f:FridgeItem) RETURN count(f) AS n`, nil)
	assert.Zero(t, n)
}

func TestRepository_ShoppingList(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	createTestUser(t, repo, "shopper@example.com")
	createTestUser(t, repo, "other@example.com")

	bread, err := repo.AddShoppingItem(ctx, "shopper@example.com", "Bread")
	require.NoError(t, err)
	_, err = repo.AddShoppingItem(ctx, "shopper@example.com", "apples")
	require.NoError(t, err)

	toggled, err := repo.ToggleShoppingItem(ctx, "shopper@example.com", bread.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Checked)

	_, err = repo.ToggleShoppingItem(ctx, "other@example.com", bread.ID)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	items, err := repo.ListShoppingItems(ctx, "shopper@example.com")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "apples", items[0].Name)
	assert.True(t, items[1].Checked)

	renamed := "Rye bread"
	updated, err := repo.UpdateShoppingItem(ctx, "shopper@example.com", bread.ID, ShoppingItemUpdate{Name: &renamed})
	require.NoError(t, err)
	assert.Equal(t, "Rye bread", updated.Name)
	assert.True(t, updated.Checked)

	removed, err := repo.ClearCheckedShoppingItems(ctx, "shopper@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	items, err = repo.ListShoppingItems(ctx, "shopper@example.com")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "apples", items[0].Name)
}

func TestRepository_AddMissingIngredientsToShoppingList(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	createTestUser(t, repo, "cook@example.com")

	recipe, err := repo.CreateRecipe(ctx, RecipeInput{Name: "Cake"}, []string{"flour", "sugar", "egg", "butter"}, "")
	require.NoError(t, err)

	_, err = repo.AddFridgeItem(ctx, "cook@example.com", FridgeItemInput{Ingredient: "Flour", Amount: 1})
	require.NoError(t, err)
	expired := time.Now().Add(-24 * time.Hour)
	_, err = repo.AddFridgeItem(ctx, "cook@example.com", FridgeItemInput{Ingredient: "egg", Amount: 6, ExpiresAt: &expired})
	require.NoError(t, err)
	_, err = repo.AddShoppingItem(ctx, "cook@example.com", "Butter")
	require.NoError(t, err)

	added, err := repo.AddMissingIngredientsToShoppingList(ctx, "cook@example.com", recipe.RecipeID)
	require.NoError(t, err)
	names := make([]string, 0, len(added))
	for _, item := range added {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"egg", "sugar"}, names)

	again, err := repo.AddMissingIngredientsToShoppingList(ctx, "cook@example.com", recipe.RecipeID)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestRepository_SurveyReplace(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	createTestUser(t, repo, "new@example.com")

	_, err := repo.GetSurvey(ctx, "new@example.com")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	_, err = repo.SaveSurvey(ctx, "new@example.com", Survey{CookingSkill: "Beginner", CuisinePreferences: []string{"Thai"}})
	require.NoError(t, err)
	second, err := repo.SaveSurvey(ctx, "new@example.com", Survey{CookingSkill: "advanced"})
	require.NoError(t, err)

	n := countQuery(t, repo, `MATCH (s:Survey) RETURN count(s) AS n`, nil)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetSurvey(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, "advanced", got.CookingSkill)
	assert.Empty(t, got.CuisinePreferences)
}

func TestRepository_ProfileAndPreferences(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	createTestUser(t, repo, "fit@example.com")

	_, err := repo.GetPreferences(ctx, "fit@example.com")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	profile, err := repo.UpdateProfile(ctx, "fit@example.com", Profile{Name: "Fit", Age: 30, Height: 180, Weight: 75.5, Goal: "maintain"})
	require.NoError(t, err)
	assert.Equal(t, 30, profile.Age)
	assert.InDelta(t, 75.5, profile.Weight, 0.001)

	_, err = repo.UpdateProfile(ctx, "ghost@example.com", Profile{Name: "Ghost"})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	require.NoError(t, repo.UpdatePreferences(ctx, "fit@example.com", Preferences{
		Diet:               "Vegetarian",
		DislikedFoods:      []string{"Mushroom"},
		Cuisines:           []string{"Italian"},
		CaloriePreference:  CalorieBucketLow,
		PrepTimePreference: 30,
	}))
	_, err = repo.SaveSurvey(ctx, "fit@example.com", Survey{CookingSkill: "easy"})
	require.NoError(t, err)

	prefs, err := repo.GetPreferences(ctx, "fit@example.com")
	require.NoError(t, err)
	assert.Equal(t, "vegetarian", prefs.Diet)
	assert.Equal(t, []string{"mushroom"}, prefs.DislikedFoods)
	assert.Equal(t, 30, prefs.PrepTimePreference)
	assert.Equal(t, "easy", prefs.SkillLevel)

	err = repo.UpdatePreferences(ctx, "fit@example.com", Preferences{CaloriePreference: "enormous"})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidArgument))
}

func TestRepository_FridgeSnapshot(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	createTestUser(t, repo, "snap@example.com")

	_, err := repo.CreateRecipe(ctx, RecipeInput{Name: "Omelette"}, []string{"egg", "cheese"}, "")
	require.NoError(t, err)
	_, err = repo.AddFridgeItem(ctx, "snap@example.com", FridgeItemInput{Ingredient: "Egg", Amount: 6})
	require.NoError(t, err)

	snap, err := repo.FridgeSnapshot(ctx, "SNAP@example.com")
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "egg", snap.Items[0].Ingredient)
	require.Len(t, snap.Recipes, 1)
	assert.Equal(t, "Omelette", snap.Recipes[0].Name)

	_, err = repo.FridgeSnapshot(ctx, "ghost@example.com")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
}

func TestRepository_PreferenceSnapshot(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	createTestUser(t, repo, "picky@example.com")

	_, err := repo.CreateRecipe(ctx, RecipeInput{Name: "Curry", Cuisine: "Thai"}, []string{"rice"}, "")
	require.NoError(t, err)

	_, err = repo.PreferenceSnapshot(ctx, "picky@example.com")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	require.NoError(t, repo.UpdatePreferences(ctx, "picky@example.com", Preferences{Cuisines: []string{"Thai"}}))
	snap, err := repo.PreferenceSnapshot(ctx, "picky@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"Thai"}, snap.Preferences.Cuisines)
	require.Len(t, snap.Recipes, 1)
	assert.Equal(t, "Curry", snap.Recipes[0].Name)
}
