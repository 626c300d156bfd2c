package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"recipe-graph/backend/internal/auth"
	"recipe-graph/backend/internal/graph"
	"recipe-graph/backend/internal/recommend"
)

type profileRequest struct {
	Name   string  `json:"name" form:"name"`
	Age    int     `json:"age" form:"age" binding:"gte=0"`
	Height float64 `json:"height" form:"height" binding:"gte=0"`
	Weight float64 `json:"weight" form:"weight" binding:"gte=0"`
	Goal   string  `json:"goal" form:"goal"`
}

type preferencesRequest struct {
	Diet               string   `json:"diet" form:"diet"`
	Allergies          []string `json:"allergies" form:"allergies"`
	Cuisines           []string `json:"cuisines" form:"cuisines"`
	DislikedFoods      []string `json:"disliked_foods" form:"disliked_foods"`
	CaloriePreference  string   `json:"calorie_preference" form:"calorie_preference" binding:"omitempty,calorie_bucket"`
	SpicePreference    string   `json:"spice_preference" form:"spice_preference"`
	PrepTimePreference int      `json:"prep_time_preference" form:"prep_time_preference" binding:"gte=0"`
}

type surveyRequest struct {
	DietaryRestrictions []string `json:"dietary_restrictions" form:"dietary_restrictions"`
	CuisinePreferences  []string `json:"cuisine_preferences" form:"cuisine_preferences"`
	CookingSkill        string   `json:"cooking_skill" form:"cooking_skill" binding:"omitempty,difficulty"`
	CookingFrequency    string   `json:"cooking_frequency" form:"cooking_frequency"`
	MealPreferences     []string `json:"meal_preferences" form:"meal_preferences"`
}

type fridgeRequest struct {
	Ingredient string     `json:"ingredient" form:"ingredient" binding:"required"`
	Category   string     `json:"category" form:"category"`
	Amount     float64    `json:"amount" form:"amount" binding:"gte=0"`
	Unit       string     `json:"unit" form:"unit"`
	ExpiresAt  *time.Time `json:"expires_at" form:"expires_at" time_format:"2006-01-02T15:04:05Z07:00"`
}

func (r fridgeRequest) input() graph.FridgeItemInput {
	return graph.FridgeItemInput{
		Ingredient: r.Ingredient,
		Category:   r.Category,
		Amount:     r.Amount,
		Unit:       r.Unit,
		ExpiresAt:  r.ExpiresAt,
	}
}

type shoppingRequest struct {
	Name string `json:"name" form:"name" binding:"required"`
}

type shoppingUpdateRequest struct {
	Name    *string `json:"name" form:"name"`
	Checked *bool   `json:"checked" form:"checked"`
}

// ============================================================================
// Profile, preferences and survey
// ============================================================================

func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.deps.Store.GetProfile(c.Request.Context(), auth.CurrentEmail(c))
	if err != nil {
		h.respondError(c, "get_profile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile overwrites the whole profile record
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.deps.Store.UpdateProfile(c.Request.Context(), auth.CurrentEmail(c), graph.Profile{
		Name:   req.Name,
		Age:    req.Age,
		Height: req.Height,
		Weight: req.Weight,
		Goal:   req.Goal,
	})
	if err != nil {
		h.respondError(c, "update_profile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) GetPreferences(c *gin.Context) {
	prefs, err := h.deps.Store.GetPreferences(c.Request.Context(), auth.CurrentEmail(c))
	if err != nil {
		h.respondError(c, "get_preferences", err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences stores the preferences and returns them as read back
func (h *Handler) UpdatePreferences(c *gin.Context) {
	var req preferencesRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	email := auth.CurrentEmail(c)
	err := h.deps.Store.UpdatePreferences(ctx, email, graph.Preferences{
		Diet:               req.Diet,
		Allergies:          req.Allergies,
		Cuisines:           req.Cuisines,
		DislikedFoods:      req.DislikedFoods,
		CaloriePreference:  req.CaloriePreference,
		SpicePreference:    req.SpicePreference,
		PrepTimePreference: req.PrepTimePreference,
	})
	if err != nil {
		h.respondError(c, "update_preferences", err)
		return
	}

	prefs, err := h.deps.Store.GetPreferences(ctx, email)
	if err != nil {
		h.respondError(c, "update_preferences", err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// GetSurvey answers 200 with a null survey when none was submitted
func (h *Handler) GetSurvey(c *gin.Context) {
	survey, err := h.deps.Store.GetSurvey(c.Request.Context(), auth.CurrentEmail(c))
	if err != nil {
		if isNotFoundKind(err, "survey") {
			c.JSON(http.StatusOK, gin.H{"survey": nil})
			return
		}
		h.respondError(c, "get_survey", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"survey": survey})
}

// SaveSurvey replaces the caller's survey
func (h *Handler) SaveSurvey(c *gin.Context) {
	var req surveyRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	survey, err := h.deps.Store.SaveSurvey(c.Request.Context(), auth.CurrentEmail(c), graph.Survey{
		DietaryRestrictions: req.DietaryRestrictions,
		CuisinePreferences:  req.CuisinePreferences,
		CookingSkill:        req.CookingSkill,
		CookingFrequency:    req.CookingFrequency,
		MealPreferences:     req.MealPreferences,
	})
	if err != nil {
		h.respondError(c, "save_survey", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"survey": survey})
}

// ============================================================================
// Fridge
// ============================================================================

func (h *Handler) ListFridgeItems(c *gin.Context) {
	items, err := h.deps.Store.ListFridgeItems(c.Request.Context(), auth.CurrentEmail(c))
	if err != nil {
		h.respondError(c, "list_fridge_items", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) AddFridgeItem(c *gin.Context) {
	var req fridgeRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.deps.Store.AddFridgeItem(c.Request.Context(), auth.CurrentEmail(c), req.input())
	if err != nil {
		h.respondError(c, "add_fridge_item", err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateFridgeItem overwrites the mutable fields of one of the caller's items
func (h *Handler) UpdateFridgeItem(c *gin.Context) {
	var req fridgeRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.deps.Store.UpdateFridgeItem(c.Request.Context(), auth.CurrentEmail(c), c.Param("id"), req.input())
	if err != nil {
		h.respondError(c, "update_fridge_item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) RemoveFridgeItem(c *gin.Context) {
	id := c.Param("id")
	if err := h.deps.Store.RemoveFridgeItem(c.Request.Context(), auth.CurrentEmail(c), id); err != nil {
		h.respondError(c, "remove_fridge_item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "removed": true})
}

// ============================================================================
// Shopping list
// ============================================================================

func (h *Handler) ListShoppingItems(c *gin.Context) {
	items, err := h.deps.Store.ListShoppingItems(c.Request.Context(), auth.CurrentEmail(c))
	if err != nil {
		h.respondError(c, "list_shopping_items", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) AddShoppingItem(c *gin.Context) {
	var req shoppingRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.deps.Store.AddShoppingItem(c.Request.Context(), auth.CurrentEmail(c), req.Name)
	if err != nil {
		h.respondError(c, "add_shopping_item", err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateShoppingItem(c *gin.Context) {
	var req shoppingUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.deps.Store.UpdateShoppingItem(c.Request.Context(), auth.CurrentEmail(c), c.Param("id"), graph.ShoppingItemUpdate{
		Name:    req.Name,
		Checked: req.Checked,
	})
	if err != nil {
		h.respondError(c, "update_shopping_item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) ToggleShoppingItem(c *gin.Context) {
	item, err := h.deps.Store.ToggleShoppingItem(c.Request.Context(), auth.CurrentEmail(c), c.Param("id"))
	if err != nil {
		h.respondError(c, "toggle_shopping_item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) RemoveShoppingItem(c *gin.Context) {
	id := c.Param("id")
	if err := h.deps.Store.RemoveShoppingItem(c.Request.Context(), auth.CurrentEmail(c), id); err != nil {
		h.respondError(c, "remove_shopping_item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "removed": true})
}

// ClearCheckedShoppingItems drops every checked entry
func (h *Handler) ClearCheckedShoppingItems(c *gin.Context) {
	removed, err := h.deps.Store.ClearCheckedShoppingItems(c.Request.Context(), auth.CurrentEmail(c))
	if err != nil {
		h.respondError(c, "clear_checked_shopping_items", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// AddMissingIngredients lists what the caller still needs for a recipe
func (h *Handler) AddMissingIngredients(c *gin.Context) {
	items, err := h.deps.Store.AddMissingIngredientsToShoppingList(c.Request.Context(), auth.CurrentEmail(c), c.Param("id"))
	if err != nil {
		h.respondError(c, "add_missing_ingredients", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"added": items})
}

// ============================================================================
// Recommendations
// ============================================================================

func (h *Handler) RecommendFromFridge(c *gin.Context) {
	matches, err := h.deps.Recommender.RecommendFromFridge(c.Request.Context(), auth.CurrentEmail(c))
	if err != nil {
		h.respondError(c, "recommend_from_fridge", err)
		return
	}
	if matches == nil {
		matches = []recommend.FridgeMatch{}
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": matches})
}

func (h *Handler) RecommendForUser(c *gin.Context) {
	scored, err := h.deps.Recommender.RecommendForUser(c.Request.Context(), auth.CurrentEmail(c))
	if err != nil {
		h.respondError(c, "recommend_for_user", err)
		return
	}
	if scored == nil {
		scored = []recommend.ScoredRecipe{}
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": scored})
}
