package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"recipe-graph/backend/internal/auth"
	"recipe-graph/backend/internal/constants"
	"recipe-graph/backend/internal/graph"
	apperrors "recipe-graph/backend/pkg/errors"
)

type recipeRequest struct {
	Name         string   `json:"name" form:"name" binding:"required"`
	Instructions string   `json:"instructions" form:"instructions"`
	Calories     *int     `json:"calories" form:"calories" binding:"omitempty,gte=0"`
	TimeMinutes  *int     `json:"time" form:"time" binding:"omitempty,gte=0"`
	Difficulty   string   `json:"difficulty" form:"difficulty" binding:"omitempty,difficulty"`
	Cuisine      string   `json:"cuisine" form:"cuisine"`
	ImageURL     string   `json:"image_url" form:"image_url"`
	Diets        []string `json:"diets" form:"diets"`
	Ingredients  []string `json:"ingredients" form:"ingredients" binding:"required,min=1"`
}

// ingredientList splits a single comma separated form field
func (r recipeRequest) ingredientList() []string {
	if len(r.Ingredients) == 1 && strings.Contains(r.Ingredients[0], ",") {
		return graph.SplitIngredientList(r.Ingredients[0])
	}
	return r.Ingredients
}

type interactionRequest struct {
	Kind string `json:"kind" form:"kind" binding:"required,interaction_kind"`
}

type ratingRequest struct {
	Rating int `json:"rating" form:"rating" binding:"required,min=1,max=5"`
}

func recipeFilterFromQuery(c *gin.Context) graph.RecipeFilter {
	return graph.RecipeFilter{
		Cuisine:     c.Query("cuisine"),
		Difficulty:  c.Query("difficulty"),
		AuthorEmail: c.Query("author"),
	}
}

// ListRecipes returns every recipe matching the optional filters
func (h *Handler) ListRecipes(c *gin.Context) {
	recipes, err := h.deps.Store.ListRecipes(c.Request.Context(), recipeFilterFromQuery(c))
	if err != nil {
		h.respondError(c, "list_recipes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// SearchRecipes matches q against names, instructions and ingredients
func (h *Handler) SearchRecipes(c *gin.Context) {
	recipes, err := h.deps.Store.SearchRecipes(c.Request.Context(), c.Query("q"), recipeFilterFromQuery(c))
	if err != nil {
		h.respondError(c, "search_recipes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *Handler) GetRecipe(c *gin.Context) {
	recipe, err := h.deps.Store.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "get_recipe", err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// CreateRecipe stores a recipe authored by the caller
func (h *Handler) CreateRecipe(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	input := graph.RecipeInput{
		Name:         req.Name,
		Instructions: req.Instructions,
		Calories:     req.Calories,
		TimeMinutes:  req.TimeMinutes,
		Difficulty:   req.Difficulty,
		Cuisine:      req.Cuisine,
		ImageURL:     req.ImageURL,
		Diets:        req.Diets,
	}
	recipe, err := h.deps.Store.CreateRecipe(c.Request.Context(), input, req.ingredientList(), auth.CurrentEmail(c))
	if err != nil {
		h.respondError(c, "create_recipe", err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

// UploadRecipeImage hosts the multipart "image" file and attaches its URL
func (h *Handler) UploadRecipeImage(c *gin.Context) {
	ctx := c.Request.Context()
	recipeID := c.Param("id")

	if h.deps.Images == nil {
		h.respondError(c, "upload_recipe_image", apperrors.NewUpstreamFailure("image upload", fmt.Errorf("image hosting is not configured")))
		return
	}
	// fail before uploading anything for an unknown recipe
	if _, err := h.deps.Store.GetRecipe(ctx, recipeID); err != nil {
		h.respondError(c, "upload_recipe_image", err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxImageUploadBytes)
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read image file"})
		return
	}
	defer file.Close()

	url, err := h.deps.Images.Upload(ctx, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		h.respondError(c, "upload_recipe_image", err)
		return
	}
	if err := h.deps.Store.SetRecipeImage(ctx, recipeID, url); err != nil {
		h.respondError(c, "upload_recipe_image", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe_id": recipeID, "image_url": url})
}

// RecordInteraction links the caller to the recipe by an interaction edge
func (h *Handler) RecordInteraction(c *gin.Context) {
	var req interactionRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	kind, err := graph.ParseInteractionKind(req.Kind)
	if err != nil {
		h.respondError(c, "record_interaction", err)
		return
	}

	recipeID := c.Param("id")
	if err := h.deps.Store.RecordInteraction(c.Request.Context(), auth.CurrentEmail(c), recipeID, kind); err != nil {
		h.respondError(c, "record_interaction", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe_id": recipeID, "kind": kind})
}

// RemoveInteraction deletes the edge named by :kind if present
func (h *Handler) RemoveInteraction(c *gin.Context) {
	kind, err := graph.ParseInteractionKind(c.Param("kind"))
	if err != nil {
		h.respondError(c, "remove_interaction", err)
		return
	}

	recipeID := c.Param("id")
	if err := h.deps.Store.RemoveInteraction(c.Request.Context(), auth.CurrentEmail(c), recipeID, kind); err != nil {
		h.respondError(c, "remove_interaction", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe_id": recipeID, "kind": kind, "removed": true})
}

// RateRecipe stores the caller's 1..5 rating
func (h *Handler) RateRecipe(c *gin.Context) {
	var req ratingRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	recipeID := c.Param("id")
	if err := h.deps.Store.RateRecipe(c.Request.Context(), auth.CurrentEmail(c), recipeID, req.Rating); err != nil {
		h.respondError(c, "rate_recipe", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe_id": recipeID, "rating": req.Rating})
}

// ListMyRecipes lists recipes linked to the caller by ?kind=, "added" by default
func (h *Handler) ListMyRecipes(c *gin.Context) {
	kind, err := graph.ParseInteractionKind(c.DefaultQuery("kind", string(graph.InteractionAdded)))
	if err != nil {
		h.respondError(c, "list_user_recipes", err)
		return
	}

	recipes, err := h.deps.Store.ListUserRecipes(c.Request.Context(), auth.CurrentEmail(c), kind)
	if err != nil {
		h.respondError(c, "list_user_recipes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "recipes": recipes})
}
