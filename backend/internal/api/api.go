// Package api exposes the recipe graph over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"recipe-graph/backend/internal/auth"
	"recipe-graph/backend/internal/graph"
	"recipe-graph/backend/internal/importer"
	"recipe-graph/backend/internal/recommend"
	"recipe-graph/backend/internal/storage"
	"recipe-graph/backend/internal/vision"
	"recipe-graph/backend/pkg/logger"
)

// Store is the graph repository surface the handlers call
type Store interface {
	Ping(ctx context.Context) error

	GetProfile(ctx context.Context, email string) (*graph.Profile, error)
	UpdateProfile(ctx context.Context, email string, profile graph.Profile) (*graph.Profile, error)
	GetPreferences(ctx context.Context, email string) (*graph.Preferences, error)
	UpdatePreferences(ctx context.Context, email string, prefs graph.Preferences) error
	SaveSurvey(ctx context.Context, email string, survey graph.Survey) (*graph.Survey, error)
	GetSurvey(ctx context.Context, email string) (*graph.Survey, error)

	CreateRecipe(ctx context.Context, input graph.RecipeInput, ingredients []string, authorEmail string) (*graph.Recipe, error)
	GetRecipe(ctx context.Context, recipeID string) (*graph.RecipeDetails, error)
	ListRecipes(ctx context.Context, filter graph.RecipeFilter) ([]graph.Recipe, error)
	SearchRecipes(ctx context.Context, term string, filter graph.RecipeFilter) ([]graph.Recipe, error)
	SetRecipeImage(ctx context.Context, recipeID, imageURL string) error

	RecordInteraction(ctx context.Context, email, recipeID string, kind graph.InteractionKind) error
	RemoveInteraction(ctx context.Context, email, recipeID string, kind graph.InteractionKind) error
	ListUserRecipes(ctx context.Context, email string, kind graph.InteractionKind) ([]graph.Recipe, error)
	RateRecipe(ctx context.Context, email, recipeID string, rating int) error

	AddFridgeItem(ctx context.Context, email string, input graph.FridgeItemInput) (*graph.FridgeItem, error)
	ListFridgeItems(ctx context.Context, email string) ([]graph.FridgeItem, error)
	UpdateFridgeItem(ctx context.Context, email, id string, input graph.FridgeItemInput) (*graph.FridgeItem, error)
	RemoveFridgeItem(ctx context.Context, email, id string) error

	AddShoppingItem(ctx context.Context, email, name string) (*graph.ShoppingItem, error)
	ListShoppingItems(ctx context.Context, email string) ([]graph.ShoppingItem, error)
	UpdateShoppingItem(ctx context.Context, email, id string, update graph.ShoppingItemUpdate) (*graph.ShoppingItem, error)
	ToggleShoppingItem(ctx context.Context, email, id string) (*graph.ShoppingItem, error)
	RemoveShoppingItem(ctx context.Context, email, id string) error
	ClearCheckedShoppingItems(ctx context.Context, email string) (int, error)
	AddMissingIngredientsToShoppingList(ctx context.Context, email, recipeID string) ([]graph.ShoppingItem, error)
}

// Accounts runs the signup, verification and login flows
type Accounts interface {
	Signup(ctx context.Context, name, email, password string) (*graph.User, error)
	Verify(ctx context.Context, token string) (*graph.User, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
}

// Recommender computes both recommendation lists
type Recommender interface {
	RecommendFromFridge(ctx context.Context, email string) ([]recommend.FridgeMatch, error)
	RecommendForUser(ctx context.Context, email string) ([]recommend.ScoredRecipe, error)
}

// Importer pulls recipes from the external catalog
type Importer interface {
	Import(ctx context.Context, n int) (*importer.Result, error)
}

// Deps are the collaborators behind the routes
type Deps struct {
	Store       Store
	Accounts    Accounts
	Tokens      *auth.TokenService
	Recommender Recommender
	Importer    Importer
	Images      storage.ImageHost
	Classifier  vision.Classifier
}

// Options tune the router
type Options struct {
	CORSOrigins []string
	// HealthTimeout bounds the store ping behind /health
	HealthTimeout time.Duration
}

// Handler holds the collaborators shared by every route
type Handler struct {
	deps   Deps
	opts   Options
	logger *zap.Logger
}

// NewHandler creates a handler set
func NewHandler(deps Deps, opts Options) *Handler {
	if opts.HealthTimeout <= 0 {
		opts.HealthTimeout = 2 * time.Second
	}
	return &Handler{
		deps:   deps,
		opts:   opts,
		logger: logger.Named("api"),
	}
}

// NewRouter builds the gin engine with middleware and every route
func NewRouter(deps Deps, opts Options) *gin.Engine {
	registerValidators()

	h := NewHandler(deps, opts)

	router := gin.New()
	router.Use(ginLogger(h.logger))
	router.Use(metricsMiddleware())
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(opts.CORSOrigins)))

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.RegisterRoutes(router.Group("/api"))
	return router
}

// RegisterRoutes mounts the /api routes on group
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	authGroup := group.Group("/auth")
	{
		authGroup.POST("/signup", h.Signup)
		authGroup.GET("/verify", h.Verify)
		authGroup.POST("/login", h.Login)
	}

	requireAuth := auth.RequireAuth(h.deps.Tokens)

	recipes := group.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/search", h.SearchRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", requireAuth, h.CreateRecipe)
		recipes.POST("/:id/image", requireAuth, h.UploadRecipeImage)
		recipes.POST("/:id/interactions", requireAuth, h.RecordInteraction)
		recipes.DELETE("/:id/interactions/:kind", requireAuth, h.RemoveInteraction)
		recipes.POST("/:id/rating", requireAuth, h.RateRecipe)
	}

	me := group.Group("/me", requireAuth)
	{
		me.GET("/recipes", h.ListMyRecipes)

		me.GET("/profile", h.GetProfile)
		me.PUT("/profile", h.UpdateProfile)
		me.GET("/preferences", h.GetPreferences)
		me.PUT("/preferences", h.UpdatePreferences)
		me.GET("/survey", h.GetSurvey)
		me.PUT("/survey", h.SaveSurvey)

		me.GET("/fridge", h.ListFridgeItems)
		me.POST("/fridge", h.AddFridgeItem)
		me.PATCH("/fridge/:id", h.UpdateFridgeItem)
		me.DELETE("/fridge/:id", h.RemoveFridgeItem)

		me.GET("/shopping", h.ListShoppingItems)
		me.POST("/shopping", h.AddShoppingItem)
		me.DELETE("/shopping", h.ClearCheckedShoppingItems)
		me.PATCH("/shopping/:id", h.UpdateShoppingItem)
		me.DELETE("/shopping/:id", h.RemoveShoppingItem)
		me.POST("/shopping/:id/toggle", h.ToggleShoppingItem)
		me.POST("/shopping/from-recipe/:id", h.AddMissingIngredients)

		me.GET("/recommendations", h.RecommendForUser)
		me.GET("/recommendations/fridge", h.RecommendFromFridge)
	}

	group.POST("/import", requireAuth, h.ImportRecipes)
	group.POST("/vision/classify", requireAuth, h.ClassifyImage)
}

// Health reports whether the graph store answers
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.opts.HealthTimeout)
	defer cancel()

	if err := h.deps.Store.Ping(ctx); err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
