package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"recipe-graph/backend/internal/metrics"
	apperrors "recipe-graph/backend/pkg/errors"
)

// CatalogRecipe is one recipe as the external catalog returns it
type CatalogRecipe struct {
	ID                  int64                `json:"id"`
	Title               string               `json:"title"`
	Instructions        string               `json:"instructions"`
	ReadyInMinutes      int                  `json:"readyInMinutes"`
	Image               string               `json:"image"`
	Cuisines            []string             `json:"cuisines"`
	Diets               []string             `json:"diets"`
	ExtendedIngredients []CatalogIngredient  `json:"extendedIngredients"`
	Nutrition           *CatalogNutritionSet `json:"nutrition,omitempty"`
}

// CatalogIngredient is an ingredient line of a catalog recipe
type CatalogIngredient struct {
	Name      string `json:"name"`
	NameClean string `json:"nameClean"`
}

// CatalogNutritionSet holds per-serving nutrients
type CatalogNutritionSet struct {
	Nutrients []CatalogNutrient `json:"nutrients"`
}

// CatalogNutrient is a single nutrient amount
type CatalogNutrient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

type randomRecipesResponse struct {
	Recipes []CatalogRecipe `json:"recipes"`
}

// Catalog returns random recipes from an external source
type Catalog interface {
	Random(ctx context.Context, n int) ([]CatalogRecipe, error)
}

// CatalogClient calls a Spoonacular-compatible catalog through a circuit breaker
type CatalogClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]CatalogRecipe]
	logger     *zap.Logger
}

// NewCatalogClient creates a catalog client. The breaker opens after five
// consecutive failures and probes again after thirty seconds.
func NewCatalogClient(baseURL, apiKey string, httpClient *http.Client, log *zap.Logger) *CatalogClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}

	metrics.CatalogBreakerState.Set(breakerStateValue(gobreaker.StateClosed))

	c := &CatalogClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     log,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]CatalogRecipe](gobreaker.Settings{
		Name:        "recipe-catalog",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.CatalogBreakerState.Set(breakerStateValue(to))
		},
	})
	return c
}

// Random fetches n random recipes including nutrition data
func (c *CatalogClient) Random(ctx context.Context, n int) ([]CatalogRecipe, error) {
	recipes, err := c.breaker.Execute(func() ([]CatalogRecipe, error) {
		return c.fetchRandom(ctx, n)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Warn("Catalog request rejected by circuit breaker", zap.Error(err))
		}
		return nil, apperrors.NewUpstreamFailure("recipe catalog request", err)
	}
	return recipes, nil
}

func (c *CatalogClient) fetchRandom(ctx context.Context, n int) ([]CatalogRecipe, error) {
	query := url.Values{}
	query.Set("number", strconv.Itoa(n))
	query.Set("includeNutrition", "true")
	query.Set("apiKey", c.apiKey)
	endpoint := c.baseURL + "/recipes/random?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("catalog returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload randomRecipesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	c.logger.Debug("Catalog page fetched", zap.Int("requested", n), zap.Int("received", len(payload.Recipes)))
	return payload.Recipes, nil
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
