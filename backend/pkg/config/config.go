package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "recipe-graph/backend/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	// App
	Port          string
	Env           string
	PublicBaseURL string
	CORSOrigins   []string

	// Neo4j
	Neo4jURI             string
	Neo4jUser            string
	Neo4jPassword        string
	Neo4jDatabase        string
	Neo4jConnectAttempts int
	Neo4jConnectBackoff  time.Duration
	QueryTimeout         time.Duration

	// Auth
	JWTSecret                string
	JWTTTL                   time.Duration
	RequireEmailVerification bool

	// Mail and image hosting
	MailDriver   string // log, ses
	SESFromEmail string
	AWSRegion    string
	S3Bucket     string
	S3PublicURL  string

	// Third-party recipe catalog
	CatalogBaseURL  string
	CatalogAPIKey   string
	CatalogPageSize int

	// Image classification
	VisionDriver     string // none, serving, openai
	VisionServingURL string
	VisionModelName  string
	VisionLabelsFile string
	VisionInputSize  int
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:                     getEnv("PORT", "8080"),
		Env:                      getEnv("ENV", "development"),
		PublicBaseURL:            getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		CORSOrigins:              getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		Neo4jURI:                 getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:                getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:            getEnv("NEO4J_PASSWORD", "password"),
		Neo4jDatabase:            getEnv("NEO4J_DATABASE", ""),
		Neo4jConnectAttempts:     getEnvInt("NEO4J_CONNECT_ATTEMPTS", 5),
		Neo4jConnectBackoff:      getEnvDuration("NEO4J_CONNECT_BACKOFF", 2*time.Second),
		QueryTimeout:             getEnvDuration("QUERY_TIMEOUT", 10*time.Second),
		JWTSecret:                getEnv("JWT_SECRET", ""),
		JWTTTL:                   getEnvDuration("JWT_TTL", 72*time.Hour),
		RequireEmailVerification: getEnvBool("REQUIRE_EMAIL_VERIFICATION", true),
		MailDriver:               getEnv("MAIL_DRIVER", "log"),
		SESFromEmail:             getEnv("SES_FROM_EMAIL", ""),
		AWSRegion:                getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:                 getEnv("S3_BUCKET", ""),
		S3PublicURL:              getEnv("S3_PUBLIC_URL", ""),
		CatalogBaseURL:           getEnv("CATALOG_BASE_URL", "https://api.spoonacular.com"),
		CatalogAPIKey:            getEnv("CATALOG_API_KEY", ""),
		CatalogPageSize:          getEnvInt("CATALOG_PAGE_SIZE", 25),
		VisionDriver:             getEnv("VISION_DRIVER", "none"),
		VisionServingURL:         getEnv("VISION_SERVING_URL", "http://localhost:8501"),
		VisionModelName:          getEnv("VISION_MODEL_NAME", "food_classifier"),
		VisionLabelsFile:         getEnv("VISION_LABELS_FILE", ""),
		VisionInputSize:          getEnvInt("VISION_INPUT_SIZE", 224),
		OpenAIAPIKey:             getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:            getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:              getEnv("OPENAI_MODEL", "gpt-4o-mini"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_URI")
	}
	if c.Neo4jUser == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_USER")
	}
	if c.Neo4jPassword == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_PASSWORD")
	}
	if c.JWTSecret == "" {
		return apperrors.NewConfigMissingRequired("JWT_SECRET")
	}
	if c.Neo4jConnectAttempts < 1 {
		return fmt.Errorf("NEO4J_CONNECT_ATTEMPTS must be at least 1")
	}
	switch c.MailDriver {
	case "log":
	case "ses":
		if c.SESFromEmail == "" {
			return apperrors.NewConfigMissingRequired("SES_FROM_EMAIL")
		}
	default:
		return fmt.Errorf("unknown MAIL_DRIVER %q", c.MailDriver)
	}
	switch c.VisionDriver {
	case "none", "serving":
	case "openai":
		if c.OpenAIAPIKey == "" {
			return apperrors.NewConfigMissingRequired("OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown VISION_DRIVER %q", c.VisionDriver)
	}
	// S3 and the catalog key are optional; their endpoints report errors when unset
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
