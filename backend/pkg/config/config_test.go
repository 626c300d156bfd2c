package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "recipe-graph/backend/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4jURI)
	assert.Equal(t, 5, cfg.Neo4jConnectAttempts)
	assert.Equal(t, 2*time.Second, cfg.Neo4jConnectBackoff)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
	assert.True(t, cfg.RequireEmailVerification)
	assert.Equal(t, "log", cfg.MailDriver)
	assert.Equal(t, "none", cfg.VisionDriver)
	assert.Equal(t, 25, cfg.CatalogPageSize)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ENV", "production")
	t.Setenv("NEO4J_CONNECT_ATTEMPTS", "9")
	t.Setenv("QUERY_TIMEOUT", "3s")
	t.Setenv("REQUIRE_EMAIL_VERIFICATION", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9, cfg.Neo4jConnectAttempts)
	assert.Equal(t, 3*time.Second, cfg.QueryTimeout)
	assert.False(t, cfg.RequireEmailVerification)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CATALOG_PAGE_SIZE", "lots")
	t.Setenv("JWT_TTL", "forever")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.CatalogPageSize)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Neo4jURI: "bolt://x", Neo4jUser: "neo4j", Neo4jPassword: "pw", JWTSecret: "s",
			Neo4jConnectAttempts: 1, MailDriver: "log", VisionDriver: "none",
		}
	}
	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.JWTSecret = ""
	err := cfg.Validate()
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConfig))

	cfg = valid()
	cfg.MailDriver = "ses"
	assert.True(t, apperrors.IsErrorType(cfg.Validate(), apperrors.ErrorTypeConfig))
	cfg.SESFromEmail = "noreply@example.com"
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.VisionDriver = "openai"
	assert.Error(t, cfg.Validate())
	cfg.OpenAIAPIKey = "sk-test"
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.VisionDriver = "onnx"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Neo4jConnectAttempts = 0
	assert.Error(t, cfg.Validate())
}
