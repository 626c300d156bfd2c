package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-graph/backend/internal/adapter"
	"recipe-graph/backend/internal/api"
	"recipe-graph/backend/internal/auth"
	"recipe-graph/backend/internal/graph"
	"recipe-graph/backend/internal/importer"
	"recipe-graph/backend/internal/mailer"
	"recipe-graph/backend/internal/recommend"
	"recipe-graph/backend/internal/storage"
	"recipe-graph/backend/internal/vision"
	"recipe-graph/backend/pkg/config"
	"recipe-graph/backend/pkg/logger"
)

const catalogSource = "spoonacular"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...", zap.String("env", cfg.Env))

	ctx := context.Background()

	// Connect to Neo4j, waiting for it to come up
	driver, err := graph.Connect(ctx, graph.ConnectOptions{
		URI:            cfg.Neo4jURI,
		User:           cfg.Neo4jUser,
		Password:       cfg.Neo4jPassword,
		MaxAttempts:    cfg.Neo4jConnectAttempts,
		InitialBackoff: cfg.Neo4jConnectBackoff,
	}, log)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}

	graphRepo := graph.NewRepository(driver,
		graph.WithDatabase(cfg.Neo4jDatabase),
		graph.WithQueryTimeout(cfg.QueryTimeout),
	)
	defer graphRepo.Close()

	if err := graphRepo.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure schema", zap.Error(err))
	}

	// Initialize dependencies
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to load AWS configuration", zap.Error(err))
	}

	classifier, err := newClassifier(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize image classifier", zap.Error(err))
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	accounts := auth.NewService(graphRepo, tokens, newMailer(cfg, awsCfg, log), auth.Options{
		PublicBaseURL:            cfg.PublicBaseURL,
		RequireEmailVerification: cfg.RequireEmailVerification,
	})

	catalog := importer.NewCatalogClient(cfg.CatalogBaseURL, cfg.CatalogAPIKey, &http.Client{Timeout: 20 * time.Second}, log.Named("catalog"))

	deps := api.Deps{
		Store:       graphRepo,
		Accounts:    accounts,
		Tokens:      tokens,
		Recommender: recommend.NewEngine(graphRepo),
		Importer:    importer.NewImporter(catalog, graphRepo, cfg.CatalogPageSize, catalogSource),
		Classifier:  classifier,
	}
	if host := newImageHost(cfg, awsCfg, log); host != nil {
		deps.Images = host
	}

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(deps, api.Options{CORSOrigins: cfg.CORSOrigins})

	// Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// loadAWSConfig returns nil when neither SES nor S3 is configured
func loadAWSConfig(ctx context.Context, cfg *config.Config) (*aws.Config, error) {
	if cfg.MailDriver != "ses" && cfg.S3Bucket == "" {
		return nil, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, err
	}
	return &awsCfg, nil
}

func newMailer(cfg *config.Config, awsCfg *aws.Config, log *zap.Logger) mailer.Mailer {
	if cfg.MailDriver == "ses" && awsCfg != nil {
		return mailer.NewSESMailer(ses.NewFromConfig(*awsCfg), cfg.SESFromEmail, log.Named("mailer"))
	}
	return mailer.NewLogMailer(log.Named("mailer"))
}

// newImageHost returns nil when no bucket is configured
func newImageHost(cfg *config.Config, awsCfg *aws.Config, log *zap.Logger) storage.ImageHost {
	if cfg.S3Bucket == "" || awsCfg == nil {
		log.Warn("S3_BUCKET not set, recipe image uploads are disabled")
		return nil
	}
	return storage.NewS3ImageHost(s3.NewFromConfig(*awsCfg), cfg.S3Bucket, cfg.S3PublicURL, log.Named("storage"))
}

func newClassifier(cfg *config.Config, log *zap.Logger) (vision.Classifier, error) {
	var labels []string
	if cfg.VisionLabelsFile != "" {
		loaded, err := vision.LoadLabels(cfg.VisionLabelsFile)
		if err != nil {
			return nil, err
		}
		labels = loaded
	}

	switch cfg.VisionDriver {
	case "serving":
		return vision.NewServingClassifier(cfg.VisionServingURL, cfg.VisionModelName, cfg.VisionInputSize, labels,
			&http.Client{Timeout: 30 * time.Second}, log.Named("vision")), nil
	case "openai":
		llm := adapter.NewLLMAdapter(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
		return vision.NewOpenAIClassifier(llm, cfg.VisionInputSize, labels, log.Named("vision")), nil
	default:
		log.Info("Image classification disabled")
		return vision.Disabled{}, nil
	}
}
