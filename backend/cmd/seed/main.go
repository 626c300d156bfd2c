package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"recipe-graph/backend/internal/graph"
	"recipe-graph/backend/pkg/config"
	"recipe-graph/backend/pkg/logger"
)

const seedSource = "seed"

func main() {
	reset := flag.Bool("reset", false, "Delete all data before seeding")
	skipConfirm := flag.Bool("y", false, "Skip confirmation prompt")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting seed...")

	if *reset && !*skipConfirm {
		log.Warn("WARNING: -reset will DELETE ALL DATA from Neo4j!")
		// Use fmt.Print for user input prompt (needs to go to stdout)
		fmt.Print("Are you sure you want to continue? (yes/no): ")
		var response string
		fmt.Scanln(&response)
		if response != "yes" && response != "y" {
			log.Info("Aborted.")
			os.Exit(0)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
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

	repo := graph.NewRepository(driver,
		graph.WithDatabase(cfg.Neo4jDatabase),
		graph.WithQueryTimeout(cfg.QueryTimeout),
	)
	defer repo.Close()

	if *reset {
		log.Info("Step 1: Deleting all data from Neo4j...")
		if err := repo.Reset(ctx); err != nil {
			log.Fatal("Failed to delete all data", zap.Error(err))
		}
	}

	log.Info("Step 2: Ensuring schema...")
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure schema", zap.Error(err))
	}

	log.Info("Step 3: Loading sample recipes...")
	created, updated := 0, 0
	for _, sample := range sampleRecipes {
		recipe, isNew, err := repo.UpsertRecipeFromImport(ctx, sample.id, seedSource, sample.input, sample.ingredients)
		if err != nil {
			log.Fatal("Failed to seed recipe", zap.String("recipe_id", sample.id), zap.Error(err))
		}
		if isNew {
			created++
		} else {
			updated++
		}
		log.Debug("Seeded recipe", zap.String("recipe_id", recipe.RecipeID), zap.String("name", recipe.Name))
	}

	log.Info("Seed complete", zap.Int("created", created), zap.Int("updated", updated))
}
