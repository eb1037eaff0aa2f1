package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cliplens/cliplens/config"
	"github.com/cliplens/cliplens/credentials"
	"github.com/cliplens/cliplens/handlers/api"
	"github.com/cliplens/cliplens/logger"
	"github.com/cliplens/cliplens/prompt"
	"github.com/cliplens/cliplens/repository/sqlite"
	"github.com/cliplens/cliplens/services/analysis"
	"github.com/cliplens/cliplens/services/review"
	"github.com/cliplens/cliplens/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.Init(cfg.LogDir, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := sqlite.InitDB(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repo, err := sqlite.NewRepository(context.Background(), db)
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}
	defer repo.Close()

	credStore, err := credentials.NewFileStore(cfg.CredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize credential store: %v", err)
	}

	guidelines, err := prompt.LoadGuidelines(cfg.GuidelinesPath)
	if err != nil {
		log.Fatalf("Failed to load prompt guidelines: %v", err)
	}
	prompts := prompt.NewBuilder(guidelines)

	var archive analysis.Archiver
	if cfg.Archive.Enabled {
		spaces, err := storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Region:    cfg.Archive.Region,
			Endpoint:  cfg.Archive.Endpoint,
			Bucket:    cfg.Archive.Bucket,
		})
		if err != nil {
			log.Fatalf("Failed to initialize archive storage: %v", err)
		}
		archive = spaces
	}

	analysisService := analysis.NewService(
		repo,
		prompts,
		review.NewEngine(prompts),
		credStore,
		archive,
		analysis.Config{
			CallTimeout:    cfg.Analysis.CallTimeout,
			MaxAttempts:    cfg.Analysis.MaxAttempts,
			RetryDelay:     cfg.Analysis.RetryDelay,
			ImproveTimeout: cfg.Analysis.ImproveTimeout,
			Temperature:    cfg.Analysis.Temperature,
			MaxTokens:      cfg.Analysis.MaxTokens,
		},
	)

	server := api.NewServer(cfg,
		api.WithServices(analysisService),
		api.WithLogger(appLogger),
	)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			appLogger.WithError(err).Error("Server shutdown error")
		}
	}()

	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
