package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lumina/backend/ai"
	"lumina/backend/cache"
	"lumina/backend/config"
	"lumina/backend/routes"
	"lumina/backend/utils"
)

const shutdownTimeout = 10 * time.Second

func runServe() error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// Initialize logger
	logger := utils.InitLogger(utils.LoggerConfig{
		Format:       cfg.LogFormat,
		Output:       os.Stdout,
		EnableColors: cfg.LogColors,
	})

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := utils.CloseDB(db); err != nil {
			logger.Printf("Error closing database: %v", err)
		}
	}()
	if err := utils.Migrate(db); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Leaderboard cache is optional
	var lbCache *cache.LeaderboardCache
	if cfg.RedisURL != "" {
		lbCache, err = cache.Connect(ctx, cfg.RedisURL, cfg.LeaderboardCacheTTL)
		if err != nil {
			logger.Printf("Leaderboard cache disabled: %v", err)
			lbCache = nil
		} else {
			defer lbCache.Close()
		}
	}

	if cfg.GeminiAPIKey == "" {
		logger.Println("GEMINI_API_KEY is not set, assessments and tutor answers will fail")
	}
	generator := ai.NewGeminiClient(ai.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.GeminiTimeout,
	})

	app := routes.NewApp(routes.Services{
		DB:     db,
		Cfg:    cfg,
		AI:     generator,
		Cache:  lbCache,
		Logger: logger,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("Listening on :%s", cfg.ServerPort)
		errCh <- app.Listen(":" + cfg.ServerPort)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Println("Shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	}
}

func runMigrate() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	db, err := utils.InitDB(cfg)
	if err != nil {
		return err
	}
	defer utils.CloseDB(db)

	if err := utils.Migrate(db); err != nil {
		return err
	}
	fmt.Println("Database schema is up to date")
	return nil
}
