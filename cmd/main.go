package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/opendraw/draw-engine/brackets"
	"github.com/opendraw/draw-engine/config"
	"github.com/opendraw/draw-engine/db"
	"github.com/opendraw/draw-engine/handlers"
	"github.com/opendraw/draw-engine/repositories"
	api "github.com/opendraw/draw-engine/routes"
	"github.com/opendraw/draw-engine/services"
	"github.com/opendraw/draw-engine/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, db.Options{})
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	bracketRepo := repositories.NewPostgresBracketRepository(dbConn)
	ledgerRepo := repositories.NewPostgresLedgerRepository(dbConn)
	rosterRepo := repositories.NewPostgresRosterRepository(dbConn)
	leagueRepo := repositories.NewPostgresLeagueRepository(dbConn)
	logger.Info("Repositories initialized")

	seedingEngine := brackets.NewSeedingEngine(logger, cfg.SeedingStrict)
	byeManager := brackets.NewByeManager(logger)
	propagationEngine := brackets.NewPropagationEngine(logger)
	materializer := services.NewMaterializer(ledgerRepo, propagationEngine, logger)

	bracketService := services.NewBracketService(
		dbConn,
		bracketRepo,
		rosterRepo,
		ledgerRepo,
		materializer,
		seedingEngine,
		byeManager,
		wsHub,
		logger,
	)
	matchService := services.NewMatchService(
		dbConn,
		bracketRepo,
		ledgerRepo,
		materializer,
		propagationEngine,
		wsHub,
		logger,
	)
	leagueService := services.NewLeagueService(dbConn, leagueRepo, ledgerRepo, wsHub, logger)
	mediaService := services.NewMediaService(dbConn, bracketRepo, uploader, wsHub, logger)
	logger.Info("Services initialized")

	authHandler := handlers.NewAuthHandler(cfg)
	bracketHandler := handlers.NewBracketHandler(bracketService)
	matchHandler := handlers.NewMatchHandler(matchService)
	leagueHandler := handlers.NewLeagueHandler(leagueService)
	mediaHandler := handlers.NewMediaHandler(mediaService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		[]byte(cfg.JWTSecretKey),
		authHandler,
		bracketHandler,
		matchHandler,
		leagueHandler,
		mediaHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
