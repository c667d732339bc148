package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/tournament-engine/config"
	"github.com/Dosada05/tournament-engine/db"
	"github.com/Dosada05/tournament-engine/handlers"
	"github.com/Dosada05/tournament-engine/metrics"
	"github.com/Dosada05/tournament-engine/progression"
	"github.com/Dosada05/tournament-engine/realtime"
	"github.com/Dosada05/tournament-engine/repositories"
	api "github.com/Dosada05/tournament-engine/routes"
	"github.com/Dosada05/tournament-engine/services"
	"github.com/Dosada05/tournament-engine/storage"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", "err", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           cfg.LogLevel,
		Formatter:       cfg.Formatter(),
		ReportTimestamp: true,
	})
	log.SetDefault(logger)
	logger.Info("configuration loaded", "port", cfg.ServerPort, "log_level", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBTimeout, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", "err", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", "err", err)
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(ctx, dbConn); err != nil {
		logger.Fatal("failed to apply migrations", "err", err)
	}
	if version, err := db.MigrationVersion(ctx, dbConn); err == nil {
		logger.Info("database schema up to date", "version", version)
	}

	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		uploader, err = storage.NewR2Uploader(ctx, cfg.R2, logger)
		if err != nil {
			logger.Fatal("failed to initialize Cloudflare R2 uploader", "err", err)
		}
		logger.Info("Cloudflare R2 uploader initialized", "bucket", cfg.R2.BucketName)
	} else {
		logger.Warn("R2 is not configured, tournament archiving is disabled")
	}

	hub := realtime.NewHub(logger)
	go hub.Run(ctx)
	logger.Info("WebSocket hub started")

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	controller := progression.NewController(logger)
	metricsService := metrics.NewService()

	tournamentService := services.NewTournamentService(tournamentRepo, controller, uploader, hub, metricsService, logger)
	matchService := services.NewMatchService(tournamentRepo, controller, hub, metricsService, logger)

	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	matchHandler := handlers.NewMatchHandler(matchService)
	webSocketHandler := handlers.NewWebSocketHandler(hub, tournamentService, cfg.AllowedOrigins, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router,
		api.Options{
			JWTSecret:      []byte(cfg.JWTSecretKey),
			AllowedOrigins: cfg.AllowedOrigins,
			Metrics:        metrics.NewMetricsHandler(),
		},
		tournamentHandler,
		matchHandler,
		webSocketHandler,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", "address", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "err", err)
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", "err", closeErr)
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
