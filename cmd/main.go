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

	"github.com/mcoleague/match-center/config"
	"github.com/mcoleague/match-center/db"
	"github.com/mcoleague/match-center/handlers"
	"github.com/mcoleague/match-center/live"
	"github.com/mcoleague/match-center/middleware"
	"github.com/mcoleague/match-center/ocr"
	"github.com/mcoleague/match-center/repositories"
	api "github.com/mcoleague/match-center/routes"
	"github.com/mcoleague/match-center/services"
	"github.com/mcoleague/match-center/storage"
)

// How often the deadline sweep turns expired matches into wo/cancelada.
const sweepInterval = time.Minute

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
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

	leagueLocation, err := time.LoadLocation(cfg.LeagueTimezone)
	if err != nil {
		logger.Error("failed to load league timezone", slog.Any("error", err))
		os.Exit(1)
	}

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

	extractor, err := ocr.NewHTTPExtractor(ocr.HTTPExtractorConfig{
		BaseURL: cfg.OCRBaseURL,
		Timeout: time.Duration(cfg.OCRTimeoutSeconds) * time.Second,
	})
	if err != nil {
		logger.Error("failed to initialize OCR extractor", slog.Any("error", err))
		os.Exit(1)
	}

	hub := live.NewHub()
	go hub.Run()
	logger.Info("live update hub started")

	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	availabilityRepo := repositories.NewPostgresAvailabilityRepository(dbConn)
	performanceRepo := repositories.NewPostgresPerformanceRepository(dbConn)
	clubRepo := repositories.NewPostgresClubRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	logger.Info("repositories initialized")

	slotConfig := services.SlotConfig{
		StepMinutes:     cfg.SlotStepMinutes,
		DurationMinutes: cfg.MatchDurationMinutes,
		MinLeadTime:     time.Duration(cfg.MinLeadTimeMinutes) * time.Minute,
		Location:        leagueLocation,
	}

	authService := services.NewAuthService(dbConn, userRepo, clubRepo)
	schedulingService := services.NewSchedulingService(matchRepo, availabilityRepo, slotConfig)
	matchService := services.NewMatchService(dbConn, matchRepo, performanceRepo, schedulingService, hub, logger)
	reportService := services.NewReportService(matchRepo, playerRepo, matchService, extractor, uploader)
	matchCenterService := services.NewMatchCenterService(matchRepo, clubRepo)
	availabilityService := services.NewAvailabilityService(availabilityRepo, clubRepo)
	logger.Info("services initialized")

	// Deadline sweep: turns expired matches into wo/cancelada. Runs on
	// the same CAS primitive as user actions so it can never
	// double-forfeit a match someone just acted on.
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		logger.Info("deadline sweep started", slog.Duration("interval", sweepInterval))

		for {
			swept, err := matchService.SweepDeadlines(context.Background())
			if err != nil {
				logger.Error("deadline sweep failed", slog.Any("error", err))
			} else if swept > 0 {
				logger.Info("deadline sweep applied forfeits", slog.Int("count", swept))
			}
			<-ticker.C
		}
	}()

	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	matchHandler := handlers.NewMatchHandler(matchService, schedulingService)
	reportHandler := handlers.NewReportHandler(reportService)
	matchCenterHandler := handlers.NewMatchCenterHandler(matchCenterService)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)
	webSocketHandler := handlers.NewWebSocketHandler(hub)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authenticator,
		authHandler,
		matchHandler,
		reportHandler,
		matchCenterHandler,
		availabilityHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
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
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
