package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfnunez/avisia-utm-builder/internal/auth"
	"github.com/mfnunez/avisia-utm-builder/internal/config"
	"github.com/mfnunez/avisia-utm-builder/internal/handler"
	"github.com/mfnunez/avisia-utm-builder/internal/repository"
	"github.com/mfnunez/avisia-utm-builder/internal/service"
	"go.uber.org/zap"
)

func main() {
	// Configuration is fatal by design: without OAuth secrets the app
	// must not come up at all.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	db, err := repository.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	redis, err := repository.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redis.Close()
	logger.Info("Connected to Redis")

	campaignRepo := repository.NewCampaignRepository(db)
	sessionRepo := repository.NewSessionRepository(redis)

	historyService := service.NewHistoryService(campaignRepo, logger)

	// OIDC discovery round-trips to the provider
	discoveryCtx, cancelDiscovery := context.WithTimeout(context.Background(), 10*time.Second)
	authenticator, err := auth.NewGoogleAuthenticator(discoveryCtx, cfg.OAuth)
	cancelDiscovery()
	if err != nil {
		logger.Fatal("Failed to initialize OAuth", zap.Error(err))
	}
	logger.Info("OAuth provider initialized", zap.String("redirect_url", cfg.OAuth.RedirectURL))

	router := handler.NewRouter(historyService, sessionRepo, authenticator, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
