package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/DungK5UIT/Beauty-Store/internal/cartsync"
	"github.com/DungK5UIT/Beauty-Store/internal/checkout"
	"github.com/DungK5UIT/Beauty-Store/internal/config"
	"github.com/DungK5UIT/Beauty-Store/internal/httpapi"
	"github.com/DungK5UIT/Beauty-Store/internal/payment"
	"github.com/DungK5UIT/Beauty-Store/internal/session"
	"github.com/DungK5UIT/Beauty-Store/internal/upstream"
)

func newLogger(format string) (*zap.Logger, error) {
	if format == "console" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancel()
		logger.Fatal("redis unreachable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	cancel()

	cartStore := upstream.NewCartStore(cfg.CartStoreURL, cfg.RequestTimeout)
	orderStore := upstream.NewOrderStore(cfg.OrderStoreURL, cfg.RequestTimeout)
	authService := upstream.NewAuthService(cfg.AuthServiceURL, cfg.RequestTimeout)

	sessionStore := session.NewStore(redisClient, cfg.SessionTTL, cfg.PendingOrderTTL)
	sessions := session.NewManager(sessionStore, authService, logger)

	carts := cartsync.NewRegistry(cartStore,
		cartsync.Config{QuiesceWindow: cfg.QuiesceWindow, CommitTimeout: cfg.RequestTimeout},
		logger,
		func(accountID int64) {
			// the synchronizer saw a 401; the stored session is stale
			if err := sessionStore.Delete(context.Background(), accountID); err != nil {
				logger.Warn("failed to drop stale session",
					zap.Int64("account_id", accountID), zap.Error(err))
			}
		})

	orchestrator := checkout.NewOrchestrator(orderStore, sessionStore, logger)
	reconciler := payment.NewReconciler(orderStore, sessionStore, carts, logger)

	api := httpapi.NewAPI(sessions, carts, orchestrator, reconciler, orderStore, cfg.RequestTimeout, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      api.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("storefront starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
