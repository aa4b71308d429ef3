package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tastebook/cache"
	"tastebook/core"
	"tastebook/core/providers"
	"tastebook/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	config, err := core.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(config.DB.SQLitePath)
	if err != nil {
		logger.Error("failed to initialize sqlite repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("using sqlite database", "path", config.DB.SQLitePath)

	tokenCache, err := cache.NewRedisCache(config.Redis.URL, config.RedisDialTimeout())
	if err != nil {
		logger.Error("failed to initialize redis cache", "error", err)
		os.Exit(1)
	}
	defer tokenCache.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), config.RedisDialTimeout())
	err = tokenCache.Ping(pingCtx)
	cancel()
	if err != nil {
		logger.Error("failed to reach redis", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to redis", "url", config.Redis.URL)

	crypto, err := core.NewCryptoService(config.Auth.EncryptionKey)
	if err != nil {
		logger.Error("failed to initialize crypto service", "error", err)
		os.Exit(1)
	}

	tokens := core.NewTokenIssuer(config)
	google := providers.NewGoogleProvider(&config.Google)

	authService := core.NewAuthService(repo, tokenCache, tokens, crypto, google, logger)
	userService := core.NewUserService(repo)
	server := core.NewServer(authService, userService, config, logger)

	httpServer := &http.Server{
		Addr:    config.ListenAddr,
		Handler: server.Router(),
	}

	go func() {
		logger.Info("starting server", "addr", config.ListenAddr, "production", config.Production)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
