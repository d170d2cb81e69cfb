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

	"github.com/rs/zerolog"

	"masapos/backend/internal/cache"
	"masapos/backend/internal/config"
	"masapos/backend/internal/httpapi"
	"masapos/backend/internal/service"
	"masapos/backend/internal/store"
	"masapos/backend/internal/store/memory"
	pgstore "masapos/backend/internal/store/postgres"
	"masapos/backend/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)
	log := logger.Log

	if err := validateConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres unavailable and DATABASE_URL is set; refusing to start with in-memory fallback")
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("postgres schema setup failed")
		}
		repo = pg
		closers = append(closers, pg.Close)
		log.Info().Str("repository", "postgres").Msg("store ready")
	} else {
		repo = memory.NewSeeded()
		log.Info().Str("repository", "in-memory").Msg("store ready")
	}

	reportCache := connectCache(ctx, cfg, log)
	if closer, ok := reportCache.(interface{ Close() error }); ok {
		closers = append(closers, closer.Close)
	}

	svc := service.New(repo, reportCache, service.Options{
		MaxGap:            cfg.SessionMaxGap(),
		ClosingMinItems:   cfg.SessionClosingMinItems,
		DeleteConcurrency: cfg.DeleteConcurrency,
		CacheTTL:          cfg.ReportCacheTTL(),
	})
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, repo)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Address()).
			Dur("session_max_gap", cfg.SessionMaxGap()).
			Int("closing_min_items", cfg.SessionClosingMinItems).
			Msg("sales session backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error().Err(err).Msg("close error")
		}
	}

	log.Info().Msg("server stopped")
}

// connectCache falls back to the noop cache when Redis is not configured or unreachable.
func connectCache(ctx context.Context, cfg config.Config, log zerolog.Logger) cache.ReportCache {
	if cfg.RedisAddr == "" {
		log.Info().Str("cache", "noop").Msg("report cache ready")
		return cache.NoopReportCache{}
	}
	redisCache := cache.NewRedisReportCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := redisCache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, using noop cache")
		_ = redisCache.Close()
		return cache.NoopReportCache{}
	}
	log.Info().Str("cache", "redis").Msg("report cache ready")
	return redisCache
}

func validateConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if cfg.SessionMaxGapMinutes < 1 {
		return fmt.Errorf("SESSION_MAX_GAP_MINUTES must be positive")
	}
	if cfg.SessionClosingMinItems < 0 {
		return fmt.Errorf("SESSION_CLOSING_MIN_ITEMS must not be negative")
	}
	return nil
}
