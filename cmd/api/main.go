package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marvelous/internal/catalog"
	"marvelous/internal/comic"
	"marvelous/internal/config"
	"marvelous/internal/enrichment"
	"marvelous/internal/logger"
	"marvelous/internal/person"
	"marvelous/internal/platform/cache"
	"marvelous/internal/platform/marvel"
	"marvelous/internal/store"

	"github.com/rs/zerolog/log"
)

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		logger.Init(os.Getenv("APP_ENV"), "")
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(cfg.App.Env, cfg.App.LogLevel)

	ctx := context.Background()
	dbPool, err := store.Open(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}
	defer dbPool.Close()
	log.Info().Str("dsn", store.RedactDSN(cfg.DB.DSN)).Msg("database connection OK")

	clientOpts := []marvel.Option{}
	checks := []readyCheck{dbPool.Ping}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, continuing without cache")
		} else {
			clientOpts = append(clientOpts, marvel.WithCache(redisCache, cfg.Redis.CacheTTL))
			checks = append(checks, redisCache.Ping)
			log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.CacheTTL).Msg("remote response cache enabled")
		}
	}

	marvelClient := marvel.NewClient(marvel.Config{
		BaseURL:    cfg.Marvel.BaseURL,
		PublicKey:  cfg.Marvel.PublicKey,
		PrivateKey: cfg.Marvel.PrivateKey,
		Timeout:    cfg.Marvel.Timeout,
	}, clientOpts...)

	personRepo := person.NewPostgresRepo(dbPool, cfg.DB.Timeout)
	comicRepo := comic.NewPostgresRepo(dbPool, cfg.DB.Timeout)
	runRepo := enrichment.NewPostgresRepo(dbPool, cfg.DB.Timeout)

	personSvc := person.NewService(personRepo)
	enrichmentSvc := enrichment.NewService(marvelClient, comicRepo, personSvc, runRepo)
	catalogSvc := catalog.NewService(personRepo, comicRepo)

	router := newRouter(handlers{
		people:     person.NewHTTPHandler(personSvc),
		enrichment: enrichment.NewHTTPHandler(enrichmentSvc),
		catalog:    catalog.NewHTTPHandler(catalogSvc),
	}, checks...)

	httpServer := &http.Server{
		Addr:         cfg.App.Addr,
		Handler:      withMiddleware(router, cfg.App.AllowedOrigins),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.App.Addr).Str("env", cfg.App.Env).Msg("starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
