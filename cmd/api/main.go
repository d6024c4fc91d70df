package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"shopkit/internal/httpapi"
	"shopkit/internal/webhook"
	"shopkit/pkg/config"
	"shopkit/pkg/db"
	"shopkit/pkg/shopify"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "shopkit").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(lvl)
	}
	cfg.Shopify.APIVersion = shopify.ResolveAPIVersion(cfg.Shopify.APIVersion, time.Now())
	if cfg.BypassValidate != 0 {
		logger.Warn().Int64("store_id", cfg.BypassValidate).Msg("request verification bypassed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("db open")
	}
	defer conn.Close()

	if cfg.MigrationsPath != "" {
		if err := db.Migrate(cfg.MigrationsPath, cfg); err != nil {
			logger.Fatal().Err(err).Msg("migrate")
		}
	}

	var dedupe webhook.Deduper
	if cfg.RedisURL != "" {
		rd, err := webhook.NewRedisDeduper(cfg.RedisURL, "shopkit")
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer rd.Close()
		dedupe = rd
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:      cfg,
		DB:       conn,
		Logger:   logger,
		Dedupe:   dedupe,
		Registry: reg,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("api_version", cfg.Shopify.APIVersion).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http serve")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
}
