// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

// Command server runs the Insights HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/stillpoint-app/insights/internal/analytics"
	"github.com/stillpoint-app/insights/internal/api"
	"github.com/stillpoint-app/insights/internal/cache"
	"github.com/stillpoint-app/insights/internal/config"
	"github.com/stillpoint-app/insights/internal/logging"
	"github.com/stillpoint-app/insights/internal/warehouse"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("warehouse_url", cfg.Warehouse.URL).
		Str("timezone", cfg.Analytics.Timezone).
		Bool("cache_enabled", cfg.Cache.Enabled).
		Msg("Starting Insights server")

	if cfg.Warehouse.APIKey == "" {
		logging.Warn().Msg("Warehouse API key is not configured; analytics endpoints will return configuration errors until it is set")
	}

	client := warehouse.NewClient(cfg.Warehouse)
	breaker := warehouse.NewCircuitBreakerClient(client)

	svc := analytics.NewService(breaker, cfg.Analytics, cfg.Location())

	var responseCache *cache.Cache
	if cfg.Cache.Enabled {
		responseCache = cache.New(cfg.Cache.TTL)
		defer responseCache.Close()
	}

	handler := api.NewHandler(svc, responseCache, cfg, breaker)
	router := api.NewRouter(handler, &cfg.Server)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	logging.Info().Msg("Server stopped")
	return nil
}
