package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pressplay-labs/setlist/internal/adapters/lastfm"
	"github.com/pressplay-labs/setlist/internal/adapters/rest"
	"github.com/pressplay-labs/setlist/internal/adapters/spotify"
	"github.com/pressplay-labs/setlist/internal/cache"
	"github.com/pressplay-labs/setlist/internal/config"
	"github.com/pressplay-labs/setlist/internal/core/services"
	"github.com/pressplay-labs/setlist/internal/logging"
	"github.com/pressplay-labs/setlist/internal/metrics"
	"github.com/pressplay-labs/setlist/internal/throttle"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	// 2. Initialize "Driven" Adapters (The Tools)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalogClient := spotify.NewClientCredentials(ctx,
		cfg.Catalog.ClientID, cfg.Catalog.ClientSecret,
		cfg.Catalog.TokenURL, cfg.Catalog.BaseURL)
	tagClient := lastfm.NewClient(nil, cfg.Tags.BaseURL, cfg.Tags.APIKey)

	// 3. Initialize Core Logic (The Driver)
	// Each upstream gets its own throttle so a slow one cannot starve
	// the other.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.New(reg)

	svc := services.NewSynthesizer(catalogClient, tagClient, services.Options{
		CatalogThrottle: throttle.New(cfg.Catalog.Concurrency, cfg.Catalog.QueueCapacity),
		TagThrottle:     throttle.New(cfg.Tags.Concurrency, cfg.Tags.QueueCapacity),
		TagCache:        cache.New(cfg.Cache.MaxSize, cfg.Cache.TTL),
		Miner: services.MinerConfig{
			Strict:        cfg.Miner.Strict,
			MaxCandidates: cfg.Miner.MaxCandidates,
			Market:        cfg.Catalog.Market,
		},
		Jitter:  cfg.Scoring.Jitter,
		Metrics: m,
		Logger:  logger,
	})

	// 4. Initialize "Driving" Adapter (The Interface)
	handler := rest.NewHandler(svc, logger)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/", handler)

	// 5. Start the Server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
	}

	logger.Info().Str("addr", addr).Msg("setlist api listening")

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Fatal().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
	}
}
