package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/station-climatology/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/station-climatology/internal/adapter/kafka"
	"github.com/couchcryptid/station-climatology/internal/config"
	"github.com/couchcryptid/station-climatology/internal/observability"
	"github.com/couchcryptid/station-climatology/internal/pipeline"
	"github.com/couchcryptid/station-climatology/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	history := store.NewHistory(cfg.HistoryMaxStations)
	summaries := store.NewSummaryCache(cfg.SummaryCacheSize, metrics.SummaryCache)
	logger.Info("state initialized",
		"summary_cache_size", cfg.SummaryCacheSize,
		"history_max_stations", cfg.HistoryMaxStations,
	)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger, metrics)
	aggregator := pipeline.NewAggregator(logger, metrics)

	p := pipeline.New(reader, aggregator, writer, history, summaries, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, summaries, httpadapter.RateLimit{
		PerSecond: cfg.APIRateLimit,
		Burst:     cfg.APIRateBurst,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start aggregation pipeline.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}

	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
