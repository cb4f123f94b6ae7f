package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/station-climatology/internal/domain"
	"github.com/couchcryptid/station-climatology/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Aggregator computes a station climatology from its full observation history.
type Aggregator interface {
	Aggregate(ctx context.Context, station string, history []domain.Observation) (domain.Climatology, error)
}

// BatchLoader writes multiple climatologies to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, summaries []domain.Climatology) error
}

// HistoryStore accumulates observations per station.
type HistoryStore interface {
	Add(obs domain.Observation) (bool, error)
	Observations(station string) []domain.Observation
	Len() int
}

// SummaryStore keeps the latest climatology per station for readers.
type SummaryStore interface {
	Put(summary domain.Climatology)
}

// Pipeline orchestrates the extract-aggregate-load loop.
type Pipeline struct {
	extractor  BatchExtractor
	aggregator Aggregator
	loader     BatchLoader
	history    HistoryStore
	summaries  SummaryStore
	logger     *slog.Logger
	metrics    *observability.Metrics
	ready      atomic.Bool
	batchSize  int
}

// New creates a Pipeline with the given stages, state, and observability.
func New(e BatchExtractor, a Aggregator, l BatchLoader, history HistoryStore, summaries SummaryStore, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:  e,
		aggregator: a,
		loader:     l,
		history:    history,
		summaries:  summaries,
		logger:     logger,
		metrics:    metrics,
		batchSize:  batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has published at least one
// climatology, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not published any climatology yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one extract-aggregate-load cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.ObservationsConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = 200 * time.Millisecond

	loaded, ok := p.aggregateAndLoad(ctx, rawBatch, backoff, maxBackoff)
	if !ok {
		return false
	}

	if loaded > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	return true
}

// aggregateAndLoad records each observation, recomputes the climatology of
// every station the batch touched, loads the results, and commits offsets.
// Returns the number of loaded climatologies and false if the pipeline should stop.
func (p *Pipeline) aggregateAndLoad(ctx context.Context, rawBatch []domain.RawEvent, backoff *time.Duration, maxBackoff time.Duration) (int, bool) {
	accepted := make([]domain.RawEvent, 0, len(rawBatch))
	var touched []string
	seen := make(map[string]bool)

	for _, raw := range rawBatch {
		obs, err := domain.ParseObservation(raw)
		if err != nil {
			p.logger.Warn("parse failed, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.ParseErrors.Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		if !obs.Keyed() {
			p.metrics.RecordsSkipped.Inc()
		}

		if _, err := p.history.Add(obs); err != nil {
			p.logger.Warn("history rejected observation",
				"error", err,
				"station", obs.Station,
				"offset", raw.Offset,
			)
			p.commitOffset(ctx, raw)
			continue
		}

		accepted = append(accepted, raw)
		if !seen[obs.Station] {
			seen[obs.Station] = true
			touched = append(touched, obs.Station)
		}
	}
	p.metrics.StationsTracked.Set(float64(p.history.Len()))

	out := make([]domain.Climatology, 0, len(touched))
	for _, station := range touched {
		summary, err := p.aggregator.Aggregate(ctx, station, p.history.Observations(station))
		if err != nil {
			p.logger.Error("aggregation failed", "error", err, "station", station)
			p.metrics.AggregationErrors.Inc()
			continue
		}
		p.summaries.Put(summary)
		out = append(out, summary)
	}

	if len(out) == 0 {
		for _, raw := range accepted {
			p.commitOffset(ctx, raw)
		}
		return 0, true
	}

	if err := p.loader.LoadBatch(ctx, out); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(out))
		return 0, p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	p.metrics.SummariesProduced.Add(float64(len(out)))

	for _, raw := range accepted {
		p.commitOffset(ctx, raw)
	}

	return len(out), true
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !retry.SleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = retry.NextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}
