package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/station-climatology/internal/domain"
	"github.com/couchcryptid/station-climatology/internal/observability"
)

// ClimatologyAggregator implements Aggregator with domain.Summarize.
type ClimatologyAggregator struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAggregator creates a ClimatologyAggregator.
func NewAggregator(logger *slog.Logger, metrics *observability.Metrics) *ClimatologyAggregator {
	return &ClimatologyAggregator{
		logger:  logger,
		metrics: metrics,
	}
}

func (a *ClimatologyAggregator) Aggregate(_ context.Context, station string, history []domain.Observation) (domain.Climatology, error) {
	start := time.Now()

	summary, err := domain.Summarize(station, history)
	if err != nil {
		return domain.Climatology{}, err
	}

	a.metrics.AggregationDuration.Observe(time.Since(start).Seconds())
	a.logger.Debug("climatology computed",
		"station", station,
		"records", summary.Records,
		"month_only", summary.MonthOnly,
		"skipped", summary.Skipped,
		"days", len(summary.Days),
		"months", len(summary.Months),
	)
	return summary, nil
}
