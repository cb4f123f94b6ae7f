package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/station-climatology/internal/config"
	"github.com/couchcryptid/station-climatology/internal/domain"
	"github.com/couchcryptid/station-climatology/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
)

// ErrSinkUnavailable is returned while the sink circuit breaker is open.
var ErrSinkUnavailable = errors.New("climatology sink unavailable")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces climatology messages to a Kafka topic behind a circuit breaker.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return newWriter(w, cfg, logger, metrics)
}

func newWriter(w messageWriter, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	failures := uint32(cfg.SinkBreakerFailures) //nolint:gosec // validated positive by config
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "kafka-sink",
		MaxRequests: 1,
		Timeout:     cfg.SinkBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			if to == gobreaker.StateOpen {
				metrics.SinkBreakerOpen.Set(1)
			} else {
				metrics.SinkBreakerOpen.Set(0)
			}
		},
	})
	return &Writer{writer: w, breaker: breaker, logger: logger}
}

// LoadBatch serializes and publishes multiple climatologies to the sink topic
// in a single WriteMessages call. Keys are station ids so a station's
// summaries stay on one partition.
func (w *Writer) LoadBatch(ctx context.Context, summaries []domain.Climatology) error {
	if len(summaries) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(summaries))
	for i := range summaries {
		msg, err := serializeToMessage(summaries[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	_, err := w.breaker.Execute(func() (interface{}, error) {
		return nil, w.writer.WriteMessages(ctx, msgs...)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrSinkUnavailable, err)
	}
	return err
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Climatology into a Kafka message.
func serializeToMessage(summary domain.Climatology) (kafkago.Message, error) {
	out, err := domain.SerializeClimatology(summary)
	if err != nil {
		return kafkago.Message{}, err
	}
	return kafkago.Message{
		Key:   out.Key,
		Value: out.Value,
		Headers: []kafkago.Header{
			{Key: "station", Value: []byte(out.Headers["station"])},
			{Key: "computed_at", Value: []byte(out.Headers["computed_at"])},
		},
	}, nil
}
