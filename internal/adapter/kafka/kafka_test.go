package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/station-climatology/internal/config"
	"github.com/couchcryptid/station-climatology/internal/domain"
	"github.com/couchcryptid/station-climatology/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessageWriter struct {
	err    error
	calls  int
	writes [][]kafkago.Message
}

func (f *fakeMessageWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, msgs)
	return nil
}

func (f *fakeMessageWriter) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		KafkaSinkTopic:      "station-climatology",
		SinkBreakerFailures: 2,
		SinkBreakerTimeout:  time.Minute,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("USW00094728"),
		Value:     []byte(`{"station":"USW00094728","year":2020}`),
		Topic:     "weather-observations",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("ghcnd")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("USW00094728"), raw.Key)
	assert.JSONEq(t, `{"station":"USW00094728","year":2020}`, string(raw.Value))
	assert.Equal(t, "weather-observations", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "ghcnd", raw.Headers["source"])
	assert.Nil(t, raw.Commit)
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	summary := domain.Climatology{
		Station:    "USW00094728",
		Records:    3,
		ComputedAt: now,
	}

	msg, err := serializeToMessage(summary)
	require.NoError(t, err)

	assert.Equal(t, []byte("USW00094728"), msg.Key)
	assert.Contains(t, string(msg.Value), `"station":"USW00094728"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "station", msg.Headers[0].Key)
	assert.Equal(t, []byte("USW00094728"), msg.Headers[0].Value)
	assert.Equal(t, "computed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)

	var decoded domain.Climatology
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, 3, decoded.Records)
}

func TestWriter_LoadBatch(t *testing.T) {
	fake := &fakeMessageWriter{}
	w := newWriter(fake, testConfig(), discardLogger(), observability.NewMetricsForTesting())

	err := w.LoadBatch(context.Background(), []domain.Climatology{
		{Station: "A"},
		{Station: "B"},
	})
	require.NoError(t, err)

	require.Len(t, fake.writes, 1)
	require.Len(t, fake.writes[0], 2)
	assert.Equal(t, []byte("A"), fake.writes[0][0].Key)
	assert.Equal(t, []byte("B"), fake.writes[0][1].Key)
}

func TestWriter_LoadBatch_Empty(t *testing.T) {
	fake := &fakeMessageWriter{}
	w := newWriter(fake, testConfig(), discardLogger(), observability.NewMetricsForTesting())

	require.NoError(t, w.LoadBatch(context.Background(), nil))
	assert.Zero(t, fake.calls)
}

func TestWriter_LoadBatch_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	brokerErr := errors.New("leader not available")
	fake := &fakeMessageWriter{err: brokerErr}
	metrics := observability.NewMetricsForTesting()
	w := newWriter(fake, testConfig(), discardLogger(), metrics)
	batch := []domain.Climatology{{Station: "A"}}

	err := w.LoadBatch(context.Background(), batch)
	require.ErrorIs(t, err, brokerErr)
	err = w.LoadBatch(context.Background(), batch)
	require.ErrorIs(t, err, brokerErr)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.SinkBreakerOpen), 1e-9)

	err = w.LoadBatch(context.Background(), batch)
	require.ErrorIs(t, err, ErrSinkUnavailable)
	assert.Equal(t, 2, fake.calls, "open breaker must not reach the broker")
}
