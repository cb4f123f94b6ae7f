package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "weather-observations", cfg.KafkaSourceTopic)
	assert.Equal(t, "station-climatology", cfg.KafkaSinkTopic)
	assert.Equal(t, "station-climatology", cfg.KafkaGroupID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
	assert.Equal(t, 1000, cfg.SummaryCacheSize)
	assert.Zero(t, cfg.HistoryMaxStations)
	assert.InDelta(t, 20.0, cfg.APIRateLimit, 1e-9)
	assert.Equal(t, 40, cfg.APIRateBurst)
	assert.Equal(t, 5, cfg.SinkBreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.SinkBreakerTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("SUMMARY_CACHE_SIZE", "250")
	t.Setenv("HISTORY_MAX_STATIONS", "64")
	t.Setenv("API_RATE_LIMIT", "2.5")
	t.Setenv("API_RATE_BURST", "5")
	t.Setenv("SINK_BREAKER_FAILURES", "3")
	t.Setenv("SINK_BREAKER_TIMEOUT", "1m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, 250, cfg.SummaryCacheSize)
	assert.Equal(t, 64, cfg.HistoryMaxStations)
	assert.InDelta(t, 2.5, cfg.APIRateLimit, 1e-9)
	assert.Equal(t, 5, cfg.APIRateBurst)
	assert.Equal(t, 3, cfg.SinkBreakerFailures)
	assert.Equal(t, time.Minute, cfg.SinkBreakerTimeout)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_InvalidBatchFlushInterval(t *testing.T) {
	t.Setenv("BATCH_FLUSH_INTERVAL", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_FLUSH_INTERVAL")
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	t.Setenv("API_RATE_LIMIT", "-1")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_RATE_LIMIT")
}

func TestLoad_InvalidHistoryMaxStations(t *testing.T) {
	t.Setenv("HISTORY_MAX_STATIONS", "lots")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HISTORY_MAX_STATIONS")
}

func TestLoad_InvalidBreakerTimeout(t *testing.T) {
	t.Setenv("SINK_BREAKER_TIMEOUT", "0s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SINK_BREAKER_TIMEOUT")
}

func TestLoad_SameSourceAndSinkTopic(t *testing.T) {
	t.Setenv("KAFKA_SOURCE_TOPIC", "loop")
	t.Setenv("KAFKA_SINK_TOPIC", "loop")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestLoad_BadCacheSizeFallsBack(t *testing.T) {
	t.Setenv("SUMMARY_CACHE_SIZE", "-3")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.SummaryCacheSize)
}
