package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// In-memory state.
	SummaryCacheSize   int
	HistoryMaxStations int // 0 = unlimited

	// Public read API.
	APIRateLimit float64
	APIRateBurst int

	// Sink circuit breaker.
	SinkBreakerFailures int
	SinkBreakerTimeout  time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is loaded first when present; it never
// overrides variables already set in the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	breakerTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("SINK_BREAKER_TIMEOUT", "30s"))
	if err != nil || breakerTimeout <= 0 {
		return nil, errors.New("invalid SINK_BREAKER_TIMEOUT")
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("API_RATE_LIMIT", "20"), 64)
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid API_RATE_LIMIT")
	}

	maxStations, err := strconv.Atoi(sharedcfg.EnvOrDefault("HISTORY_MAX_STATIONS", "0"))
	if err != nil || maxStations < 0 {
		return nil, errors.New("invalid HISTORY_MAX_STATIONS")
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "weather-observations"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "station-climatology"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "station-climatology"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		SummaryCacheSize:   parsePositiveInt("SUMMARY_CACHE_SIZE", 1000),
		HistoryMaxStations: maxStations,

		APIRateLimit: rateLimit,
		APIRateBurst: parsePositiveInt("API_RATE_BURST", 40),

		SinkBreakerFailures: parsePositiveInt("SINK_BREAKER_FAILURES", 5),
		SinkBreakerTimeout:  breakerTimeout,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.KafkaSourceTopic == cfg.KafkaSinkTopic {
		return nil, errors.New("KAFKA_SOURCE_TOPIC and KAFKA_SINK_TOPIC must differ")
	}

	return cfg, nil
}

// parsePositiveInt falls back to def when the variable is unset or not a positive integer.
func parsePositiveInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}
