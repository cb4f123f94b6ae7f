package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/couchcryptid/station-climatology/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Levels(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		level   string
		format  string
		debugOn bool
		infoOn  bool
		warnOn  bool
	}{
		{"debug", "text", true, true, true},
		{"info", "json", false, true, true},
		{"WARN", "json", false, false, true},
		{"verbose", "json", false, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger := NewLogger(&config.Config{LogLevel: tt.level, LogFormat: tt.format})
			require.NotNil(t, logger)

			ctx := context.Background()
			assert.Equal(t, tt.debugOn, logger.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.infoOn, logger.Enabled(ctx, slog.LevelInfo))
			assert.Equal(t, tt.warnOn, logger.Enabled(ctx, slog.LevelWarn))
			assert.Same(t, logger, slog.Default())
		})
	}
}
