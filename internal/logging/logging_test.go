package logging

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestL_LazyInit(t *testing.T) {
	assert.NotNil(t, L())
	assert.NotNil(t, With("component", "test"))
}

func TestInit_ReplacesLazyLogger(t *testing.T) {
	lazy := L()

	Init("debug", "production")
	t.Cleanup(func() { Init("info", "dev") })

	got := L()
	assert.NotSame(t, lazy, got)
	assert.True(t, got.Enabled(context.Background(), slog.LevelDebug))
	assert.IsType(t, &slog.JSONHandler{}, got.Handler())
}

func TestL_ConcurrentWithInit(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Init("info", "dev")
		}()
		go func() {
			defer wg.Done()
			assert.NotNil(t, L())
		}()
	}
	wg.Wait()
}
