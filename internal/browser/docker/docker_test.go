package docker_test

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/leetpush/internal/browser/docker"
)

func TestDockerLauncher(t *testing.T) {
	// Skip in CI environments if docker is not available
	if os.Getenv("CI") != "" {
		t.Skip("Skipping docker test in CI environment")
	}
	if testing.Short() {
		t.Skip("Skipping docker test in short mode")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := docker.DefaultConfig()
	cfg.Port = 9333

	l, err := docker.New(cfg, logger)
	require.NoError(t, err, "Should initialize docker launcher without error")
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	wsURL, err := l.Start(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(wsURL, "ws://"), "got %q", wsURL)

	t.Run("start is idempotent", func(t *testing.T) {
		again, err := l.Start(ctx)
		require.NoError(t, err)
		assert.Equal(t, wsURL, again)
	})
}
