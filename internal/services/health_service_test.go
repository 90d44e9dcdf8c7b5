package services

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lfsclean/internal/config"
	"lfsclean/pkg/contracts"
)

func TestHealthService_Checks(t *testing.T) {
	hs := NewHealthService(nil, nil)
	ctx := context.Background()

	health := hs.HealthCheck(ctx)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, contracts.Version, health.Version)

	live := hs.LivenessCheck(ctx)
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	assert.Equal(t, "ready", hs.ReadinessCheck(ctx).Status)
	assert.Equal(t, contracts.Version, hs.Version().Version)
}

func TestHealthService_Readiness(t *testing.T) {
	base := t.TempDir()
	pathsCfg := config.Default().Paths
	pathsCfg.BaseDir = base
	paths, err := config.NewPaths(pathsCfg)
	require.NoError(t, err)

	hs := NewHealthService(paths, nil)

	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "not_ready", status.Status)
	assert.Equal(t, "not_ready", status.Services["input"].Status)

	require.NoError(t, paths.EnsureDirectories())
	status = hs.ReadinessCheck(context.Background())
	assert.Equal(t, "ready", status.Status)

	require.NoError(t, os.RemoveAll(paths.OutputDir))
	require.NoError(t, os.WriteFile(paths.OutputDir, []byte("x"), 0644))
	status = hs.ReadinessCheck(context.Background())
	assert.Equal(t, "not_ready", status.Services["output"].Status)
}
