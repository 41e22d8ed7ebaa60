package aihealth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grthilak-rl/vas-kernel/internal/reconcile"
	"github.com/grthilak-rl/vas-kernel/pkg/wire"
)

func writeHeartbeat(t *testing.T, dir, modelID string, ts time.Time) {
	t.Helper()
	beat := wire.Heartbeat{
		ModelID:   modelID,
		Timestamp: ts.UTC().Format("2006-01-02T15:04:05.000Z"),
		Status:    "healthy",
	}
	data, err := json.Marshal(beat)
	require.NoError(t, err)
	path := filepath.Join(dir, "vas_heartbeat_"+modelID+".json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestGetSystemHealth_Fresh(t *testing.T) {
	dir := t.TempDir()
	writeHeartbeat(t, dir, "m1", time.Now())

	s := NewService(dir, nil)
	health := s.GetSystemHealth()
	require.Len(t, health, 1)
	assert.Equal(t, StatusHealthy, health[0].Status)
	assert.Equal(t, "m1", health[0].ModelID)
}

func TestGetSystemHealth_Stale(t *testing.T) {
	dir := t.TempDir()
	writeHeartbeat(t, dir, "m1", time.Now().Add(-60*time.Second))

	s := NewService(dir, nil)
	health := s.GetSystemHealth()
	require.Len(t, health, 1)
	assert.Equal(t, StatusDegraded, health[0].Status)
}

func TestGetSystemHealth_UnparsableIsUnknown(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vas_heartbeat_m1.json"), []byte("not json"), 0o644))

	s := NewService(dir, nil)
	health := s.GetSystemHealth()
	require.Len(t, health, 1)
	assert.Equal(t, StatusUnknown, health[0].Status)
}

func TestGetCameraMetrics_NotIntegrated(t *testing.T) {
	s := NewService(t.TempDir(), nil)
	metrics := s.GetCameraMetrics()
	require.Len(t, metrics, 1)
	assert.False(t, metrics[0].Integrated)
}

func TestGetCameraMetrics_Integrated(t *testing.T) {
	registry := reconcile.NewAgentRegistry()
	registry.GetOrCreateAgent("camA", "")

	s := NewService(t.TempDir(), registry)
	metrics := s.GetCameraMetrics()
	require.Len(t, metrics, 1)
	assert.True(t, metrics[0].Integrated)
	assert.Equal(t, "camA", metrics[0].CameraID)
}
