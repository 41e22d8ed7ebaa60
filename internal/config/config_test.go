package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileFallsBackToEnvDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Equal(t, "http://localhost:8080", cfg.Reconciler.AssignmentAPIBaseURL)
	assert.Equal(t, 30, cfg.Reconciler.ReconcileIntervalSec)
	assert.Equal(t, 5.0, cfg.Reconciler.DefaultFPSCap)
}

func TestLoad_YAMLValuesSurviveWithoutEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "default.yaml")
	yamlBody := `
reconciler:
  assignment_api_base_url: "http://control-plane:9000"
  reconcile_interval_sec: 15
model_container:
  model_id: "weapon-detector"
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))

	cfg := Load(path)
	assert.Equal(t, "http://control-plane:9000", cfg.Reconciler.AssignmentAPIBaseURL)
	assert.Equal(t, 15, cfg.Reconciler.ReconcileIntervalSec)
	assert.Equal(t, "weapon-detector", cfg.ModelContainer.ModelID)
}

func TestLoad_MalformedYAMLFallsBackToEnvDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "default.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: valid: yaml: ["), 0o644))

	cfg := Load(path)
	assert.Equal(t, "http://localhost:8080", cfg.Reconciler.AssignmentAPIBaseURL)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("VAS_TEST_STR", "hello")
	t.Setenv("VAS_TEST_INT", "42")
	t.Setenv("VAS_TEST_FLOAT", "3.5")
	t.Setenv("VAS_TEST_BOOL", "true")

	assert.Equal(t, "hello", GetEnv("VAS_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", GetEnv("VAS_TEST_MISSING", "fallback"))
	assert.Equal(t, 42, GetEnvInt("VAS_TEST_INT", 0))
	assert.Equal(t, 3.5, GetEnvFloat("VAS_TEST_FLOAT", 0))
	assert.True(t, GetEnvBool("VAS_TEST_BOOL", false))
	assert.False(t, GetEnvBool("VAS_TEST_MISSING", false))
}
