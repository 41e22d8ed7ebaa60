package modelc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.yaml"), []byte(body), 0o644))
}

const validManifestYAML = `
model_id: m1
model_name: Basic Detector
model_version: "1.0"
supported_tasks: ["detection"]
input_format: NV12
expected_resolution: [1920, 1080]
resource_requirements:
  gpu_required: false
  cpu_fallback_allowed: true
model_type: onnx
model_weights: weights.bin
confidence_threshold: 0.5
`

func TestLoadManifest_Valid(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, validManifestYAML)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weights.bin"), []byte{1}, 0o644))

	m, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, "m1", m.ModelID)
	assert.Equal(t, filepath.Join(dir, "weights.bin"), m.ResolvedWeightsPath())
}

func TestLoadManifest_Missing(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadManifest(dir)
	assert.ErrorIs(t, err, ErrMissingManifest)
}

func TestLoadManifest_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "not: [valid yaml structure for our schema\n")
	_, err := LoadManifest(dir)
	assert.ErrorIs(t, err, ErrInvalidManifest)
}

func TestLoadManifest_RejectsContradictoryGPUFlags(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
model_id: m1
model_name: X
model_version: "1.0"
input_format: NV12
expected_resolution: [640, 480]
resource_requirements:
  gpu_required: true
  cpu_fallback_allowed: true
model_type: pytorch
model_weights: w.bin
confidence_threshold: 0.5
`)
	_, err := LoadManifest(dir)
	assert.ErrorIs(t, err, ErrInvalidManifest)
}

func TestLoadManifest_AbsoluteWeightsPath(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "abs.bin")
	writeManifest(t, dir, `
model_id: m1
model_name: X
model_version: "1.0"
input_format: NV12
expected_resolution: [640, 480]
resource_requirements:
  gpu_required: false
  cpu_fallback_allowed: false
model_type: pytorch
model_weights: `+abs+`
confidence_threshold: 0.5
`)
	m, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, abs, m.ResolvedWeightsPath())
}
