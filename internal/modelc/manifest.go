// Package modelc implements the model container (C4): model discovery, the
// UDS IPC server, the stateless inference handler, and heartbeat emission.
package modelc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ModelType is a closed set; only pytorch and onnx manifests are accepted.
type ModelType string

const (
	ModelTypePytorch ModelType = "pytorch"
	ModelTypeONNX    ModelType = "onnx"
)

var (
	ErrMissingManifest      = errors.New("modelc: missing model.yaml")
	ErrInvalidManifest      = errors.New("modelc: invalid model.yaml")
	ErrContradictoryGPUFlags = errors.New("modelc: gpu_required and cpu_fallback_allowed cannot both be true")
	ErrWeightsNotFound       = errors.New("modelc: model_weights file not found")
)

// ResourceRequirements mirrors the manifest's resource_requirements block.
type ResourceRequirements struct {
	GPURequired       bool `yaml:"gpu_required"`
	GPUMemoryMB       *int `yaml:"gpu_memory_mb,omitempty"`
	CPUFallbackAllowed bool `yaml:"cpu_fallback_allowed"`
}

// Manifest is the parsed, validated form of model.yaml.
type Manifest struct {
	ModelID              string               `yaml:"model_id"`
	ModelName            string               `yaml:"model_name"`
	ModelVersion         string               `yaml:"model_version"`
	Description          string               `yaml:"description,omitempty"`
	Author               string               `yaml:"author,omitempty"`
	License              string               `yaml:"license,omitempty"`
	SupportedTasks       []string             `yaml:"supported_tasks"`
	InputFormat          string               `yaml:"input_format"`
	ExpectedResolution   [2]int               `yaml:"expected_resolution"`
	ResourceRequirements ResourceRequirements `yaml:"resource_requirements"`
	ModelType            ModelType            `yaml:"model_type"`
	ModelWeights         string               `yaml:"model_weights"`
	ConfidenceThreshold  float64              `yaml:"confidence_threshold"`
	NMSIoUThreshold      *float64             `yaml:"nms_iou_threshold,omitempty"`
	OutputSchema         map[string]any       `yaml:"output_schema,omitempty"`

	// dir is the manifest's containing directory, used to resolve
	// ModelWeights when it is relative.
	dir string
}

// LoadManifest reads and validates the model.yaml at manifestDir/model.yaml.
func LoadManifest(manifestDir string) (Manifest, error) {
	path := filepath.Join(manifestDir, "model.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, ErrMissingManifest
		}
		return Manifest{}, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	m.dir = manifestDir

	if err := m.validate(); err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return m, nil
}

func (m Manifest) validate() error {
	if m.ModelID == "" || m.ModelName == "" || m.ModelVersion == "" {
		return errors.New("model_id, model_name, and model_version are required")
	}
	if m.InputFormat != "NV12" {
		return fmt.Errorf("unsupported input_format: %s", m.InputFormat)
	}
	if m.ExpectedResolution[0] <= 0 || m.ExpectedResolution[1] <= 0 {
		return errors.New("expected_resolution must be positive")
	}
	if m.ModelType != ModelTypePytorch && m.ModelType != ModelTypeONNX {
		return fmt.Errorf("unsupported model_type: %s", m.ModelType)
	}
	if m.ModelWeights == "" {
		return errors.New("model_weights is required")
	}
	if m.ConfidenceThreshold < 0 || m.ConfidenceThreshold > 1 {
		return errors.New("confidence_threshold must be in [0,1]")
	}
	if m.NMSIoUThreshold != nil && (*m.NMSIoUThreshold < 0 || *m.NMSIoUThreshold > 1) {
		return errors.New("nms_iou_threshold must be in [0,1]")
	}
	if m.ResourceRequirements.GPURequired && m.ResourceRequirements.CPUFallbackAllowed {
		return ErrContradictoryGPUFlags
	}
	return nil
}

// Dir returns the manifest's containing directory.
func (m Manifest) Dir() string { return m.dir }

// Path returns the manifest file's own path (dir/model.yaml).
func (m Manifest) Path() string { return filepath.Join(m.dir, "model.yaml") }

// ResolvedWeightsPath returns ModelWeights resolved against the manifest's
// directory when it is not already absolute.
func (m Manifest) ResolvedWeightsPath() string {
	if filepath.IsAbs(m.ModelWeights) {
		return m.ModelWeights
	}
	return filepath.Join(m.dir, m.ModelWeights)
}

// CheckWeightsExist verifies ResolvedWeightsPath() exists on disk.
func (m Manifest) CheckWeightsExist() error {
	if _, err := os.Stat(m.ResolvedWeightsPath()); err != nil {
		return fmt.Errorf("%w: %s", ErrWeightsNotFound, m.ResolvedWeightsPath())
	}
	return nil
}
