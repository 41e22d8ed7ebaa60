package modelc

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/grthilak-rl/vas-kernel/internal/platform/paths"
)

// Discovery is the one-shot, startup-time scan of a models root. No
// hot-reload, no periodic rescan: Discover is meant to run exactly once.
type Discovery struct {
	modelsRoot string

	mu          sync.RWMutex
	available   map[string]Manifest
	unavailable map[string]string // model_id or dir name -> reason
}

// NewDiscovery builds a Discovery over modelsRoot; "" uses
// paths.ResolveModelsRoot().
func NewDiscovery(modelsRoot string) *Discovery {
	if modelsRoot == "" {
		modelsRoot = paths.ResolveModelsRoot()
	}
	return &Discovery{
		modelsRoot:  modelsRoot,
		available:   make(map[string]Manifest),
		unavailable: make(map[string]string),
	}
}

// Discover scans every immediate subdirectory of the models root once.
func (d *Discovery) Discover() error {
	entries, err := os.ReadDir(d.modelsRoot)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		subdir := filepath.Join(d.modelsRoot, entry.Name())

		manifest, err := LoadManifest(subdir)
		switch {
		case err == ErrMissingManifest:
			d.unavailable[entry.Name()] = "missing_model_yaml"
			continue
		case err != nil:
			d.unavailable[entry.Name()] = "invalid_model_yaml"
			log.Printf("[ModelDiscovery] %s: %v", entry.Name(), err)
			continue
		}

		if err := manifest.CheckWeightsExist(); err != nil {
			d.unavailable[manifest.ModelID] = "invalid_model_yaml"
			log.Printf("[ModelDiscovery] %s: %v", manifest.ModelID, err)
			continue
		}

		d.available[manifest.ModelID] = manifest
	}
	return nil
}

// GetModel returns the manifest for modelID, or (_, false) if unavailable or
// never discovered.
func (d *Discovery) GetModel(modelID string) (Manifest, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.available[modelID]
	return m, ok
}

// ListAvailableModels returns every discovered available model_id.
func (d *Discovery) ListAvailableModels() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.available))
	for id := range d.available {
		out = append(out, id)
	}
	return out
}

// IsAvailable reports whether modelID was discovered and is usable.
func (d *Discovery) IsAvailable(modelID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.available[modelID]
	return ok
}

// GetUnavailableReason returns the reason a given directory/model_id was
// marked unavailable, or ("", false) if it isn't known to be unavailable.
func (d *Discovery) GetUnavailableReason(id string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	reason, ok := d.unavailable[id]
	return reason, ok
}

// ListUnavailable returns the full id -> reason map of unavailable models,
// for container startup logging.
func (d *Discovery) ListUnavailable() map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]string, len(d.unavailable))
	for k, v := range d.unavailable {
		out[k] = v
	}
	return out
}
