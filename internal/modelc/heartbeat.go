package modelc

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/grthilak-rl/vas-kernel/internal/platform/paths"
	"github.com/grthilak-rl/vas-kernel/internal/telemetry"
	"github.com/grthilak-rl/vas-kernel/pkg/wire"
)

// DefaultHeartbeatInterval matches VAS_HEARTBEAT_INTERVAL_SECONDS' default.
const DefaultHeartbeatInterval = 5 * time.Second

// HeartbeatPath returns <scratch root>/vas_heartbeat_<model_id>.json.
func HeartbeatPath(modelID string) string {
	name := fmt.Sprintf("vas_heartbeat_%s.json", modelID)
	p, err := paths.SafeJoin(paths.ResolveScratchRoot(), name)
	if err != nil {
		return filepath.Join(paths.ResolveScratchRoot(), name)
	}
	return p
}

// HeartbeatEmitter is a daemon that periodically writes a heartbeat file
// for one model. It is not joined on shutdown: Stop only signals, it
// doesn't wait.
type HeartbeatEmitter struct {
	modelID  string
	handler  *InferenceHandler
	interval time.Duration
	path     string // overridable for tests
	stopCh   chan struct{}
}

// NewHeartbeatEmitter builds an emitter for modelID backed by handler's
// metrics.
func NewHeartbeatEmitter(modelID string, handler *InferenceHandler, interval time.Duration) *HeartbeatEmitter {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	return &HeartbeatEmitter{
		modelID:  modelID,
		handler:  handler,
		interval: interval,
		path:     HeartbeatPath(modelID),
		stopCh:   make(chan struct{}),
	}
}

// Run writes one heartbeat immediately, then on every interval tick, until
// Stop is called. Meant to be launched with `go emitter.Run()`.
func (h *HeartbeatEmitter) Run() {
	h.writeOnce()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
			h.writeOnce()
		}
	}
}

// Stop signals the daemon to exit; it does not wait for it to do so.
func (h *HeartbeatEmitter) Stop() {
	close(h.stopCh)
}

func (h *HeartbeatEmitter) writeOnce() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Heartbeat] model=%s recovered panic: %v", h.modelID, r)
		}
	}()

	m := h.handler.GetMetrics()
	beat := wire.Heartbeat{
		ModelID:   h.modelID,
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Status:    "healthy",
		Metrics: wire.HeartbeatMetrics{
			TotalRequests: m.TotalRequests,
			TotalErrors:   m.TotalErrors,
			AvgLatencyMs:  m.AvgLatencyMs,
			UptimeSeconds: m.UptimeSeconds,
		},
	}

	data, err := json.Marshal(beat)
	if err != nil {
		log.Printf("[Heartbeat] model=%s marshal failed: %v", h.modelID, err)
		return
	}

	tmpPath := h.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		log.Printf("[Heartbeat] model=%s write failed: %v", h.modelID, err)
		return
	}
	if err := os.Rename(tmpPath, h.path); err != nil {
		log.Printf("[Heartbeat] model=%s rename failed: %v", h.modelID, err)
		return
	}
	telemetry.SetModelContainerHealth(h.modelID, true)
}
