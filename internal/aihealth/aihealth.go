// Package aihealth implements the control-plane side best-effort health
// aggregation over model-container heartbeat files, and (when colocated)
// per-camera subscription metrics from the reconciliation agent registry.
package aihealth

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/grthilak-rl/vas-kernel/internal/reconcile"
)

// StaleThreshold is the age past which a heartbeat is considered degraded.
const StaleThreshold = 30 * time.Second

// Status is the closed set of per-model health verdicts.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusUnknown  Status = "unknown"
)

// ModelHealth is one model's classified heartbeat.
type ModelHealth struct {
	ModelID   string
	Status    Status
	Timestamp string // raw ISO-8601 string from the heartbeat file, "" if unknown
}

// Service aggregates model heartbeats and, when a registry is colocated,
// camera subscription metrics. Every operation is best-effort: failures are
// swallowed and surfaced only as a degraded/unknown verdict, never an error.
type Service struct {
	heartbeatGlob string
	registry      *reconcile.AgentRegistry // nil means "not integrated"
}

// NewService builds a Service scanning heartbeatDir for vas_heartbeat_*.json
// files. registry may be nil.
func NewService(heartbeatDir string, registry *reconcile.AgentRegistry) *Service {
	if heartbeatDir == "" {
		heartbeatDir = "/tmp"
	}
	return &Service{
		heartbeatGlob: filepath.Join(heartbeatDir, "vas_heartbeat_*.json"),
		registry:      registry,
	}
}

type heartbeatFile struct {
	ModelID   string `json:"model_id"`
	Timestamp string `json:"timestamp"`
}

// GetSystemHealth scans every heartbeat file and classifies it. Any
// filesystem or parse error for an individual file degrades that one entry
// to "unknown" rather than aborting the scan.
func (s *Service) GetSystemHealth() []ModelHealth {
	paths, err := filepath.Glob(s.heartbeatGlob)
	if err != nil {
		log.Printf("[AIHealth] glob failed: %v", err)
		return nil
	}

	out := make([]ModelHealth, 0, len(paths))
	for _, p := range paths {
		out = append(out, s.classify(p))
	}
	return out
}

func (s *Service) classify(path string) ModelHealth {
	data, err := os.ReadFile(path)
	if err != nil {
		return ModelHealth{ModelID: modelIDFromPath(path), Status: StatusUnknown}
	}

	var hb heartbeatFile
	if err := json.Unmarshal(data, &hb); err != nil {
		return ModelHealth{ModelID: modelIDFromPath(path), Status: StatusUnknown}
	}

	ts, err := time.Parse("2006-01-02T15:04:05.000Z", hb.Timestamp)
	if err != nil {
		return ModelHealth{ModelID: hb.ModelID, Status: StatusUnknown, Timestamp: hb.Timestamp}
	}

	status := StatusHealthy
	if time.Since(ts) >= StaleThreshold {
		status = StatusDegraded
	}
	return ModelHealth{ModelID: hb.ModelID, Status: status, Timestamp: hb.Timestamp}
}

func modelIDFromPath(path string) string {
	base := filepath.Base(path)
	const prefix, suffix = "vas_heartbeat_", ".json"
	if len(base) > len(prefix)+len(suffix) {
		return base[len(prefix) : len(base)-len(suffix)]
	}
	return base
}

// CameraMetrics is a best-effort per-camera snapshot when a registry is
// colocated.
type CameraMetrics struct {
	CameraID          string
	State             string
	SubscriptionCount int
	Integrated        bool
}

// GetCameraMetrics reports per-camera subscription counts when an agent
// registry is colocated in-process; otherwise it reports a single
// "not integrated" indicator.
func (s *Service) GetCameraMetrics() []CameraMetrics {
	if s.registry == nil {
		return []CameraMetrics{{Integrated: false}}
	}

	agents := s.registry.ListAgents()
	out := make([]CameraMetrics, 0, len(agents))
	for _, a := range agents {
		out = append(out, CameraMetrics{
			CameraID:          a.CameraID,
			State:             a.State().String(),
			SubscriptionCount: a.SubscriptionCount(),
			Integrated:        true,
		})
	}
	return out
}
