// Package wire holds the JSON shapes exchanged across process boundaries:
// the control plane's assignment API and the model container's IPC
// protocol. Both the stream-agent/reconciler side and the model-container
// side import this package so the two never drift apart.
package wire

import "time"

// Assignment mirrors one row of the control plane's ai-model-assignments
// API. Parameters is intentionally opaque.
type Assignment struct {
	ID          string         `json:"id"`
	CameraID    string         `json:"camera_id"`
	ModelID     string         `json:"model_id"`
	Enabled     bool           `json:"enabled"`
	DesiredFPS  *float64       `json:"desired_fps,omitempty"`
	Priority    *int           `json:"priority,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// AssignmentListResponse is the envelope returned by both assignment
// endpoints.
type AssignmentListResponse struct {
	Assignments []Assignment `json:"assignments"`
	Total       int          `json:"total"`
	Limit       int          `json:"limit"`
	Offset      int          `json:"offset"`
}

// FrameMetadata is the frame_metadata sub-object of an inference request.
type FrameMetadata struct {
	FrameID   int64    `json:"frame_id"`
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	Format    string   `json:"format"`
	Timestamp float64  `json:"timestamp"`
	PTS       *float64 `json:"pts,omitempty"`
}

// InferenceRequest is the UDS wire request body.
type InferenceRequest struct {
	FrameReference string         `json:"frame_reference"`
	FrameMetadata  FrameMetadata  `json:"frame_metadata"`
	CameraID       string         `json:"camera_id"`
	ModelID        string         `json:"model_id"`
	Timestamp      float64        `json:"timestamp"`
	Config         map[string]any `json:"config,omitempty"`
}

// Valid reports whether the request satisfies §6's ingress validation:
// non-empty required string fields, a non-empty frame_metadata object, and
// a positive timestamp. The IPC server closes the connection without a
// reply when this is false, per the "bad request" error-handling policy.
func (r InferenceRequest) Valid() bool {
	if r.FrameReference == "" || r.CameraID == "" || r.ModelID == "" {
		return false
	}
	if r.FrameMetadata == (FrameMetadata{}) {
		return false
	}
	return r.Timestamp > 0
}

// BBox is a normalized [x_min, y_min, x_max, y_max] box, each in [0,1].
type BBox [4]float64

// Detection is one detected object in an inference response.
type Detection struct {
	ClassID    int     `json:"class_id"`
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
	BBox       BBox    `json:"bbox"`
	TrackID    *int    `json:"track_id,omitempty"`
}

// InferenceResponse is the UDS wire response body. Detections must be empty
// when Error is set.
type InferenceResponse struct {
	ModelID    string         `json:"model_id"`
	CameraID   string         `json:"camera_id"`
	FrameID    int64          `json:"frame_id"`
	Detections []Detection    `json:"detections"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// HeartbeatMetrics is the metrics sub-object of a heartbeat file.
type HeartbeatMetrics struct {
	TotalRequests  int64   `json:"total_requests"`
	TotalErrors    int64   `json:"total_errors"`
	AvgLatencyMs   float64 `json:"avg_latency_ms"`
	UptimeSeconds  int64   `json:"uptime_seconds"`
}

// Heartbeat is the JSON shape of a model container's heartbeat file (see
// modelc.HeartbeatPath).
type Heartbeat struct {
	ModelID   string           `json:"model_id"`
	Timestamp string           `json:"timestamp"`
	Status    string           `json:"status"`
	Metrics   HeartbeatMetrics `json:"metrics"`
}
