package modelc

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/grthilak-rl/vas-kernel/internal/telemetry"
	"github.com/grthilak-rl/vas-kernel/pkg/wire"
)

// Runtime is the forward-pass contract a real pytorch/ONNX backend would
// satisfy. InferenceHandler ships only MockRuntime: the teacher's own
// ai-service never got a working CGO ONNX backend running either, and
// mocking the same seam avoids importing a runtime nobody here can exercise.
type Runtime interface {
	// Infer runs the model over img and returns raw detections before
	// confidence filtering. Device reports "cuda" or "cpu".
	Infer(img RGBImage, manifest Manifest) ([]wire.Detection, error)
	Device() string
}

// InferenceHandler is the stateless handle(request) -> response contract.
// It is safe for concurrent use.
type InferenceHandler struct {
	manifest Manifest
	runtime  Runtime

	// forwardMu guards the model forward pass only, never held across I/O,
	// for runtimes that are not internally thread-safe.
	forwardMu sync.Mutex

	totalRequests int64
	totalErrors   int64
	latencySumMs  int64 // accumulated as integer microseconds-safe milliseconds*1000 to avoid float races
	startTime     time.Time
}

// NewInferenceHandler builds a handler bound to one manifest and runtime.
func NewInferenceHandler(manifest Manifest, runtime Runtime) *InferenceHandler {
	return &InferenceHandler{
		manifest:  manifest,
		runtime:   runtime,
		startTime: time.Now(),
	}
}

// Handle implements the full stateless contract; it never panics out to the
// caller.
func (h *InferenceHandler) Handle(req wire.InferenceRequest) (resp wire.InferenceResponse) {
	atomic.AddInt64(&h.totalRequests, 1)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			atomic.AddInt64(&h.totalErrors, 1)
			resp = errorResponse(req, fmt.Sprintf("Inference exception: %v", r))
		}
		elapsedMs := float64(time.Since(start).Microseconds()) / 1000.0
		h.recordLatency(elapsedMs)
		if resp.Metadata == nil {
			resp.Metadata = map[string]any{}
		}
		resp.Metadata["inference_time_ms"] = elapsedMs

		outcome := "ok"
		if resp.Error != "" {
			outcome = "error"
		}
		telemetry.RecordInferenceRequest(req.ModelID, outcome)
		telemetry.RecordInferenceLatency(req.ModelID, elapsedMs)
	}()

	if !validFrameReference(req.FrameReference) {
		atomic.AddInt64(&h.totalErrors, 1)
		return errorResponse(req, fmt.Sprintf("Invalid frame reference: %s", req.FrameReference))
	}

	raw := ReadFrame(req.FrameReference, req.FrameMetadata)
	if raw == nil {
		// A missing or unreadable frame is an expected condition, not an
		// inference failure: return an empty-detections, error-free response.
		return wire.InferenceResponse{
			ModelID:    req.ModelID,
			CameraID:   req.CameraID,
			FrameID:    req.FrameMetadata.FrameID,
			Detections: []wire.Detection{},
			Metadata:   map[string]any{"device": h.runtime.Device(), "model_type": string(h.manifest.ModelType)},
		}
	}

	rgb := NV12ToRGB(raw, req.FrameMetadata.Width, req.FrameMetadata.Height)

	h.forwardMu.Lock()
	detections, err := h.runtime.Infer(rgb, h.manifest)
	h.forwardMu.Unlock()
	if err != nil {
		atomic.AddInt64(&h.totalErrors, 1)
		return errorResponse(req, fmt.Sprintf("Inference exception: %v", err))
	}

	filtered := h.postProcess(detections)

	return wire.InferenceResponse{
		ModelID:    req.ModelID,
		CameraID:   req.CameraID,
		FrameID:    req.FrameMetadata.FrameID,
		Detections: filtered,
		Metadata: map[string]any{
			"device":       h.runtime.Device(),
			"model_type":   string(h.manifest.ModelType),
			"frame_width":  req.FrameMetadata.Width,
			"frame_height": req.FrameMetadata.Height,
		},
	}
}

func validFrameReference(ref string) bool {
	if ref == "" {
		return false
	}
	return strings.HasPrefix(ref, "/dev/shm/") || strings.HasPrefix(ref, "/tmp/")
}

func errorResponse(req wire.InferenceRequest, errMsg string) wire.InferenceResponse {
	return wire.InferenceResponse{
		ModelID:    req.ModelID,
		CameraID:   req.CameraID,
		FrameID:    req.FrameMetadata.FrameID,
		Detections: []wire.Detection{},
		Error:      errMsg,
	}
}

// postProcess applies the manifest's confidence threshold and clips boxes
// to [0,1].
func (h *InferenceHandler) postProcess(detections []wire.Detection) []wire.Detection {
	out := make([]wire.Detection, 0, len(detections))
	for _, d := range detections {
		if d.Confidence < h.manifest.ConfidenceThreshold {
			continue
		}
		for i := range d.BBox {
			d.BBox[i] = clampUnit(d.BBox[i])
		}
		out = append(out, d)
	}
	return out
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (h *InferenceHandler) recordLatency(ms float64) {
	defer func() {
		// Metrics bookkeeping must never perturb the response path.
		recover()
	}()
	atomic.AddInt64(&h.latencySumMs, int64(ms*1000))
}

// Metrics is the get_metrics() response.
type Metrics struct {
	TotalRequests int64
	TotalErrors   int64
	AvgLatencyMs  float64
	ErrorRate     float64
	UptimeSeconds int64
}

// GetMetrics returns process-level counters and derived averages.
func (h *InferenceHandler) GetMetrics() Metrics {
	total := atomic.LoadInt64(&h.totalRequests)
	errs := atomic.LoadInt64(&h.totalErrors)
	sum := atomic.LoadInt64(&h.latencySumMs)

	var avg, rate float64
	if total > 0 {
		avg = float64(sum) / 1000.0 / float64(total)
		rate = float64(errs) / float64(total)
	}

	return Metrics{
		TotalRequests: total,
		TotalErrors:   errs,
		AvgLatencyMs:  avg,
		ErrorRate:     rate,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}
}
