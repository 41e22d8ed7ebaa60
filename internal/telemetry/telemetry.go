// Package telemetry defines the Prometheus metrics exposed by every
// vas-kernel component, grounded on internal/metrics/ai_metrics.go's
// promauto-vars-plus-RecordX-helpers shape.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FramesIngestedTotal counts frames pushed into a camera's ring buffer.
	FramesIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vas_frames_ingested_total",
			Help: "Total frames pushed into a camera ring buffer",
		},
		[]string{"camera_id"},
	)

	// FramesDroppedTotal counts frames evicted by ring buffer overwrite.
	FramesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vas_frames_dropped_total",
			Help: "Total frames dropped by ring buffer overwrite",
		},
		[]string{"camera_id"},
	)

	// DispatchesTotal counts frames dispatched to a model subscription.
	DispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vas_dispatches_total",
			Help: "Total frames dispatched to a model subscription",
		},
		[]string{"camera_id", "model_id"},
	)

	// DispatchesSkippedTotal counts frames skipped by the FPS gate.
	DispatchesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vas_dispatches_skipped_total",
			Help: "Total frames skipped by the subscription FPS gate",
		},
		[]string{"camera_id", "model_id"},
	)

	// ReconcileCyclesTotal counts completed reconciliation cycles.
	ReconcileCyclesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vas_reconcile_cycles_total",
			Help: "Total reconciliation cycles run",
		},
	)

	// ReconcileErrorsTotal counts per-camera reconciliation errors.
	ReconcileErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vas_reconcile_errors_total",
			Help: "Total reconciliation errors by camera",
		},
		[]string{"camera_id"},
	)

	// InferenceRequestsTotal counts inference requests handled by a model container.
	InferenceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vas_inference_requests_total",
			Help: "Total inference requests handled",
		},
		[]string{"model_id", "outcome"},
	)

	// InferenceLatencyMs tracks inference handler latency.
	InferenceLatencyMs = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vas_inference_latency_ms",
			Help:    "Inference handler latency in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"model_id"},
	)

	// ModelContainerUp is a per-model health gauge, set to 1 by the model
	// container after each successful heartbeat write.
	ModelContainerUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vas_model_container_up",
			Help: "Model container health (1=healthy, 0=degraded/unknown)",
		},
		[]string{"model_id"},
	)
)

// RecordFrameIngested increments the per-camera ingest counter.
func RecordFrameIngested(cameraID string) {
	FramesIngestedTotal.WithLabelValues(cameraID).Inc()
}

// RecordFrameDropped increments the per-camera drop counter.
func RecordFrameDropped(cameraID string) {
	FramesDroppedTotal.WithLabelValues(cameraID).Inc()
}

// RecordDispatch increments the per-camera/model dispatch counter.
func RecordDispatch(cameraID, modelID string) {
	DispatchesTotal.WithLabelValues(cameraID, modelID).Inc()
}

// RecordDispatchSkipped increments the per-camera/model FPS-gate skip counter.
func RecordDispatchSkipped(cameraID, modelID string) {
	DispatchesSkippedTotal.WithLabelValues(cameraID, modelID).Inc()
}

// RecordReconcileCycle increments the reconciliation cycle counter.
func RecordReconcileCycle() {
	ReconcileCyclesTotal.Inc()
}

// RecordReconcileError increments the per-camera reconciliation error counter.
func RecordReconcileError(cameraID string) {
	ReconcileErrorsTotal.WithLabelValues(cameraID).Inc()
}

// RecordInferenceRequest increments the per-model inference counter, tagged
// with outcome ("ok" or "error").
func RecordInferenceRequest(modelID, outcome string) {
	InferenceRequestsTotal.WithLabelValues(modelID, outcome).Inc()
}

// RecordInferenceLatency observes handler latency in milliseconds.
func RecordInferenceLatency(modelID string, latencyMs float64) {
	InferenceLatencyMs.WithLabelValues(modelID).Observe(latencyMs)
}

// SetModelContainerHealth sets the per-model health gauge.
func SetModelContainerHealth(modelID string, healthy bool) {
	if healthy {
		ModelContainerUp.WithLabelValues(modelID).Set(1)
	} else {
		ModelContainerUp.WithLabelValues(modelID).Set(0)
	}
}
