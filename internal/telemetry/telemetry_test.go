package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordFrameIngestedAndDropped(t *testing.T) {
	RecordFrameIngested("camA")
	RecordFrameDropped("camA")

	assert.Equal(t, float64(1), testutil.ToFloat64(FramesIngestedTotal.WithLabelValues("camA")))
	assert.Equal(t, float64(1), testutil.ToFloat64(FramesDroppedTotal.WithLabelValues("camA")))
}

func TestRecordDispatchAndSkip(t *testing.T) {
	RecordDispatch("camB", "m1")
	RecordDispatchSkipped("camB", "m1")

	assert.Equal(t, float64(1), testutil.ToFloat64(DispatchesTotal.WithLabelValues("camB", "m1")))
	assert.Equal(t, float64(1), testutil.ToFloat64(DispatchesSkippedTotal.WithLabelValues("camB", "m1")))
}

func TestRecordInferenceRequestAndLatency(t *testing.T) {
	RecordInferenceRequest("m2", "ok")
	RecordInferenceLatency("m2", 42.0)

	assert.Equal(t, float64(1), testutil.ToFloat64(InferenceRequestsTotal.WithLabelValues("m2", "ok")))
}

func TestSetModelContainerHealth(t *testing.T) {
	SetModelContainerHealth("m3", true)
	assert.Equal(t, float64(1), testutil.ToFloat64(ModelContainerUp.WithLabelValues("m3")))

	SetModelContainerHealth("m3", false)
	assert.Equal(t, float64(0), testutil.ToFloat64(ModelContainerUp.WithLabelValues("m3")))
}
