package modelc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grthilak-rl/vas-kernel/internal/shm"
	"github.com/grthilak-rl/vas-kernel/pkg/wire"
	framepkg "github.com/grthilak-rl/vas-kernel/internal/frame"
)

func testManifest() Manifest {
	return Manifest{
		ModelID:             "m1",
		ModelType:           ModelTypeONNX,
		ConfidenceThreshold: 0.5,
	}
}

func TestHandle_RejectsInvalidFrameReference(t *testing.T) {
	h := NewInferenceHandler(testManifest(), NewMockRuntime())
	resp := h.Handle(wire.InferenceRequest{
		FrameReference: "/not/allowed/frame.data",
		ModelID:        "m1",
		CameraID:       "camA",
	})
	assert.Contains(t, resp.Error, "Invalid frame reference")
	assert.Empty(t, resp.Detections)
}

func TestHandle_MissingFrameIsNotAnError(t *testing.T) {
	h := NewInferenceHandler(testManifest(), NewMockRuntime())
	resp := h.Handle(wire.InferenceRequest{
		FrameReference: "/dev/shm/vas/camA/frame.data",
		FrameMetadata:  wire.FrameMetadata{Width: 2, Height: 2, Format: "NV12"},
		ModelID:        "m1",
		CameraID:       "camA",
	})
	assert.Empty(t, resp.Error)
	assert.Empty(t, resp.Detections)
}

func TestHandle_SuccessfulInferenceEchoesFields(t *testing.T) {
	base := t.TempDir()
	e := shm.NewExporter("camA", base)
	require.NoError(t, e.Initialize())
	data := make([]byte, 4+2)
	e.ExportFrame(7, 1, 2, 2, framepkg.PixelFormatNV12, 2, data)

	h := NewInferenceHandler(testManifest(), &alwaysConfidentRuntime{})
	resp := h.Handle(wire.InferenceRequest{
		FrameReference: e.Dir() + "/frame.data",
		FrameMetadata:  wire.FrameMetadata{FrameID: 7, Width: 2, Height: 2, Format: "NV12"},
		ModelID:        "m1",
		CameraID:       "camA",
	})

	require.Empty(t, resp.Error)
	require.Len(t, resp.Detections, 1)
	assert.Equal(t, "m1", resp.ModelID)
	assert.Equal(t, "camA", resp.CameraID)
	assert.Equal(t, int64(7), resp.FrameID)
	assert.Equal(t, "cpu", resp.Metadata["device"])
}

func TestHandle_FiltersLowConfidenceDetections(t *testing.T) {
	base := t.TempDir()
	e := shm.NewExporter("camA", base)
	require.NoError(t, e.Initialize())
	data := make([]byte, 6)
	e.ExportFrame(1, 1, 2, 2, framepkg.PixelFormatNV12, 2, data)

	m := testManifest()
	m.ConfidenceThreshold = 0.9
	h := NewInferenceHandler(m, &alwaysConfidentRuntime{confidence: 0.1})
	resp := h.Handle(wire.InferenceRequest{
		FrameReference: e.Dir() + "/frame.data",
		FrameMetadata:  wire.FrameMetadata{Width: 2, Height: 2, Format: "NV12"},
		ModelID:        "m1",
		CameraID:       "camA",
	})
	assert.Empty(t, resp.Detections)
}

func TestHandle_RuntimeErrorBecomesErrorResponse(t *testing.T) {
	base := t.TempDir()
	e := shm.NewExporter("camA", base)
	require.NoError(t, e.Initialize())
	e.ExportFrame(1, 1, 2, 2, framepkg.PixelFormatNV12, 2, make([]byte, 6))

	h := NewInferenceHandler(testManifest(), &erroringRuntime{})
	resp := h.Handle(wire.InferenceRequest{
		FrameReference: e.Dir() + "/frame.data",
		FrameMetadata:  wire.FrameMetadata{Width: 2, Height: 2, Format: "NV12"},
		ModelID:        "m1",
		CameraID:       "camA",
	})
	assert.Contains(t, resp.Error, "Inference exception")
	assert.Empty(t, resp.Detections)
}

func TestGetMetricsAfterRequests(t *testing.T) {
	h := NewInferenceHandler(testManifest(), NewMockRuntime())
	h.Handle(wire.InferenceRequest{FrameReference: "/tmp/x", ModelID: "m1", CameraID: "camA", FrameMetadata: wire.FrameMetadata{Width: 2, Height: 2, Format: "NV12"}})
	h.Handle(wire.InferenceRequest{FrameReference: "bad", ModelID: "m1", CameraID: "camA"})

	m := h.GetMetrics()
	assert.Equal(t, int64(2), m.TotalRequests)
	assert.Equal(t, int64(1), m.TotalErrors)
}

type alwaysConfidentRuntime struct {
	confidence float64
}

func (r *alwaysConfidentRuntime) Device() string { return "cpu" }
func (r *alwaysConfidentRuntime) Infer(img RGBImage, m Manifest) ([]wire.Detection, error) {
	conf := r.confidence
	if conf == 0 {
		conf = 0.95
	}
	return []wire.Detection{{ClassID: 1, ClassName: "person", Confidence: conf, BBox: wire.BBox{-0.1, 0, 1.5, 1}}}, nil
}

type erroringRuntime struct{}

func (erroringRuntime) Device() string { return "cpu" }
func (erroringRuntime) Infer(img RGBImage, m Manifest) ([]wire.Detection, error) {
	return nil, assertErr{}
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
