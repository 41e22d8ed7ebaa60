package modelc

import (
	"math/rand"

	"github.com/grthilak-rl/vas-kernel/pkg/wire"
)

// cocoLabels is the label set the mock runtime draws from, mirroring the
// teacher's basic detection label set.
var cocoLabels = map[int]string{
	1: "person", 2: "bicycle", 3: "car", 4: "motorcycle",
	6: "bus", 8: "truck", 16: "bird", 17: "cat", 18: "dog",
}

// MockRuntime is a random stand-in for a real pytorch/ONNX backend: its
// output does not depend on the image and is not deterministic. It never
// reports a GPU: CPU is always truthful for a runtime with no real hardware
// binding.
type MockRuntime struct{}

// NewMockRuntime builds a MockRuntime.
func NewMockRuntime() *MockRuntime { return &MockRuntime{} }

// Device always reports "cpu": there is no real accelerator behind the mock.
func (MockRuntime) Device() string { return "cpu" }

// Infer returns one to three detections with randomly chosen labels from
// cocoLabels, confidences in [0.5, 1) and normalized boxes. img is not
// inspected.
func (MockRuntime) Infer(img RGBImage, manifest Manifest) ([]wire.Detection, error) {
	classIDs := make([]int, 0, len(cocoLabels))
	for id := range cocoLabels {
		classIDs = append(classIDs, id)
	}

	count := 1 + rand.Intn(3)
	out := make([]wire.Detection, 0, count)
	for i := 0; i < count; i++ {
		classID := classIDs[rand.Intn(len(classIDs))]
		out = append(out, wire.Detection{
			ClassID:    classID,
			ClassName:  cocoLabels[classID],
			Confidence: 0.5 + rand.Float64()*0.5,
			BBox:       randomBBox(),
		})
	}
	return out, nil
}

func randomBBox() wire.BBox {
	x0 := rand.Float64() * 0.6
	y0 := rand.Float64() * 0.6
	x1 := x0 + 0.1 + rand.Float64()*0.3
	y1 := y0 + 0.1 + rand.Float64()*0.3
	if x1 > 1 {
		x1 = 1
	}
	if y1 > 1 {
		y1 = 1
	}
	return wire.BBox{x0, y0, x1, y1}
}
