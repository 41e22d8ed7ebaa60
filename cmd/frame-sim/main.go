// Command frame-sim stands in for VAS's decode path: it pushes synthetic
// NV12 frames into a per-camera ring buffer (C1) at a fixed rate and,
// optionally, exports the latest frame to shared memory — a local smoke
// test harness for the exporter and a real model container without a real
// camera or RTSP pipeline.
package main

import (
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grthilak-rl/vas-kernel/internal/config"
	"github.com/grthilak-rl/vas-kernel/internal/frame"
	"github.com/grthilak-rl/vas-kernel/internal/shm"
)

func main() {
	cameraID := flag.String("camera", "cam1", "camera identifier")
	width := flag.Int("width", 1920, "frame width (must be even)")
	height := flag.Int("height", 1080, "frame height (must be even)")
	fps := flag.Float64("fps", 15, "decode rate in frames per second")
	capacity := flag.Int("capacity", 30, "ring buffer capacity")
	flag.Parse()

	exportEnabled := config.FrameExportEnabled()

	ring := frame.NewRingBuffer(*cameraID, *capacity)

	var exporter *shm.Exporter
	if exportEnabled {
		exporter = shm.NewExporter(*cameraID, "")
		if err := exporter.Initialize(); err != nil {
			log.Fatalf("[FrameSim] exporter init failed: %v", err)
		}
		defer exporter.Cleanup()
		log.Printf("[FrameSim] exporting camera=%s to %s", *cameraID, exporter.Dir())
	} else {
		log.Printf("[FrameSim] export disabled (AI_FRAME_EXPORT_ENABLED=false)")
	}

	geom, err := frame.ValidateGeometry(*width, *height, frame.PixelFormatNV12)
	if err != nil {
		log.Fatalf("[FrameSim] invalid geometry: %v", err)
	}
	log.Printf("[FrameSim] camera=%s %dx%d stride=%d data_size=%d fps=%.1f",
		*cameraID, geom.Width, geom.Height, geom.Stride, geom.DataSize, *fps)

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	interval := time.Duration(float64(time.Second) / *fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-stopCh:
			stats := ring.GetStats()
			log.Printf("[FrameSim] stopping: written=%d dropped=%d", stats.TotalFramesWritten, stats.TotalFramesDropped)
			return
		case <-ticker.C:
			data := syntheticFrame(geom.DataSize)
			ts := time.Now()
			frameID := ring.Push(ts, geom.Width, geom.Height, frame.PixelFormatNV12, geom.Stride, data)

			if exporter != nil {
				exporter.ExportFrame(frameID, uint64(ts.Sub(start).Nanoseconds()), geom.Width, geom.Height, frame.PixelFormatNV12, geom.Stride, data)
			}
		}
	}
}

// syntheticFrame fills a buffer of the right size with pseudo-random bytes;
// the exact content doesn't matter, only the size and the fact that it
// changes frame to frame so a reader can tell frames apart.
func syntheticFrame(size int) []byte {
	buf := make([]byte, size)
	rand.Read(buf)
	return buf
}
