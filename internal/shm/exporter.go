package shm

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/grthilak-rl/vas-kernel/internal/frame"
	"github.com/grthilak-rl/vas-kernel/internal/platform/paths"
)

// Exporter writes the latest frame for one camera to shared memory,
// best-effort. ExportFrame and Cleanup never return an error to a caller
// expecting the decode writer to keep running regardless: failures are
// logged and swallowed (spec §4.1 failure isolation). Initialize logs a
// failure and also returns it, so the caller can decide whether to export.
type Exporter struct {
	cameraID string
	dir      string
}

// NewExporter builds an exporter for a camera under baseDir. Pass "" for
// baseDir to use paths.ResolveShmRoot().
func NewExporter(cameraID, baseDir string) *Exporter {
	if baseDir == "" {
		baseDir = paths.ResolveShmRoot()
	}
	return &Exporter{
		cameraID: cameraID,
		dir:      filepath.Join(baseDir, cameraID),
	}
}

// Dir returns the camera's export directory.
func (e *Exporter) Dir() string {
	return e.dir
}

func (e *Exporter) dataPath() string { return filepath.Join(e.dir, "frame.data") }
func (e *Exporter) metaPath() string { return filepath.Join(e.dir, "frame.meta") }

// Initialize creates the camera's export directory and touches both files
// with the expected permissions, so first-time readers never see ENOENT
// mid-race. Called on stream start when the export feature flag is true.
func (e *Exporter) Initialize() error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		log.Printf("[Exporter] camera=%s mkdir failed: %v", e.cameraID, err)
		return err
	}
	for _, p := range []string{e.dataPath(), e.metaPath()} {
		f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			log.Printf("[Exporter] camera=%s touch %s failed: %v", e.cameraID, p, err)
			return err
		}
		f.Close()
		if err := os.Chmod(p, 0o644); err != nil {
			log.Printf("[Exporter] camera=%s chmod %s failed: %v", e.cameraID, p, err)
		}
	}
	return nil
}

// ExportFrame writes data then the metadata header, each via
// write-to-temp-then-rename. data must be written before meta: meta is the
// synchronization point a reader polls for a new frame_id. Any failure is
// logged and ignored; it never propagates to the decode writer.
func (e *Exporter) ExportFrame(frameID, timestampNs uint64, width, height int, pixelFormat frame.PixelFormat, stride int, data []byte) {
	pfCode, err := EncodePixelFormat(pixelFormat)
	if err != nil {
		log.Printf("[Exporter] camera=%s frame=%d bad pixel format: %v", e.cameraID, frameID, err)
		return
	}

	if err := writeThenRename(e.dataPath(), data); err != nil {
		log.Printf("[Exporter] camera=%s frame=%d data write failed: %v", e.cameraID, frameID, err)
		return
	}

	h := Header{
		Version:     headerVersion,
		FrameID:     frameID,
		TimestampNs: timestampNs,
		Width:       uint32(width),
		Height:      uint32(height),
		PixelFormat: pfCode,
		Stride:      uint32(stride),
		DataSize:    uint64(len(data)),
	}
	hdr := Pack(h)
	if err := writeThenRename(e.metaPath(), hdr[:]); err != nil {
		log.Printf("[Exporter] camera=%s frame=%d meta write failed: %v", e.cameraID, frameID, err)
		return
	}
}

// Cleanup removes the camera's export directory on stream stop. Best-effort:
// errors are logged, never returned.
func (e *Exporter) Cleanup() {
	if err := os.RemoveAll(e.dir); err != nil {
		log.Printf("[Exporter] camera=%s cleanup failed: %v", e.cameraID, err)
	}
}

func writeThenRename(finalPath string, data []byte) error {
	tmpPath := finalPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", tmpPath, finalPath, err)
	}
	return nil
}
