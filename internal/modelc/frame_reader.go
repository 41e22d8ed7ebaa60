package modelc

import (
	"log"

	"github.com/grthilak-rl/vas-kernel/internal/shm"
	"github.com/grthilak-rl/vas-kernel/pkg/wire"
)

// ReadFrame loads the raw NV12 bytes referenced by a request's
// frame_reference, validating the metadata's format. It never raises: any
// failure (missing file, bad metadata, short read) yields a nil result, a
// condition readers must treat as expected rather than exceptional.
func ReadFrame(frameReference string, meta wire.FrameMetadata) []byte {
	if meta.Format != "NV12" {
		log.Printf("[ModelContainer] rejecting frame_reference=%s: unsupported format %q", frameReference, meta.Format)
		return nil
	}
	if meta.Width <= 0 || meta.Height <= 0 {
		log.Printf("[ModelContainer] rejecting frame_reference=%s: bad resolution %dx%d", frameReference, meta.Width, meta.Height)
		return nil
	}

	wantSize := uint64(meta.Width*meta.Height + (meta.Width*meta.Height)/2)
	data, err := shm.ReadData(frameReference, wantSize)
	if err != nil {
		log.Printf("[ModelContainer] frame read failed for %s: %v", frameReference, err)
		return nil
	}
	return data
}
