package frame

import (
	"sync"
	"time"

	"github.com/grthilak-rl/vas-kernel/internal/telemetry"
)

// Slot is one occupied entry in a camera's ring buffer.
type Slot struct {
	CameraID     string
	FrameID      uint64
	Timestamp    time.Time
	Width        int
	Height       int
	PixelFormat  PixelFormat
	Stride       int
	Data         []byte
}

// Stats is a read-only snapshot of a ring buffer's counters.
type Stats struct {
	CameraID           string
	Capacity           int
	TotalFramesWritten uint64
	TotalFramesDropped uint64
	Occupied           int
}

// RingBuffer is a fixed-capacity, single-writer, multi-reader ring of decoded
// frames for one camera. Readers take the read side of mu to copy out of the
// slot array. The writer takes the write side of the same mu only to install
// a slot and advance the write position, so a Push waits for any reader
// snapshot in progress; it is not lock-free.
type RingBuffer struct {
	cameraID string
	capacity int

	// nextFrameID is only ever touched by the single writer goroutine.
	// writePos is read by GetLatest and reset by Clear, so it is only read
	// or written under mu.
	writePos    int
	nextFrameID uint64

	mu                 sync.RWMutex
	slots              []*Slot
	totalFramesWritten uint64
	totalFramesDropped uint64
}

// NewRingBuffer constructs an empty ring buffer for a camera. Capacity
// defaults to 30 when zero or negative is passed.
func NewRingBuffer(cameraID string, capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 30
	}
	return &RingBuffer{
		cameraID: cameraID,
		capacity: capacity,
		slots:    make([]*Slot, capacity),
	}
}

// Push assigns the next monotonic frame_id and writes it into the ring,
// overwriting the oldest slot on overflow. Single-writer discipline: this
// must only ever be called from the decode thread for this camera. It holds
// the write lock only while installing the slot and advancing the write
// position, and waits for readers that currently hold the read lock.
func (r *RingBuffer) Push(timestamp time.Time, width, height int, pixelFormat PixelFormat, stride int, data []byte) uint64 {
	frameID := r.nextFrameID
	r.nextFrameID++

	slot := &Slot{
		CameraID:    r.cameraID,
		FrameID:     frameID,
		Timestamp:   timestamp,
		Width:       width,
		Height:      height,
		PixelFormat: pixelFormat,
		Stride:      stride,
		Data:        data,
	}

	r.mu.Lock()
	pos := r.writePos
	r.writePos = (r.writePos + 1) % r.capacity
	if r.slots[pos] != nil {
		r.totalFramesDropped++
		telemetry.RecordFrameDropped(r.cameraID)
	}
	r.slots[pos] = slot
	r.totalFramesWritten++
	r.mu.Unlock()

	telemetry.RecordFrameIngested(r.cameraID)
	return frameID
}

// GetLatest returns the most recently written slot, or nil if the buffer is
// still empty.
func (r *RingBuffer) GetLatest() *Slot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pos := (r.writePos - 1 + r.capacity) % r.capacity
	return r.slots[pos]
}

// GetFrame scans for a slot by frame_id. O(capacity) by design.
func (r *RingBuffer) GetFrame(frameID uint64) *Slot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.slots {
		if s != nil && s.FrameID == frameID {
			return s
		}
	}
	return nil
}

// GetAllFrames returns a snapshot of all currently occupied slots, in no
// particular order.
func (r *RingBuffer) GetAllFrames() []*Slot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Slot, 0, r.capacity)
	for _, s := range r.slots {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Clear empties the ring and resets write position, but keeps cumulative
// counters intact (they describe lifetime activity, not current contents).
func (r *RingBuffer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.slots {
		r.slots[i] = nil
	}
	r.writePos = 0
}

// GetStats returns a read-only snapshot of the buffer's counters.
func (r *RingBuffer) GetStats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	occupied := 0
	for _, s := range r.slots {
		if s != nil {
			occupied++
		}
	}

	return Stats{
		CameraID:           r.cameraID,
		Capacity:           r.capacity,
		TotalFramesWritten: r.totalFramesWritten,
		TotalFramesDropped: r.totalFramesDropped,
		Occupied:           occupied,
	}
}
