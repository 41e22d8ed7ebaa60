package frame

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateGeometry(t *testing.T) {
	t.Run("valid NV12", func(t *testing.T) {
		g, err := ValidateGeometry(1920, 1080, PixelFormatNV12)
		require.NoError(t, err)
		assert.Equal(t, 1920, g.Stride)
		assert.Equal(t, 1920*1080+(1920*1080)/2, g.DataSize)
	})

	t.Run("rejects non-NV12 format", func(t *testing.T) {
		_, err := ValidateGeometry(1920, 1080, PixelFormat("YUYV"))
		assert.ErrorIs(t, err, ErrUnsupportedPixelFormat)
	})

	t.Run("rejects odd dimensions", func(t *testing.T) {
		_, err := ValidateGeometry(1921, 1080, PixelFormatNV12)
		assert.ErrorIs(t, err, ErrInvalidDimensions)
	})

	t.Run("rejects non-positive dimensions", func(t *testing.T) {
		_, err := ValidateGeometry(0, 1080, PixelFormatNV12)
		assert.ErrorIs(t, err, ErrInvalidDimensions)
	})
}

// Ring overflow seed scenario (spec §8): capacity 3, push frame_ids 0..4,
// expect 3 occupied slots, 2 dropped, latest is 4, frame 1 is gone.
func TestRingBuffer_Overflow(t *testing.T) {
	rb := NewRingBuffer("camA", 3)

	now := time.Unix(0, 0)
	var lastID uint64
	for i := 0; i < 5; i++ {
		lastID = rb.Push(now.Add(time.Duration(i)*time.Millisecond), 2, 2, PixelFormatNV12, 2, []byte{0, 1, 2, 3, 4, 5})
	}

	stats := rb.GetStats()
	assert.Equal(t, 3, stats.Occupied)
	assert.Equal(t, uint64(2), stats.TotalFramesDropped)
	assert.Equal(t, uint64(5), stats.TotalFramesWritten)

	latest := rb.GetLatest()
	require.NotNil(t, latest)
	assert.Equal(t, uint64(4), latest.FrameID)
	assert.Equal(t, uint64(4), lastID)

	assert.Nil(t, rb.GetFrame(1))
	assert.NotNil(t, rb.GetFrame(2))
	assert.NotNil(t, rb.GetFrame(3))
	assert.NotNil(t, rb.GetFrame(4))
}

func TestRingBuffer_MonotonicFrameIDs(t *testing.T) {
	rb := NewRingBuffer("camA", 10)
	for i := 0; i < 5; i++ {
		id := rb.Push(time.Unix(int64(i), 0), 2, 2, PixelFormatNV12, 2, []byte{0, 1, 2, 3, 4, 5})
		assert.Equal(t, uint64(i), id)
	}
	stats := rb.GetStats()
	assert.Equal(t, 5, stats.Occupied)
	assert.Equal(t, uint64(0), stats.TotalFramesDropped)
}

func TestRingBuffer_EmptyGetLatest(t *testing.T) {
	rb := NewRingBuffer("camA", 3)
	assert.Nil(t, rb.GetLatest())
}

func TestRingBuffer_Clear(t *testing.T) {
	rb := NewRingBuffer("camA", 3)
	rb.Push(time.Unix(0, 0), 2, 2, PixelFormatNV12, 2, []byte{0, 1, 2, 3, 4, 5})
	rb.Clear()
	assert.Nil(t, rb.GetLatest())
	stats := rb.GetStats()
	assert.Equal(t, 0, stats.Occupied)
	// Cumulative counters survive a clear.
	assert.Equal(t, uint64(1), stats.TotalFramesWritten)
}

func TestRingBuffer_GetAllFrames(t *testing.T) {
	rb := NewRingBuffer("camA", 3)
	for i := 0; i < 2; i++ {
		rb.Push(time.Unix(int64(i), 0), 2, 2, PixelFormatNV12, 2, []byte{0, 1, 2, 3, 4, 5})
	}
	all := rb.GetAllFrames()
	assert.Len(t, all, 2)
}
