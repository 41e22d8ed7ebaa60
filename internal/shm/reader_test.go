package shm

import (
	"testing"

	"github.com/grthilak-rl/vas-kernel/internal/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMetaRoundTrip(t *testing.T) {
	base := t.TempDir()
	e := NewExporter("camA", base)
	require.NoError(t, e.Initialize())

	data := make([]byte, 2*2+(2*2)/2)
	e.ExportFrame(3, 100, 2, 2, frame.PixelFormatNV12, 2, data)

	hdr, err := ReadMeta(e.metaPath())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), hdr.FrameID)
}

func TestReadMetaAbsentFile(t *testing.T) {
	_, err := ReadMeta("/nonexistent/path/frame.meta")
	assert.Error(t, err)
}

func TestReadDataRoundTrip(t *testing.T) {
	base := t.TempDir()
	e := NewExporter("camA", base)
	require.NoError(t, e.Initialize())

	data := []byte{1, 2, 3, 4, 5, 6}
	e.ExportFrame(1, 1, 2, 2, frame.PixelFormatNV12, 2, data)

	got, err := ReadData(e.dataPath(), uint64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestReadDataTooShort(t *testing.T) {
	base := t.TempDir()
	e := NewExporter("camA", base)
	require.NoError(t, e.Initialize())

	_, err := ReadData(e.dataPath(), 999)
	assert.Error(t, err)
}
