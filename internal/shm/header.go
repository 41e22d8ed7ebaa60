// Package shm implements the shared-memory frame export side of C1: the
// fixed 64-byte metadata header and the write-to-temp-then-rename exporter.
package shm

import (
	"encoding/binary"
	"fmt"

	"github.com/grthilak-rl/vas-kernel/internal/frame"
)

const (
	// HeaderSize is the fixed, frozen size of frame.meta. New fields consume
	// the reserved region; existing offsets never move.
	HeaderSize = 64

	headerVersion = uint32(1)

	pixelFormatNV12Code = uint32(0)
)

// Header is the decoded form of frame.meta.
type Header struct {
	Version      uint32
	FrameID      uint64
	TimestampNs  uint64
	Width        uint32
	Height       uint32
	PixelFormat  uint32
	Stride       uint32
	DataSize     uint64
}

// EncodePixelFormat maps the closed pixel-format set to its wire code.
func EncodePixelFormat(pf frame.PixelFormat) (uint32, error) {
	switch pf {
	case frame.PixelFormatNV12:
		return pixelFormatNV12Code, nil
	default:
		return 0, fmt.Errorf("%w: %s", frame.ErrUnsupportedPixelFormat, pf)
	}
}

// Pack serializes a Header into the fixed 64-byte little-endian layout
// described in the wire format: version, frame_id, timestamp_ns, width,
// height, pixel_format, stride, data_size, then 20 reserved zero bytes.
func Pack(h Header) [HeaderSize]byte {
	var buf [HeaderSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], h.Version)
	binary.LittleEndian.PutUint64(buf[4:12], h.FrameID)
	binary.LittleEndian.PutUint64(buf[12:20], h.TimestampNs)
	binary.LittleEndian.PutUint32(buf[20:24], h.Width)
	binary.LittleEndian.PutUint32(buf[24:28], h.Height)
	binary.LittleEndian.PutUint32(buf[28:32], h.PixelFormat)
	binary.LittleEndian.PutUint32(buf[32:36], h.Stride)
	binary.LittleEndian.PutUint64(buf[36:44], h.DataSize)
	// buf[44:64] stays zero: reserved.
	return buf
}

// ErrShortHeader is returned by Unpack when given fewer than HeaderSize bytes.
var ErrShortHeader = fmt.Errorf("frame.meta shorter than %d bytes", HeaderSize)

// Unpack parses a frame.meta buffer. Readers use a change in FrameID to
// detect new data; an unparseable or short header is an operational failure,
// never a panic.
func Unpack(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrShortHeader
	}
	return Header{
		Version:     binary.LittleEndian.Uint32(buf[0:4]),
		FrameID:     binary.LittleEndian.Uint64(buf[4:12]),
		TimestampNs: binary.LittleEndian.Uint64(buf[12:20]),
		Width:       binary.LittleEndian.Uint32(buf[20:24]),
		Height:      binary.LittleEndian.Uint32(buf[24:28]),
		PixelFormat: binary.LittleEndian.Uint32(buf[28:32]),
		Stride:      binary.LittleEndian.Uint32(buf[32:36]),
		DataSize:    binary.LittleEndian.Uint64(buf[36:44]),
	}, nil
}
