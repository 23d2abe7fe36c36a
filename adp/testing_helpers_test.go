package adp

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func testPayload(beams int, cells int) []byte {
	payload := make([]byte, SampleSizeBytes*beams*cells)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	return payload
}

func testFrame(t *testing.T, beams int, cells int) Frame {
	frame, err := EncodeFrame(beams, cells, testPayload(beams, cells))
	require.NoError(t, err)
	return frame
}

// newTestBuffer returns a zeroed buffer of the given size with valid frames planted at the offsets.
func newTestBuffer(t *testing.T, size int, beams int, cells int, offsets ...int) []byte {
	buf := make([]byte, size)
	frame := testFrame(t, beams, cells)
	for _, off := range offsets {
		require.LessOrEqualf(t, off+len(frame), size, "frame at %d does not fit", off)
		copy(buf[off:], frame)
	}
	return buf
}

// binaryPutChecksum rewrites the stored checksum after the frame was modified.
func binaryPutChecksum(f Frame) {
	binary.LittleEndian.PutUint16(f[len(f)-ChecksumSizeBytes:], f.ComputedChecksum())
}
