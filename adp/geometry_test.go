package adp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeGeometryDeterminism(t *testing.T) {
	tests := []struct {
		beams  int
		cells  int
		offset int
	}{
		{2, 0, 0},
		{2, 10, 0},
		{3, 10, 17},
		{3, 1, 500},
		{2, 300, 996},
		{3, 65535, 3},
	}

	for _, test := range tests {
		frame := testFrame(t, test.beams, test.cells)
		buf := make([]byte, max(MinBufferSizeBytes, test.offset+len(frame)+10))
		copy(buf[test.offset:], frame)

		g, err := ProbeGeometry(buf, StreamFlags{})
		require.NoError(t, err)
		assert.Equal(t, test.beams, g.Beams)
		assert.Equal(t, test.cells, g.Cells)
		assert.Equal(t, 80+4*test.beams*test.cells, g.FrameLength)
		assert.Equal(t, g.FrameLength+2, g.FrameSize())
		assert.Equal(t, test.offset, g.ProbeOffset)
	}
}

func TestProbeGeometryIgnoresChecksum(t *testing.T) {
	buf := newTestBuffer(t, 2000, 2, 10, 40)
	// break the checksum, the probe only reads the header
	buf[40+HeaderSizeBytes] ^= 0xFF

	g, err := ProbeGeometry(buf, StreamFlags{})
	require.NoError(t, err)
	assert.Equal(t, 40, g.ProbeOffset)
	assert.Equal(t, 160, g.FrameLength)
}

func TestProbeGeometryInsufficientData(t *testing.T) {
	_, err := ProbeGeometry(newTestBuffer(t, 999, 2, 10, 0), StreamFlags{})
	assert.True(t, errors.Is(err, ErrInsufficientData))
	assert.Equal(t, "cannot read SonTek ADP from a buffer with fewer than 1000 bytes, got 999: insufficient data", err.Error())

	_, err = ProbeGeometry(nil, StreamFlags{})
	assert.True(t, errors.Is(err, ErrInsufficientData))

	_, err = ProbeGeometry(newTestBuffer(t, 1000, 2, 10, 0), StreamFlags{})
	assert.NoError(t, err)
}

func TestProbeGeometryNotFound(t *testing.T) {
	_, err := ProbeGeometry(make([]byte, 5000), StreamFlags{})
	assert.True(t, errors.Is(err, ErrGeometryNotFound))

	// the first marker starts just outside of the probe window
	for _, offset := range []int{997, 998} {
		buf := newTestBuffer(t, 5000, 2, 10, offset)
		_, err = ProbeGeometry(buf, StreamFlags{})
		assert.Truef(t, errors.Is(err, ErrGeometryNotFound), "marker at %d must not be probed", offset)
	}

	// the frame itself is still found when the geometry is known
	buf := newTestBuffer(t, 5000, 2, 10, 997)
	result, err := ScanFrames(buf, Geometry{Beams: 2, Cells: 10, FrameLength: 160})
	require.NoError(t, err)
	assert.Equal(t, []int{997}, result.Offsets)
}

func TestProbeGeometryInvalidBeams(t *testing.T) {
	for _, beams := range []byte{0, 1, 4, 255} {
		buf := newTestBuffer(t, 2000, 2, 10, 100)
		buf[100+BeamCountOffset] = beams

		_, err := ProbeGeometry(buf, StreamFlags{})
		assert.Truef(t, errors.Is(err, ErrInvalidGeometry), "beams %d should be rejected", beams)
	}
}

func TestProbeGeometryStopsAtFirstMarker(t *testing.T) {
	buf := newTestBuffer(t, 2000, 2, 10, 200)
	// a stray marker with a corrupt header before the first real frame
	copy(buf[10:], SyncPattern[:])
	buf[10+BeamCountOffset] = 9

	_, err := ProbeGeometry(buf, StreamFlags{})
	assert.True(t, errors.Is(err, ErrInvalidGeometry))
}

func TestProbeGeometryTruncatedHeader(t *testing.T) {
	buf := make([]byte, 1000)
	copy(buf[LastProbeOffset:], SyncPattern[:])

	_, err := ProbeGeometry(buf, StreamFlags{})
	assert.True(t, errors.Is(err, ErrInvalidGeometry))
}

func TestProbeGeometryRejectsAuxStreams(t *testing.T) {
	flags := []StreamFlags{
		{CTD: true},
		{GPS: true},
		{BottomTrack: true},
		{CTD: true, GPS: true, BottomTrack: true},
	}

	for _, f := range flags {
		// regardless of the buffer contents
		_, err := ProbeGeometry(newTestBuffer(t, 2000, 2, 10, 0), f)
		assert.True(t, errors.Is(err, ErrUnsupportedAuxiliaryStream))
		_, err = ProbeGeometry(nil, f)
		assert.True(t, errors.Is(err, ErrUnsupportedAuxiliaryStream))
	}

	err := StreamFlags{CTD: true, BottomTrack: true}.Validate()
	assert.Equal(t, "cannot read SonTek ADP data with CTD, bottom-track data: unsupported auxiliary stream", err.Error())
	assert.NoError(t, StreamFlags{}.Validate())
}

func TestFrameLengthForAuxStreams(t *testing.T) {
	assert.Equal(t, 80+4*3*10, FrameLengthFor(3, 10, StreamFlags{}))
	assert.Equal(t, 80+16+4*3*10, FrameLengthFor(3, 10, StreamFlags{CTD: true}))
	assert.Equal(t, 80+40+4*2*10, FrameLengthFor(2, 10, StreamFlags{GPS: true}))
	assert.Equal(t, 80+18, FrameLengthFor(2, 0, StreamFlags{BottomTrack: true}))
	assert.Equal(t, 80+16+40+18+4*2*5, FrameLengthFor(2, 5, StreamFlags{CTD: true, GPS: true, BottomTrack: true}))
}
