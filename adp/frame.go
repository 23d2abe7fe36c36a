package adp

import (
	"encoding/binary"
	"fmt"
)

// Frame is a view over a single frame inclusive of its trailing checksum.
type Frame []byte

func (f Frame) Beams() int {
	return int(f[BeamCountOffset])
}

func (f Frame) Cells() int {
	return int(binary.LittleEndian.Uint16(f[CellCountOffset:]))
}

// Body is everything covered by the checksum, sync marker included.
func (f Frame) Body() []byte {
	return f[:len(f)-ChecksumSizeBytes]
}

func (f Frame) StoredChecksum() uint16 {
	return binary.LittleEndian.Uint16(f[len(f)-ChecksumSizeBytes:])
}

func (f Frame) ComputedChecksum() uint16 {
	return Checksum(f.Body())
}

func (f Frame) Valid() bool {
	return len(f) >= HeaderSizeBytes+ChecksumSizeBytes &&
		f[0] == SyncPattern[0] && f[1] == SyncPattern[1] && f[2] == SyncPattern[2] &&
		f.StoredChecksum() == f.ComputedChecksum()
}

// EncodeFrame builds a valid frame without auxiliary segments. The payload holds the per cell
// samples and must be exactly SampleSizeBytes*cells*beams long, a nil payload is zero filled.
// Header fields other than the sync marker, beams and cells are left zeroed.
func EncodeFrame(beams int, cells int, payload []byte) (Frame, error) {
	if beams < MinBeams || beams > MaxBeams {
		return nil, fmt.Errorf("number of beams must be %d or %d, but it is %d: %w", MinBeams, MaxBeams, beams, ErrInvalidGeometry)
	}
	if cells < 0 || cells > 0xFFFF {
		return nil, fmt.Errorf("number of cells must fit into 16 bits, but it is %d: %w", cells, ErrInvalidGeometry)
	}

	sampleBytes := SampleSizeBytes * cells * beams
	if payload != nil && len(payload) != sampleBytes {
		return nil, fmt.Errorf("payload size mismatch, expected %d but was %d", sampleBytes, len(payload))
	}

	length := FrameLengthFor(beams, cells, StreamFlags{})
	frame := make(Frame, length+ChecksumSizeBytes)
	copy(frame, SyncPattern[:])
	frame[BeamCountOffset] = byte(beams)
	binary.LittleEndian.PutUint16(frame[CellCountOffset:], uint16(cells))
	copy(frame[HeaderSizeBytes:length], payload)
	binary.LittleEndian.PutUint16(frame[length:], Checksum(frame[:length]))
	return frame, nil
}
