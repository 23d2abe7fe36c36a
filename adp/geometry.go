package adp

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/thomasjungblut/go-adpscan/adp/syncsearch"
)

// StreamFlags selects the auxiliary segments that extend every frame. None of them can be decoded yet,
// so any enabled stream is rejected by Validate.
type StreamFlags struct {
	CTD         bool
	GPS         bool
	BottomTrack bool
}

func (f StreamFlags) Validate() error {
	var enabled []string
	if f.CTD {
		enabled = append(enabled, "CTD")
	}
	if f.GPS {
		enabled = append(enabled, "GPS")
	}
	if f.BottomTrack {
		enabled = append(enabled, "bottom-track")
	}

	if len(enabled) > 0 {
		return fmt.Errorf("cannot read SonTek ADP data with %s data: %w", strings.Join(enabled, ", "), ErrUnsupportedAuxiliaryStream)
	}
	return nil
}

// Geometry is derived once per buffer from its first frame and assumed for all frames thereafter.
type Geometry struct {
	Beams int
	Cells int
	// FrameLength is the number of bytes covered by the checksum, the checksum itself is not included.
	FrameLength int
	// ProbeOffset is where the frame used for probing starts.
	ProbeOffset int
}

// FrameSize is the on-wire size of a frame, including its checksum.
func (g Geometry) FrameSize() int {
	return g.FrameLength + ChecksumSizeBytes
}

func (g Geometry) String() string {
	return fmt.Sprintf("beams=%d cells=%d frameLength=%d", g.Beams, g.Cells, g.FrameLength)
}

// FrameLengthFor returns the checksummed length of a frame with the given layout.
func FrameLengthFor(beams int, cells int, flags StreamFlags) int {
	length := HeaderSizeBytes
	if flags.CTD {
		length += CTDSizeBytes
	}
	if flags.GPS {
		length += GPSSizeBytes
	}
	if flags.BottomTrack {
		length += BottomTrackSizeBytes
	}
	return length + SampleSizeBytes*cells*beams
}

// ProbeGeometry looks for the first sync marker within the first ProbeWindowBytes and reads
// the beam and cell counts from the header that follows it. Only the first marker is considered.
func ProbeGeometry(buf []byte, flags StreamFlags) (Geometry, error) {
	if err := flags.Validate(); err != nil {
		return Geometry{}, err
	}

	if len(buf) < MinBufferSizeBytes {
		return Geometry{}, fmt.Errorf("cannot read SonTek ADP from a buffer with fewer than %d bytes, got %d: %w",
			MinBufferSizeBytes, len(buf), ErrInsufficientData)
	}

	offset := syncsearch.FindSyncPattern(buf, 0, LastProbeOffset)
	if offset < 0 {
		return Geometry{}, fmt.Errorf("cannot determine number of beams or cells, based on first %d bytes in buffer: %w",
			ProbeWindowBytes, ErrGeometryNotFound)
	}

	if offset+CellCountOffset+2 > len(buf) {
		return Geometry{}, fmt.Errorf("header of first frame at offset %d is truncated: %w", offset, ErrInvalidGeometry)
	}

	beams := int(buf[offset+BeamCountOffset])
	cells := int(binary.LittleEndian.Uint16(buf[offset+CellCountOffset:]))
	if beams < MinBeams || beams > MaxBeams {
		return Geometry{}, fmt.Errorf("number of beams must be %d or %d, but it is %d (frame at offset %d): %w",
			MinBeams, MaxBeams, beams, offset, ErrInvalidGeometry)
	}

	return Geometry{
		Beams:       beams,
		Cells:       cells,
		FrameLength: FrameLengthFor(beams, cells, flags),
		ProbeOffset: offset,
	}, nil
}
