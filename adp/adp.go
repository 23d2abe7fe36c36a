// Package adp locates checksummed profile frames inside raw SonTek ADP captures.
//
// A capture is scanned in two steps: the geometry (beams, cells and thus the frame length)
// is probed from the first frame found within the leading ProbeWindowBytes, then the whole
// buffer is scanned for sync markers and every candidate is verified with its trailing
// 16 bit checksum. Offsets are reported 0-based in increasing order.
package adp

import (
	"errors"
)

// SyncPattern starts every frame, the third byte doubles as the header size.
var SyncPattern = [3]byte{0xA5, 0x10, 0x50}

const HeaderSizeBytes = 80
const ChecksumSizeBytes = 2
const ChecksumSeed uint16 = 0xA596

// SampleSizeBytes is the size of the per cell and beam sample data (velocity, std dev, amplitude).
const SampleSizeBytes = 4

const (
	BeamCountOffset = 26
	CellCountOffset = 30
)

const (
	CTDSizeBytes         = 16
	GPSSizeBytes         = 40
	BottomTrackSizeBytes = 18
)

const (
	MinBeams = 2
	MaxBeams = 3
)

// ProbeWindowBytes is the prefix in which the first frame has to start for the geometry probe.
const ProbeWindowBytes = 1000
const MinBufferSizeBytes = ProbeWindowBytes

// LastProbeOffset is the final offset the probe checks for a sync marker, the last three bytes
// of the window are never a frame start.
const LastProbeOffset = ProbeWindowBytes - len(SyncPattern) - 1

// DefaultScanSlack is the number of bytes reserved past a frame body when choosing the last candidate.
const DefaultScanSlack = 3

var ErrUnsupportedAuxiliaryStream = errors.New("unsupported auxiliary stream")
var ErrInsufficientData = errors.New("insufficient data")
var ErrGeometryNotFound = errors.New("geometry not found")
var ErrInvalidGeometry = errors.New("invalid geometry")

// Done iterator pattern as described in https://github.com/GoogleCloudPlatform/google-cloud-go/wiki/Iterator-Guidelines
var Done = errors.New("no more items in iterator")
