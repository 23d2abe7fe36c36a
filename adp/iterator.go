package adp

import (
	"context"
	"encoding/binary"
	"log/slog"

	"github.com/thomasjungblut/go-adpscan/adp/syncsearch"
)

// FrameIterator walks the verified frames of a buffer in increasing offset order.
type FrameIterator struct {
	buf         []byte
	frameLength int
	pos         int
	// last is the final offset that can still be a candidate, inclusive
	last int

	candidates int
	mismatches int

	logger *slog.Logger
	debug  bool
}

// Next returns the offset of the next frame with a valid checksum, or Done.
func (it *FrameIterator) Next() (int, error) {
	for {
		offset, valid, ok := it.nextCandidate()
		if !ok {
			return 0, Done
		}
		if valid {
			return offset, nil
		}
	}
}

// Candidates returns the number of sync markers checked so far.
func (it *FrameIterator) Candidates() int {
	return it.candidates
}

func (it *FrameIterator) ChecksumMismatches() int {
	return it.mismatches
}

// nextCandidate moves to the next sync marker and verifies it. Every scan path goes through here.
func (it *FrameIterator) nextCandidate() (offset int, valid bool, ok bool) {
	if it.pos > it.last {
		return -1, false, false
	}

	offset = syncsearch.FindSyncPattern(it.buf, it.pos, it.last)
	if offset < 0 {
		it.pos = it.last + 1
		return -1, false, false
	}
	it.pos = offset + 1
	it.candidates++

	computed := Checksum(it.buf[offset : offset+it.frameLength])
	stored := binary.LittleEndian.Uint16(it.buf[offset+it.frameLength:])
	valid = computed == stored
	if !valid {
		it.mismatches++
	}

	if it.debug {
		it.logger.LogAttrs(context.Background(), slog.LevelDebug, "checked frame candidate",
			slog.Int("offset", offset),
			slog.Bool("valid", valid),
			slog.Int("checksum", int(computed)),
			slog.Int("stored_checksum", int(stored)))
	}

	return offset, valid, true
}

// NewFrameIterator creates an iterator over all candidates of buf that leave DefaultScanSlack bytes
// behind their body.
func NewFrameIterator(buf []byte, geometry Geometry) *FrameIterator {
	return newFrameIterator(buf, geometry.FrameLength, 0, lastCandidate(len(buf), geometry.FrameLength, DefaultScanSlack), nil)
}

func newFrameIterator(buf []byte, frameLength int, from int, last int, logger *slog.Logger) *FrameIterator {
	it := &FrameIterator{
		buf:         buf,
		frameLength: frameLength,
		pos:         from,
		last:        last,
		logger:      logger,
	}
	it.debug = logger != nil && logger.Enabled(context.Background(), slog.LevelDebug)
	return it
}

func lastCandidate(bufLen int, frameLength int, slack int) int {
	return bufLen - slack - frameLength
}
