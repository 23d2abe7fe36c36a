package adp

// Result holds the verified frames of one buffer.
// Offsets are 0-based and strictly increasing, an empty Offsets means no frame was found.
type Result struct {
	Geometry Geometry
	Offsets  []int
	// Candidates counts sync markers that were checked, ChecksumMismatches those that failed verification.
	Candidates         int
	ChecksumMismatches int
}

func (r *Result) Found() bool {
	return len(r.Offsets) > 0
}

func (r *Result) Len() int {
	return len(r.Offsets)
}

// OneBasedOffsets returns the offsets shifted by one, as used by R and other 1-indexed hosts.
func (r *Result) OneBasedOffsets() []int {
	shifted := make([]int, len(r.Offsets))
	for i, o := range r.Offsets {
		shifted[i] = o + 1
	}
	return shifted
}

// LegacyOffsets returns 1-based offsets, or the single sentinel 0 when no frame was found.
// This mirrors the encoding of the old R binding, new code should use Offsets and Found.
func (r *Result) LegacyOffsets() []int {
	if !r.Found() {
		return []int{0}
	}
	return r.OneBasedOffsets()
}

// Frame returns the i-th verified frame of buf, buf must be the buffer the result was computed from.
func (r *Result) Frame(buf []byte, i int) Frame {
	off := r.Offsets[i]
	return buf[off : off+r.Geometry.FrameSize()]
}
