// Package syncsearch finds the three byte SonTek ADP sync marker (0xA5 0x10 0x50) in raw buffers.
package syncsearch

import "bytes"

const (
	syncByte1 = 0xA5
	syncByte2 = 0x10
	syncByte3 = 0x50
)

// FindSyncPattern returns the first offset in [off, last] where a complete sync marker starts, or -1.
// A last beyond the buffer is clamped to the final position a marker can start at.
func FindSyncPattern(data []byte, off int, last int) int {
	if len(data) < 3 {
		return -1
	}
	if off >= len(data) || off < 0 {
		return -1
	}
	if last > len(data)-3 {
		last = len(data) - 3
	}

	for i := off; i <= last; {
		// skip straight to the next lead byte
		idx := bytes.IndexByte(data[i:last+1], syncByte1)
		if idx < 0 {
			return -1
		}
		i += idx
		if data[i+1] == syncByte2 && data[i+2] == syncByte3 {
			return i
		}
		i++
	}
	return -1
}

// FindAllSyncPatterns finds all occurrences of the sync marker in the data, starting from the given offset.
// Overlapping occurrences are all reported.
func FindAllSyncPatterns(data []byte, off int) []int {
	var results []int
	pos := off
	for {
		next := FindSyncPattern(data, pos, len(data))
		if next < 0 {
			break
		}
		results = append(results, next)
		pos = next + 1
	}

	return results
}
