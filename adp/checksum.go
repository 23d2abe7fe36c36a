package adp

import (
	"encoding/binary"
	"hash"
)

// Checksum16 is the running frame checksum: ChecksumSeed plus the sum of all bytes, wrapping at 2^16.
// It satisfies hash.Hash, Sum appends the value little-endian as it is stored behind a frame body.
// The zero value is ready to use.
type Checksum16 struct {
	// sum of all bytes written so far, without the seed
	sum uint16
}

var _ hash.Hash = (*Checksum16)(nil)

func (c *Checksum16) Write(p []byte) (int, error) {
	c.sum = addBytes(c.sum, p)
	return len(p), nil
}

func (c *Checksum16) Sum(b []byte) []byte {
	return binary.LittleEndian.AppendUint16(b, c.Sum16())
}

func (c *Checksum16) Sum16() uint16 {
	return ChecksumSeed + c.sum
}

func (c *Checksum16) Reset() {
	c.sum = 0
}

func (c *Checksum16) Size() int {
	return ChecksumSizeBytes
}

func (c *Checksum16) BlockSize() int {
	return 1
}

func NewChecksum16() *Checksum16 {
	return &Checksum16{}
}

// Checksum computes the checksum over a complete frame body, sync marker included.
func Checksum(body []byte) uint16 {
	return addBytes(ChecksumSeed, body)
}

func addBytes(sum uint16, p []byte) uint16 {
	for _, b := range p {
		sum += uint16(b)
	}
	return sum
}
