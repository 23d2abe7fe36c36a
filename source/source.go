// Package source acquires capture buffers for the frame scanner: plain or DirectIO file reads into pooled
// buffers, memory mapped files and gzip or snappy compressed captures.
package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/thomasjungblut/go-adpscan/source/compressor"
)

const (
	// never reorder, always append
	CompressionTypeNone   = iota
	CompressionTypeGZIP   = iota
	CompressionTypeSnappy = iota
)

// CompressionTypeAuto derives the compression from the file extension, see CompressionTypeForPath.
const CompressionTypeAuto = -1

const DefaultBufferSize = 1024 * 32

type ReaderI interface {
	// Opens this reader and loads the full capture
	Open() error
	// Bytes returns the capture contents, the slice is only valid until Close is called
	Bytes() ([]byte, error)
	// Closes this reader and releases its buffers
	Close() error
}

func NewCompressorForType(compType int) (compressor.CompressionI, error) {
	switch compType {
	case CompressionTypeNone:
		return nil, nil
	case CompressionTypeGZIP:
		return &compressor.GzipCompressor{}, nil
	case CompressionTypeSnappy:
		return &compressor.SnappyCompressor{}, nil
	}
	return nil, fmt.Errorf("unsupported compression type %d", compType)
}

// CompressionTypeForPath maps ".gz" to gzip and ".sz" or ".snappy" to snappy, everything else is uncompressed.
func CompressionTypeForPath(path string) int {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return CompressionTypeGZIP
	case ".sz", ".snappy":
		return CompressionTypeSnappy
	}
	return CompressionTypeNone
}

// ParseCompressionType accepts "none", "gzip", "snappy" and "auto" (or empty) for extension based detection.
func ParseCompressionType(name string) (int, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return CompressionTypeAuto, nil
	case "none":
		return CompressionTypeNone, nil
	case "gzip", "gz":
		return CompressionTypeGZIP, nil
	case "snappy", "sz":
		return CompressionTypeSnappy, nil
	}
	return 0, fmt.Errorf("unknown compression type '%s'", name)
}
