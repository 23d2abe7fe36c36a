// Package compressor handles compressed capture files, instruments write plain bytes
// but archived captures are frequently gzipped or snappy framed.
package compressor

import "io"

type CompressionI interface {
	// compresses the given capture
	Compress(capture []byte) ([]byte, error)
	// decompresses the given byte buffer
	Decompress(buf []byte) ([]byte, error)
	// decompresses everything r yields, for sources that are not in memory already
	DecompressFrom(r io.Reader) ([]byte, error)
}
