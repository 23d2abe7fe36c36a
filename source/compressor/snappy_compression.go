package compressor

import (
	"bytes"
	"io"

	"github.com/golang/snappy"
)

// SnappyCompressor uses the snappy framing format, which is what the snappy CLI tools produce for files.
type SnappyCompressor struct {
}

func (c *SnappyCompressor) Compress(capture []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := snappy.NewBufferedWriter(&buf)
	_, err := writer.Write(capture)
	if err != nil {
		return nil, err
	}
	err = writer.Close()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *SnappyCompressor) Decompress(buf []byte) ([]byte, error) {
	return c.DecompressFrom(bytes.NewReader(buf))
}

func (c *SnappyCompressor) DecompressFrom(r io.Reader) ([]byte, error) {
	return io.ReadAll(snappy.NewReader(r))
}
