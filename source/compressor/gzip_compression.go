package compressor

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// GzipCompressor reads concatenated gzip members as one capture, which is what appending
// to a .gz log with gzip >> produces. Level defaults to gzip.BestCompression.
type GzipCompressor struct {
	Level int
}

func (c *GzipCompressor) Compress(capture []byte) ([]byte, error) {
	level := c.Level
	if level == 0 {
		level = gzip.BestCompression
	}

	var out bytes.Buffer
	zw, err := gzip.NewWriterLevel(&out, level)
	if err != nil {
		return nil, fmt.Errorf("gzip level %d: %w", level, err)
	}
	if _, err := zw.Write(capture); err != nil {
		_ = zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (c *GzipCompressor) Decompress(buf []byte) ([]byte, error) {
	return c.DecompressFrom(bytes.NewReader(buf))
}

func (c *GzipCompressor) DecompressFrom(r io.Reader) ([]byte, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}

	capture, err := io.ReadAll(zr)
	if err != nil {
		_ = zr.Close()
		return nil, err
	}
	return capture, zr.Close()
}
