package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	pool "github.com/libp2p/go-buffer-pool"
	"github.com/thomasjungblut/go-adpscan/source/compressor"
)

// FileReader reads a whole capture file into a pooled buffer.
type FileReader struct {
	file            *os.File
	factory         ReaderFactory
	compressor      compressor.CompressionI
	bufferSizeBytes int

	bufferPool *pool.BufferPool
	pooled     []byte
	data       []byte
	open       bool
	closed     bool
}

func (r *FileReader) Open() error {
	if r.open {
		return errors.New("already opened")
	}

	if r.closed {
		return errors.New("already closed")
	}

	stat, err := r.file.Stat()
	if err != nil {
		return err
	}
	size := int(stat.Size())

	reader, err := r.factory.CreateNewReader(r.file, r.bufferSizeBytes)
	if err != nil {
		return fmt.Errorf("creating reader for capture at '%s' failed with %w", r.file.Name(), err)
	}

	r.pooled = r.bufferPool.Get(size)
	numRead, err := io.ReadFull(reader, r.pooled)
	if err != nil {
		r.release()
		return fmt.Errorf("reading capture at '%s' failed with %w", r.file.Name(), err)
	}

	if numRead != size {
		r.release()
		return fmt.Errorf("not enough bytes in the capture found, expected %d but were %d", size, numRead)
	}

	r.data = r.pooled
	if r.compressor != nil {
		r.data, err = r.compressor.Decompress(r.pooled)
		r.release()
		if err != nil {
			return fmt.Errorf("decompressing capture at '%s' failed with %w", r.file.Name(), err)
		}
	}

	r.open = true
	return nil
}

func (r *FileReader) Bytes() ([]byte, error) {
	if !r.open || r.closed {
		return nil, errors.New("reader was either not opened yet or is closed already")
	}
	return r.data, nil
}

func (r *FileReader) Close() error {
	r.closed = true
	r.open = false
	r.data = nil
	r.release()
	return r.file.Close()
}

func (r *FileReader) release() {
	if r.pooled != nil {
		r.bufferPool.Put(r.pooled)
		r.pooled = nil
	}
}

// ReaderFactory wraps an opened capture file for sequential reading.
type ReaderFactory interface {
	OpenFile(path string) (*os.File, error)
	CreateNewReader(file *os.File, bufSize int) (io.Reader, error)
}

type PlainIOFactory struct {
}

func (p PlainIOFactory) OpenFile(path string) (*os.File, error) {
	return os.Open(path)
}

func (p PlainIOFactory) CreateNewReader(file *os.File, bufSize int) (io.Reader, error) {
	return bufio.NewReaderSize(file, bufSize), nil
}
