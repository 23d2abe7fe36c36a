package source

import (
	"errors"
	"fmt"
	"io"

	"github.com/thomasjungblut/go-adpscan/source/compressor"
	"golang.org/x/exp/mmap"
)

// MMapReader reads captures through a read-only memory mapping. x/exp/mmap only exposes the mapping
// as an io.ReaderAt, so an uncompressed capture is copied once into the heap for the scanner.
// Compressed captures are decompressed straight from the mapping without that copy.
type MMapReader struct {
	path       string
	mmapReader *mmap.ReaderAt
	compressor compressor.CompressionI
	data       []byte
	open       bool
	closed     bool
}

func (r *MMapReader) Open() error {
	if r.open {
		return errors.New("already opened")
	}

	if r.closed {
		return errors.New("already closed")
	}

	mmapReaderAt, err := mmap.Open(r.path)
	if err != nil {
		return err
	}
	r.mmapReader = mmapReaderAt

	section := io.NewSectionReader(r.mmapReader, 0, int64(r.mmapReader.Len()))
	if r.compressor != nil {
		r.data, err = r.compressor.DecompressFrom(section)
		if err != nil {
			return fmt.Errorf("decompressing capture at '%s' failed with %w", r.path, err)
		}
	} else {
		r.data = make([]byte, r.mmapReader.Len())
		numRead, err := io.ReadFull(section, r.data)
		if err != nil {
			return fmt.Errorf("reading mapped capture at '%s' failed with %w", r.path, err)
		}
		if numRead != len(r.data) {
			return fmt.Errorf("not enough bytes in the capture found, expected %d but were %d", len(r.data), numRead)
		}
	}

	r.open = true
	return nil
}

func (r *MMapReader) Bytes() ([]byte, error) {
	if !r.open || r.closed {
		return nil, errors.New("reader was either not opened yet or is closed already")
	}
	return r.data, nil
}

func (r *MMapReader) Close() error {
	r.closed = true
	r.open = false
	r.data = nil
	if r.mmapReader == nil {
		return nil
	}
	return r.mmapReader.Close()
}
