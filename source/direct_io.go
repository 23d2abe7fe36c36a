package source

import (
	"io"
	"os"

	"github.com/ncw/directio"
)

// DirectIOFactory bypasses the page cache, useful when scanning captures far larger than memory once.
type DirectIOFactory struct {
}

func (d DirectIOFactory) OpenFile(path string) (*os.File, error) {
	return directio.OpenFile(path, os.O_RDONLY, 0666)
}

func (d DirectIOFactory) CreateNewReader(file *os.File, bufSize int) (io.Reader, error) {
	if bufSize < directio.BlockSize {
		bufSize = directio.BlockSize
	}
	// reads must be block aligned in size and memory
	bufSize = (bufSize / directio.BlockSize) * directio.BlockSize
	return &alignedReader{file: file, block: directio.AlignedBlock(bufSize)}, nil
}

// alignedReader always reads full aligned blocks from the file and hands them out in pieces.
type alignedReader struct {
	file  *os.File
	block []byte
	start int
	end   int
	err   error
}

func (a *alignedReader) Read(p []byte) (int, error) {
	if a.start == a.end {
		if a.err != nil {
			return 0, a.err
		}
		n, err := a.file.Read(a.block)
		a.start, a.end = 0, n
		if err != nil {
			a.err = err
		} else if n < len(a.block) {
			// a short read only happens at the end of the file
			a.err = io.EOF
		}
		if n == 0 {
			return 0, a.err
		}
	}

	n := copy(p, a.block[a.start:a.end])
	a.start += n
	return n, nil
}

// IsDirectIOAvailable tests whether DirectIO is available (on the OS / filesystem).
// It will return (true, nil) if that's the case, if it's not available it will be (false, nil).
// Any other error will be indicated by the error (either true/false).
func IsDirectIOAvailable() (available bool, err error) {
	// the only way to check is to create a tmp file and check whether the error is EINVAL, which indicates it's not available.
	tmpFile, err := os.CreateTemp("", "directio-test")
	if err != nil {
		return
	}

	err = tmpFile.Close()
	if err != nil {
		return
	}

	defer func(name string) {
		_ = os.Remove(name)
	}(tmpFile.Name())

	tmpFile, err = directio.OpenFile(tmpFile.Name(), os.O_RDONLY, 0666)
	if err != nil {
		// this syscall specifically signals that DirectIO is not supported
		return false, nil
	}

	// at this point we can be sure a file can be opened with DirectIO flags correctly
	available = true

	err = tmpFile.Close()
	return
}
