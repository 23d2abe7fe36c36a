package source

import (
	"errors"
	"fmt"
	"os"

	pool "github.com/libp2p/go-buffer-pool"
)

// options

type ReaderOptions struct {
	path            string
	file            *os.File
	compressionType int
	bufferSizeBytes int
	useDirectIO     bool
	useMMap         bool
	bufferPool      *pool.BufferPool
}

type ReaderOption func(*ReaderOptions)

// ReaderPath defines the capture file to read. Either this or ReaderFile must be supplied.
func ReaderPath(p string) ReaderOption {
	return func(args *ReaderOptions) {
		args.path = p
	}
}

// ReaderFile uses the given os.File as the capture. The reader manages the given file lifecycle (ie closing).
// Either this or ReaderPath must be supplied.
func ReaderFile(f *os.File) ReaderOption {
	return func(args *ReaderOptions) {
		args.file = f
	}
}

// ReaderCompressionType forces the compression of the capture, by default it is derived from the file extension.
// Valid values are CompressionTypeNone, CompressionTypeSnappy and CompressionTypeGZIP.
func ReaderCompressionType(p int) ReaderOption {
	return func(args *ReaderOptions) {
		args.compressionType = p
	}
}

// ReaderBufferSizeBytes sets the read buffer size, by default it uses DefaultBufferSize.
func ReaderBufferSizeBytes(p int) ReaderOption {
	return func(args *ReaderOptions) {
		args.bufferSizeBytes = p
	}
}

// ReaderDirectIO reads the capture with O_DIRECT, see IsDirectIOAvailable.
func ReaderDirectIO() ReaderOption {
	return func(args *ReaderOptions) {
		args.useDirectIO = true
	}
}

// ReaderMMap memory maps the capture instead of reading it through a buffered reader.
func ReaderMMap() ReaderOption {
	return func(args *ReaderOptions) {
		args.useMMap = true
	}
}

// ReaderBufferPool shares a buffer pool between readers, by default every reader uses its own.
func ReaderBufferPool(p *pool.BufferPool) ReaderOption {
	return func(args *ReaderOptions) {
		args.bufferPool = p
	}
}

// NewReader creates a new capture reader with the given options, either ReaderPath or ReaderFile must be supplied.
func NewReader(readerOptions ...ReaderOption) (ReaderI, error) {
	opts := &ReaderOptions{
		path:            "",
		file:            nil,
		compressionType: CompressionTypeAuto,
		bufferSizeBytes: DefaultBufferSize,
		useDirectIO:     false,
		useMMap:         false,
		bufferPool:      nil,
	}

	for _, readerOption := range readerOptions {
		readerOption(opts)
	}

	if (opts.file == nil) == (opts.path == "") {
		return nil, errors.New("NewReader: either os.File or string path must be supplied, never both")
	}

	if opts.useDirectIO && opts.useMMap {
		return nil, errors.New("NewReader: DirectIO and MMap are mutually exclusive")
	}

	if opts.bufferSizeBytes <= 0 {
		return nil, fmt.Errorf("NewReader: buffer size must be positive, but was %d", opts.bufferSizeBytes)
	}

	if opts.path == "" {
		opts.path = opts.file.Name()
	}

	if opts.compressionType == CompressionTypeAuto {
		opts.compressionType = CompressionTypeForPath(opts.path)
	}

	cmp, err := NewCompressorForType(opts.compressionType)
	if err != nil {
		return nil, err
	}

	// mmap and DirectIO need their own file handles
	if opts.file != nil && (opts.useMMap || opts.useDirectIO) {
		err := opts.file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to close existing file handle at '%s' failed with %w", opts.path, err)
		}
		opts.file = nil
	}

	if opts.useMMap {
		return &MMapReader{path: opts.path, compressor: cmp}, nil
	}

	var factory ReaderFactory
	if opts.useDirectIO {
		factory = DirectIOFactory{}
	} else {
		factory = PlainIOFactory{}
	}

	file := opts.file
	if file == nil {
		file, err = factory.OpenFile(opts.path)
		if err != nil {
			return nil, fmt.Errorf("failed to open capture at '%s' failed with %w", opts.path, err)
		}
	}

	bufferPool := opts.bufferPool
	if bufferPool == nil {
		bufferPool = new(pool.BufferPool)
	}

	return &FileReader{
		file:            file,
		factory:         factory,
		compressor:      cmp,
		bufferSizeBytes: opts.bufferSizeBytes,
		bufferPool:      bufferPool,
	}, nil
}

// ReadCapture loads the whole capture into a freshly allocated slice that outlives the reader.
func ReadCapture(readerOptions ...ReaderOption) ([]byte, error) {
	reader, err := NewReader(readerOptions...)
	if err != nil {
		return nil, err
	}

	err = reader.Open()
	if err != nil {
		_ = reader.Close()
		return nil, err
	}

	data, err := reader.Bytes()
	if err != nil {
		_ = reader.Close()
		return nil, err
	}

	result := make([]byte, len(data))
	copy(result, data)
	return result, reader.Close()
}
