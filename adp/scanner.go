package adp

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Observer receives the outcome of every LocateFrames call, see the metrics package.
type Observer interface {
	ObserveScan(result *Result, bytesScanned int, elapsed time.Duration)
	ObserveError(err error)
}

type noopObserver struct{}

func (noopObserver) ObserveScan(*Result, int, time.Duration) {}
func (noopObserver) ObserveError(error)                      {}

// LocateFrames probes the geometry of buf and returns the offsets of all frames with a valid checksum.
// Any error is terminal, there is never a partial result. Finding no frame at all is not an error.
func LocateFrames(buf []byte, opts ...ScanOption) (*Result, error) {
	o, err := newScanOptions(opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	geometry, err := ProbeGeometry(buf, o.flags)
	if err != nil {
		o.observer.ObserveError(err)
		return nil, err
	}
	o.logger.Debug("probed frame geometry",
		slog.Int("offset", geometry.ProbeOffset),
		slog.Int("beams", geometry.Beams),
		slog.Int("cells", geometry.Cells),
		slog.Int("frame_length", geometry.FrameLength))

	result := scan(buf, geometry, o)
	o.observer.ObserveScan(result, len(buf), time.Since(start))
	return result, nil
}

// ScanFrames runs only the scanning step with an already known geometry.
func ScanFrames(buf []byte, geometry Geometry, opts ...ScanOption) (*Result, error) {
	o, err := newScanOptions(opts)
	if err != nil {
		return nil, err
	}

	if geometry.FrameLength < HeaderSizeBytes {
		err = fmt.Errorf("frame length must be at least %d, but it is %d: %w", HeaderSizeBytes, geometry.FrameLength, ErrInvalidGeometry)
		o.observer.ObserveError(err)
		return nil, err
	}

	start := time.Now()
	result := scan(buf, geometry, o)
	o.observer.ObserveScan(result, len(buf), time.Since(start))
	return result, nil
}

func scan(buf []byte, geometry Geometry, o *ScanOptions) *Result {
	last := lastCandidate(len(buf), geometry.FrameLength, o.slack)

	var result *Result
	if o.parallelism > 1 && last > 0 {
		result = scanParallel(buf, geometry.FrameLength, last, o)
	} else {
		result = scanSequential(newFrameIterator(buf, geometry.FrameLength, 0, last, o.logger), o.maxCount)
	}
	result.Geometry = geometry

	o.logger.Debug("scanned buffer",
		slog.Int("frames", len(result.Offsets)),
		slog.Int("candidates", result.Candidates),
		slog.Int("checksum_mismatches", result.ChecksumMismatches))
	return result
}

func scanSequential(it *FrameIterator, maxCount int) *Result {
	offsets := make([]int, 0)
	for maxCount < 0 || len(offsets) < maxCount {
		offset, err := it.Next()
		if errors.Is(err, Done) {
			break
		}
		offsets = append(offsets, offset)
	}

	return &Result{
		Offsets:            offsets,
		Candidates:         it.Candidates(),
		ChecksumMismatches: it.ChecksumMismatches(),
	}
}

type candidate struct {
	offset int
	valid  bool
}

// scanParallel splits [0, last] into contiguous chunks, one per worker. Every worker records its candidates
// in order and stops after maxCount valid ones, the merge then walks the chunks in buffer order exactly
// like the sequential scan would.
func scanParallel(buf []byte, frameLength int, last int, o *ScanOptions) *Result {
	numChunks := o.parallelism
	if numChunks > last+1 {
		numChunks = last + 1
	}
	chunkSize := (last + numChunks) / numChunks

	chunks := make([][]candidate, numChunks)
	wg := sync.WaitGroup{}
	for c := 0; c < numChunks; c++ {
		from := c * chunkSize
		to := from + chunkSize - 1
		if to > last {
			to = last
		}
		wg.Add(1)
		go func(c int, from int, to int) {
			defer wg.Done()
			it := newFrameIterator(buf, frameLength, from, to, o.logger)
			valid := 0
			for o.maxCount < 0 || valid < o.maxCount {
				offset, ok, more := it.nextCandidate()
				if !more {
					break
				}
				chunks[c] = append(chunks[c], candidate{offset: offset, valid: ok})
				if ok {
					valid++
				}
			}
		}(c, from, to)
	}
	wg.Wait()

	result := &Result{Offsets: make([]int, 0)}
	for _, chunk := range chunks {
		for _, cand := range chunk {
			if o.maxCount >= 0 && len(result.Offsets) >= o.maxCount {
				return result
			}
			result.Candidates++
			if cand.valid {
				result.Offsets = append(result.Offsets, cand.offset)
			} else {
				result.ChecksumMismatches++
			}
		}
	}
	return result
}

// options

type ScanOptions struct {
	maxCount    int
	flags       StreamFlags
	slack       int
	parallelism int
	logger      *slog.Logger
	observer    Observer
}

type ScanOption func(*ScanOptions)

// MaxCount caps the number of returned frames to the first n in offset order, a negative n means unlimited (the default).
func MaxCount(n int) ScanOption {
	return func(args *ScanOptions) {
		args.maxCount = n
	}
}

// AuxStreams declares the auxiliary segments of the capture. Enabled streams are currently rejected
// with ErrUnsupportedAuxiliaryStream.
func AuxStreams(flags StreamFlags) ScanOption {
	return func(args *ScanOptions) {
		args.flags = flags
	}
}

// ScanSlack sets how many bytes have to follow a frame body for it to be considered, by default DefaultScanSlack.
// It can be lowered to ChecksumSizeBytes to also find a frame whose checksum ends the buffer.
func ScanSlack(n int) ScanOption {
	return func(args *ScanOptions) {
		args.slack = n
	}
}

// Parallelism scans with n goroutines, each on a contiguous part of the buffer. Results are identical to a sequential scan.
func Parallelism(n int) ScanOption {
	return func(args *ScanOptions) {
		args.parallelism = n
	}
}

// Logger sets the logger for debug tracing of probe and scan, by default nothing is logged.
func Logger(l *slog.Logger) ScanOption {
	return func(args *ScanOptions) {
		args.logger = l
	}
}

func WithObserver(obs Observer) ScanOption {
	return func(args *ScanOptions) {
		args.observer = obs
	}
}

func newScanOptions(opts []ScanOption) (*ScanOptions, error) {
	o := &ScanOptions{
		maxCount:    -1,
		flags:       StreamFlags{},
		slack:       DefaultScanSlack,
		parallelism: 1,
		logger:      nil,
		observer:    noopObserver{},
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.slack < ChecksumSizeBytes {
		return nil, fmt.Errorf("scan slack must be at least %d bytes, but was %d", ChecksumSizeBytes, o.slack)
	}
	if o.parallelism < 1 {
		return nil, fmt.Errorf("parallelism must be at least 1, but was %d", o.parallelism)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.observer == nil {
		o.observer = noopObserver{}
	}
	return o, nil
}
