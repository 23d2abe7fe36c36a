// Command adpscan lists the offsets of checksum verified frames in SonTek ADP captures
// and writes synthetic captures for testing.
//
//	adpscan scan [flags] capture.adp
//	adpscan synth [flags] out.adp
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/thomasjungblut/go-adpscan/adp"
	"github.com/thomasjungblut/go-adpscan/config"
	"github.com/thomasjungblut/go-adpscan/metrics"
	"github.com/thomasjungblut/go-adpscan/source"
)

const usage = `usage:
  adpscan scan [flags] <capture>
  adpscan synth [flags] <out>
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout io.Writer, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "scan":
		err = runScan(args[1:], stdout, stderr)
	case "synth":
		err = runSynth(args[1:], stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n%s", args[0], usage)
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "adpscan %s: %v\n", args[0], err)
		return 1
	}
	return 0
}

func runScan(args []string, stdout io.Writer, stderr io.Writer) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	maxCount := fs.Int("max", -1, "Maximum number of frames to report, negative for all")
	parallelism := fs.Int("j", 1, "Number of goroutines scanning the capture")
	oneBased := fs.Bool("one-based", false, "Report 1-based offsets")
	legacy := fs.Bool("legacy", false, "Report 1-based offsets and a single 0 when nothing was found")
	tight := fs.Bool("tight", false, "Also consider a frame whose checksum ends the capture")
	compression := fs.String("compression", "auto", "Capture compression: auto, none, gzip, snappy")
	useMMap := fs.Bool("mmap", false, "Memory map the capture")
	useDirectIO := fs.Bool("direct-io", false, "Read the capture with O_DIRECT")
	logLevel := fs.String("log-level", "info", "Log level: debug, info, warn, error")
	textfile := fs.String("metrics-textfile", "", "Write Prometheus metrics to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one capture file, got %d", fs.NArg())
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// explicitly set flags win over the configuration file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max":
			cfg.Scan.MaxCount = *maxCount
		case "j":
			cfg.Scan.Parallelism = *parallelism
		case "one-based":
			cfg.Scan.OneBased = *oneBased
		case "legacy":
			cfg.Scan.Legacy = *legacy
		case "tight":
			cfg.Scan.TightSlack = *tight
		case "compression":
			cfg.Input.Compression = *compression
		case "mmap":
			cfg.Input.MMap = *useMMap
		case "direct-io":
			cfg.Input.DirectIO = *useDirectIO
		case "log-level":
			cfg.Logging.Level = *logLevel
		case "metrics-textfile":
			cfg.Metrics.TextfilePath = *textfile
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := initLogger(cfg.Logging, stderr)
	path := fs.Arg(0)

	data, closeFn, err := openCapture(path, cfg.Input)
	if err != nil {
		return err
	}
	defer closeFn()

	reg := prometheus.NewRegistry()
	scanMetrics := metrics.NewScanMetrics(reg)

	opts := []adp.ScanOption{
		adp.MaxCount(cfg.Scan.MaxCount),
		adp.Parallelism(cfg.Scan.Parallelism),
		adp.AuxStreams(adp.StreamFlags{CTD: cfg.Scan.CTD, GPS: cfg.Scan.GPS, BottomTrack: cfg.Scan.BottomTrack}),
		adp.Logger(logger),
		adp.WithObserver(scanMetrics),
	}
	if cfg.Scan.TightSlack {
		opts = append(opts, adp.ScanSlack(adp.ChecksumSizeBytes))
	}

	result, scanErr := adp.LocateFrames(data, opts...)
	if cfg.Metrics.TextfilePath != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.TextfilePath, reg); err != nil {
			logger.Error("failed to write metrics textfile", slog.String("path", cfg.Metrics.TextfilePath), slog.Any("error", err))
		}
	}
	if scanErr != nil {
		return fmt.Errorf("%s: %w", path, scanErr)
	}

	logger.Info("scanned capture",
		slog.String("path", path),
		slog.Int("bytes", len(data)),
		slog.Int("beams", result.Geometry.Beams),
		slog.Int("cells", result.Geometry.Cells),
		slog.Int("frame_length", result.Geometry.FrameLength),
		slog.Int("frames", result.Len()),
		slog.Int("checksum_mismatches", result.ChecksumMismatches))

	offsets := result.Offsets
	if cfg.Scan.Legacy {
		offsets = result.LegacyOffsets()
	} else if cfg.Scan.OneBased {
		offsets = result.OneBasedOffsets()
	}
	for _, off := range offsets {
		if _, err := fmt.Fprintln(stdout, off); err != nil {
			return err
		}
	}
	return nil
}

func openCapture(path string, cfg config.InputConfig) ([]byte, func(), error) {
	compressionType, err := source.ParseCompressionType(cfg.Compression)
	if err != nil {
		return nil, nil, err
	}

	opts := []source.ReaderOption{
		source.ReaderPath(path),
		source.ReaderCompressionType(compressionType),
		source.ReaderBufferSizeBytes(cfg.BufferSizeBytes),
	}
	if cfg.MMap {
		opts = append(opts, source.ReaderMMap())
	}
	if cfg.DirectIO {
		opts = append(opts, source.ReaderDirectIO())
	}

	reader, err := source.NewReader(opts...)
	if err != nil {
		return nil, nil, err
	}
	if err := reader.Open(); err != nil {
		_ = reader.Close()
		return nil, nil, err
	}

	data, err := reader.Bytes()
	if err != nil {
		_ = reader.Close()
		return nil, nil, err
	}
	return data, func() { _ = reader.Close() }, nil
}

func runSynth(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("synth", flag.ContinueOnError)
	fs.SetOutput(stderr)
	beams := fs.Int("beams", 3, "Number of beams, 2 or 3")
	cells := fs.Int("cells", 10, "Number of cells per beam")
	frames := fs.Int("frames", 10, "Number of frames to write")
	gap := fs.Int("gap", 0, "Number of random bytes between frames")
	leading := fs.Int("leading", 0, "Number of random bytes before the first frame")
	seed := fs.Int64("seed", 1, "Seed for payloads and gaps")
	compression := fs.String("compression", "auto", "Output compression: auto, none, gzip, snappy")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one output file, got %d", fs.NArg())
	}
	if *gap < 0 || *leading < 0 || *frames < 0 {
		return fmt.Errorf("frames, gap and leading must not be negative")
	}

	compressionType, err := source.ParseCompressionType(*compression)
	if err != nil {
		return err
	}

	capture, err := synthesize(*beams, *cells, *frames, *gap, *leading, rand.New(rand.NewSource(*seed)))
	if err != nil {
		return err
	}

	logger := initLogger(config.LoggingConfig{Level: "info", Format: "text"}, stderr)
	logger.Info("writing synthetic capture",
		slog.String("path", fs.Arg(0)),
		slog.Int("frames", *frames),
		slog.Int("bytes", len(capture)))
	return source.WriteCapture(fs.Arg(0), capture, compressionType)
}

// synthesize lays out frames with random gaps, the capture is zero padded to at least one probe window
// and always leaves scan slack behind the last frame.
func synthesize(beams int, cells int, frames int, gap int, leading int, r *rand.Rand) ([]byte, error) {
	// rejects bad beam and cell counts before the payload is sized from them
	if _, err := adp.EncodeFrame(beams, cells, nil); err != nil {
		return nil, err
	}

	var capture []byte
	capture = appendNoise(capture, leading, r)
	for i := 0; i < frames; i++ {
		payload := make([]byte, adp.SampleSizeBytes*beams*cells)
		r.Read(payload)
		frame, err := adp.EncodeFrame(beams, cells, payload)
		if err != nil {
			return nil, err
		}
		capture = append(capture, frame...)
		capture = appendNoise(capture, gap, r)
	}

	size := len(capture) + adp.DefaultScanSlack
	if size < adp.MinBufferSizeBytes {
		size = adp.MinBufferSizeBytes
	}
	return append(capture, make([]byte, size-len(capture))...), nil
}

func appendNoise(buf []byte, n int, r *rand.Rand) []byte {
	noise := make([]byte, n)
	r.Read(noise)
	// keep noise from forming sync markers so that the frame count stays exact
	for i := range noise {
		if noise[i] == adp.SyncPattern[0] {
			noise[i] = 0
		}
	}
	return append(buf, noise...)
}

func initLogger(cfg config.LoggingConfig, output io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
