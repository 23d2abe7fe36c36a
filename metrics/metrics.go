// Package metrics exports frame scan statistics to Prometheus. ScanMetrics implements adp.Observer.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/thomasjungblut/go-adpscan/adp"
)

const namespace = "adp"

// ScanMetrics contains the Prometheus collectors for probing and scanning captures
type ScanMetrics struct {
	Scans              prometheus.Counter
	FramesFound        prometheus.Counter
	SyncCandidates     prometheus.Counter
	ChecksumMismatches prometheus.Counter
	BytesScanned       prometheus.Counter
	ScanErrors         *prometheus.CounterVec
	ScanDuration       prometheus.Histogram
}

var _ adp.Observer = (*ScanMetrics)(nil)

// NewScanMetrics creates all collectors and registers them with reg
func NewScanMetrics(reg prometheus.Registerer) *ScanMetrics {
	m := &ScanMetrics{
		Scans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Total number of successfully scanned buffers",
		}),
		FramesFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_found_total",
			Help:      "Total number of frames with a valid checksum",
		}),
		SyncCandidates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_candidates_total",
			Help:      "Total number of sync markers that were checked",
		}),
		ChecksumMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checksum_mismatches_total",
			Help:      "Total number of sync markers followed by an invalid checksum",
		}),
		BytesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_scanned_total",
			Help:      "Total number of buffer bytes handed to the scanner",
		}),
		ScanErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_errors_total",
			Help:      "Total number of failed scans by error kind",
		}, []string{"kind"}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Time spent probing and scanning a buffer",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}

	reg.MustRegister(m.Scans, m.FramesFound, m.SyncCandidates, m.ChecksumMismatches,
		m.BytesScanned, m.ScanErrors, m.ScanDuration)
	return m
}

func (m *ScanMetrics) ObserveScan(result *adp.Result, bytesScanned int, elapsed time.Duration) {
	m.Scans.Inc()
	m.FramesFound.Add(float64(len(result.Offsets)))
	m.SyncCandidates.Add(float64(result.Candidates))
	m.ChecksumMismatches.Add(float64(result.ChecksumMismatches))
	m.BytesScanned.Add(float64(bytesScanned))
	m.ScanDuration.Observe(elapsed.Seconds())
}

func (m *ScanMetrics) ObserveError(err error) {
	m.ScanErrors.WithLabelValues(ErrorKind(err)).Inc()
}

// ErrorKind maps scan errors to a low cardinality label value
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, adp.ErrUnsupportedAuxiliaryStream):
		return "unsupported_auxiliary_stream"
	case errors.Is(err, adp.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, adp.ErrGeometryNotFound):
		return "geometry_not_found"
	case errors.Is(err, adp.ErrInvalidGeometry):
		return "invalid_geometry"
	}
	return "other"
}

// WriteTextfile dumps all metrics of g into path for the node exporter textfile collector
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
