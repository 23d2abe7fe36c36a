package benchmark

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thomasjungblut/go-adpscan/adp"
	"github.com/thomasjungblut/go-adpscan/source"
)

func BenchmarkReadAndLocate(b *testing.B) {
	benchmarks := []struct {
		name     string
		file     string
		compType int
		opts     []source.ReaderOption
	}{
		{"plain", "capture.adp", source.CompressionTypeNone, nil},
		{"mmap", "capture.adp", source.CompressionTypeNone, []source.ReaderOption{source.ReaderMMap()}},
		{"gzip", "capture.adp.gz", source.CompressionTypeGZIP, nil},
		{"snappy", "capture.adp.sz", source.CompressionTypeSnappy, nil},
	}

	capture := randomCapture(1024*1024*32, 3, 20)
	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			dir, err := os.MkdirTemp("", "adp_Bench")
			assert.NoError(b, err)
			defer os.RemoveAll(dir)

			path := filepath.Join(dir, bm.file)
			assert.NoError(b, source.WriteCapture(path, capture, bm.compType))

			b.SetBytes(int64(len(capture)))
			b.ResetTimer()
			for n := 0; n < b.N; n++ {
				reader, err := source.NewReader(append([]source.ReaderOption{source.ReaderPath(path)}, bm.opts...)...)
				assert.NoError(b, err)
				assert.NoError(b, reader.Open())

				buf, err := reader.Bytes()
				assert.NoError(b, err)
				_, err = adp.LocateFrames(buf)
				assert.NoError(b, err)

				assert.NoError(b, reader.Close())
			}
		})
	}
}
