package source

import (
	"fmt"
	"os"
)

// WriteCapture writes data to path with the given compression, a compressionType of -1 derives it from the extension.
func WriteCapture(path string, data []byte, compressionType int) error {
	if compressionType == CompressionTypeAuto {
		compressionType = CompressionTypeForPath(path)
	}

	cmp, err := NewCompressorForType(compressionType)
	if err != nil {
		return err
	}

	if cmp != nil {
		data, err = cmp.Compress(data)
		if err != nil {
			return fmt.Errorf("compressing capture for '%s' failed with %w", path, err)
		}
	}

	return os.WriteFile(path, data, 0644)
}
