package tablebuilder

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// CompressionType represents the compression applied to a source file.
type CompressionType int

const (
	// CompressionNone represents no compression
	CompressionNone CompressionType = iota
	// CompressionGZ represents gzip compression
	CompressionGZ
	// CompressionBZ2 represents bzip2 compression
	CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD
)

// Compression extensions
const (
	extGZ   = ".gz"
	extBZ2  = ".bz2"
	extXZ   = ".xz"
	extZSTD = ".zst"
)

// String returns the string representation of CompressionType.
func (c CompressionType) String() string {
	switch c {
	case CompressionGZ:
		return "gz"
	case CompressionBZ2:
		return "bz2"
	case CompressionXZ:
		return "xz"
	case CompressionZSTD:
		return "zstd"
	default:
		return "none"
	}
}

// compressionForPath determines the compression type from a file name and
// returns the name with the compression extension stripped.
func compressionForPath(path string) (CompressionType, string) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, extGZ):
		return CompressionGZ, path[:len(path)-len(extGZ)]
	case strings.HasSuffix(lower, extBZ2):
		return CompressionBZ2, path[:len(path)-len(extBZ2)]
	case strings.HasSuffix(lower, extXZ):
		return CompressionXZ, path[:len(path)-len(extXZ)]
	case strings.HasSuffix(lower, extZSTD):
		return CompressionZSTD, path[:len(path)-len(extZSTD)]
	default:
		return CompressionNone, path
	}
}

// newDecompressedReader wraps a reader with the matching decompression
// reader. The returned close function releases decoder resources; it may be
// nil when there is nothing to release.
func newDecompressedReader(reader io.Reader, compression CompressionType) (io.Reader, func() error, error) {
	switch compression {
	case CompressionGZ:
		gzReader, err := gzip.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzReader, gzReader.Close, nil

	case CompressionBZ2:
		// bzip2.NewReader doesn't need closing
		return bzip2.NewReader(reader), nil, nil

	case CompressionXZ:
		xzReader, err := xz.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		// xz.Reader doesn't have a Close method
		return xzReader, nil, nil

	case CompressionZSTD:
		decoder, err := zstd.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return decoder, func() error { decoder.Close(); return nil }, nil

	default:
		return reader, nil, nil
	}
}
