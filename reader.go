package tablebuilder

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceFormat represents the base file format of a source.
type SourceFormat int

const (
	// FormatDelimited represents CSV-like delimited text
	FormatDelimited SourceFormat = iota
	// FormatXLSX represents Excel XLSX workbooks
	FormatXLSX
	// FormatParquet represents Apache Parquet files
	FormatParquet
)

// String returns the format name.
func (f SourceFormat) String() string {
	switch f {
	case FormatXLSX:
		return "xlsx"
	case FormatParquet:
		return "parquet"
	default:
		return "delimited"
	}
}

// SourceDescriptor describes a source file after shape detection. It is
// immutable once detection completes, except that the row count may start
// estimated and become exact after a full pass.
type SourceDescriptor struct {
	// Path is the source file path
	Path string
	// Format is the base file format
	Format SourceFormat
	// Compression is the detected compression wrapper
	Compression CompressionType
	// Delimiter is the detected or overridden field delimiter (delimited only)
	Delimiter rune
	// HeaderPresent reports whether the first row is a header
	HeaderPresent bool
	// LowConfidence is set when delimiter detection fell back to
	// single-column text; the caller should offer a manual override
	LowConfidence bool
	// Encoding is the declared character encoding
	Encoding string
	// ByteSize is the on-disk size in bytes
	ByteSize int64
	// ModTime is the file's last-modified timestamp
	ModTime time.Time
	// Columns holds the header names, or synthesized column_N names
	Columns []string
	// RowCount is the total data row count, or -1 while unknown
	RowCount int64
	// RowCountExact reports whether RowCount came from a full pass
	RowCountExact bool
}

// DescribeSource inspects a file and builds its descriptor. A non-zero
// delimiterOverride skips delimiter scoring but still runs header detection;
// extra delimiter candidates extend the built-in preference list.
func DescribeSource(path string, delimiterOverride rune, extra ...rune) (*SourceDescriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	compression, trimmed := compressionForPath(path)
	desc := &SourceDescriptor{
		Path:        path,
		Compression: compression,
		Encoding:    "utf-8",
		ByteSize:    info.Size(),
		ModTime:     info.ModTime(),
		RowCount:    -1,
	}

	switch strings.ToLower(filepath.Ext(trimmed)) {
	case ".xlsx":
		desc.Format = FormatXLSX
		columns, headerPresent, err := sniffXLSX(path, compression)
		if err != nil {
			return nil, err
		}
		desc.Columns = columns
		desc.HeaderPresent = headerPresent
		return desc, nil

	case ".parquet":
		desc.Format = FormatParquet
		columns, rows, err := parquetHeader(path)
		if err != nil {
			return nil, err
		}
		desc.Columns = columns
		desc.RowCount = rows
		desc.RowCountExact = true
		return desc, nil

	default:
		// Anything else is treated as delimited text; the original tool
		// accepted .csv, .txt, and .dat alike.
		desc.Format = FormatDelimited
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	decompressed, closeDecomp, err := newDecompressedReader(f, compression)
	if err != nil {
		return nil, err
	}
	if closeDecomp != nil {
		defer func() { _ = closeDecomp() }()
	}

	lines, err := sampleLines(decompressed, detectSampleLines)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptySource
	}

	var det *Detection
	if delimiterOverride != 0 {
		det = detectWithDelimiter(lines, delimiterOverride)
	} else {
		det = detectFromLines(lines, extra...)
	}

	desc.Delimiter = det.Delimiter
	desc.HeaderPresent = det.HeaderPresent
	desc.LowConfidence = det.LowConfidence

	if det.HeaderPresent {
		desc.Columns = splitLine(lines[0], det.Delimiter, det.LowConfidence)
	} else {
		desc.Columns = synthesizeColumns(det.FieldCount)
	}
	if err := validateColumnNames(desc.Columns); err != nil {
		return nil, err
	}
	return desc, nil
}

// synthesizeColumns produces column_1..column_n names for headerless files.
func synthesizeColumns(n int) []string {
	if n < 1 {
		n = 1
	}
	cols := make([]string, n)
	for i := range cols {
		cols[i] = fmt.Sprintf("column_%d", i+1)
	}
	return cols
}

// TableNameFromPath derives a default table name from a file path, dropping
// compression and format extensions.
func TableNameFromPath(path string) TableName {
	fileName := filepath.Base(path)
	_, trimmed := compressionForPath(fileName)
	base := strings.TrimSuffix(trimmed, filepath.Ext(trimmed))
	return NewTableName(base).Sanitize()
}

// Row is a single source row plus its ragged marker. A row is ragged when
// its field count does not match the descriptor's column count.
type Row struct {
	Fields Record
	Ragged bool
}

// RowBatch is an ordered slice of rows read from a source. Start is the
// zero-based index of the first row; EOF marks the final batch of a pass.
type RowBatch struct {
	Start int64
	Rows  []Row
	EOF   bool
}

// cacheEntry holds a fully materialized small file, keyed by the file state
// it was read from. It is invalidated when the key no longer matches.
type cacheEntry struct {
	path    string
	modTime time.Time
	size    int64
	rows    []Row
	ragged  int64
}

// matches reports whether the cache key still describes the file on disk.
func (c *cacheEntry) matches(info os.FileInfo, path string) bool {
	return c.path == path && c.modTime.Equal(info.ModTime()) && c.size == info.Size()
}

// SourceReader exposes a source file as a sequence of row batches.
//
// Small files (at or below the large-file threshold) are materialized into a
// cache on first read; Reset and ReadBatch then serve from memory. Large
// files are streamed one batch at a time and Reset reopens the underlying
// stream. Only one goroutine may use a reader at a time.
type SourceReader struct {
	desc      *SourceDescriptor
	largeMode bool

	// streaming state
	scanner rowScanner

	// cache state
	cache    *cacheEntry
	cachePos int

	next       int64
	passRagged int64
	ragged     int64
}

// OpenSource opens a reader over the described source. Files larger than
// largeFileThresholdMB are streamed; smaller files are cached on first read.
func OpenSource(desc *SourceDescriptor, largeFileThresholdMB float64) (*SourceReader, error) {
	if largeFileThresholdMB <= 0 {
		largeFileThresholdMB = 100
	}
	r := &SourceReader{
		desc:      desc,
		largeMode: float64(desc.ByteSize) > largeFileThresholdMB*1024*1024,
	}
	if r.largeMode {
		scanner, err := openScanner(desc)
		if err != nil {
			return nil, err
		}
		r.scanner = scanner
	}
	return r, nil
}

// Descriptor returns the descriptor this reader was opened with.
func (r *SourceReader) Descriptor() *SourceDescriptor {
	return r.desc
}

// LargeFileMode reports whether the reader streams instead of caching.
func (r *SourceReader) LargeFileMode() bool {
	return r.largeMode
}

// RaggedCount returns the number of ragged rows seen in the most recently
// completed full pass.
func (r *SourceReader) RaggedCount() int64 {
	return r.ragged
}

// ReadBatch reads up to batchSize rows. The returned batch carries its
// starting row index; EOF is set on the batch that exhausts the source.
func (r *SourceReader) ReadBatch(batchSize int) (*RowBatch, error) {
	size := NewBatchSize(batchSize).Int()

	if !r.largeMode {
		if err := r.ensureCache(); err != nil {
			return nil, err
		}
		batch := &RowBatch{Start: r.next}
		end := r.cachePos + size
		if end >= len(r.cache.rows) {
			end = len(r.cache.rows)
			batch.EOF = true
		}
		batch.Rows = r.cache.rows[r.cachePos:end]
		r.next += int64(len(batch.Rows))
		r.cachePos = end
		return batch, nil
	}

	batch := &RowBatch{Start: r.next}
	want := len(r.desc.Columns)
	for len(batch.Rows) < size {
		rec, err := r.scanner.Scan()
		if err != nil {
			if err == io.EOF {
				batch.EOF = true
				r.finishPass()
				break
			}
			return nil, err
		}
		row := Row{Fields: rec, Ragged: len(rec) != want}
		if row.Ragged {
			r.passRagged++
		}
		batch.Rows = append(batch.Rows, row)
		r.next++
	}
	return batch, nil
}

// finishPass records pass-level results once a stream pass hits EOF.
func (r *SourceReader) finishPass() {
	r.ragged = r.passRagged
	if !r.desc.RowCountExact {
		r.desc.RowCount = r.next
		r.desc.RowCountExact = true
	}
}

// Reset rewinds the reader to the first data row. Cached mode rewinds in
// memory (revalidating the cache key); streaming mode reopens the stream.
func (r *SourceReader) Reset() error {
	r.next = 0
	r.passRagged = 0

	if !r.largeMode {
		r.cachePos = 0
		if r.cache != nil {
			info, err := os.Stat(r.desc.Path)
			if err != nil || !r.cache.matches(info, r.desc.Path) {
				// File changed underneath us; drop the stale cache
				r.cache = nil
			}
		}
		return nil
	}

	if r.scanner != nil {
		if err := r.scanner.Close(); err != nil {
			return err
		}
	}
	scanner, err := openScanner(r.desc)
	if err != nil {
		r.scanner = nil
		return err
	}
	r.scanner = scanner
	return nil
}

// RowCount returns the exact total data row count, running one full
// streaming pass if it is not yet known. The reader is rewound afterwards.
func (r *SourceReader) RowCount() (int64, error) {
	if r.desc.RowCountExact {
		return r.desc.RowCount, nil
	}

	if !r.largeMode {
		if err := r.ensureCache(); err != nil {
			return 0, err
		}
		return r.desc.RowCount, nil
	}

	if err := r.Reset(); err != nil {
		return 0, err
	}
	for {
		batch, err := r.ReadBatch(DefaultBatchSize)
		if err != nil {
			return 0, err
		}
		if batch.EOF {
			break
		}
	}
	total := r.desc.RowCount
	return total, r.Reset()
}

// Preview returns the first percent% of rows (at least one) for display.
// The reader is rewound afterwards.
func (r *SourceReader) Preview(percent int) ([]Row, error) {
	if percent < 1 {
		percent = 1
	}
	if percent > 100 {
		percent = 100
	}
	total, err := r.RowCount()
	if err != nil {
		return nil, err
	}
	want := total * int64(percent) / 100
	if want < 1 {
		want = 1
	}

	if err := r.Reset(); err != nil {
		return nil, err
	}
	rows := make([]Row, 0, want)
	for int64(len(rows)) < want {
		batch, err := r.ReadBatch(DefaultBatchSize)
		if err != nil {
			return nil, err
		}
		for _, row := range batch.Rows {
			rows = append(rows, row)
			if int64(len(rows)) >= want {
				break
			}
		}
		if batch.EOF {
			break
		}
	}
	return rows, r.Reset()
}

// ensureCache materializes the whole file into the cache on first use.
func (r *SourceReader) ensureCache() error {
	if r.cache != nil {
		return nil
	}

	info, err := os.Stat(r.desc.Path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", r.desc.Path, err)
	}

	scanner, err := openScanner(r.desc)
	if err != nil {
		return err
	}
	defer func() { _ = scanner.Close() }()

	entry := &cacheEntry{
		path:    r.desc.Path,
		modTime: info.ModTime(),
		size:    info.Size(),
	}
	want := len(r.desc.Columns)
	for {
		rec, err := scanner.Scan()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		row := Row{Fields: rec, Ragged: len(rec) != want}
		if row.Ragged {
			entry.ragged++
		}
		entry.rows = append(entry.rows, row)
	}

	r.cache = entry
	r.ragged = entry.ragged
	r.desc.RowCount = int64(len(entry.rows))
	r.desc.RowCountExact = true
	return nil
}

// Close releases the underlying stream, if any.
func (r *SourceReader) Close() error {
	if r.scanner != nil {
		err := r.scanner.Close()
		r.scanner = nil
		return err
	}
	return nil
}
