package tablebuilder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow/go/v17/arrow/array"
	pqfile "github.com/apache/arrow/go/v17/parquet/file"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"
)

// bytesReaderAt adapts an in-memory buffer to io.ReaderAt for the parquet
// reader, which needs random access.
type bytesReaderAt struct {
	data []byte
	pos  int64
}

func (b *bytesReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *bytesReaderAt) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += b.pos
	case io.SeekEnd:
		offset += int64(len(b.data))
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}
	if offset < 0 {
		return 0, errors.New("negative seek position")
	}
	b.pos = offset
	return offset, nil
}

// parquetScanner materializes a parquet file and replays its rows. Parquet
// offers no cheap forward-only cursor, so the whole table is decoded once
// per open; Reset on the source reader reopens the scanner.
type parquetScanner struct {
	header  []string
	records []Record
	pos     int
}

func newParquetScanner(f *os.File, closeDecomp func() error, r io.Reader, desc *SourceDescriptor) (*parquetScanner, error) {
	defer func() {
		if closeDecomp != nil {
			_ = closeDecomp()
		}
		_ = f.Close()
	}()

	header, records, err := readParquet(r)
	if err != nil {
		return nil, err
	}
	_ = desc
	return &parquetScanner{header: header, records: records}, nil
}

func (s *parquetScanner) Scan() (Record, error) {
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}

func (s *parquetScanner) Close() error {
	return nil
}

// readParquet decodes a parquet stream into a header and string records.
func readParquet(r io.Reader) ([]string, []Record, error) {
	// Parquet requires random access; buffer the stream
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	if len(data) == 0 {
		return nil, nil, errors.New("empty parquet file")
	}

	pqReader, err := pqfile.NewParquetReader(&bytesReaderAt{data: data})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read parquet table: %w", err)
	}
	defer table.Release()

	schema := table.Schema()
	header := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}

	tableReader := array.NewTableReader(table, 0)
	defer tableReader.Release()

	var records []Record
	for tableReader.Next() {
		batch := tableReader.Record()
		numRows := batch.NumRows()
		for i := int64(0); i < numRows; i++ {
			row := make(Record, batch.NumCols())
			for j, col := range batch.Columns() {
				if col.IsNull(int(i)) {
					row[j] = ""
					continue
				}
				row[j] = col.ValueStr(int(i))
			}
			records = append(records, row)
		}
	}
	if err := tableReader.Err(); err != nil {
		return nil, nil, fmt.Errorf("error reading parquet records: %w", err)
	}

	return header, records, nil
}

// parquetHeader reads only the schema column names of a parquet file.
func parquetHeader(path string) ([]string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	compression, _ := compressionForPath(path)
	decompressed, closeDecomp, err := newDecompressedReader(f, compression)
	if err != nil {
		return nil, 0, err
	}
	if closeDecomp != nil {
		defer func() { _ = closeDecomp() }()
	}

	header, records, err := readParquet(decompressed)
	if err != nil {
		return nil, 0, err
	}
	return header, int64(len(records)), nil
}
