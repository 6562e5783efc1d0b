package tablebuilder

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// rowScanner yields source rows one at a time. Scan returns io.EOF at the
// end of the stream. Implementations own their underlying file handle.
type rowScanner interface {
	Scan() (Record, error)
	Close() error
}

// openScanner opens the right scanner for the descriptor's format,
// positioned at the first data row (past the header when one is present).
func openScanner(desc *SourceDescriptor) (rowScanner, error) {
	f, err := os.Open(desc.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", desc.Path, err)
	}

	decompressed, closeDecomp, err := newDecompressedReader(f, desc.Compression)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	switch desc.Format {
	case FormatDelimited:
		if desc.LowConfidence {
			// Single-column fallback: whole lines are the field, so stray
			// delimiter characters inside free text never split a row
			return newLineScanner(f, closeDecomp, decompressed, desc)
		}
		return newDelimitedScanner(f, closeDecomp, decompressed, desc)
	case FormatXLSX:
		return newXLSXScanner(f, closeDecomp, decompressed, desc)
	case FormatParquet:
		return newParquetScanner(f, closeDecomp, decompressed, desc)
	default:
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, desc.Path)
	}
}

// delimitedScanner reads CSV-like rows through encoding/csv with a variable
// field count, so ragged rows surface as data rather than parse errors.
type delimitedScanner struct {
	file        *os.File
	closeDecomp func() error
	reader      *csv.Reader
	rowNum      int64
}

func newDelimitedScanner(f *os.File, closeDecomp func() error, r io.Reader, desc *SourceDescriptor) (*delimitedScanner, error) {
	cr := csv.NewReader(r)
	cr.Comma = desc.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	s := &delimitedScanner{file: f, closeDecomp: closeDecomp, reader: cr}
	if desc.HeaderPresent {
		if _, err := cr.Read(); err != nil && err != io.EOF {
			_ = s.Close()
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
	}
	return s, nil
}

func (s *delimitedScanner) Scan() (Record, error) {
	rec, err := s.reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read row %d: %w", s.rowNum+1, err)
	}
	s.rowNum++
	for _, field := range rec {
		if !utf8.ValidString(field) {
			return nil, fmt.Errorf("%w: row %d", ErrDecode, s.rowNum)
		}
	}
	return Record(rec), nil
}

func (s *delimitedScanner) Close() error {
	var errs []error
	if s.closeDecomp != nil {
		errs = append(errs, s.closeDecomp())
	}
	errs = append(errs, s.file.Close())
	return errors.Join(errs...)
}

// lineScanner yields each non-blank line as a single-field record. It backs
// the low-confidence detection fallback, where the file is treated as
// single-column text.
type lineScanner struct {
	file        *os.File
	closeDecomp func() error
	scanner     *bufio.Scanner
	rowNum      int64
}

func newLineScanner(f *os.File, closeDecomp func() error, r io.Reader, desc *SourceDescriptor) (*lineScanner, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	s := &lineScanner{file: f, closeDecomp: closeDecomp, scanner: scanner}
	if desc.HeaderPresent {
		if _, err := s.Scan(); err != nil && err != io.EOF {
			_ = s.Close()
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
	}
	return s, nil
}

func (s *lineScanner) Scan() (Record, error) {
	for s.scanner.Scan() {
		s.rowNum++
		line := s.scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !utf8.ValidString(line) {
			return nil, fmt.Errorf("%w: row %d", ErrDecode, s.rowNum)
		}
		return Record{line}, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row %d: %w", s.rowNum+1, err)
	}
	return nil, io.EOF
}

func (s *lineScanner) Close() error {
	var errs []error
	if s.closeDecomp != nil {
		errs = append(errs, s.closeDecomp())
	}
	errs = append(errs, s.file.Close())
	return errors.Join(errs...)
}

// xlsxScanner reads the first sheet of an Excel workbook row by row.
type xlsxScanner struct {
	file        *os.File
	closeDecomp func() error
	book        *excelize.File
	rows        *excelize.Rows
	sheet       string
}

func newXLSXScanner(f *os.File, closeDecomp func() error, r io.Reader, desc *SourceDescriptor) (*xlsxScanner, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		_ = book.Close()
		_ = f.Close()
		return nil, fmt.Errorf("%w: no sheets in %s", ErrEmptySource, desc.Path)
	}

	// Only the first sheet feeds the pipeline
	sheet := sheets[0]
	rows, err := book.Rows(sheet)
	if err != nil {
		_ = book.Close()
		_ = f.Close()
		return nil, fmt.Errorf("failed to open rows iterator for sheet %s: %w", sheet, err)
	}

	s := &xlsxScanner{file: f, closeDecomp: closeDecomp, book: book, rows: rows, sheet: sheet}
	if desc.HeaderPresent {
		if rows.Next() {
			if _, err := rows.Columns(); err != nil {
				_ = s.Close()
				return nil, fmt.Errorf("failed to read header in sheet %s: %w", sheet, err)
			}
		}
	}
	return s, nil
}

func (s *xlsxScanner) Scan() (Record, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return nil, fmt.Errorf("failed to iterate sheet %s: %w", s.sheet, err)
		}
		return nil, io.EOF
	}
	row, err := s.rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read row in sheet %s: %w", s.sheet, err)
	}
	return Record(row), nil
}

// sniffXLSX inspects the first sheet of a workbook to discover its column
// names and whether the first row is a header.
func sniffXLSX(path string, compression CompressionType) ([]string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	decompressed, closeDecomp, err := newDecompressedReader(f, compression)
	if err != nil {
		return nil, false, err
	}
	if closeDecomp != nil {
		defer func() { _ = closeDecomp() }()
	}

	book, err := excelize.OpenReader(decompressed)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer func() { _ = book.Close() }()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, false, fmt.Errorf("%w: no sheets in %s", ErrEmptySource, path)
	}

	rows, err := book.Rows(sheets[0])
	if err != nil {
		return nil, false, fmt.Errorf("failed to open rows iterator for sheet %s: %w", sheets[0], err)
	}
	defer func() { _ = rows.Close() }()

	sample := make([][]string, 0, detectSampleLines)
	for rows.Next() && len(sample) < detectSampleLines {
		row, err := rows.Columns()
		if err != nil {
			return nil, false, fmt.Errorf("failed to read row in sheet %s: %w", sheets[0], err)
		}
		if len(row) == 0 {
			continue
		}
		sample = append(sample, row)
	}
	if err := rows.Error(); err != nil {
		return nil, false, fmt.Errorf("failed to iterate sheet %s: %w", sheets[0], err)
	}
	if len(sample) == 0 {
		return nil, false, fmt.Errorf("%w: %s", ErrEmptySource, path)
	}

	headerPresent := detectHeaderRecords(sample)
	var columns []string
	if headerPresent {
		columns = sample[0]
	} else {
		columns = synthesizeColumns(len(sample[0]))
	}
	if err := validateColumnNames(columns); err != nil {
		return nil, false, err
	}
	return columns, headerPresent, nil
}

func (s *xlsxScanner) Close() error {
	var errs []error
	errs = append(errs, s.rows.Close())
	errs = append(errs, s.book.Close())
	if s.closeDecomp != nil {
		errs = append(errs, s.closeDecomp())
	}
	errs = append(errs, s.file.Close())
	return errors.Join(errs...)
}
