package tablebuilder

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// detectSampleLines is how many non-empty lines the shape detector inspects.
const detectSampleLines = 20

// delimiterPreference is the tie-break order for delimiter candidates.
// Earlier candidates win when equally consistent.
var delimiterPreference = []rune{',', '\t', '|', ';', ':', '^', ' '}

// Detection is the result of inspecting a source file prefix.
type Detection struct {
	// Delimiter is the winning field delimiter
	Delimiter rune
	// FieldCount is the consistent field count observed for the delimiter
	FieldCount int
	// HeaderPresent reports whether the first line looks like a header row
	HeaderPresent bool
	// LowConfidence is set when no candidate produced a consistent field
	// count of at least two; the file is then treated as single-column text
	// and the caller should offer a manual override
	LowConfidence bool
}

// DetectShape inspects a prefix of the byte stream and determines the field
// delimiter and header presence. Candidates are the built-in preference list
// plus any explicitly configured extra characters. The winner is the
// candidate with the most internally-consistent field count across the first
// detectSampleLines non-empty lines; ties break by preference order.
func DetectShape(r io.Reader, extra ...rune) (*Detection, error) {
	lines, err := sampleLines(r, detectSampleLines)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptySource
	}
	return detectFromLines(lines, extra...), nil
}

// detectFromLines runs delimiter scoring and header detection over lines
// already sampled from the source.
func detectFromLines(lines []string, extra ...rune) *Detection {
	candidates := make([]rune, 0, len(delimiterPreference)+len(extra))
	candidates = append(candidates, delimiterPreference...)
	for _, e := range extra {
		if !containsRune(candidates, e) {
			candidates = append(candidates, e)
		}
	}

	best := rune(0)
	bestConsistent := 0
	bestFields := 0
	for _, cand := range candidates {
		consistent, fields := scoreDelimiter(lines, cand)
		if fields < 2 {
			continue
		}
		// Strictly-greater keeps earlier candidates on ties
		if consistent > bestConsistent {
			best = cand
			bestConsistent = consistent
			bestFields = fields
		}
	}

	// A delimiter is trusted only when every sampled line agrees
	if best == 0 || bestConsistent < len(lines) {
		d := &Detection{
			Delimiter:     ',',
			FieldCount:    1,
			LowConfidence: true,
		}
		d.HeaderPresent = detectHeader(lines, 0)
		return d
	}

	return &Detection{
		Delimiter:     best,
		FieldCount:    bestFields,
		HeaderPresent: detectHeader(lines, best),
	}
}

// detectWithDelimiter builds a detection for an explicitly chosen delimiter,
// skipping scoring but still running header detection. The field count is the
// modal count over the sampled lines.
func detectWithDelimiter(lines []string, delim rune) *Detection {
	_, fields := scoreDelimiter(lines, delim)
	if fields < 1 {
		fields = 1
	}
	return &Detection{
		Delimiter:     delim,
		FieldCount:    fields,
		HeaderPresent: detectHeader(lines, delim),
	}
}

// splitLine parses one line with the given delimiter. Single-column mode
// (low-confidence fallback) returns the whole line as one field.
func splitLine(line string, delim rune, singleColumn bool) []string {
	if singleColumn || delim == 0 {
		return []string{line}
	}
	cr := csv.NewReader(strings.NewReader(line))
	cr.Comma = delim
	cr.LazyQuotes = true
	rec, err := cr.Read()
	if err != nil {
		return strings.Split(line, string(delim))
	}
	return rec
}

// sampleLines reads up to max non-empty lines from r, validating UTF-8.
func sampleLines(r io.Reader, max int) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lines := make([]string, 0, max)
	lineNo := 0
	for scanner.Scan() && len(lines) < max {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !utf8.ValidString(line) {
			return nil, fmt.Errorf("%w: line %d", ErrDecode, lineNo)
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to sample source: %w", err)
	}
	return lines, nil
}

// scoreDelimiter returns how many sampled lines share the modal field count
// for the candidate, and the modal count itself.
func scoreDelimiter(lines []string, delim rune) (consistent, fields int) {
	counts := make(map[int]int)
	for _, line := range lines {
		n := fieldCount(line, delim)
		counts[n]++
	}

	for n, c := range counts {
		if c > consistent || (c == consistent && n > fields) {
			consistent = c
			fields = n
		}
	}
	return consistent, fields
}

// fieldCount parses a single line with the candidate delimiter and returns
// its field count. Quoting follows CSV rules so embedded delimiters inside
// quotes do not split fields.
func fieldCount(line string, delim rune) int {
	cr := csv.NewReader(strings.NewReader(line))
	cr.Comma = delim
	cr.LazyQuotes = true
	rec, err := cr.Read()
	if err != nil {
		return strings.Count(line, string(delim)) + 1
	}
	return len(rec)
}

// detectHeader decides whether the first sampled line is a header: none of
// its fields parse as a recognized scalar (number, date, boolean) while at
// least one corresponding column in subsequent rows does. With no data rows
// a non-scalar first line is still treated as a header.
func detectHeader(lines []string, delim rune) bool {
	split := func(line string) []string {
		return splitLine(line, delim, delim == 0)
	}

	rows := make([][]string, len(lines))
	for i, line := range lines {
		rows[i] = split(line)
	}
	return detectHeaderRecords(rows)
}

// detectHeaderRecords applies the header heuristic to already-split rows.
func detectHeaderRecords(rows [][]string) bool {
	first := rows[0]
	for _, f := range first {
		if isScalar(f) {
			return false
		}
	}

	if len(rows) == 1 {
		return true
	}

	for _, row := range rows[1:] {
		for i, f := range row {
			if i >= len(first) {
				break
			}
			if isScalar(f) {
				return true
			}
		}
	}
	return false
}

// isScalar reports whether a field parses as a recognized non-text scalar.
func isScalar(value string) bool {
	switch classifyValue(value) {
	case ColumnTypeText, ColumnTypeGUID:
		return false
	default:
		return true
	}
}

func containsRune(rs []rune, r rune) bool {
	for _, v := range rs {
		if v == r {
			return true
		}
	}
	return false
}
