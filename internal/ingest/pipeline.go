// Package ingest turns an uploaded delimited file into a per-row outcome
// report. Partial failure is the normal case: row-level problems are collected
// as data and returned in the report, never as Go errors. Only file-level
// problems (bad metadata, unreadable stream, header mismatch) abort an upload.
package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"pos-backoffice/internal/core"
)

// MaxFileSize is the upload size ceiling. Uploads are bounded so a single
// request's processing latency stays predictable.
const MaxFileSize = 5 << 20 // 5 MB

// StatusSuccess is the trailing status column value for an applied row.
const StatusSuccess = "SUCCESS"

// CandidateRow is a structurally valid, not-yet-business-validated row.
// Raw holds the fields exactly as read; Fields holds them normalized (every
// field trimmed, every field lowercased except barcode columns). Row is the
// 1-based count of data lines read, blank lines excluded.
type CandidateRow struct {
	Row    int
	Raw    []string
	Fields []string
}

// StructuralError is a column-count mismatch detected before business rules
// run. Rows with structural errors never reach the importer.
type StructuralError struct {
	Row    int
	Line   string
	Reason string
}

// RowOutcome is the business result for one candidate row: applied, or
// rejected with a human-readable reason.
type RowOutcome struct {
	Row     int
	Raw     []string
	Success bool
	Reason  string
}

// RowImporter validates and applies candidate rows for one entity kind.
// Apply returns a rejection inside the outcome for business failures and a
// non-nil error only for infrastructure failures, which abort the upload.
// Rows are applied in file order, so batch effects (e.g. a duplicate barcode
// introduced earlier in the same file) are visible to later rows.
type RowImporter interface {
	// Header is the expected column set, lowercased, order-sensitive.
	Header() []string
	Apply(ctx context.Context, row CandidateRow) (RowOutcome, error)
}

// Result is everything the pipeline learned about one file.
type Result struct {
	Header           []string
	Outcomes         []RowOutcome
	StructuralErrors []StructuralError
	Applied          int
	Rejected         int
}

// Run executes the full pipeline: metadata validation, structural parse,
// normalization, and per-row business application via imp.
func Run(ctx context.Context, r io.Reader, filename string, size int64, imp RowImporter) (*Result, error) {
	if err := validateMetadata(filename, size); err != nil {
		return nil, err
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), MaxFileSize)

	expected := imp.Header()
	if err := readHeader(sc, expected); err != nil {
		return nil, err
	}

	res := &Result{Header: expected}
	rowNum := 0
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rowNum++

		raw := strings.Split(line, "\t")
		if len(raw) != len(expected) {
			res.StructuralErrors = append(res.StructuralErrors, StructuralError{
				Row:    rowNum,
				Line:   line,
				Reason: fmt.Sprintf("expected %d columns, got %d", len(expected), len(raw)),
			})
			continue
		}

		row := CandidateRow{
			Row:    rowNum,
			Raw:    raw,
			Fields: normalizeFields(expected, raw),
		}
		outcome, err := imp.Apply(ctx, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		if outcome.Success {
			res.Applied++
		} else {
			res.Rejected++
		}
		res.Outcomes = append(res.Outcomes, outcome)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return res, nil
}

// validateMetadata fails fast on empty, wrongly named, or oversized files,
// before any parsing is attempted.
func validateMetadata(filename string, size int64) error {
	if size == 0 {
		return core.Validationf("file is empty")
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".tsv") {
		return core.Validationf("file must have a .tsv extension, got %q", filename)
	}
	if size > MaxFileSize {
		return core.Validationf("file exceeds the %d byte limit (%d bytes)", int64(MaxFileSize), size)
	}
	return nil
}

// readHeader consumes the header line and requires it to exactly equal the
// expected column set, order-sensitive, after trimming and lowercasing.
func readHeader(sc *bufio.Scanner, expected []string) error {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return fmt.Errorf("failed to read header: %w", err)
		}
		return core.Validationf("file has no header line")
	}
	got := strings.Split(sc.Text(), "\t")
	for i := range got {
		got[i] = strings.ToLower(strings.TrimSpace(got[i]))
	}
	if len(got) != len(expected) {
		return core.Validationf("unexpected header: want %q, got %q",
			strings.Join(expected, "\t"), strings.Join(got, "\t"))
	}
	for i := range got {
		if got[i] != expected[i] {
			return core.Validationf("unexpected header: want %q, got %q",
				strings.Join(expected, "\t"), strings.Join(got, "\t"))
		}
	}
	return nil
}

// normalizeFields trims every field and lowercases all of them except columns
// whose header is exactly "barcode": barcodes are case-sensitive identifiers,
// everything else is a case-insensitive business label.
func normalizeFields(header, raw []string) []string {
	fields := make([]string, len(raw))
	for i, f := range raw {
		f = strings.TrimSpace(f)
		if header[i] != "barcode" {
			f = strings.ToLower(f)
		}
		fields[i] = f
	}
	return fields
}
