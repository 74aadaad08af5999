package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Row is one data row keyed by header name. Line is the 1-based line in the file.
type Row struct {
	Line   int
	Values map[string]string
}

// RowError is a data row the csv reader could not parse. Reading can continue
// past it.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// RowReader streams header-keyed rows. Short rows leave the missing columns
// empty; extra cells without a header are ignored.
type RowReader struct {
	csv    *csv.Reader
	header []string
	err    error
}

// NewRowReader wraps r, stripping a leading UTF-8 BOM if present.
func NewRowReader(r io.Reader) *RowReader {
	cr := csv.NewReader(transform.NewReader(r, unicode.UTF8BOM.NewDecoder()))
	cr.FieldsPerRecord = -1
	return &RowReader{csv: cr}
}

// Header returns the header row, reading it if needed.
func (rr *RowReader) Header() ([]string, error) {
	if rr.header == nil && rr.err == nil {
		header, err := rr.csv.Read()
		switch {
		case errors.Is(err, io.EOF):
			rr.err = io.EOF
		case err != nil:
			rr.err = fmt.Errorf("reading header: %w", err)
		default:
			for i := range header {
				header[i] = strings.TrimSpace(header[i])
			}
			rr.header = header
		}
	}
	return rr.header, rr.err
}

// Next returns the next row. It returns io.EOF at the end of the file and a
// *RowError for a row with broken quoting; any other error is fatal.
func (rr *RowReader) Next() (*Row, error) {
	header, err := rr.Header()
	if err != nil {
		return nil, err
	}

	record, err := rr.csv.Read()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, &RowError{Line: parseErr.StartLine, Err: parseErr.Err}
		}
		return nil, err
	}

	line, _ := rr.csv.FieldPos(0)
	values := make(map[string]string, len(header))
	for i, name := range header {
		if i < len(record) {
			values[name] = record[i]
		} else {
			values[name] = ""
		}
	}

	return &Row{Line: line, Values: values}, nil
}
