package transformers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// RowReader reads a CSV stream whose first record is the header and yields
// each later record keyed by column name.
type RowReader struct {
	r      *csv.Reader
	header []string
	line   int
}

func NewRowReader(r io.Reader) (*RowReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %v", err)
	}
	for i, name := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))
	}
	return &RowReader{r: cr, header: header, line: 1}, nil
}

// Next returns io.EOF after the last row. Short rows leave the missing
// columns empty; extra fields are ignored.
func (rr *RowReader) Next() (map[string]string, error) {
	record, err := rr.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("line %d: %v", rr.line+1, err)
	}
	rr.line++

	row := make(map[string]string, len(rr.header))
	for i, name := range rr.header {
		if i < len(record) {
			row[name] = record[i]
		}
	}
	return row, nil
}

// Line is the 1-based line of the last row returned.
func (rr *RowReader) Line() int {
	return rr.line
}
