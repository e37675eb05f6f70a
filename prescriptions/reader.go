// Package prescriptions reads prescription exports, runs every medication
// text through the parser and writes the enriched table back out.
package prescriptions

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"unicode/utf8"

	"github.com/giygas/medications-normalizer/logging"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// Table is a CSV file held in memory. Every row has len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the position of name in the header, or -1.
func (t *Table) ColumnIndex(name string) int {
	return slices.Index(t.Header, name)
}

// EnsureColumn returns the index of name, appending an empty column when the
// header does not have it yet.
func (t *Table) EnsureColumn(name string) int {
	if i := t.ColumnIndex(name); i >= 0 {
		return i
	}
	t.Header = append(t.Header, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], "")
	}
	return len(t.Header) - 1
}

// ReadFile opens path and decodes it with ReadTable.
func ReadFile(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("Failed to close prescriptions file", "path", path, "error", err)
		}
	}()

	table, err := ReadTable(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return table, nil
}

// ReadTable decodes a CSV document whose first record is the header.
// Input that is not valid UTF-8 is decoded as ISO-8859-1.
func ReadTable(r io.Reader) (*Table, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	// Exports from older practice software are often Latin-1
	var source io.Reader
	if utf8.Valid(content) {
		source = bytes.NewReader(content)
	} else {
		source = transform.NewReader(bytes.NewReader(content), charmap.ISO8859_1.NewDecoder())
	}

	reader := csv.NewReader(source)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("input has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	table := &Table{Header: header}
	lineCount := 1
	paddedRows := 0

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		lineCount++

		switch {
		case len(record) > len(header):
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(header), len(record))
		case len(record) < len(header):
			paddedRows++
			record = append(record, make([]string, len(header)-len(record))...)
		}

		table.Rows = append(table.Rows, record)
	}

	if paddedRows > 0 {
		logging.Info("Prescriptions padding statistics",
			"padded_rows", paddedRows,
			"total_lines", lineCount,
			"records_parsed", len(table.Rows))
	}

	return table, nil
}
