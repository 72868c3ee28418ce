// Package statement reads bank statements, inventory snapshots and demand
// history from CSV or XLSX files into engine inputs.
package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a header-indexed set of rows.
type Table struct {
	header map[string]int
	rows   [][]string
}

// Open reads a .csv or .xlsx file.
func Open(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, filepath.Base(path))
}

// Read picks the decoder from the file name extension; anything that is not
// .xlsx is treated as CSV.
func Read(r io.Reader, name string) (*Table, error) {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return ReadXLSX(r)
	}
	return ReadCSV(r)
}

func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return newTable(records)
}

// ReadXLSX reads the first sheet.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		records = append(records, cols)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return newTable(records)
}

func newTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	header := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		header[normalizeColumn(col)] = i
	}

	var rows [][]string
	for _, rec := range records[1:] {
		if !blank(rec) {
			rows = append(rows, rec)
		}
	}
	return &Table{header: header, rows: rows}, nil
}

// Len is the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// require fails when none of the aliases of a column is present.
func (t *Table) require(aliases ...string) error {
	if _, ok := t.column(aliases...); !ok {
		return fmt.Errorf("missing required column: %s", aliases[0])
	}
	return nil
}

func (t *Table) column(aliases ...string) (int, bool) {
	for _, alias := range aliases {
		if idx, ok := t.header[alias]; ok {
			return idx, true
		}
	}
	return 0, false
}

// value returns the trimmed cell for the first present alias.
func (t *Table) value(rec []string, aliases ...string) string {
	idx, ok := t.column(aliases...)
	if !ok || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

func normalizeColumn(col string) string {
	col = strings.TrimPrefix(col, "\ufeff")
	col = strings.ToLower(strings.TrimSpace(col))
	return strings.Join(strings.Fields(col), "_")
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
