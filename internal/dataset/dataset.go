// Package dataset loads and exposes the fixed in-memory relation the
// analytical kernels query. Modeled on the teacher's data-access style
// (internal/handlers/files.go) but grounded on the original Rust
// data_ingestor.rs for exact ingestion semantics.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"nutristats/internal/applog"
)

// Row is one observation projected from the source CSV.
type Row struct {
	Location string
	Question string
	Value    float32
	Category string
	Stratum  string
	// RowIndex is the 1-based position of this row among the data rows
	// of the source CSV (i.e. excluding the header line).
	RowIndex int
}

// Dataset is an immutable, process-wide, read-only collection of Row.
// Once constructed it is never mutated, so it is safe to share across
// worker goroutines without any locking.
type Dataset struct {
	rows []Row
}

const (
	colLocation = "LocationDesc"
	colQuestion = "Question"
	colValue    = "Data_Value"
	colCategory = "StratificationCategory1"
	colStratum  = "Stratification1"
)

// Load reads the CSV at path and builds a Dataset. It fails only when
// the file cannot be opened or the header line is missing/incomplete;
// individual malformed data rows are skipped with a warning.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: cannot open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("dataset: missing header line: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	required := []string{colLocation, colQuestion, colValue, colCategory, colStratum}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("dataset: missing required column %q", col)
		}
	}

	var rows []Row
	lineIndex := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		lineIndex++
		if err != nil {
			applog.Errorf("dataset: skipping malformed CSV line %d: %v", lineIndex, err)
			continue
		}

		row, ok := parseRow(rec, idx, lineIndex)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}

	return &Dataset{rows: rows}, nil
}

func parseRow(rec []string, idx map[string]int, rowIndex int) (Row, bool) {
	get := func(col string) (string, bool) {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return "", false
		}
		return rec[i], true
	}

	location, ok := get(colLocation)
	if !ok || location == "" {
		applog.Errorf("dataset: row %d missing %s, skipping", rowIndex, colLocation)
		return Row{}, false
	}
	question, ok := get(colQuestion)
	if !ok || question == "" {
		applog.Errorf("dataset: row %d missing %s, skipping", rowIndex, colQuestion)
		return Row{}, false
	}
	valueStr, ok := get(colValue)
	if !ok {
		applog.Errorf("dataset: row %d missing %s, skipping", rowIndex, colValue)
		return Row{}, false
	}
	value, err := strconv.ParseFloat(valueStr, 32)
	if err != nil {
		applog.Errorf("dataset: row %d has non-numeric %s=%q, skipping", rowIndex, colValue, valueStr)
		return Row{}, false
	}
	category, _ := get(colCategory)
	stratum, _ := get(colStratum)

	return Row{
		Location: location,
		Question: question,
		Value:    float32(value),
		Category: category,
		Stratum:  stratum,
		RowIndex: rowIndex,
	}, true
}

// Rows returns the full, immutable sequence of rows. Callers must treat
// the returned slice as read-only; kernels do their own filtering.
func (d *Dataset) Rows() []Row {
	return d.rows
}

// Len returns the number of loaded rows.
func (d *Dataset) Len() int {
	return len(d.rows)
}
