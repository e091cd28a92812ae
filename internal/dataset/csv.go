package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// table is a header-indexed view over a parsed CSV file.
type table struct {
	path string
	cols map[string]int
	rows [][]string
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file, expected a header row", path)
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.TrimSpace(name)] = i
	}
	return &table{path: path, cols: cols, rows: records[1:]}, nil
}

// get returns a cell by column name, or "" when the column is missing or
// the row is short.
func (t *table) get(row []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// require fails if any named column is absent. Missing columns are a fatal
// setup error: continuing would silently produce empty records.
func (t *table) require(cols ...string) error {
	for _, c := range cols {
		if _, ok := t.cols[c]; !ok {
			return fmt.Errorf("%s: missing required column %q", t.path, c)
		}
	}
	return nil
}

// isAbsent reports whether a cell holds the source export's missing-value
// sentinel (empty or pandas NaN).
func isAbsent(cell string) bool {
	s := strings.TrimSpace(cell)
	return s == "" || strings.EqualFold(s, "nan")
}

func parseFlag(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "yes", "true", "1", "y":
		return true
	}
	return false
}

func parseFloat(cell string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(cell, "%")), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(cell string) (int, error) {
	// Sheet exports frequently render integers as "12.0".
	s := strings.TrimSpace(cell)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	return strconv.Atoi(s)
}
