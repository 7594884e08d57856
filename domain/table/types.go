package table

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"datapilot/domain/core"
)

// ValueType classifies the contents of a column
type ValueType string

const (
	TypeNumeric     ValueType = "numeric"
	TypeCategorical ValueType = "categorical"
	TypeBoolean     ValueType = "boolean"
	TypeTimestamp   ValueType = "timestamp"
	TypeString      ValueType = "string"
)

// IsNumericType returns true for column types that support numeric operations
func (vt ValueType) IsNumericType() bool {
	return vt == TypeNumeric
}

// Column describes a single named column and its inferred type
type Column struct {
	Name string    `json:"name"`
	Type ValueType `json:"type"`
}

// Table is an in-memory tabular dataset: named columns over rows of string
// cells. Cells keep their source text; numeric access parses on demand so a
// cleaning pass can rewrite cells without tracking a parallel representation.
type Table struct {
	ID       core.DatasetID `json:"id"`
	Filename string         `json:"filename"`
	Columns  []Column       `json:"columns"`
	Rows     [][]string     `json:"rows"`
	LoadedAt time.Time      `json:"loaded_at"`
}

// New creates a table from headers and raw rows, with all columns typed as
// string until inference runs.
func New(filename string, headers []string, rows [][]string) *Table {
	cols := make([]Column, len(headers))
	for i, h := range headers {
		cols[i] = Column{Name: h, Type: TypeString}
	}
	return &Table{
		ID:       core.NewDatasetID(),
		Filename: filename,
		Columns:  cols,
		Rows:     rows,
		LoadedAt: time.Now(),
	}
}

// NumRows returns the number of data rows
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumCols returns the number of columns
func (t *Table) NumCols() int {
	return len(t.Columns)
}

// IsEmpty reports whether the table has no data rows
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

// ColumnIndex returns the position of a named column, or -1 if absent
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ColumnType returns the inferred type of a named column
func (t *Table) ColumnType(name string) (ValueType, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return "", false
	}
	return t.Columns[idx].Type, true
}

// ColumnNames returns all column names in declaration order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// NumericColumns returns the names of all numeric columns in order
func (t *Table) NumericColumns() []string {
	var names []string
	for _, c := range t.Columns {
		if c.Type.IsNumericType() {
			names = append(names, c.Name)
		}
	}
	return names
}

// Clone returns a deep copy of the table, sharing nothing with the original.
// The copy keeps the same dataset ID: it is the same logical dataset.
func (t *Table) Clone() *Table {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = append([]string(nil), row...)
	}
	cols := append([]Column(nil), t.Columns...)
	return &Table{
		ID:       t.ID,
		Filename: t.Filename,
		Columns:  cols,
		Rows:     rows,
		LoadedAt: t.LoadedAt,
	}
}

// IsMissing reports whether a cell value counts as missing. The accepted
// sentinels match what spreadsheet exports actually contain.
func IsMissing(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "na", "n/a", "nan", "null":
		return true
	}
	return false
}

// Cell returns the raw cell at (row, col index). Out-of-range access returns
// an empty (missing) cell rather than panicking.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// ColumnValues returns all raw cells of a named column
func (t *Table) ColumnValues(name string) []string {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	values := make([]string, len(t.Rows))
	for i := range t.Rows {
		values[i] = t.Cell(i, idx)
	}
	return values
}

// NumericValues parses the named column to float64, skipping missing and
// unparseable cells. The second return is the number of missing cells.
func (t *Table) NumericValues(name string) ([]float64, int) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, 0
	}
	var values []float64
	missing := 0
	for i := range t.Rows {
		cell := t.Cell(i, idx)
		if IsMissing(cell) {
			missing++
			continue
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
			values = append(values, v)
		}
	}
	return values, missing
}

// MissingCount returns the number of missing cells in the whole table
func (t *Table) MissingCount() int {
	count := 0
	for i := range t.Rows {
		for j := range t.Columns {
			if IsMissing(t.Cell(i, j)) {
				count++
			}
		}
	}
	return count
}

// MissingInColumn returns the number of missing cells in a named column
func (t *Table) MissingInColumn(name string) int {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return 0
	}
	count := 0
	for i := range t.Rows {
		if IsMissing(t.Cell(i, idx)) {
			count++
		}
	}
	return count
}

// rowKey builds the equality key used for duplicate detection. Rows are
// duplicates only when every cell matches exactly.
func (t *Table) rowKey(row int) string {
	var b strings.Builder
	for j := range t.Columns {
		b.WriteString(t.Cell(row, j))
		b.WriteByte(0x1f) // unit separator, cannot appear in CSV cells
	}
	return b.String()
}

// DuplicateCount returns how many rows are exact duplicates of an earlier row
func (t *Table) DuplicateCount() int {
	seen := make(map[string]struct{}, len(t.Rows))
	dupes := 0
	for i := range t.Rows {
		key := t.rowKey(i)
		if _, ok := seen[key]; ok {
			dupes++
			continue
		}
		seen[key] = struct{}{}
	}
	return dupes
}

// HeadRows returns up to n leading rows for preview rendering
func (t *Table) HeadRows(n int) [][]string {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	head := make([][]string, n)
	for i := 0; i < n; i++ {
		head[i] = append([]string(nil), t.Rows[i]...)
	}
	return head
}

// EncodeCSV serializes the current table state to CSV bytes, header first
func (t *Table) EncodeCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.ColumnNames()); err != nil {
		return nil, err
	}
	for i := range t.Rows {
		record := make([]string, len(t.Columns))
		for j := range t.Columns {
			record[j] = t.Cell(i, j)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
