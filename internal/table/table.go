package table

import (
	"fmt"
	"sort"
	"strings"
)

// Table is an ordered sequence of rows sharing a column schema. A pipeline
// run owns its Table exclusively: stages consume the previous stage's output
// and no two stages observe the same Table concurrently.
type Table struct {
	cols []Column
	rows [][]Value
}

// New creates an empty table with the given columns.
func New(cols []Column) *Table {
	c := make([]Column, len(cols))
	copy(c, cols)
	return &Table{cols: c}
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return len(t.rows) }

// NumColumns returns the column count.
func (t *Table) NumColumns() int { return len(t.cols) }

// Columns returns a copy of the column schema.
func (t *Table) Columns() []Column {
	c := make([]Column, len(t.cols))
	copy(c, t.cols)
	return c
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.cols {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Value returns the cell at (row, col).
func (t *Table) Value(row, col int) Value { return t.rows[row][col] }

// SetValue replaces the cell at (row, col).
func (t *Table) SetValue(row, col int, v Value) { t.rows[row][col] = v }

// Row returns the cells of one row. The slice aliases table storage and
// must not be retained across mutations.
func (t *Table) Row(row int) []Value { return t.rows[row] }

// AppendRow adds a row, which must match the column count.
func (t *Table) AppendRow(vals []Value) error {
	if len(vals) != len(t.cols) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(vals), len(t.cols))
	}
	r := make([]Value, len(vals))
	copy(r, vals)
	t.rows = append(t.rows, r)
	return nil
}

// AddColumn appends a column with one value per existing row.
func (t *Table) AddColumn(col Column, values []Value) error {
	if len(values) != len(t.rows) {
		return fmt.Errorf("column %q has %d values, table has %d rows", col.Name, len(values), len(t.rows))
	}
	t.cols = append(t.cols, col)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], values[i])
	}
	return nil
}

// Filter returns a new table holding only the rows keep reports true for.
func (t *Table) Filter(keep func(row []Value) bool) *Table {
	out := New(t.cols)
	for _, r := range t.rows {
		if keep(r) {
			row := make([]Value, len(r))
			copy(row, r)
			out.rows = append(out.rows, row)
		}
	}
	return out
}

// Deduplicate returns a new table with exact duplicate rows removed,
// keeping the first occurrence. Equality is over every column.
func (t *Table) Deduplicate() *Table {
	out := New(t.cols)
	seen := make(map[string]struct{}, len(t.rows))
	for _, r := range t.rows {
		k := rowKey(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		row := make([]Value, len(r))
		copy(row, r)
		out.rows = append(out.rows, row)
	}
	return out
}

// MissingCount returns the total number of missing cells.
func (t *Table) MissingCount() int {
	n := 0
	for _, r := range t.rows {
		for _, v := range r {
			if v.IsMissing() {
				n++
			}
		}
	}
	return n
}

// DuplicateRowCount returns the number of rows that are exact duplicates of
// an earlier row.
func (t *Table) DuplicateRowCount() int {
	seen := make(map[string]struct{}, len(t.rows))
	dups := 0
	for _, r := range t.rows {
		k := rowKey(r)
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}

// DistinctStrings returns the distinct string values in the column in
// lexicographic order. Missing cells are skipped.
func (t *Table) DistinctStrings(col int) []string {
	set := make(map[string]struct{})
	for _, r := range t.rows {
		v := r[col]
		if v.Kind == KindString {
			set[v.Text] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// rowKey builds a collision-safe key over every cell for duplicate detection.
func rowKey(row []Value) string {
	var b strings.Builder
	for _, v := range row {
		b.WriteByte(byte(v.Kind))
		b.WriteString(v.String())
		b.WriteByte(0x1f)
	}
	return b.String()
}
