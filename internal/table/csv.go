package table

import (
	"encoding/csv"
	"fmt"
	"io"

	"churnprep/internal/domain"
)

// ReadCSV parses a comma-separated dataset with a header row into a Table.
// Every column the schema requires must be present; a missing column is a
// SchemaError naming it. Cells are kept in raw string form (type fixes are
// the cleaning stage's job), except that empty cells read as missing.
func ReadCSV(r io.Reader, schema Schema) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, name := range schema.Required() {
		if _, ok := index[name]; !ok {
			return nil, domain.ErrSchema(name, "required column %q not found in header", name)
		}
	}

	cols := make([]Column, len(header))
	for i, name := range header {
		cols[i] = Column{Name: name, Kind: schema.KindOf(name)}
	}

	t := New(cols)
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record at line %d: %w", line+1, err)
		}
		line++
		if len(record) != len(header) {
			return nil, domain.ErrSchema("", "record at line %d has %d fields, header has %d", line, len(record), len(header))
		}
		row := make([]Value, len(record))
		for i, cell := range record {
			if cell == "" {
				row[i] = MissingValue()
			} else {
				row[i] = StringValue(cell)
			}
		}
		if err := t.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// WriteCSV serializes the table with a header row. Missing cells are written
// empty; numbers use their shortest round-trippable form.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(t.cols))
	for i, c := range t.cols {
		header[i] = c.Name
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(t.cols))
	for _, row := range t.rows {
		for i, v := range row {
			record[i] = v.String()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
