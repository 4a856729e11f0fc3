package pipeline

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"churnprep/internal/domain"
	"churnprep/internal/table"
)

// Cleaner removes duplicates and incomplete rows, fixes numeric types, and
// normalizes the label. It is deterministic and total: the only failure path
// is a malformed input shape.
type Cleaner struct {
	schema        table.Schema
	targetMapping map[string]int
	logger        *slog.Logger
}

// NewCleaner creates a Cleaner for the given schema and label mapping.
func NewCleaner(schema table.Schema, targetMapping map[string]int, logger *slog.Logger) *Cleaner {
	return &Cleaner{schema: schema, targetMapping: targetMapping, logger: logger}
}

// Clean applies, in order: full-row de-duplication, missing-value drop,
// numeric coercion (coercion failures become missing), and label mapping
// (unmapped values become missing). A second missing-value pass then drops
// the rows the last two steps invalidated. After cleaning the table has no
// missing cells, no duplicate rows, and a binary integer label.
//
// Cleaning an already-clean table is a no-op: numbers stay numbers and
// mapped labels stay mapped.
func (c *Cleaner) Clean(t *table.Table) (*table.Table, error) {
	labelIdx := t.ColumnIndex(c.schema.Target)
	if labelIdx < 0 {
		return nil, domain.ErrSchema(c.schema.Target, "label column %q not in table", c.schema.Target)
	}

	initial := t.NumRows()

	t = t.Deduplicate()
	c.logger.Info("removed duplicate rows", "count", initial-t.NumRows())

	before := t.NumRows()
	t = t.Filter(complete)
	c.logger.Info("dropped incomplete rows", "count", before-t.NumRows())

	c.coerceNumerics(t)
	c.mapLabels(t, labelIdx)

	// Second pass: rows invalidated by coercion or label mapping.
	before = t.NumRows()
	t = t.Filter(complete)
	if dropped := before - t.NumRows(); dropped > 0 {
		c.logger.Info("dropped rows with unparseable values", "count", dropped)
	}

	c.logger.Info("data cleaning completed",
		"rows", t.NumRows(),
		"label_distribution", labelHistogram(t, labelIdx))
	return t, nil
}

// coerceNumerics converts every numeric-kind cell stored as text into a
// number. Unparseable cells (for example the blank-padded TotalCharges
// strings the raw feed carries) become missing.
func (c *Cleaner) coerceNumerics(t *table.Table) {
	for col, column := range t.Columns() {
		if column.Kind != table.Numeric {
			continue
		}
		for row := 0; row < t.NumRows(); row++ {
			v := t.Value(row, col)
			if v.Kind != table.KindString {
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
			if err != nil || math.IsNaN(f) {
				t.SetValue(row, col, table.MissingValue())
				continue
			}
			t.SetValue(row, col, table.NumberValue(f))
		}
	}
}

// mapLabels rewrites the label column through the target mapping. Values
// outside the mapping become missing and are dropped, never miscoded.
func (c *Cleaner) mapLabels(t *table.Table, labelIdx int) {
	codes := make(map[float64]struct{}, len(c.targetMapping))
	for _, code := range c.targetMapping {
		codes[float64(code)] = struct{}{}
	}
	for row := 0; row < t.NumRows(); row++ {
		v := t.Value(row, labelIdx)
		switch v.Kind {
		case table.KindString:
			code, ok := c.targetMapping[v.Text]
			if !ok {
				t.SetValue(row, labelIdx, table.MissingValue())
				continue
			}
			t.SetValue(row, labelIdx, table.NumberValue(float64(code)))
		case table.KindNumber:
			// Already mapped on a previous clean; keep only known codes.
			if _, ok := codes[v.Num]; !ok {
				t.SetValue(row, labelIdx, table.MissingValue())
			}
		default:
			t.SetValue(row, labelIdx, table.MissingValue())
		}
	}
}

// complete reports whether a row has no missing cells.
func complete(row []table.Value) bool {
	for _, v := range row {
		if v.IsMissing() {
			return false
		}
	}
	return true
}

// labelHistogram counts label codes in the given column.
func labelHistogram(t *table.Table, labelIdx int) map[int]int {
	hist := make(map[int]int)
	if labelIdx < 0 {
		return hist
	}
	for row := 0; row < t.NumRows(); row++ {
		if f, ok := t.Value(row, labelIdx).Float(); ok {
			hist[int(f)]++
		}
	}
	return hist
}
