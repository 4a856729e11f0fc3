package pipeline

import (
	"log/slog"

	"churnprep/internal/domain"
	"churnprep/internal/table"
)

// Names of the derived ratio columns.
const (
	colTotalChargesPerMonth = "TotalChargesPerMonth"
	colMonthlyChargesRatio  = "MonthlyChargesRatio"
)

// Engineer derives ratio features and one-hot encodes the categorical
// columns.
type Engineer struct {
	schema table.Schema
	logger *slog.Logger
}

// NewEngineer creates an Engineer for the given schema.
func NewEngineer(schema table.Schema, logger *slog.Logger) *Engineer {
	return &Engineer{schema: schema, logger: logger}
}

// Engineer adds TotalChargesPerMonth and MonthlyChargesRatio, then one-hot
// encodes every categorical column with the lexicographically first level
// dropped as the reference category (k levels become k-1 indicator columns
// named column_level). Zero denominators are not guarded: the IEEE-754
// result (Inf or NaN) flows through as a non-finite sentinel for the
// validator to report. Column order is stable within a run: original
// non-categorical columns first, then indicator blocks in original
// categorical column order.
func (e *Engineer) Engineer(t *table.Table) (*table.Table, error) {
	originalColumns := t.NumColumns()

	if err := e.addRatios(t); err != nil {
		return nil, err
	}

	out, err := e.encode(t)
	if err != nil {
		return nil, err
	}

	e.logger.Info("feature engineering completed",
		"original_columns", originalColumns,
		"encoded_columns", out.NumColumns(),
		"engineered_features", []string{colTotalChargesPerMonth, colMonthlyChargesRatio})
	return out, nil
}

func (e *Engineer) addRatios(t *table.Table) error {
	tenure, err := numericColumn(t, "tenure")
	if err != nil {
		return err
	}
	monthly, err := numericColumn(t, "MonthlyCharges")
	if err != nil {
		return err
	}
	total, err := numericColumn(t, "TotalCharges")
	if err != nil {
		return err
	}

	perMonth := make([]table.Value, t.NumRows())
	ratio := make([]table.Value, t.NumRows())
	for i := range perMonth {
		perMonth[i] = table.NumberValue(total[i] / tenure[i])
		ratio[i] = table.NumberValue(monthly[i] / total[i])
	}

	if err := t.AddColumn(table.Column{Name: colTotalChargesPerMonth, Kind: table.Numeric}, perMonth); err != nil {
		return err
	}
	return t.AddColumn(table.Column{Name: colMonthlyChargesRatio, Kind: table.Numeric}, ratio)
}

// encode builds the one-hot encoded table: kept columns in original order,
// then one indicator block per categorical column.
func (e *Engineer) encode(t *table.Table) (*table.Table, error) {
	type block struct {
		col    int
		levels []string // levels[1:] get indicator columns, levels[0] is the reference
	}

	var cols []table.Column
	var kept []int
	var blocks []block
	for i, c := range t.Columns() {
		if c.Kind == table.Categorical {
			blocks = append(blocks, block{col: i, levels: t.DistinctStrings(i)})
			continue
		}
		kept = append(kept, i)
		cols = append(cols, c)
	}
	for _, b := range blocks {
		name := t.Columns()[b.col].Name
		for _, level := range indicatorLevels(b.levels) {
			cols = append(cols, table.Column{Name: name + "_" + level, Kind: table.Numeric})
		}
	}

	out := table.New(cols)
	row := make([]table.Value, len(cols))
	for r := 0; r < t.NumRows(); r++ {
		n := 0
		for _, i := range kept {
			row[n] = t.Value(r, i)
			n++
		}
		for _, b := range blocks {
			v := t.Value(r, b.col)
			if v.Kind != table.KindString {
				name := t.Columns()[b.col].Name
				return nil, domain.ErrSchema(name, "categorical column %q has a non-string cell at row %d", name, r)
			}
			for _, level := range indicatorLevels(b.levels) {
				if v.Text == level {
					row[n] = table.NumberValue(1)
				} else {
					row[n] = table.NumberValue(0)
				}
				n++
			}
		}
		if err := out.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// indicatorLevels drops the reference level. A column with no observed
// levels contributes no indicator columns.
func indicatorLevels(levels []string) []string {
	if len(levels) == 0 {
		return nil
	}
	return levels[1:]
}

// numericColumn extracts a fully numeric column or reports the offending
// column as a schema error.
func numericColumn(t *table.Table, name string) ([]float64, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, domain.ErrSchema(name, "numeric column %q not in table", name)
	}
	out := make([]float64, t.NumRows())
	for row := 0; row < t.NumRows(); row++ {
		f, ok := t.Value(row, idx).Float()
		if !ok {
			return nil, domain.ErrSchema(name, "column %q has a non-numeric cell at row %d", name, row)
		}
		out[row] = f
	}
	return out, nil
}
