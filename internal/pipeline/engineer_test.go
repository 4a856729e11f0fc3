package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnprep/internal/domain"
	"churnprep/internal/table"
)

// cleanTable builds a post-cleaning table: numerics typed, label coded.
func cleanTable(t *testing.T, rows [][]table.Value) *table.Table {
	t.Helper()
	tbl := table.New([]table.Column{
		{Name: "customerID", Kind: table.Identifier},
		{Name: "gender", Kind: table.Categorical},
		{Name: "tenure", Kind: table.Numeric},
		{Name: "MonthlyCharges", Kind: table.Numeric},
		{Name: "TotalCharges", Kind: table.Numeric},
		{Name: "Contract", Kind: table.Categorical},
		{Name: "Churn", Kind: table.Label},
	})
	for _, r := range rows {
		require.NoError(t, tbl.AppendRow(r))
	}
	return tbl
}

func cleanRow(id, gender string, tenure, monthly, total float64, contract string, churn int) []table.Value {
	return []table.Value{
		table.StringValue(id),
		table.StringValue(gender),
		table.NumberValue(tenure),
		table.NumberValue(monthly),
		table.NumberValue(total),
		table.StringValue(contract),
		table.NumberValue(float64(churn)),
	}
}

func TestEngineer_RatioFeatures(t *testing.T) {
	tbl := cleanTable(t, [][]table.Value{
		cleanRow("0001", "Female", 10, 50, 500, "One year", 0),
	})

	out, err := NewEngineer(testSchema(), testLogger()).Engineer(tbl)
	require.NoError(t, err)

	perMonth, ok := out.Value(0, out.ColumnIndex("TotalChargesPerMonth")).Float()
	require.True(t, ok)
	assert.Equal(t, 50.0, perMonth)

	ratio, ok := out.Value(0, out.ColumnIndex("MonthlyChargesRatio")).Float()
	require.True(t, ok)
	assert.Equal(t, 0.1, ratio)
}

func TestEngineer_ZeroDenominatorsPropagate(t *testing.T) {
	tbl := cleanTable(t, [][]table.Value{
		cleanRow("0001", "Female", 0, 50, 500, "One year", 0),  // tenure zero
		cleanRow("0002", "Male", 10, 50, 0, "One year", 1),     // total zero
		cleanRow("0003", "Male", 0, 50, 0, "One year", 1),      // both zero
	})

	out, err := NewEngineer(testSchema(), testLogger()).Engineer(tbl)
	require.NoError(t, err)

	pmIdx := out.ColumnIndex("TotalChargesPerMonth")
	rIdx := out.ColumnIndex("MonthlyChargesRatio")

	pm0, _ := out.Value(0, pmIdx).Float()
	assert.True(t, math.IsInf(pm0, 1), "500/0 should be +Inf")

	r1, _ := out.Value(1, rIdx).Float()
	assert.True(t, math.IsInf(r1, 1), "50/0 should be +Inf")

	pm2, _ := out.Value(2, pmIdx).Float()
	assert.True(t, math.IsNaN(pm2), "0/0 should be NaN")
}

func TestEngineer_OneHotEncoding(t *testing.T) {
	tbl := cleanTable(t, [][]table.Value{
		cleanRow("0001", "Female", 1, 30, 30, "Month-to-month", 0),
		cleanRow("0002", "Male", 34, 57, 1889, "One year", 1),
		cleanRow("0003", "Male", 2, 54, 108, "Two year", 1),
	})

	out, err := NewEngineer(testSchema(), testLogger()).Engineer(tbl)
	require.NoError(t, err)

	// Categorical originals are gone, indicator columns replace them.
	assert.Equal(t, -1, out.ColumnIndex("gender"))
	assert.Equal(t, -1, out.ColumnIndex("Contract"))

	// k levels yield k-1 indicators, the lexicographically first level is the
	// reference: gender {Female,Male} -> gender_Male; Contract
	// {Month-to-month,One year,Two year} -> Contract_One year, Contract_Two year.
	assert.Equal(t, -1, out.ColumnIndex("gender_Female"))
	require.GreaterOrEqual(t, out.ColumnIndex("gender_Male"), 0)
	assert.Equal(t, -1, out.ColumnIndex("Contract_Month-to-month"))
	require.GreaterOrEqual(t, out.ColumnIndex("Contract_One year"), 0)
	require.GreaterOrEqual(t, out.ColumnIndex("Contract_Two year"), 0)

	// Indicator blocks come after every kept column.
	assert.Greater(t, out.ColumnIndex("gender_Male"), out.ColumnIndex("MonthlyChargesRatio"))
	assert.Greater(t, out.ColumnIndex("Contract_One year"), out.ColumnIndex("gender_Male"))

	// Original category is reconstructible from each row's indicators.
	male := out.ColumnIndex("gender_Male")
	one := out.ColumnIndex("Contract_One year")
	two := out.ColumnIndex("Contract_Two year")

	assertIndicator(t, out, 0, male, 0)
	assertIndicator(t, out, 1, male, 1)
	assertIndicator(t, out, 2, male, 1)

	assertIndicator(t, out, 0, one, 0) // reference level: all indicators zero
	assertIndicator(t, out, 0, two, 0)
	assertIndicator(t, out, 1, one, 1)
	assertIndicator(t, out, 1, two, 0)
	assertIndicator(t, out, 2, one, 0)
	assertIndicator(t, out, 2, two, 1)
}

func assertIndicator(t *testing.T, tbl *table.Table, row, col int, want float64) {
	t.Helper()
	f, ok := tbl.Value(row, col).Float()
	require.True(t, ok)
	assert.Equal(t, want, f)
}

func TestEngineer_SingleLevelColumnVanishes(t *testing.T) {
	// A categorical column with one observed level carries no information;
	// k-1 encoding removes it entirely.
	tbl := cleanTable(t, [][]table.Value{
		cleanRow("0001", "Female", 1, 30, 30, "One year", 0),
		cleanRow("0002", "Female", 2, 40, 80, "One year", 1),
	})

	out, err := NewEngineer(testSchema(), testLogger()).Engineer(tbl)
	require.NoError(t, err)

	for _, c := range out.Columns() {
		assert.NotContains(t, c.Name, "gender")
		assert.NotContains(t, c.Name, "Contract")
	}
}

func TestEngineer_NonStringCategoricalCell(t *testing.T) {
	tbl := cleanTable(t, [][]table.Value{
		{
			table.StringValue("0001"),
			table.NumberValue(3), // numeric cell in a categorical column
			table.NumberValue(1),
			table.NumberValue(30),
			table.NumberValue(30),
			table.StringValue("One year"),
			table.NumberValue(0),
		},
	})

	_, err := NewEngineer(testSchema(), testLogger()).Engineer(tbl)
	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "gender", schemaErr.Column)
}

func TestEngineer_MissingNumericColumn(t *testing.T) {
	tbl := table.New([]table.Column{{Name: "customerID", Kind: table.Identifier}})

	_, err := NewEngineer(testSchema(), testLogger()).Engineer(tbl)
	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "tenure", schemaErr.Column)
}
