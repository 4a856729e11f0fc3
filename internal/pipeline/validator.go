package pipeline

import (
	"log/slog"

	"churnprep/internal/domain"
	"churnprep/internal/table"
)

// minPositiveClass is the smallest positive-label count that does not get
// flagged as a class-imbalance issue.
const minPositiveClass = 100

// Issue tags, reported in this fixed order.
const (
	issueMissingValues    = "missing values detected"
	issueDuplicateRows    = "duplicate rows detected"
	issueLowPositiveClass = "low positive class count"
	issueNonFiniteValues  = "non-finite feature values detected"
)

// Validator computes a quality report over the engineered table. It never
// fails; it only reports.
type Validator struct {
	schema table.Schema
	logger *slog.Logger
}

// NewValidator creates a Validator for the given schema.
func NewValidator(schema table.Schema, logger *slog.Logger) *Validator {
	return &Validator{schema: schema, logger: logger}
}

// Validate builds the QualityReport: counts, label histogram, dtype map, and
// the issue list. Issues are additive, in fixed order: missing values,
// duplicate rows, low positive class, non-finite features. A nonzero missing
// count after cleaning is itself a reportable issue, never a crash.
func (v *Validator) Validate(t *table.Table) *domain.QualityReport {
	report := &domain.QualityReport{
		TotalRows:         t.NumRows(),
		TotalColumns:      t.NumColumns(),
		MissingValues:     t.MissingCount(),
		DuplicateRows:     t.DuplicateRowCount(),
		LabelDistribution: labelHistogram(t, t.ColumnIndex(v.schema.Target)),
		DataTypes:         make(map[string]string, t.NumColumns()),
	}

	for _, c := range t.Columns() {
		report.DataTypes[c.Name] = c.Kind.String()
		switch c.Kind {
		case table.Numeric, table.Label:
			report.NumericColumns++
		default:
			report.CategoricalColumns++
		}
	}

	for row := 0; row < t.NumRows(); row++ {
		for col := 0; col < t.NumColumns(); col++ {
			if !t.Value(row, col).IsFinite() {
				report.NonFiniteValues++
			}
		}
	}

	report.Issues = []string{}
	if report.MissingValues > 0 {
		report.Issues = append(report.Issues, issueMissingValues)
	}
	if report.DuplicateRows > 0 {
		report.Issues = append(report.Issues, issueDuplicateRows)
	}
	if report.LabelDistribution[1] < minPositiveClass {
		report.Issues = append(report.Issues, issueLowPositiveClass)
	}
	if report.NonFiniteValues > 0 {
		report.Issues = append(report.Issues, issueNonFiniteValues)
	}

	v.logger.Info("data validation completed",
		"rows", report.TotalRows,
		"columns", report.TotalColumns,
		"issues", report.Issues)
	return report
}
