package table

// ColumnKind classifies a column's role in the dataset.
type ColumnKind int

const (
	Numeric ColumnKind = iota
	Categorical
	Identifier
	Label
)

// String returns the dtype name reported for the kind in quality reports.
func (k ColumnKind) String() string {
	switch k {
	case Numeric:
		return "float64"
	case Label:
		return "int64"
	default:
		return "object"
	}
}

// Column names and classifies one table column.
type Column struct {
	Name string
	Kind ColumnKind
}

// Schema describes the expected raw dataset layout: which named columns are
// the identifier, the label, the numerics, and the categoricals.
type Schema struct {
	ID          string
	Target      string
	Numeric     []string
	Categorical []string
}

// KindOf classifies a column name. Names outside the schema are treated as
// categorical, matching how an untyped text column would behave downstream.
func (s Schema) KindOf(name string) ColumnKind {
	switch {
	case name == s.ID:
		return Identifier
	case name == s.Target:
		return Label
	}
	for _, n := range s.Numeric {
		if n == name {
			return Numeric
		}
	}
	return Categorical
}

// Required returns every column name the schema demands be present.
func (s Schema) Required() []string {
	names := make([]string, 0, 2+len(s.Numeric)+len(s.Categorical))
	names = append(names, s.ID)
	names = append(names, s.Numeric...)
	names = append(names, s.Categorical...)
	names = append(names, s.Target)
	return names
}
