// Package table implements the in-memory tabular dataset the pipeline
// stages transform: a typed column schema over ordered rows of cells.
package table

import (
	"math"
	"strconv"
)

// ValueKind discriminates cell contents.
type ValueKind int

const (
	KindMissing ValueKind = iota
	KindString
	KindNumber
)

// Value is a single table cell: a string, a number, or missing.
type Value struct {
	Kind ValueKind
	Text string
	Num  float64
}

// StringValue returns a string cell.
func StringValue(s string) Value { return Value{Kind: KindString, Text: s} }

// NumberValue returns a numeric cell.
func NumberValue(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// MissingValue returns a missing cell.
func MissingValue() Value { return Value{Kind: KindMissing} }

// IsMissing reports whether the cell holds no value.
func (v Value) IsMissing() bool { return v.Kind == KindMissing }

// Float returns the numeric value of the cell, when it is a number.
func (v Value) Float() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	return v.Num, true
}

// IsFinite reports whether a numeric cell holds a finite value.
// Non-numeric cells are vacuously finite.
func (v Value) IsFinite() bool {
	if v.Kind != KindNumber {
		return true
	}
	return !math.IsInf(v.Num, 0) && !math.IsNaN(v.Num)
}

// String renders the cell in its CSV form: missing cells are empty,
// numbers use the shortest round-trippable representation.
func (v Value) String() string {
	switch v.Kind {
	case KindMissing:
		return ""
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	default:
		return v.Text
	}
}

// Equal reports cell equality. Two NaN cells compare equal so that
// full-row de-duplication treats identical rows as duplicates.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindMissing:
		return true
	case KindNumber:
		if math.IsNaN(v.Num) && math.IsNaN(o.Num) {
			return true
		}
		return v.Num == o.Num
	default:
		return v.Text == o.Text
	}
}
