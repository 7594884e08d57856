package chart

import (
	"datapilot/domain/table"
	"datapilot/internal/errors"
)

// Kind enumerates the supported chart types
type Kind string

const (
	KindHistogram Kind = "histogram"
	KindBar       Kind = "bar"
	KindPie       Kind = "pie"
	KindLine      Kind = "line"
	KindScatter   Kind = "scatter"
	KindBoxplot   Kind = "boxplot"
)

// Kinds lists all chart kinds in menu order
func Kinds() []Kind {
	return []Kind{KindHistogram, KindBar, KindPie, KindLine, KindScatter, KindBoxplot}
}

// ParseKind validates a user-supplied chart kind
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if Kind(s) == k {
			return k, nil
		}
	}
	return "", errors.InvalidInput("unknown chart kind: " + s)
}

// requiresNumeric reports whether the kind only works on numeric columns.
// Bar and pie charts work on value counts, so any column type is fine.
func (k Kind) requiresNumeric() bool {
	switch k {
	case KindHistogram, KindLine, KindScatter, KindBoxplot:
		return true
	}
	return false
}

// Spec describes one configured chart: a kind, a target column, and for
// scatter charts an optional second column used as the X axis.
type Spec struct {
	Kind    Kind   `json:"kind" validate:"required"`
	Column  string `json:"column" validate:"required"`
	XColumn string `json:"x_column,omitempty"`
}

// Title returns the display title for the chart
func (s Spec) Title() string {
	if s.XColumn != "" {
		return string(s.Kind) + ": " + s.Column + " vs " + s.XColumn
	}
	return string(s.Kind) + ": " + s.Column
}

// Validate checks a spec against the columns of a concrete table. A kind
// that needs numeric data paired with a non-numeric column is a user error,
// not a render failure.
func (s Spec) Validate(t *table.Table) error {
	if t.IsEmpty() {
		return errors.DatasetEmpty()
	}
	colType, ok := t.ColumnType(s.Column)
	if !ok {
		return errors.NotFound("column " + s.Column)
	}
	if s.Kind.requiresNumeric() && !colType.IsNumericType() {
		return errors.ValidationError("chart kind " + string(s.Kind) + " requires a numeric column, but " + s.Column + " is " + string(colType))
	}
	if s.XColumn != "" {
		xType, ok := t.ColumnType(s.XColumn)
		if !ok {
			return errors.NotFound("column " + s.XColumn)
		}
		if s.Kind == KindScatter && !xType.IsNumericType() {
			return errors.ValidationError("scatter X column " + s.XColumn + " must be numeric, but is " + string(xType))
		}
	}
	return nil
}
