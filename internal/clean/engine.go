package clean

import (
	"strconv"

	"github.com/montanaflynn/stats"

	"datapilot/domain/cleaning"
	"datapilot/domain/table"
	"datapilot/internal"
	"datapilot/internal/errors"
)

// Engine applies cleaning operations to a working table. Operations return
// a new table and a summary; callers swap the result into the session.
type Engine struct {
	logger *internal.Logger
}

// NewEngine creates a cleaning engine
func NewEngine() *Engine {
	return &Engine{logger: internal.DefaultLogger}
}

// DropDuplicates removes rows that are exact duplicates of an earlier row.
// The operation is idempotent: a second pass removes nothing.
func (e *Engine) DropDuplicates(t *table.Table) (*table.Table, cleaning.Summary, error) {
	if t.IsEmpty() {
		return nil, cleaning.Summary{}, errors.DatasetEmpty()
	}

	out := t.Clone()
	seen := make(map[string]struct{}, len(out.Rows))
	kept := out.Rows[:0]
	for _, row := range out.Rows {
		key := rowKey(row)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}
	out.Rows = kept

	summary := cleaning.Summary{
		RowsBefore:  t.NumRows(),
		RowsAfter:   out.NumRows(),
		RowsRemoved: t.NumRows() - out.NumRows(),
	}
	e.logger.Info("[Clean] dropped %d duplicate rows (%d -> %d)",
		summary.RowsRemoved, summary.RowsBefore, summary.RowsAfter)
	return out, summary, nil
}

// Impute fills missing values in every numeric column using the given
// strategy. Complete columns and non-numeric columns are untouched.
func (e *Engine) Impute(t *table.Table, strategy cleaning.Strategy) (*table.Table, cleaning.Summary, error) {
	if t.IsEmpty() {
		return nil, cleaning.Summary{}, errors.DatasetEmpty()
	}

	out := t.Clone()
	summary := cleaning.Summary{
		RowsBefore:  t.NumRows(),
		RowsAfter:   t.NumRows(),
		Strategy:    strategy,
		CellsFilled: make(map[string]int),
	}

	for _, name := range out.NumericColumns() {
		if out.MissingInColumn(name) == 0 {
			continue
		}
		filled, err := e.imputeColumn(out, name, strategy)
		if err != nil {
			return nil, cleaning.Summary{}, err
		}
		if filled > 0 {
			summary.CellsFilled[name] = filled
			summary.FilledTotal += filled
			summary.ColumnsFilled = append(summary.ColumnsFilled, name)
		}
	}

	e.logger.Info("[Clean] imputed %d cells across %d columns with strategy %s",
		summary.FilledTotal, len(summary.ColumnsFilled), strategy)
	return out, summary, nil
}

// imputeColumn rewrites missing cells in one column, returning the fill count.
func (e *Engine) imputeColumn(t *table.Table, name string, strategy cleaning.Strategy) (int, error) {
	values, _ := t.NumericValues(name)

	var fill float64
	switch strategy {
	case cleaning.StrategyZero:
		fill = 0
	case cleaning.StrategyMean:
		if len(values) == 0 {
			fill = 0 // a fully missing column has no mean to take
		} else {
			m, err := stats.Mean(values)
			if err != nil {
				return 0, errors.Wrapf(err, "mean of column %s", name)
			}
			fill = m
		}
	case cleaning.StrategyMedian:
		if len(values) == 0 {
			fill = 0
		} else {
			m, err := stats.Median(values)
			if err != nil {
				return 0, errors.Wrapf(err, "median of column %s", name)
			}
			fill = m
		}
	default:
		return 0, errors.InvalidInput("unknown imputation strategy: " + string(strategy))
	}

	cell := strconv.FormatFloat(fill, 'f', -1, 64)
	idx := t.ColumnIndex(name)
	filled := 0
	for i := range t.Rows {
		if table.IsMissing(t.Cell(i, idx)) {
			t.Rows[i][idx] = cell
			filled++
		}
	}
	return filled, nil
}

// rowKey builds the exact-equality key for duplicate detection
func rowKey(row []string) string {
	key := make([]byte, 0, 64)
	for _, cell := range row {
		key = append(key, cell...)
		key = append(key, 0x1f)
	}
	return string(key)
}
