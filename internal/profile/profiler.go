package profile

import (
	"context"
	"math"
	"strconv"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	gstat "gonum.org/v1/gonum/stat"

	"datapilot/domain/report"
	"datapilot/domain/table"
	"datapilot/internal/errors"
)

// Profiler computes per-column descriptive statistics and dataset KPIs.
// Columns are independent, so they are profiled concurrently.
type Profiler struct {
	maxParallel int
}

// NewProfiler creates a profiler; maxParallel bounds concurrent column work.
func NewProfiler() *Profiler {
	return &Profiler{maxParallel: 4}
}

// KPIs computes the headline metrics for the current table state
func (p *Profiler) KPIs(t *table.Table) report.KPISet {
	if t == nil {
		return report.KPISet{}
	}
	return report.KPISet{
		TotalRows:     t.NumRows(),
		TotalColumns:  t.NumCols(),
		DuplicateRows: t.DuplicateCount(),
		MissingCells:  t.MissingCount(),
	}
}

// Summaries profiles every numeric column of the table. Results come back
// in column declaration order regardless of completion order.
func (p *Profiler) Summaries(ctx context.Context, t *table.Table) ([]report.ColumnSummary, error) {
	if t.IsEmpty() {
		return nil, errors.DatasetEmpty()
	}

	numeric := t.NumericColumns()
	summaries := make([]report.ColumnSummary, len(numeric))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxParallel)
	for i, name := range numeric {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := p.summarizeColumn(t, name)
			if err != nil {
				return errors.Wrapf(err, "profiling column %s", name)
			}
			summaries[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// summarizeColumn computes the descriptive statistics for one column
func (p *Profiler) summarizeColumn(t *table.Table, name string) (report.ColumnSummary, error) {
	values, missing := t.NumericValues(name)
	summary := report.ColumnSummary{
		Name:    name,
		Count:   len(values),
		Missing: missing,
	}
	if len(values) == 0 {
		return summary, nil
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return summary, err
	}
	median, _ := stats.Median(values)
	stdDev, _ := stats.StandardDeviation(values)
	minV, _ := stats.Min(values)
	maxV, _ := stats.Max(values)
	q25, _ := stats.Percentile(values, 25)
	q75, _ := stats.Percentile(values, 75)

	summary.Mean = mean
	summary.Median = median
	summary.StdDev = stdDev
	summary.Min = minV
	summary.Max = maxV
	summary.Q25 = q25
	summary.Q75 = q75

	if len(values) >= 3 && stdDev > 0 {
		summary.Skewness = gstat.Skew(values, nil)
	}
	if len(values) >= 4 && stdDev > 0 {
		summary.Kurtosis = gstat.ExKurtosis(values, nil)
	}
	return summary, nil
}

// Correlation computes the Pearson correlation between two numeric columns
// aligned by row. Rows where either cell is missing are dropped pairwise.
func (p *Profiler) Correlation(t *table.Table, colX, colY string) (float64, error) {
	xi := t.ColumnIndex(colX)
	yi := t.ColumnIndex(colY)
	if xi < 0 {
		return 0, errors.NotFound("column " + colX)
	}
	if yi < 0 {
		return 0, errors.NotFound("column " + colY)
	}

	var xs, ys []float64
	for i := 0; i < t.NumRows(); i++ {
		x, okX := parseCell(t.Cell(i, xi))
		y, okY := parseCell(t.Cell(i, yi))
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return 0, errors.ValidationError("not enough paired values to correlate")
	}

	r := gstat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return 0, nil
	}
	return r, nil
}

func parseCell(cell string) (float64, bool) {
	if table.IsMissing(cell) {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
