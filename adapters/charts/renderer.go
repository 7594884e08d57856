package charts

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"
	chartlib "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"datapilot/domain/chart"
	"datapilot/domain/table"
	"datapilot/internal/errors"
)

// Options controls the rendered image geometry and series limits
type Options struct {
	Width         int
	Height        int
	HistogramBins int
	BarTopN       int
	PieTopN       int
}

// DefaultOptions returns the stock rendering parameters
func DefaultOptions() Options {
	return Options{
		Width:         640,
		Height:        400,
		HistogramBins: 20,
		BarTopN:       8,
		PieTopN:       5,
	}
}

var seriesColor = drawing.Color{R: 0x02, G: 0x84, B: 0xc7, A: 255}

// Renderer renders chart specs to PNG using go-chart. It implements
// ports.ChartRenderer.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer with the given options
func NewRenderer(opts Options) *Renderer {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultOptions()
	}
	return &Renderer{opts: opts}
}

// RenderPNG validates the spec against the table and renders it
func (r *Renderer) RenderPNG(spec chart.Spec, t *table.Table) ([]byte, error) {
	if err := spec.Validate(t); err != nil {
		return nil, err
	}

	switch spec.Kind {
	case chart.KindHistogram:
		return r.renderHistogram(spec, t)
	case chart.KindBar:
		return r.renderBar(spec, t)
	case chart.KindPie:
		return r.renderPie(spec, t)
	case chart.KindLine:
		return r.renderLine(spec, t)
	case chart.KindScatter:
		return r.renderScatter(spec, t)
	case chart.KindBoxplot:
		return r.renderBoxplot(spec, t)
	}
	return nil, errors.InvalidInput("unknown chart kind: " + string(spec.Kind))
}

func (r *Renderer) renderHistogram(spec chart.Spec, t *table.Table) ([]byte, error) {
	values, _ := t.NumericValues(spec.Column)
	if len(values) == 0 {
		return nil, errors.ValidationError("column " + spec.Column + " has no numeric values to plot")
	}

	minV, _ := stats.Min(values)
	maxV, _ := stats.Max(values)
	bins := r.opts.HistogramBins
	if maxV == minV {
		bins = 1
	}

	counts := make([]int, bins)
	width := (maxV - minV) / float64(bins)
	for _, v := range values {
		idx := 0
		if width > 0 {
			idx = int((v - minV) / width)
			if idx >= bins {
				idx = bins - 1 // max value lands in the last bin
			}
		}
		counts[idx]++
	}

	bars := make([]chartlib.Value, bins)
	for i, c := range counts {
		bars[i] = chartlib.Value{
			Value: float64(c),
			Label: fmt.Sprintf("%.3g", minV+width*(float64(i)+0.5)),
			Style: chartlib.Style{FillColor: seriesColor, StrokeColor: seriesColor},
		}
	}

	graph := chartlib.BarChart{
		Title:    spec.Title(),
		Width:    r.opts.Width,
		Height:   r.opts.Height,
		BarWidth: maxInt(4, r.opts.Width/(bins*2)),
		Bars:     bars,
	}
	return render(graph.Render)
}

func (r *Renderer) renderBar(spec chart.Spec, t *table.Table) ([]byte, error) {
	counts := valueCounts(t.ColumnValues(spec.Column), r.opts.BarTopN)
	if len(counts) == 0 {
		return nil, errors.ValidationError("column " + spec.Column + " has no values to plot")
	}

	bars := make([]chartlib.Value, len(counts))
	for i, vc := range counts {
		bars[i] = chartlib.Value{
			Value: float64(vc.count),
			Label: truncateLabel(vc.value, 12),
			Style: chartlib.Style{FillColor: seriesColor, StrokeColor: seriesColor},
		}
	}

	graph := chartlib.BarChart{
		Title:    spec.Title(),
		Width:    r.opts.Width,
		Height:   r.opts.Height,
		BarWidth: maxInt(10, r.opts.Width/(len(bars)*2)),
		Bars:     bars,
	}
	return render(graph.Render)
}

func (r *Renderer) renderPie(spec chart.Spec, t *table.Table) ([]byte, error) {
	counts := valueCounts(t.ColumnValues(spec.Column), r.opts.PieTopN)
	if len(counts) == 0 {
		return nil, errors.ValidationError("column " + spec.Column + " has no values to plot")
	}

	values := make([]chartlib.Value, len(counts))
	for i, vc := range counts {
		values[i] = chartlib.Value{
			Value: float64(vc.count),
			Label: truncateLabel(vc.value, 12),
		}
	}

	graph := chartlib.PieChart{
		Title:  spec.Title(),
		Width:  r.opts.Width,
		Height: r.opts.Height,
		Values: values,
	}
	return render(graph.Render)
}

func (r *Renderer) renderLine(spec chart.Spec, t *table.Table) ([]byte, error) {
	values, _ := t.NumericValues(spec.Column)
	if len(values) < 2 {
		return nil, errors.ValidationError("column " + spec.Column + " needs at least two numeric values for a line chart")
	}

	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}

	graph := chartlib.Chart{
		Title:  spec.Title(),
		Width:  r.opts.Width,
		Height: r.opts.Height,
		Series: []chartlib.Series{
			chartlib.ContinuousSeries{
				XValues: xs,
				YValues: values,
				Style:   chartlib.Style{StrokeColor: seriesColor, StrokeWidth: 2},
			},
		},
	}
	return render(graph.Render)
}

func (r *Renderer) renderScatter(spec chart.Spec, t *table.Table) ([]byte, error) {
	var xs, ys []float64
	if spec.XColumn != "" {
		xs, ys = pairedValues(t, spec.XColumn, spec.Column)
	} else {
		ys, _ = t.NumericValues(spec.Column)
		xs = make([]float64, len(ys))
		for i := range xs {
			xs[i] = float64(i)
		}
	}
	if len(ys) == 0 {
		return nil, errors.ValidationError("no numeric values to plot for " + spec.Column)
	}

	graph := chartlib.Chart{
		Title:  spec.Title(),
		Width:  r.opts.Width,
		Height: r.opts.Height,
		Series: []chartlib.Series{
			chartlib.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style: chartlib.Style{
					StrokeWidth: chartlib.Disabled,
					DotWidth:    4,
					DotColor:    seriesColor.WithAlpha(160),
				},
			},
		},
	}
	return render(graph.Render)
}

// renderBoxplot draws the five-number summary as line segments: whisker,
// box and median. go-chart has no boxplot primitive, so the box is built
// from continuous series on a fixed X range.
func (r *Renderer) renderBoxplot(spec chart.Spec, t *table.Table) ([]byte, error) {
	values, _ := t.NumericValues(spec.Column)
	if len(values) < 4 {
		return nil, errors.ValidationError("column " + spec.Column + " needs at least four numeric values for a boxplot")
	}

	minV, _ := stats.Min(values)
	maxV, _ := stats.Max(values)
	q1, _ := stats.Percentile(values, 25)
	median, _ := stats.Median(values)
	q3, _ := stats.Percentile(values, 75)

	const half = 0.3
	segment := func(x0, y0, x1, y1 float64, width float64) chartlib.Series {
		return chartlib.ContinuousSeries{
			XValues: []float64{x0, x1},
			YValues: []float64{y0, y1},
			Style:   chartlib.Style{StrokeColor: seriesColor, StrokeWidth: width},
		}
	}

	series := []chartlib.Series{
		segment(0, minV, 0, q1, 1.5), // lower whisker
		segment(0, q3, 0, maxV, 1.5), // upper whisker
		segment(-half, minV, half, minV, 1.5),
		segment(-half, maxV, half, maxV, 1.5),
		segment(-half, q1, half, q1, 2),  // box bottom
		segment(-half, q3, half, q3, 2),  // box top
		segment(-half, q1, -half, q3, 2), // box left
		segment(half, q1, half, q3, 2),   // box right
		segment(-half, median, half, median, 3),
	}

	pad := (maxV - minV) * 0.05
	if pad == 0 {
		pad = math.Abs(maxV)*0.05 + 1
	}
	graph := chartlib.Chart{
		Title:  spec.Title(),
		Width:  r.opts.Width,
		Height: r.opts.Height,
		XAxis: chartlib.XAxis{
			Range: &chartlib.ContinuousRange{Min: -1, Max: 1},
		},
		YAxis: chartlib.YAxis{
			Range: &chartlib.ContinuousRange{Min: minV - pad, Max: maxV + pad},
		},
		Series: series,
	}
	return render(graph.Render)
}

// render drains a go-chart Render function into a byte slice
func render(fn func(chartlib.RendererProvider, io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(chartlib.PNG, &buf); err != nil {
		return nil, errors.Wrap(err, "chart rendering failed")
	}
	return buf.Bytes(), nil
}

type valueCount struct {
	value string
	count int
}

// valueCounts tallies non-missing values and returns the top n by frequency
func valueCounts(cells []string, n int) []valueCount {
	freq := make(map[string]int)
	for _, cell := range cells {
		if table.IsMissing(cell) {
			continue
		}
		freq[cell]++
	}

	counts := make([]valueCount, 0, len(freq))
	for v, c := range freq {
		counts = append(counts, valueCount{value: v, count: c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].value < counts[j].value
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// pairedValues extracts rows where both columns parse as numbers
func pairedValues(t *table.Table, colX, colY string) (xs, ys []float64) {
	xi := t.ColumnIndex(colX)
	yi := t.ColumnIndex(colY)
	if xi < 0 || yi < 0 {
		return nil, nil
	}
	for i := 0; i < t.NumRows(); i++ {
		x, okX := parseFloat(t.Cell(i, xi))
		y, okY := parseFloat(t.Cell(i, yi))
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return xs, ys
}

func parseFloat(cell string) (float64, bool) {
	if table.IsMissing(cell) {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func truncateLabel(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
