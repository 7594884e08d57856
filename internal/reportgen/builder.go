package reportgen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"datapilot/domain/chart"
	"datapilot/domain/report"
	"datapilot/domain/table"
	"datapilot/internal"
	"datapilot/internal/errors"
	"datapilot/internal/profile"
)

// Builder assembles reports from the current working table. Nothing is
// cached: every build re-reads the table so cleaning is always reflected.
type Builder struct {
	profiler *profile.Profiler
	logger   *internal.Logger
}

// NewBuilder creates a report builder
func NewBuilder(profiler *profile.Profiler) *Builder {
	return &Builder{
		profiler: profiler,
		logger:   internal.DefaultLogger,
	}
}

// Build generates the full report for the table and the session's charts
func (b *Builder) Build(ctx context.Context, t *table.Table, filename string, charts []chart.Spec) (*report.Report, error) {
	if t.IsEmpty() {
		return nil, errors.DatasetEmpty()
	}

	start := time.Now()
	summaries, err := b.profiler.Summaries(ctx, t)
	if err != nil {
		return nil, errors.Wrap(err, "report profiling failed")
	}

	rep := &report.Report{
		Filename:    filename,
		GeneratedAt: time.Now(),
		KPIs:        b.profiler.KPIs(t),
		Columns:     summaries,
		Charts:      charts,
	}
	rep.NarrativeHTML = renderNarrative(buildNarrative(rep))

	b.logger.Info("[Report] built report for %s (%d columns) in %.1fms",
		filename, len(summaries), float64(time.Since(start).Microseconds())/1000)
	return rep, nil
}

// buildNarrative writes a short Markdown digest of the dataset state
func buildNarrative(rep *report.Report) string {
	var md strings.Builder
	fmt.Fprintf(&md, "## Dataset digest\n\n")
	fmt.Fprintf(&md, "**%s** holds %d rows across %d columns.\n\n",
		rep.Filename, rep.KPIs.TotalRows, rep.KPIs.TotalColumns)

	switch {
	case rep.KPIs.DuplicateRows == 0 && rep.KPIs.MissingCells == 0:
		md.WriteString("No duplicate rows or missing cells remain.\n")
	default:
		fmt.Fprintf(&md, "Remaining issues: %d duplicate rows, %d missing cells.\n",
			rep.KPIs.DuplicateRows, rep.KPIs.MissingCells)
	}

	if len(rep.Columns) > 0 {
		widest := rep.Columns[0]
		for _, c := range rep.Columns[1:] {
			if span(c) > span(widest) {
				widest = c
			}
		}
		fmt.Fprintf(&md, "\nThe widest-ranging numeric column is **%s** (%.4g to %.4g, mean %.4g).\n",
			widest.Name, widest.Min, widest.Max, widest.Mean)
	}

	if n := len(rep.Charts); n > 0 {
		fmt.Fprintf(&md, "\n%d chart(s) are configured for the visual grid.\n", n)
	}
	return md.String()
}

func span(c report.ColumnSummary) float64 {
	return c.Max - c.Min
}

// renderNarrative converts the Markdown digest to sanitized-enough HTML for
// in-page rendering. The input is generated, not user-controlled.
func renderNarrative(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML([]byte(md), p, renderer))
}
