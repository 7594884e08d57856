package ports

import (
	"datapilot/domain/chart"
	"datapilot/domain/table"
)

// ChartRenderer turns a validated chart spec plus the current table into a
// rendered PNG image.
type ChartRenderer interface {
	RenderPNG(spec chart.Spec, t *table.Table) ([]byte, error)
}
