package report

import (
	"time"

	"datapilot/domain/chart"
)

// KPISet holds the headline dataset metrics shown as cards
type KPISet struct {
	TotalRows     int `json:"total_rows"`
	TotalColumns  int `json:"total_columns"`
	DuplicateRows int `json:"duplicate_rows"`
	MissingCells  int `json:"missing_cells"`
}

// ColumnSummary holds descriptive statistics for one numeric column
type ColumnSummary struct {
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	Missing  int     `json:"missing"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
}

// Report is the derived, read-only summary of the current dataset state.
// It is computed at generation time and never cached across cleaning.
type Report struct {
	Filename      string          `json:"filename"`
	GeneratedAt   time.Time       `json:"generated_at"`
	KPIs          KPISet          `json:"kpis"`
	Columns       []ColumnSummary `json:"columns"`
	Charts        []chart.Spec    `json:"charts"`
	NarrativeHTML string          `json:"narrative_html,omitempty"`
}
