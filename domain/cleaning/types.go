package cleaning

import "fmt"

// Strategy selects how missing numeric values are replaced
type Strategy string

const (
	StrategyMean   Strategy = "mean"
	StrategyMedian Strategy = "median"
	StrategyZero   Strategy = "zero"
)

// ParseStrategy validates a user-supplied strategy name
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyMean, StrategyMedian, StrategyZero:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown imputation strategy: %q", s)
}

// Summary reports what a cleaning pass changed
type Summary struct {
	RowsBefore    int            `json:"rows_before"`
	RowsAfter     int            `json:"rows_after"`
	RowsRemoved   int            `json:"rows_removed"`
	CellsFilled   map[string]int `json:"cells_filled,omitempty"` // column -> count
	FilledTotal   int            `json:"filled_total"`
	Strategy      Strategy       `json:"strategy,omitempty"`
	ColumnsFilled []string       `json:"columns_filled,omitempty"`
}
