package tabular

import (
	"math"
	"strconv"
	"strings"
	"time"

	"datapilot/domain/table"
)

// Thresholds for type inference. A column is assigned a type when at least
// this share of its sampled non-missing cells parse as that type.
const (
	numericThreshold   = 0.90
	booleanThreshold   = 0.95
	timestampThreshold = 0.90

	// Low-cardinality columns are treated as categorical.
	categoricalMaxUnique = 20
	categoricalMaxRatio  = 0.1
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
}

// inferColumnTypes assigns a ValueType to every column based on a stratified
// sample of up to sampleSize rows.
func inferColumnTypes(t *table.Table, sampleSize int) {
	indices := stratifiedSample(t.NumRows(), sampleSize)

	for c := range t.Columns {
		numeric, boolean, timestamp, valid := 0, 0, 0, 0
		unique := make(map[string]struct{})

		for _, rowIdx := range indices {
			cell := t.Cell(rowIdx, c)
			if table.IsMissing(cell) {
				continue
			}
			valid++
			unique[cell] = struct{}{}

			if _, err := strconv.ParseFloat(cell, 64); err == nil {
				numeric++
			}
			if isBooleanString(cell) {
				boolean++
			}
			if isTimestampString(cell) {
				timestamp++
			}
		}

		t.Columns[c].Type = classify(numeric, boolean, timestamp, valid, len(unique))
	}
}

func classify(numeric, boolean, timestamp, valid, uniqueCount int) table.ValueType {
	if valid == 0 {
		return table.TypeString
	}

	n := float64(valid)
	uniqueRatio := float64(uniqueCount) / n

	if float64(boolean)/n >= booleanThreshold {
		return table.TypeBoolean
	}
	if float64(numeric)/n >= numericThreshold {
		// Low-cardinality integer codes still behave as numeric for
		// imputation and charts; only non-numeric low-cardinality
		// columns are flagged categorical below.
		return table.TypeNumeric
	}
	if float64(timestamp)/n >= timestampThreshold {
		return table.TypeTimestamp
	}
	if uniqueRatio < categoricalMaxRatio && uniqueCount <= categoricalMaxUnique {
		return table.TypeCategorical
	}
	return table.TypeString
}

func isBooleanString(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false", "yes", "no":
		return true
	}
	return false
}

func isTimestampString(s string) bool {
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// stratifiedSample returns evenly distributed row indices across the dataset
func stratifiedSample(totalRows, sampleSize int) []int {
	if sampleSize >= totalRows {
		indices := make([]int, totalRows)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	indices := make([]int, 0, sampleSize)
	step := float64(totalRows) / float64(sampleSize)
	for i := 0; i < sampleSize; i++ {
		idx := int(math.Round(float64(i) * step))
		if idx < totalRows {
			indices = append(indices, idx)
		}
	}
	return indices
}
