package reportgen

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"datapilot/domain/report"
	"datapilot/internal/errors"
)

const summarySheet = "Summary"

// ExportExcel writes the report's KPI block and the per-column summary grid
// to an xlsx workbook for download.
func ExportExcel(rep *report.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	index, err := f.NewSheet(summarySheet)
	if err != nil {
		return nil, errors.Wrap(err, "creating summary sheet")
	}
	f.SetActiveSheet(index)
	if defaultSheet != summarySheet {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return nil, errors.Wrap(err, "dropping default sheet")
		}
	}

	// KPI block
	kpiRows := [][]interface{}{
		{"Dataset", rep.Filename},
		{"Generated", rep.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Total rows", rep.KPIs.TotalRows},
		{"Total columns", rep.KPIs.TotalColumns},
		{"Duplicate rows", rep.KPIs.DuplicateRows},
		{"Missing cells", rep.KPIs.MissingCells},
	}
	for i, row := range kpiRows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, errors.Wrap(err, "writing KPI block")
		}
	}

	// Summary grid header
	gridStart := len(kpiRows) + 2
	header := []interface{}{"Column", "Count", "Missing", "Mean", "Median", "Std Dev", "Min", "Max", "Q25", "Q75"}
	if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", gridStart), &header); err != nil {
		return nil, errors.Wrap(err, "writing grid header")
	}

	for i, c := range rep.Columns {
		row := []interface{}{c.Name, c.Count, c.Missing, c.Mean, c.Median, c.StdDev, c.Min, c.Max, c.Q25, c.Q75}
		cell := fmt.Sprintf("A%d", gridStart+1+i)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, errors.Wrapf(err, "writing summary row for %s", c.Name)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.Wrap(err, "serializing workbook")
	}
	return buf.Bytes(), nil
}
