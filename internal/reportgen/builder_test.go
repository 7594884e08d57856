package reportgen

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"datapilot/domain/chart"
	"datapilot/domain/cleaning"
	"datapilot/domain/table"
	"datapilot/internal/clean"
	"datapilot/internal/profile"
)

func buildTable() *table.Table {
	t := table.New("orders.csv",
		[]string{"qty", "price", "region"},
		[][]string{
			{"1", "9.99", "east"},
			{"2", "19.98", "west"},
			{"2", "19.98", "west"},
			{"3", "", "east"},
		})
	t.Columns[0].Type = table.TypeNumeric
	t.Columns[1].Type = table.TypeNumeric
	t.Columns[2].Type = table.TypeCategorical
	return t
}

func TestBuildReportShape(t *testing.T) {
	b := NewBuilder(profile.NewProfiler())
	specs := []chart.Spec{{Kind: chart.KindBar, Column: "region"}}

	rep, err := b.Build(context.Background(), buildTable(), "orders.csv", specs)
	require.NoError(t, err)

	assert.Equal(t, "orders.csv", rep.Filename)
	assert.Equal(t, 4, rep.KPIs.TotalRows)
	assert.Equal(t, 3, rep.KPIs.TotalColumns)
	assert.Equal(t, 1, rep.KPIs.DuplicateRows)
	assert.Equal(t, 1, rep.KPIs.MissingCells)
	assert.Len(t, rep.Columns, 2) // qty and price
	assert.Equal(t, specs, rep.Charts)
	assert.Contains(t, rep.NarrativeHTML, "<h2")
	assert.Contains(t, rep.NarrativeHTML, "orders.csv")
}

func TestBuildReportEmptyTable(t *testing.T) {
	b := NewBuilder(profile.NewProfiler())
	_, err := b.Build(context.Background(), table.New("e.csv", []string{"a"}, nil), "e.csv", nil)
	assert.Error(t, err)
}

// Regenerating after cleaning must reflect the cleaned table.
func TestBuildReportAfterCleaning(t *testing.T) {
	b := NewBuilder(profile.NewProfiler())
	engine := clean.NewEngine()

	tbl := buildTable()
	deduped, _, err := engine.DropDuplicates(tbl)
	require.NoError(t, err)
	imputed, _, err := engine.Impute(deduped, cleaning.StrategyZero)
	require.NoError(t, err)

	rep, err := b.Build(context.Background(), imputed, "orders.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.KPIs.TotalRows)
	assert.Equal(t, 0, rep.KPIs.DuplicateRows)
	assert.Equal(t, 0, rep.KPIs.MissingCells)
	assert.Contains(t, rep.NarrativeHTML, "No duplicate rows or missing cells remain")
}

func TestExportExcelRoundTrip(t *testing.T) {
	b := NewBuilder(profile.NewProfiler())
	rep, err := b.Build(context.Background(), buildTable(), "orders.csv", nil)
	require.NoError(t, err)

	data, err := ExportExcel(rep)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	// 6 KPI rows + blank + header + one row per numeric column
	assert.GreaterOrEqual(t, len(rows), 6+2+2)
	assert.Equal(t, "Dataset", rows[0][0])
	assert.Equal(t, "orders.csv", rows[0][1])
}
