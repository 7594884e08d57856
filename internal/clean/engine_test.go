package clean

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datapilot/domain/cleaning"
	"datapilot/domain/table"
)

func buildTable(headers []string, rows [][]string, types ...table.ValueType) *table.Table {
	t := table.New("test.csv", headers, rows)
	for i, vt := range types {
		t.Columns[i].Type = vt
	}
	return t
}

func TestDropDuplicatesRemovesExactCopies(t *testing.T) {
	tbl := buildTable(
		[]string{"a", "b"},
		[][]string{
			{"1", "x"},
			{"2", "y"},
			{"1", "x"},
			{"1", "z"},
		},
		table.TypeNumeric, table.TypeString)

	engine := NewEngine()
	out, summary, err := engine.DropDuplicates(tbl)
	require.NoError(t, err)

	assert.Equal(t, 3, out.NumRows())
	assert.Equal(t, 4, summary.RowsBefore)
	assert.Equal(t, 3, summary.RowsAfter)
	assert.Equal(t, 1, summary.RowsRemoved)

	// original untouched
	assert.Equal(t, 4, tbl.NumRows())
}

func TestDropDuplicatesIsIdempotent(t *testing.T) {
	tbl := buildTable(
		[]string{"a"},
		[][]string{{"1"}, {"1"}, {"2"}, {"2"}, {"3"}},
		table.TypeNumeric)

	engine := NewEngine()
	once, _, err := engine.DropDuplicates(tbl)
	require.NoError(t, err)
	twice, summary, err := engine.DropDuplicates(once)
	require.NoError(t, err)

	assert.Equal(t, once.NumRows(), twice.NumRows())
	assert.Equal(t, 0, summary.RowsRemoved)
	assert.Equal(t, once.Rows, twice.Rows)
}

func TestImputeMeanFillsAllMissing(t *testing.T) {
	tbl := buildTable(
		[]string{"score", "label"},
		[][]string{
			{"10", "a"},
			{"", "b"},
			{"20", "c"},
			{"NA", "d"},
		},
		table.TypeNumeric, table.TypeString)

	engine := NewEngine()
	out, summary, err := engine.Impute(tbl, cleaning.StrategyMean)
	require.NoError(t, err)

	assert.Equal(t, 0, out.MissingInColumn("score"))
	assert.Equal(t, "15", out.Cell(1, 0))
	assert.Equal(t, "15", out.Cell(3, 0))
	assert.Equal(t, 2, summary.FilledTotal)
	assert.Equal(t, map[string]int{"score": 2}, summary.CellsFilled)
	assert.Equal(t, []string{"score"}, summary.ColumnsFilled)
}

func TestImputeMedianUsesMiddleValue(t *testing.T) {
	tbl := buildTable(
		[]string{"v"},
		[][]string{{"1"}, {"2"}, {"100"}, {""}},
		table.TypeNumeric)

	engine := NewEngine()
	out, _, err := engine.Impute(tbl, cleaning.StrategyMedian)
	require.NoError(t, err)
	assert.Equal(t, "2", out.Cell(3, 0))
}

func TestImputeZero(t *testing.T) {
	tbl := buildTable(
		[]string{"v"},
		[][]string{{"5"}, {"NaN"}},
		table.TypeNumeric)

	engine := NewEngine()
	out, _, err := engine.Impute(tbl, cleaning.StrategyZero)
	require.NoError(t, err)
	assert.Equal(t, "0", out.Cell(1, 0))
}

func TestImputeDoesNotTouchCompleteOrNonNumericColumns(t *testing.T) {
	tbl := buildTable(
		[]string{"complete", "text", "sparse"},
		[][]string{
			{"1", "", "9"},
			{"2", "NA", ""},
		},
		table.TypeNumeric, table.TypeString, table.TypeNumeric)

	engine := NewEngine()
	out, summary, err := engine.Impute(tbl, cleaning.StrategyMean)
	require.NoError(t, err)

	// text column keeps its missing cells
	assert.Equal(t, "", out.Cell(0, 1))
	assert.Equal(t, "NA", out.Cell(1, 1))
	// complete numeric column unchanged
	assert.Equal(t, "1", out.Cell(0, 0))
	assert.Equal(t, "2", out.Cell(1, 0))
	// only the sparse column was filled
	assert.Equal(t, []string{"sparse"}, summary.ColumnsFilled)
	assert.Equal(t, "9", out.Cell(1, 2))
}

func TestCleaningOnEmptyTable(t *testing.T) {
	engine := NewEngine()
	empty := table.New("empty.csv", []string{"a"}, nil)

	_, _, err := engine.DropDuplicates(empty)
	assert.Error(t, err)
	_, _, err = engine.Impute(empty, cleaning.StrategyMean)
	assert.Error(t, err)
}

// The spec scenario: 100 rows, 5 duplicates, 10 missing values in one
// numeric column. Dedup plus mean imputation yields 95 rows and a complete
// column.
func TestFullCleaningScenario(t *testing.T) {
	rows := make([][]string, 0, 100)
	for i := 0; i < 95; i++ {
		v := "42.5"
		if i < 10 {
			v = ""
		}
		rows = append(rows, []string{strconv.Itoa(i), v})
	}
	// 5 exact duplicates of complete rows
	for i := 0; i < 5; i++ {
		rows = append(rows, append([]string(nil), rows[20+i]...))
	}

	tbl := buildTable([]string{"id", "v"}, rows, table.TypeNumeric, table.TypeNumeric)
	require.Equal(t, 100, tbl.NumRows())
	require.Equal(t, 5, tbl.DuplicateCount())
	require.Equal(t, 10, tbl.MissingInColumn("v"))

	engine := NewEngine()
	deduped, _, err := engine.DropDuplicates(tbl)
	require.NoError(t, err)
	assert.Equal(t, 95, deduped.NumRows())

	cleaned, _, err := engine.Impute(deduped, cleaning.StrategyMean)
	require.NoError(t, err)
	assert.Equal(t, 95, cleaned.NumRows())
	assert.Equal(t, 0, cleaned.MissingInColumn("v"))
}
