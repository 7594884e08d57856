package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"datapilot/domain/table"
	"datapilot/internal"
	"datapilot/internal/errors"
)

// Reader parses CSV and Excel uploads into tables. It implements
// ports.TableReader.
type Reader struct {
	inferenceRows int
	logger        *internal.Logger
}

// NewReader creates a reader; inferenceRows caps the sample used for column
// type inference.
func NewReader(inferenceRows int) *Reader {
	if inferenceRows <= 0 {
		inferenceRows = 500
	}
	return &Reader{
		inferenceRows: inferenceRows,
		logger:        internal.DefaultLogger,
	}
}

// Read parses the file contents according to the filename extension.
func (r *Reader) Read(filename string, src io.Reader) (*table.Table, error) {
	start := time.Now()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.FileCorrupt(filename, err)
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = r.readCSV(data)
	case ".xlsx", ".xls":
		rows, err = r.readExcel(data)
	default:
		return nil, errors.FileUnsupported(filename)
	}
	if err != nil {
		return nil, errors.FileCorrupt(filename, err)
	}

	if len(rows) < 2 {
		return nil, errors.ValidationError("file must have a header row and at least one data row")
	}

	t := r.buildTable(filename, rows)
	inferColumnTypes(t, r.inferenceRows)

	r.logger.Info("[Reader] parsed %s: %d columns, %d rows in %.1fms",
		filename, t.NumCols(), t.NumRows(), float64(time.Since(start).Microseconds())/1000)
	return t, nil
}

// readCSV decodes CSV bytes, trying UTF-8 first and falling back to Latin-1
// for legacy exports.
func (r *Reader) readCSV(data []byte) ([][]string, error) {
	if !utf8.Valid(data) {
		r.logger.Warn("[Reader] CSV is not valid UTF-8, decoding as Latin-1")
		data = latin1ToUTF8(data)
	}
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // ragged rows are padded later
	return reader.ReadAll()
}

// readExcel reads the first sheet of an Excel workbook.
func (r *Reader) readExcel(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ValidationError("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

// buildTable converts raw rows into a Table, trimming header whitespace and
// padding short rows so every row has one cell per column.
func (r *Reader) buildTable(filename string, rows [][]string) *table.Table {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, h := range headerRow {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		headers[i] = h
	}

	dataRows := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make([]string, len(headers))
		for j := range headers {
			if j < len(row) {
				record[j] = strings.TrimSpace(row[j])
			}
		}
		dataRows = append(dataRows, record)
	}

	return table.New(filepath.Base(filename), headers, dataRows)
}

// latin1ToUTF8 remaps ISO 8859-1 bytes; each byte is its own code point.
func latin1ToUTF8(data []byte) []byte {
	buf := make([]byte, 0, len(data)+len(data)/4)
	for _, b := range data {
		buf = utf8.AppendRune(buf, rune(b))
	}
	return buf
}
