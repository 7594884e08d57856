package ui

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/render"

	"datapilot/domain/report"
	"datapilot/domain/table"
	"datapilot/internal/errors"
)

type uploadResponse struct {
	Message  string         `json:"message"`
	Filename string         `json:"filename"`
	Rows     int            `json:"rows"`
	Columns  []table.Column `json:"columns"`
}

type datasetInfoResponse struct {
	Filename string         `json:"filename"`
	KPIs     report.KPISet  `json:"kpis"`
	Columns  []table.Column `json:"columns"`
	Preview  [][]string     `json:"preview"`
}

// handleUpload ingests a CSV or Excel file into the session
func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.cfg.Upload.MaxFileSize+1024)

	file, header, err := r.FormFile("dataset")
	if err != nil {
		a.logger.Warn("[handleUpload] no file in request: %v", err)
		a.apiError(w, r, errors.InvalidInput("no file uploaded: expected multipart field 'dataset'"))
		return
	}
	defer file.Close()

	if header.Size > a.cfg.Upload.MaxFileSize {
		a.apiError(w, r, errors.InvalidInput(fmt.Sprintf("file size (%.1f MB) exceeds the %d MB limit",
			float64(header.Size)/(1024*1024), a.cfg.Upload.MaxFileSize/(1024*1024))))
		return
	}

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv", ".xls", ".xlsx":
	default:
		a.apiError(w, r, errors.FileUnsupported(header.Filename))
		return
	}

	t, err := a.reader.Read(header.Filename, file)
	if err != nil {
		a.logger.Warn("[handleUpload] parse failed for %s: %v", header.Filename, err)
		a.apiError(w, r, err)
		return
	}

	sess := a.session(r)
	sess.SetDataset(t, header.Filename)
	a.logger.Info("[handleUpload] loaded %s: %d rows, %d columns", header.Filename, t.NumRows(), t.NumCols())

	render.JSON(w, r, uploadResponse{
		Message:  "dataset loaded",
		Filename: header.Filename,
		Rows:     t.NumRows(),
		Columns:  t.Columns,
	})
}

// handleDatasetInfo returns KPIs, column metadata and a preview of the
// current working table.
func (a *App) handleDatasetInfo(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	t := sess.Working()
	if t == nil || t.IsEmpty() {
		a.apiError(w, r, errors.DatasetEmpty())
		return
	}

	render.JSON(w, r, datasetInfoResponse{
		Filename: sess.Filename(),
		KPIs:     a.profiler.KPIs(t),
		Columns:  t.Columns,
		Preview:  t.HeadRows(a.cfg.Upload.PreviewRows),
	})
}

// handleDownload streams the working table as a CSV attachment
func (a *App) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	t := sess.Working()
	if t == nil || t.IsEmpty() {
		a.apiError(w, r, errors.DatasetEmpty())
		return
	}

	name := sess.Filename()
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" {
		base = "dataset"
	}

	data, err := t.EncodeCSV()
	if err != nil {
		a.apiError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "cleaned_"+base+".csv"))
	w.Write(data)
}
