package ui

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/render"

	"datapilot/internal/errors"
	"datapilot/internal/reportgen"
)

// handleReportJSON builds the full report for the current working table
func (a *App) handleReportJSON(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	t := sess.Working()
	if t == nil || t.IsEmpty() {
		a.apiError(w, r, errors.DatasetEmpty())
		return
	}

	rep, err := a.builder.Build(r.Context(), t, sess.Filename(), sess.Charts())
	if err != nil {
		a.apiError(w, r, err)
		return
	}

	render.JSON(w, r, rep)
}

// handleReportExport writes the report as an Excel workbook
func (a *App) handleReportExport(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	t := sess.Working()
	if t == nil || t.IsEmpty() {
		a.apiError(w, r, errors.DatasetEmpty())
		return
	}

	rep, err := a.builder.Build(r.Context(), t, sess.Filename(), sess.Charts())
	if err != nil {
		a.apiError(w, r, err)
		return
	}

	data, err := reportgen.ExportExcel(rep)
	if err != nil {
		a.apiError(w, r, err)
		return
	}

	name := sess.Filename()
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" {
		base = "dataset"
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+"_report.xlsx"))
	w.Write(data)
}
