package ui

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"datapilot/domain/chart"
	"datapilot/domain/table"
	"datapilot/internal/errors"
)

type chartRequest struct {
	Kind    string `json:"kind" validate:"required"`
	Column  string `json:"column" validate:"required"`
	XColumn string `json:"x_column"`
}

type chartEntry struct {
	Index   int    `json:"index"`
	Kind    string `json:"kind"`
	Column  string `json:"column"`
	XColumn string `json:"x_column,omitempty"`
	Title   string `json:"title"`
}

func chartEntries(specs []chart.Spec) []chartEntry {
	entries := make([]chartEntry, len(specs))
	for i, s := range specs {
		entries[i] = chartEntry{
			Index:   i,
			Kind:    string(s.Kind),
			Column:  s.Column,
			XColumn: s.XColumn,
			Title:   s.Title(),
		}
	}
	return entries
}

// handleListCharts returns the session's configured charts
func (a *App) handleListCharts(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{"charts": chartEntries(a.session(r).Charts())})
}

// handleAddChart validates a chart spec against the working table and stores it
func (a *App) handleAddChart(w http.ResponseWriter, r *http.Request) {
	var req chartRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		a.apiError(w, r, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.apiError(w, r, errors.InvalidInput("kind and column are required"))
		return
	}

	spec, err := a.parseSpec(req)
	if err != nil {
		a.apiError(w, r, err)
		return
	}

	sess := a.session(r)
	t := sess.Working()
	if err := spec.Validate(t); err != nil {
		a.apiError(w, r, err)
		return
	}
	if len(sess.Charts()) >= a.cfg.Chart.MaxPerSession {
		a.apiError(w, r, errors.ValidationError(fmt.Sprintf("chart limit reached (%d per session)", a.cfg.Chart.MaxPerSession)))
		return
	}

	index := sess.AddChart(spec)
	a.logger.Info("[handleAddChart] added %s at index %d", spec.Title(), index)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, chartEntry{Index: index, Kind: string(spec.Kind), Column: spec.Column, XColumn: spec.XColumn, Title: spec.Title()})
}

// handleRemoveChart deletes a configured chart by index
func (a *App) handleRemoveChart(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		a.apiError(w, r, errors.InvalidInput("chart index must be an integer"))
		return
	}

	sess := a.session(r)
	if !sess.RemoveChart(index) {
		a.apiError(w, r, errors.NotFound(fmt.Sprintf("chart %d", index)))
		return
	}

	render.JSON(w, r, map[string]interface{}{"charts": chartEntries(sess.Charts())})
}

// handleRenderChart renders a stored chart spec as PNG
func (a *App) handleRenderChart(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		a.apiError(w, r, errors.InvalidInput("chart index must be an integer"))
		return
	}

	sess := a.session(r)
	specs := sess.Charts()
	if index < 0 || index >= len(specs) {
		a.apiError(w, r, errors.NotFound(fmt.Sprintf("chart %d", index)))
		return
	}

	a.renderChartPNG(w, r, specs[index], sess.Working())
}

// handleChartPreview renders a chart from query parameters without storing it
func (a *App) handleChartPreview(w http.ResponseWriter, r *http.Request) {
	spec, err := a.parseSpec(chartRequest{
		Kind:    r.URL.Query().Get("kind"),
		Column:  r.URL.Query().Get("column"),
		XColumn: r.URL.Query().Get("x_column"),
	})
	if err != nil {
		a.apiError(w, r, err)
		return
	}

	a.renderChartPNG(w, r, spec, a.session(r).Working())
}

func (a *App) parseSpec(req chartRequest) (chart.Spec, error) {
	kind, err := chart.ParseKind(req.Kind)
	if err != nil {
		return chart.Spec{}, err
	}
	if req.Column == "" {
		return chart.Spec{}, errors.InvalidInput("column is required")
	}
	return chart.Spec{Kind: kind, Column: req.Column, XColumn: req.XColumn}, nil
}

func (a *App) renderChartPNG(w http.ResponseWriter, r *http.Request, spec chart.Spec, t *table.Table) {
	if t == nil || t.IsEmpty() {
		a.apiError(w, r, errors.DatasetEmpty())
		return
	}

	png, err := a.renderer.RenderPNG(spec, t)
	if err != nil {
		a.apiError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}
