package ui

import (
	"net/http"

	"github.com/go-chi/render"

	"datapilot/domain/cleaning"
	"datapilot/domain/report"
	"datapilot/domain/table"
	"datapilot/internal/errors"
)

type cleanResponse struct {
	Summary cleaning.Summary `json:"summary"`
	KPIs    report.KPISet    `json:"kpis"`
}

type imputeRequest struct {
	Strategy string `json:"strategy" validate:"required"`
}

// handleDropDuplicates removes exact duplicate rows from the working table
func (a *App) handleDropDuplicates(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	t := sess.Working()
	if t == nil || t.IsEmpty() {
		a.apiError(w, r, errors.DatasetEmpty())
		return
	}

	cleaned, summary, err := a.cleaner.DropDuplicates(t)
	if err != nil {
		a.apiError(w, r, err)
		return
	}

	sess.Mutate(func(*table.Table) *table.Table { return cleaned })
	a.logger.Info("[handleDropDuplicates] removed %d of %d rows", summary.RowsRemoved, summary.RowsBefore)

	render.JSON(w, r, cleanResponse{Summary: summary, KPIs: a.profiler.KPIs(cleaned)})
}

// handleImpute fills missing numeric cells with the requested strategy
func (a *App) handleImpute(w http.ResponseWriter, r *http.Request) {
	var req imputeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		a.apiError(w, r, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.apiError(w, r, errors.InvalidInput("strategy is required (mean, median or zero)"))
		return
	}

	strategy, err := cleaning.ParseStrategy(req.Strategy)
	if err != nil {
		a.apiError(w, r, errors.InvalidInput(err.Error()))
		return
	}

	sess := a.session(r)
	t := sess.Working()
	if t == nil || t.IsEmpty() {
		a.apiError(w, r, errors.DatasetEmpty())
		return
	}

	filled, summary, err := a.cleaner.Impute(t, strategy)
	if err != nil {
		a.apiError(w, r, err)
		return
	}

	sess.Mutate(func(*table.Table) *table.Table { return filled })
	a.logger.Info("[handleImpute] strategy=%s filled %d cells across %d columns",
		strategy, summary.FilledTotal, len(summary.ColumnsFilled))

	render.JSON(w, r, cleanResponse{Summary: summary, KPIs: a.profiler.KPIs(filled)})
}

// handleReset restores the working table from the raw upload
func (a *App) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	if !sess.Reset() {
		a.apiError(w, r, errors.DatasetEmpty())
		return
	}

	t := sess.Working()
	a.logger.Info("[handleReset] restored %s to %d rows", sess.Filename(), t.NumRows())

	render.JSON(w, r, cleanResponse{
		Summary: cleaning.Summary{RowsBefore: t.NumRows(), RowsAfter: t.NumRows()},
		KPIs:    a.profiler.KPIs(t),
	})
}
