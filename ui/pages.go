package ui

import (
	"net/http"

	"datapilot/domain/chart"
	"datapilot/domain/report"
	"datapilot/domain/table"
)

type pageData struct {
	Active    string
	HasData   bool
	Filename  string
	KPIs      report.KPISet
	Columns   []table.Column
	Numeric   []string
	Preview   [][]string
	Kinds     []chart.Kind
	Charts    []chartEntry
	Report    *report.Report
	LoadError string
}

func (a *App) pageData(r *http.Request, active string) pageData {
	sess := a.session(r)
	data := pageData{Active: active, Kinds: chart.Kinds()}

	t := sess.Working()
	if t == nil || t.IsEmpty() {
		return data
	}

	data.HasData = true
	data.Filename = sess.Filename()
	data.KPIs = a.profiler.KPIs(t)
	data.Columns = t.Columns
	data.Numeric = t.NumericColumns()
	data.Preview = t.HeadRows(a.cfg.Upload.PreviewRows)
	data.Charts = chartEntries(sess.Charts())
	return data
}

// handleIndex renders the upload and cleaning page
func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, "index.html", a.pageData(r, "clean"))
}

// handleVisualize renders the chart builder page
func (a *App) handleVisualize(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, "visualize.html", a.pageData(r, "visualize"))
}

// handleReportPage renders the summary report page
func (a *App) handleReportPage(w http.ResponseWriter, r *http.Request) {
	data := a.pageData(r, "report")
	if data.HasData {
		sess := a.session(r)
		rep, err := a.builder.Build(r.Context(), sess.Working(), sess.Filename(), sess.Charts())
		if err != nil {
			a.logger.Error("[handleReportPage] build failed: %v", err)
			data.LoadError = "report generation failed"
		} else {
			data.Report = rep
		}
	}
	a.renderTemplate(w, "report.html", data)
}
