package ports

import (
	"datapilot/domain/chart"
	"datapilot/domain/core"
	"datapilot/domain/table"
)

// SessionStore holds per-browser-session analysis state: the raw upload, the
// working copy mutated by cleaning operations, and the configured charts.
type SessionStore interface {
	// Get returns the session, creating it when absent.
	Get(id core.SessionID) Session

	// Delete drops a session and all its state.
	Delete(id core.SessionID)
}

// Session is the unit of isolation: one uploaded dataset and its derived
// state. Implementations must make all methods safe for concurrent use.
type Session interface {
	// SetDataset installs a freshly parsed table as both raw and working
	// copy and clears the chart list.
	SetDataset(t *table.Table, filename string)

	// Working returns the current working table, or nil when nothing is
	// loaded. The returned table must be treated as read-only by callers;
	// mutations go through Mutate.
	Working() *table.Table

	// Mutate replaces the working table under the session lock.
	Mutate(fn func(working *table.Table) *table.Table)

	// Reset restores the working copy from the raw upload.
	Reset() bool

	// Filename returns the name of the currently loaded file.
	Filename() string

	// Charts returns a copy of the configured chart specs.
	Charts() []chart.Spec

	// AddChart appends a chart spec, returning its index.
	AddChart(spec chart.Spec) int

	// RemoveChart deletes the spec at index; reports whether it existed.
	RemoveChart(index int) bool

	// ClearCharts drops all configured charts.
	ClearCharts()
}
