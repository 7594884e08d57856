package session

import (
	"sync"
	"time"

	"datapilot/domain/chart"
	"datapilot/domain/core"
	"datapilot/domain/table"
	"datapilot/internal"
	"datapilot/ports"
)

// Store is an in-memory session store. Sessions expire after a TTL of
// inactivity; a background sweep reclaims them. It implements
// ports.SessionStore.
type Store struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*State
	ttl      time.Duration
	logger   *internal.Logger
	done     chan struct{}
}

// NewStore creates a store and starts its expiry sweep
func NewStore(ttl, sweepInterval time.Duration) *Store {
	s := &Store{
		sessions: make(map[core.SessionID]*State),
		ttl:      ttl,
		logger:   internal.DefaultLogger,
		done:     make(chan struct{}),
	}
	if sweepInterval > 0 {
		go s.sweep(sweepInterval)
	}
	return s
}

// Get returns the session for id, creating it when absent
func (s *Store) Get(id core.SessionID) *State {
	s.mu.RLock()
	state, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		state.touch()
		return state
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.sessions[id]; ok {
		state.touch()
		return state
	}
	state = newState()
	s.sessions[id] = state
	s.logger.Debug("[Session] created session %s", id)
	return state
}

// Delete drops a session and all its state
func (s *Store) Delete(id core.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the background sweep
func (s *Store) Close() {
	close(s.done)
}

func (s *Store) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.expire(time.Now())
		}
	}
}

// expire removes sessions idle longer than the TTL
func (s *Store) expire(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, state := range s.sessions {
		if now.Sub(state.lastAccess()) > s.ttl {
			delete(s.sessions, id)
			s.logger.Debug("[Session] expired session %s", id)
		}
	}
}

// State holds one browser session's analysis state: the raw upload, the
// working table mutated by cleaning operations, and the chart list.
type State struct {
	mu       sync.RWMutex
	raw      *table.Table
	working  *table.Table
	filename string
	charts   []chart.Spec
	accessed time.Time
}

func newState() *State {
	return &State{accessed: time.Now()}
}

// SetDataset installs a fresh table as both raw and working copy and clears
// the chart list, matching upload semantics: a new file starts over.
func (st *State) SetDataset(t *table.Table, filename string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.raw = t
	st.working = t.Clone()
	st.filename = filename
	st.charts = nil
	st.accessed = time.Now()
}

// Working returns the current working table, or nil when nothing is loaded
func (st *State) Working() *table.Table {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.working
}

// Mutate replaces the working table under the session lock
func (st *State) Mutate(fn func(working *table.Table) *table.Table) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.working = fn(st.working)
	st.accessed = time.Now()
}

// Reset restores the working copy from the raw upload. Returns false when
// no dataset is loaded.
func (st *State) Reset() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.raw == nil {
		return false
	}
	st.working = st.raw.Clone()
	st.accessed = time.Now()
	return true
}

// Filename returns the name of the currently loaded file
func (st *State) Filename() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.filename
}

// Charts returns a copy of the configured chart specs
func (st *State) Charts() []chart.Spec {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]chart.Spec(nil), st.charts...)
}

// AddChart appends a chart spec, returning its index
func (st *State) AddChart(spec chart.Spec) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.charts = append(st.charts, spec)
	st.accessed = time.Now()
	return len(st.charts) - 1
}

// RemoveChart deletes the spec at index
func (st *State) RemoveChart(index int) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if index < 0 || index >= len(st.charts) {
		return false
	}
	st.charts = append(st.charts[:index], st.charts[index+1:]...)
	return true
}

// ClearCharts drops all configured charts
func (st *State) ClearCharts() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.charts = nil
}

func (st *State) touch() {
	st.mu.Lock()
	st.accessed = time.Now()
	st.mu.Unlock()
}

func (st *State) lastAccess() time.Time {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.accessed
}

// interface conformance
var (
	_ ports.SessionStore = (*storeAdapter)(nil)
	_ ports.Session      = (*State)(nil)
)

// storeAdapter lifts *Store to the ports.SessionStore interface, which
// returns the Session interface rather than the concrete type.
type storeAdapter struct{ *Store }

// Adapter returns the store as a ports.SessionStore
func (s *Store) Adapter() ports.SessionStore {
	return storeAdapter{s}
}

func (a storeAdapter) Get(id core.SessionID) ports.Session {
	return a.Store.Get(id)
}

func (a storeAdapter) Delete(id core.SessionID) {
	a.Store.Delete(id)
}
