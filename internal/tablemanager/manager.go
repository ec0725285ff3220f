// Package tablemanager owns the directory of live tables, creating
// them lazily on first reference and exposing lookups the session and
// API layers use to route connections and REST queries.
package tablemanager

import (
	"sync"

	"pokerserver/internal/metrics"
	"pokerserver/internal/poker"
	"pokerserver/internal/rng"
	"pokerserver/internal/table"
)

// Manager is a concurrency-safe registry of Table instances, keyed by
// table ID. It does not itself hold per-table state; each Table guards
// its own mutex.
type Manager struct {
	mu        sync.Mutex
	tables    map[string]*table.Table
	cfg       table.Config
	recorder  table.Recorder
	analytics table.AnalyticsSink
}

// New returns an empty manager. recorder/analytics may be nil.
func New(cfg table.Config, recorder table.Recorder, analytics table.AnalyticsSink) *Manager {
	return &Manager{
		tables:    make(map[string]*table.Table),
		cfg:       cfg,
		recorder:  recorder,
		analytics: analytics,
	}
}

// GetOrCreate returns the table for id, creating it (with a fresh
// shuffler and evaluator) if it does not yet exist.
func (m *Manager) GetOrCreate(id string) (*table.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.tables[id]; ok {
		return t, nil
	}

	shuffler, err := rng.NewShuffler()
	if err != nil {
		return nil, err
	}
	t := table.New(id, m.cfg, shuffler, poker.NewEvaluator(), m.recorder, m.analytics)
	m.tables[id] = t
	metrics.ActiveTables.Set(float64(len(m.tables)))
	return t, nil
}

// Get returns an existing table without creating one.
func (m *Manager) Get(id string) (*table.Table, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[id]
	return t, ok
}

// Remove closes and drops a table from the directory. Used when an
// operator needs to retire an empty table; the engine itself never
// calls this on its own.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tables[id]; ok {
		t.Close()
		delete(m.tables, id)
		metrics.ActiveTables.Set(float64(len(m.tables)))
	}
}

// List returns every tracked table ID.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.tables))
	for id := range m.tables {
		ids = append(ids, id)
	}
	return ids
}
