package state

import (
	"fmt"
	"sync"
	"time"

	"helpsync/calllog"
	"helpsync/config"
	"helpsync/types"
)

// Manager holds one sync session with thread-safe access
type Manager struct {
	mu sync.RWMutex

	// Current state
	currentState types.State
	progress     *types.Progress
	lastErr      error

	// Session data
	sourceLoaded bool
	sourceCount  int
	production   []types.SourceArticle
	excluded     []types.ExcludedArticle
	comparison   *types.ComparisonResult
	lastReport   *types.SyncReport

	// Logs (ring buffer)
	logs *calllog.Ring[types.LogEntry]
}

// NewManager creates a new state manager
func NewManager() *Manager {
	return &Manager{
		currentState: types.StateIdle,
		logs:         calllog.NewRing[types.LogEntry](config.ActivityLogSize),
	}
}

// AddLog adds a log entry (thread-safe)
func (m *Manager) AddLog(message string) {
	m.logs.Add(types.LogEntry{Timestamp: time.Now(), Message: message})
}

// Logs returns the retained activity log, oldest first
func (m *Manager) Logs() []types.LogEntry {
	return m.logs.Entries()
}

// TryBegin moves to state unless an operation is already running
func (m *Manager) TryBegin(state types.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentState.Busy() {
		return fmt.Errorf("operation already running (state=%s)", m.currentState)
	}
	m.currentState = state
	m.progress = nil
	m.lastErr = nil
	return nil
}

// SetState sets the current state (thread-safe)
func (m *Manager) SetState(state types.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentState = state
}

// GetState gets the current state (thread-safe)
func (m *Manager) GetState() types.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentState
}

// SetError sets the error state
func (m *Manager) SetError(err error) {
	m.mu.Lock()
	m.currentState = types.StateError
	m.lastErr = err
	m.mu.Unlock()

	m.AddLog(fmt.Sprintf("Error: %v", err))
}

// SetProgress records the progress of the running operation
func (m *Manager) SetProgress(p types.Progress) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = &p
}

// SetSource stores the classified source snapshot and drops any stale comparison
func (m *Manager) SetSource(total int, production []types.SourceArticle, excluded []types.ExcludedArticle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sourceLoaded = true
	m.sourceCount = total
	m.production = production
	m.excluded = excluded
	m.comparison = nil
}

// HasSource reports whether a source snapshot has been fetched
func (m *Manager) HasSource() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sourceLoaded
}

// Production returns the production articles of the current snapshot
func (m *Manager) Production() []types.SourceArticle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.production
}

// Excluded returns the articles filtered out of the current snapshot
func (m *Manager) Excluded() []types.ExcludedArticle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.excluded
}

// SetComparison stores the latest comparison
func (m *Manager) SetComparison(c types.ComparisonResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comparison = &c
}

// Comparison returns the latest comparison, or nil
func (m *Manager) Comparison() *types.ComparisonResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.comparison
}

// SetReport stores the report of the last bulk operation
func (m *Manager) SetReport(r types.SyncReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastReport = &r
}

// Snapshot returns a copy of the current state (thread-safe)
func (m *Manager) Snapshot() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()

	resp := types.StatusResponse{
		State:           m.currentState,
		Logs:            m.logs.Entries(),
		SourceCount:     m.sourceCount,
		ProductionCount: len(m.production),
		ExcludedCount:   len(m.excluded),
		LastReport:      m.lastReport,
	}

	if m.progress != nil {
		p := *m.progress
		resp.Progress = &p
	}
	if c := m.comparison; c != nil {
		resp.ExistingCount = len(c.Existing)
		resp.NewCount = len(c.New)
		resp.OrphanedCount = len(c.Orphaned)
		resp.KnowledgeSourceID = c.KnowledgeSourceID
		resp.Truncated = c.Truncated
	}
	if m.lastErr != nil {
		resp.Error = m.lastErr.Error()
	}

	return resp
}
