// Package analysis runs the sequential multi-URL analysis and holds session results.
package analysis

import (
	"sync"

	"github.com/verte-zerg/perfdash/internal/delta"
	"github.com/verte-zerg/perfdash/internal/model"
)

// Session is the result store of one UI session.
type Session struct {
	mu       sync.RWMutex
	entries  []model.ResultEntry
	baseline delta.Baseline
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

// Reset discards all entries and installs the comparison baseline for the next run.
func (s *Session) Reset(baseline delta.Baseline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.baseline = baseline
}

// Append records a completed entry.
func (s *Session) Append(entry model.ResultEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

// Entries returns a copy of all entries in completion order.
func (s *Session) Entries() []model.ResultEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ResultEntry(nil), s.entries...)
}

// ByDevice returns the entries for one device class in completion order.
func (s *Session) ByDevice(device model.DeviceClass) []model.ResultEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ResultEntry
	for _, e := range s.entries {
		if e.Device == device {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Baseline returns the comparison snapshot taken when the current run started.
func (s *Session) Baseline() delta.Baseline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseline
}
