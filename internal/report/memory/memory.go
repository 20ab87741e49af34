package memory

import (
	"context"
	"fmt"
	"sync"

	"traguardi/internal/report"
)

// Store keeps report rows in memory. Used in tests and when no external
// report backend is configured.
type Store struct {
	mu        sync.Mutex
	statuses  []report.StatusChange
	snapshots []report.BreakdownSnapshot
}

func New() *Store {
	return &Store{}
}

// AppendStatusChange stores the change and returns a synthetic row reference.
func (s *Store) AppendStatusChange(_ context.Context, change report.StatusChange) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, change)
	return fmt.Sprintf("mem:status:%d", len(s.statuses)), nil
}

// AppendBreakdown stores the snapshot and returns a synthetic row reference.
func (s *Store) AppendBreakdown(_ context.Context, snapshot report.BreakdownSnapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snapshot)
	return fmt.Sprintf("mem:breakdown:%d", len(s.snapshots)), nil
}

// StatusChanges returns a copy of the recorded status transitions.
func (s *Store) StatusChanges() []report.StatusChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]report.StatusChange(nil), s.statuses...)
}

// Snapshots returns a copy of the recorded breakdown snapshots.
func (s *Store) Snapshots() []report.BreakdownSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]report.BreakdownSnapshot(nil), s.snapshots...)
}
