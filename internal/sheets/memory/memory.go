package memory

import (
	"context"
	"fmt"
	"sync"

	"esgreporter/internal/core"
	ports "esgreporter/internal/sheets"
)

// Store is an in-process EntryMirror. The worker falls back to it when no
// spreadsheet is configured, and tests inspect its rows.
type Store struct {
	mu   sync.Mutex
	rows map[core.MetricKind][][]string
}

var _ ports.EntryMirror = (*Store)(nil)

func New() *Store {
	return &Store{rows: make(map[core.MetricKind][][]string)}
}

// AppendEntry stores the mirror row and returns a synthetic row reference.
func (s *Store) AppendEntry(_ context.Context, e core.Entry) (string, error) {
	if !e.Kind.IsValid() {
		return "", fmt.Errorf("no tab for kind %q", e.Kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[e.Kind] = append(s.rows[e.Kind], ports.Row(e))
	return fmt.Sprintf("mem:%s:%d", e.Kind, len(s.rows[e.Kind])), nil
}

// HasEntry reports whether a row with entryID exists under kind.
func (s *Store) HasEntry(_ context.Context, kind core.MetricKind, entryID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idCol := len(ports.Header) - 1
	for _, row := range s.rows[kind] {
		if row[idCol] == entryID {
			return true, nil
		}
	}
	return false, nil
}

// Rows returns a copy of the rows written under kind.
func (s *Store) Rows(kind core.MetricKind) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.rows[kind]))
	for i, r := range s.rows[kind] {
		out[i] = append([]string(nil), r...)
	}
	return out
}
