// Package memory is an in-process metric store used for tests and the
// "memory" data backend. Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"esgreporter/internal/core"
	"esgreporter/internal/storage"
)

type Store struct {
	mu        sync.Mutex
	companies []core.Company
	entries   []core.Entry
	reports   []core.Report
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// CreateCompany implements storage.CompanyStore
func (s *Store) CreateCompany(_ context.Context, c core.Company) (core.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.companies {
		if existing.ID == c.ID {
			return core.Company{}, fmt.Errorf("insert company: duplicate id %s", c.ID)
		}
	}
	s.companies = append(s.companies, c)
	return c, nil
}

// GetCompany implements storage.CompanyStore
func (s *Store) GetCompany(_ context.Context, id string) (core.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return core.Company{}, fmt.Errorf("get company %s: %w", id, core.ErrCompanyNotFound)
}

// FirstCompany implements storage.CompanyStore. Ties keep insertion order.
func (s *Store) FirstCompany(_ context.Context) (core.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.companies) == 0 {
		return core.Company{}, fmt.Errorf("first company: %w", core.ErrCompanyNotFound)
	}
	first := s.companies[0]
	for _, c := range s.companies[1:] {
		if c.CreatedAt.Before(first.CreatedAt) {
			first = c
		}
	}
	return first, nil
}

// InsertEntry implements storage.EntryStore
func (s *Store) InsertEntry(_ context.Context, e core.Entry) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasCompany(e.CompanyID) {
		return core.Entry{}, fmt.Errorf("insert %s entry: %w", e.Kind, core.ErrCompanyNotFound)
	}
	for _, existing := range s.entries {
		if existing.ID == e.ID {
			return core.Entry{}, fmt.Errorf("insert %s entry: duplicate id %s", e.Kind, e.ID)
		}
	}
	s.entries = append(s.entries, e)
	return e, nil
}

// GetEntry implements storage.EntryStore
func (s *Store) GetEntry(_ context.Context, id string) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Entry{}, fmt.Errorf("get entry %s: %w", id, core.ErrEntryNotFound)
}

// SumAmounts implements storage.EntryStore
func (s *Store) SumAmounts(_ context.Context, companyID string, kind core.MetricKind) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, e := range s.entries {
		if e.CompanyID == companyID && e.Kind == kind {
			total += e.Amount
		}
	}
	return total, nil
}

// RecentEntries implements storage.EntryStore
func (s *Store) RecentEntries(_ context.Context, companyID string, kind core.MetricKind, limit int) ([]core.Entry, error) {
	s.mu.Lock()
	out := []core.Entry{}
	for _, e := range s.entries {
		if e.CompanyID == companyID && e.Kind == kind {
			out = append(out, e)
		}
	}
	s.mu.Unlock()

	core.SortByDateDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// InsertReport implements storage.ReportStore
func (s *Store) InsertReport(_ context.Context, r core.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasCompany(r.CompanyID) {
		return fmt.Errorf("insert report: %w", core.ErrCompanyNotFound)
	}
	s.reports = append(s.reports, r)
	return nil
}

// ListReports implements storage.ReportStore
func (s *Store) ListReports(_ context.Context, companyID string, limit int) ([]core.Report, error) {
	s.mu.Lock()
	out := []core.Report{}
	// Walk backwards so equal timestamps keep newest-inserted first.
	for i := len(s.reports) - 1; i >= 0; i-- {
		if s.reports[i].CompanyID == companyID {
			out = append(out, s.reports[i])
		}
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) hasCompany(id string) bool {
	for _, c := range s.companies {
		if c.ID == id {
			return true
		}
	}
	return false
}
