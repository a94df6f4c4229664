package storage

import (
	"context"

	"esgreporter/internal/core"
)

// Ports implemented by every metric store backend.
type (
	CompanyStore interface {
		CreateCompany(ctx context.Context, c core.Company) (core.Company, error)
		GetCompany(ctx context.Context, id string) (core.Company, error)
		// FirstCompany returns the earliest created company, or
		// core.ErrCompanyNotFound when none exists.
		FirstCompany(ctx context.Context) (core.Company, error)
	}

	EntryStore interface {
		InsertEntry(ctx context.Context, e core.Entry) (core.Entry, error)
		GetEntry(ctx context.Context, id string) (core.Entry, error)
		// SumAmounts returns 0 when the company has no entries of kind.
		SumAmounts(ctx context.Context, companyID string, kind core.MetricKind) (float64, error)
		// RecentEntries returns entries newest first. A limit <= 0 returns all.
		RecentEntries(ctx context.Context, companyID string, kind core.MetricKind, limit int) ([]core.Entry, error)
	}

	ReportStore interface {
		InsertReport(ctx context.Context, r core.Report) error
		ListReports(ctx context.Context, companyID string, limit int) ([]core.Report, error)
	}

	// Store is the full metric store.
	Store interface {
		CompanyStore
		EntryStore
		ReportStore
		Ping(ctx context.Context) error
		Close() error
	}
)
