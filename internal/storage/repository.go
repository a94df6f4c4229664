package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"esgreporter/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the default durable Store. Timestamps are stored as
// Unix milliseconds so ordering is numeric.
type SQLiteRepository struct {
	db *sql.DB
}

var _ Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateCompany implements CompanyStore
func (r *SQLiteRepository) CreateCompany(ctx context.Context, c core.Company) (core.Company, error) {
	c.CreatedAt = truncMillis(c.CreatedAt)
	c.UpdatedAt = truncMillis(c.UpdatedAt)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO companies (id, name, industry, size, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, nullString(c.Industry), nullString(c.Size),
		toMillis(c.CreatedAt), toMillis(c.UpdatedAt))
	if err != nil {
		return core.Company{}, fmt.Errorf("insert company: %w", err)
	}

	slog.InfoContext(ctx, "Company saved to SQLite", "id", c.ID, "name", c.Name)
	return c, nil
}

// GetCompany implements CompanyStore
func (r *SQLiteRepository) GetCompany(ctx context.Context, id string) (core.Company, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, industry, size, created_at, updated_at
		 FROM companies WHERE id = ?`, id)
	c, err := scanCompany(row)
	if err != nil {
		return core.Company{}, fmt.Errorf("get company %s: %w", id, err)
	}
	return c, nil
}

// FirstCompany implements CompanyStore
func (r *SQLiteRepository) FirstCompany(ctx context.Context) (core.Company, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, industry, size, created_at, updated_at
		 FROM companies ORDER BY created_at ASC, rowid ASC LIMIT 1`)
	c, err := scanCompany(row)
	if err != nil {
		return core.Company{}, fmt.Errorf("first company: %w", err)
	}
	return c, nil
}

// InsertEntry implements EntryStore
func (r *SQLiteRepository) InsertEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	e.Date = truncMillis(e.Date)
	e.CreatedAt = truncMillis(e.CreatedAt)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO metric_entries (id, company_id, kind, date, category, amount, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CompanyID, string(e.Kind), toMillis(e.Date), e.Category, e.Amount,
		nullString(e.Description), toMillis(e.CreatedAt))
	if err != nil {
		return core.Entry{}, fmt.Errorf("insert %s entry: %w", e.Kind, err)
	}

	slog.DebugContext(ctx, "Entry saved to SQLite",
		"id", e.ID,
		"kind", e.Kind,
		"category", e.Category,
		"amount", e.Amount)

	return e, nil
}

// GetEntry implements EntryStore
func (r *SQLiteRepository) GetEntry(ctx context.Context, id string) (core.Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, company_id, kind, date, category, amount, description, created_at
		 FROM metric_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entry{}, fmt.Errorf("get entry %s: %w", id, core.ErrEntryNotFound)
	}
	if err != nil {
		return core.Entry{}, fmt.Errorf("get entry %s: %w", id, err)
	}
	return e, nil
}

// SumAmounts implements EntryStore
func (r *SQLiteRepository) SumAmounts(ctx context.Context, companyID string, kind core.MetricKind) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM metric_entries
		 WHERE company_id = ? AND kind = ?`, companyID, string(kind)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum %s amounts: %w", kind, err)
	}
	return total, nil
}

// RecentEntries implements EntryStore
func (r *SQLiteRepository) RecentEntries(ctx context.Context, companyID string, kind core.MetricKind, limit int) ([]core.Entry, error) {
	query := `SELECT id, company_id, kind, date, category, amount, description, created_at
		 FROM metric_entries
		 WHERE company_id = ? AND kind = ?
		 ORDER BY date DESC, created_at DESC, id ASC`
	args := []any{companyID, string(kind)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s entries: %w", kind, err)
	}
	defer rows.Close()

	entries := []core.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s entry: %w", kind, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s entries: %w", kind, err)
	}
	return entries, nil
}

// InsertReport implements ReportStore
func (r *SQLiteRepository) InsertReport(ctx context.Context, rep core.Report) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (id, company_id, period, type, total_emissions, total_water, total_waste, archive_key, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.ID, rep.CompanyID, rep.Period, rep.Type,
		rep.TotalEmissions, rep.TotalWater, rep.TotalWaste,
		rep.ArchiveKey, toMillis(rep.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// ListReports implements ReportStore
func (r *SQLiteRepository) ListReports(ctx context.Context, companyID string, limit int) ([]core.Report, error) {
	query := `SELECT id, company_id, period, type, total_emissions, total_water, total_waste, archive_key, created_at
		 FROM reports WHERE company_id = ?
		 ORDER BY created_at DESC, rowid DESC`
	args := []any{companyID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := []core.Report{}
	for rows.Next() {
		var (
			rep       core.Report
			createdAt int64
		)
		if err := rows.Scan(&rep.ID, &rep.CompanyID, &rep.Period, &rep.Type,
			&rep.TotalEmissions, &rep.TotalWater, &rep.TotalWaste,
			&rep.ArchiveKey, &createdAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		rep.CreatedAt = fromMillis(createdAt)
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (core.Company, error) {
	var (
		c                    core.Company
		industry, size       sql.NullString
		createdAt, updatedAt int64
	)
	err := row.Scan(&c.ID, &c.Name, &industry, &size, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Company{}, core.ErrCompanyNotFound
	}
	if err != nil {
		return core.Company{}, err
	}
	c.Industry = stringPtr(industry)
	c.Size = stringPtr(size)
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return c, nil
}

func scanEntry(row rowScanner) (core.Entry, error) {
	var (
		e               core.Entry
		kind            string
		description     sql.NullString
		date, createdAt int64
	)
	if err := row.Scan(&e.ID, &e.CompanyID, &kind, &date, &e.Category, &e.Amount, &description, &createdAt); err != nil {
		return core.Entry{}, err
	}
	e.Kind = core.MetricKind(kind)
	e.Description = stringPtr(description)
	e.Date = fromMillis(date)
	e.CreatedAt = fromMillis(createdAt)
	return e, nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func truncMillis(t time.Time) time.Time {
	return fromMillis(toMillis(t))
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
