// Package postgres is the PostgreSQL metric store backed by a pgx pool.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"esgreporter/internal/core"
	"esgreporter/internal/storage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Repository struct {
	pool *pgxpool.Pool
}

var _ storage.Store = (*Repository)(nil)

// New migrates the database at url and opens a connection pool to it.
func New(ctx context.Context, url string) (*Repository, error) {
	if err := Migrate(url); err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.InfoContext(ctx, "Connected to PostgreSQL",
		"host", cfg.ConnConfig.Host,
		"database", cfg.ConnConfig.Database,
		"max_conns", cfg.MaxConns)

	return &Repository{pool: pool}, nil
}

// Migrate applies the embedded PostgreSQL schema.
func Migrate(url string) error {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer db.Close()

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("create pgx migrate driver: %w", err)
	}
	return storage.MigrateUp(migrationsFS, "migrations", "pgx5", driver)
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

const companyColumns = `id::text, name, industry, size, created_at, updated_at`

func (r *Repository) CreateCompany(ctx context.Context, c core.Company) (core.Company, error) {
	c.CreatedAt = pgTime(c.CreatedAt)
	c.UpdatedAt = pgTime(c.UpdatedAt)
	_, err := r.pool.Exec(ctx,
		`INSERT INTO companies (id, name, industry, size, created_at, updated_at)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Industry, c.Size, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return core.Company{}, fmt.Errorf("insert company: %w", err)
	}
	return c, nil
}

func (r *Repository) GetCompany(ctx context.Context, id string) (core.Company, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1::uuid`, id)
	c, err := scanCompany(row)
	if err != nil {
		return core.Company{}, fmt.Errorf("get company %s: %w", id, err)
	}
	return c, nil
}

func (r *Repository) FirstCompany(ctx context.Context) (core.Company, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies ORDER BY created_at ASC, seq ASC LIMIT 1`)
	c, err := scanCompany(row)
	if err != nil {
		return core.Company{}, fmt.Errorf("first company: %w", err)
	}
	return c, nil
}

const entryColumns = `id::text, company_id::text, kind, date, category, amount, description, created_at`

func (r *Repository) InsertEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	e.Date = pgTime(e.Date)
	e.CreatedAt = pgTime(e.CreatedAt)
	_, err := r.pool.Exec(ctx,
		`INSERT INTO metric_entries (id, company_id, kind, date, category, amount, description, created_at)
		 VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.CompanyID, string(e.Kind), e.Date, e.Category, e.Amount, e.Description, e.CreatedAt)
	if err != nil {
		return core.Entry{}, fmt.Errorf("insert %s entry: %w", e.Kind, err)
	}
	return e, nil
}

func (r *Repository) GetEntry(ctx context.Context, id string) (core.Entry, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM metric_entries WHERE id = $1::uuid`, id)
	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Entry{}, fmt.Errorf("get entry %s: %w", id, core.ErrEntryNotFound)
	}
	if err != nil {
		return core.Entry{}, fmt.Errorf("get entry %s: %w", id, err)
	}
	return e, nil
}

func (r *Repository) SumAmounts(ctx context.Context, companyID string, kind core.MetricKind) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)::double precision FROM metric_entries
		 WHERE company_id = $1::uuid AND kind = $2`, companyID, string(kind)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum %s amounts: %w", kind, err)
	}
	return total, nil
}

func (r *Repository) RecentEntries(ctx context.Context, companyID string, kind core.MetricKind, limit int) ([]core.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM metric_entries
		 WHERE company_id = $1::uuid AND kind = $2
		 ORDER BY date DESC, created_at DESC, id ASC`
	args := []any{companyID, string(kind)}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
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

func (r *Repository) InsertReport(ctx context.Context, rep core.Report) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO reports (id, company_id, period, type, total_emissions, total_water, total_waste, archive_key, created_at)
		 VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8, $9)`,
		rep.ID, rep.CompanyID, rep.Period, rep.Type,
		rep.TotalEmissions, rep.TotalWater, rep.TotalWaste,
		rep.ArchiveKey, pgTime(rep.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (r *Repository) ListReports(ctx context.Context, companyID string, limit int) ([]core.Report, error) {
	query := `SELECT id::text, company_id::text, period, type, total_emissions, total_water, total_waste, archive_key, created_at
		 FROM reports WHERE company_id = $1::uuid
		 ORDER BY created_at DESC, id ASC`
	args := []any{companyID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := []core.Report{}
	for rows.Next() {
		var rep core.Report
		if err := rows.Scan(&rep.ID, &rep.CompanyID, &rep.Period, &rep.Type,
			&rep.TotalEmissions, &rep.TotalWater, &rep.TotalWaste,
			&rep.ArchiveKey, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		rep.CreatedAt = rep.CreatedAt.UTC()
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

func scanCompany(row pgx.Row) (core.Company, error) {
	var c core.Company
	err := row.Scan(&c.ID, &c.Name, &c.Industry, &c.Size, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Company{}, core.ErrCompanyNotFound
	}
	if err != nil {
		return core.Company{}, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

func scanEntry(row pgx.Row) (core.Entry, error) {
	var (
		e    core.Entry
		kind string
	)
	if err := row.Scan(&e.ID, &e.CompanyID, &kind, &e.Date, &e.Category, &e.Amount, &e.Description, &e.CreatedAt); err != nil {
		return core.Entry{}, err
	}
	e.Kind = core.MetricKind(kind)
	e.Date = e.Date.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

// pgTime matches the microsecond precision of TIMESTAMPTZ so stored and
// returned values compare equal.
func pgTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
