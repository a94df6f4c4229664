// Package storetest holds the behaviour every storage.Store backend must
// share. Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esgreporter/internal/core"
	"esgreporter/internal/storage"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) storage.Store

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func Run(t *testing.T, newStore Factory) {
	t.Run("FirstCompanyEmpty", func(t *testing.T) { testFirstCompanyEmpty(t, newStore) })
	t.Run("CompanyRoundTrip", func(t *testing.T) { testCompanyRoundTrip(t, newStore) })
	t.Run("FirstCompanyIsEarliest", func(t *testing.T) { testFirstCompanyIsEarliest(t, newStore) })
	t.Run("FirstCompanyTieKeepsInsertOrder", func(t *testing.T) { testFirstCompanyTieKeepsInsertOrder(t, newStore) })
	t.Run("SumAmounts", func(t *testing.T) { testSumAmounts(t, newStore) })
	t.Run("RecentEntriesOrder", func(t *testing.T) { testRecentEntriesOrder(t, newStore) })
	t.Run("EntryNotFound", func(t *testing.T) { testEntryNotFound(t, newStore) })
	t.Run("Reports", func(t *testing.T) { testReports(t, newStore) })
}

func open(t *testing.T, newStore Factory) storage.Store {
	t.Helper()
	s := newStore(t)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedCompany(t *testing.T, s storage.Store, name string, createdAt time.Time) core.Company {
	t.Helper()
	return seedCompanyWithID(t, s, uuid.NewString(), name, createdAt)
}

func seedCompanyWithID(t *testing.T, s storage.Store, id, name string, createdAt time.Time) core.Company {
	t.Helper()
	industry := "Manufacturing"
	c, err := s.CreateCompany(context.Background(), core.Company{
		ID:        id,
		Name:      name,
		Industry:  &industry,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	})
	require.NoError(t, err)
	return c
}

func seedEntry(t *testing.T, s storage.Store, companyID string, kind core.MetricKind, amount float64, date, createdAt time.Time) core.Entry {
	t.Helper()
	e, err := s.InsertEntry(context.Background(), core.Entry{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Kind:      kind,
		Date:      date,
		Category:  "other",
		Amount:    amount,
		CreatedAt: createdAt,
	})
	require.NoError(t, err)
	return e
}

func testFirstCompanyEmpty(t *testing.T, newStore Factory) {
	s := open(t, newStore)
	_, err := s.FirstCompany(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))
}

func testCompanyRoundTrip(t *testing.T, newStore Factory) {
	s := open(t, newStore)
	ctx := context.Background()

	created := seedCompany(t, s, "Acme", base)
	got, err := s.GetCompany(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "Acme", got.Name)
	require.NotNil(t, got.Industry)
	assert.Equal(t, "Manufacturing", *got.Industry)
	assert.Nil(t, got.Size)
	assert.True(t, got.CreatedAt.Equal(base))

	_, err = s.GetCompany(ctx, uuid.NewString())
	assert.ErrorIs(t, err, core.ErrCompanyNotFound)
}

func testFirstCompanyIsEarliest(t *testing.T, newStore Factory) {
	s := open(t, newStore)
	later := seedCompany(t, s, "Later", base.Add(time.Hour))
	earlier := seedCompany(t, s, "Earlier", base)

	first, err := s.FirstCompany(context.Background())
	require.NoError(t, err)
	assert.Equal(t, earlier.ID, first.ID)
	assert.NotEqual(t, later.ID, first.ID)
}

func testFirstCompanyTieKeepsInsertOrder(t *testing.T, newStore Factory) {
	s := open(t, newStore)
	// IDs sort opposite to insertion so an id tiebreak would pick the wrong one.
	first := seedCompanyWithID(t, s, "ffffffff-ffff-4fff-bfff-ffffffffffff", "First", base)
	seedCompanyWithID(t, s, "00000000-0000-4000-8000-000000000000", "Second", base)
	seedCompanyWithID(t, s, "77777777-7777-4777-b777-777777777777", "Third", base)

	got, err := s.FirstCompany(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "First", got.Name)
}

func testSumAmounts(t *testing.T, newStore Factory) {
	s := open(t, newStore)
	ctx := context.Background()
	acme := seedCompany(t, s, "Acme", base)
	other := seedCompany(t, s, "Other", base.Add(time.Minute))

	total, err := s.SumAmounts(ctx, acme.ID, core.Emissions)
	require.NoError(t, err)
	assert.Zero(t, total)

	seedEntry(t, s, acme.ID, core.Emissions, 100, base, base)
	seedEntry(t, s, acme.ID, core.Emissions, 50.5, base, base)
	seedEntry(t, s, acme.ID, core.Water, 300, base, base)
	seedEntry(t, s, other.ID, core.Emissions, 999, base, base)

	total, err = s.SumAmounts(ctx, acme.ID, core.Emissions)
	require.NoError(t, err)
	assert.InDelta(t, 150.5, total, 1e-9)

	total, err = s.SumAmounts(ctx, acme.ID, core.Water)
	require.NoError(t, err)
	assert.InDelta(t, 300, total, 1e-9)

	total, err = s.SumAmounts(ctx, acme.ID, core.Waste)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func testRecentEntriesOrder(t *testing.T, newStore Factory) {
	s := open(t, newStore)
	ctx := context.Background()
	acme := seedCompany(t, s, "Acme", base)

	day := func(n int) time.Time { return base.AddDate(0, 0, n) }
	oldest := seedEntry(t, s, acme.ID, core.Waste, 1, day(1), day(10))
	newest := seedEntry(t, s, acme.ID, core.Waste, 2, day(5), day(5))
	tieOld := seedEntry(t, s, acme.ID, core.Waste, 3, day(3), day(3))
	tieNew := seedEntry(t, s, acme.ID, core.Waste, 4, day(3), day(4))
	seedEntry(t, s, acme.ID, core.Water, 5, day(9), day(9))

	all, err := s.RecentEntries(ctx, acme.ID, core.Waste, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{newest.ID, tieNew.ID, tieOld.ID, oldest.ID},
		[]string{all[0].ID, all[1].ID, all[2].ID, all[3].ID})

	limited, err := s.RecentEntries(ctx, acme.ID, core.Waste, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, newest.ID, limited[0].ID)
	assert.Equal(t, core.Waste, limited[0].Kind)
	assert.True(t, limited[0].Date.Equal(day(5)))

	none, err := s.RecentEntries(ctx, uuid.NewString(), core.Waste, 10)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testEntryNotFound(t *testing.T, newStore Factory) {
	s := open(t, newStore)
	ctx := context.Background()
	acme := seedCompany(t, s, "Acme", base)

	desc := "diesel generator"
	stored, err := s.InsertEntry(ctx, core.Entry{
		ID:          uuid.NewString(),
		CompanyID:   acme.ID,
		Kind:        core.Emissions,
		Date:        base,
		Category:    "fuel",
		Amount:      42,
		Description: &desc,
		CreatedAt:   base,
	})
	require.NoError(t, err)

	got, err := s.GetEntry(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Description)
	assert.Equal(t, desc, *got.Description)
	assert.Equal(t, "fuel", got.Category)

	_, err = s.GetEntry(ctx, uuid.NewString())
	assert.True(t, core.IsNotFound(err))
}

func testReports(t *testing.T, newStore Factory) {
	s := open(t, newStore)
	ctx := context.Background()
	acme := seedCompany(t, s, "Acme", base)

	empty, err := s.ListReports(ctx, acme.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)

	first := core.Report{ID: uuid.NewString(), CompanyID: acme.ID, Period: "all-time", Type: "summary",
		TotalEmissions: 1, CreatedAt: base}
	second := core.Report{ID: uuid.NewString(), CompanyID: acme.ID, Period: "all-time", Type: "summary",
		TotalWater: 2, ArchiveKey: "reports/x.txt", CreatedAt: base.Add(time.Minute)}
	require.NoError(t, s.InsertReport(ctx, first))
	require.NoError(t, s.InsertReport(ctx, second))

	reports, err := s.ListReports(ctx, acme.ID, 0)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, second.ID, reports[0].ID)
	assert.Equal(t, "reports/x.txt", reports[0].ArchiveKey)
	assert.InDelta(t, 2, reports[0].TotalWater, 1e-9)

	limited, err := s.ListReports(ctx, acme.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
