package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esgreporter/internal/amqp"
	"esgreporter/internal/core"
	"esgreporter/internal/storage/memory"
)

func amount(s string) *string { return &s }

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*amqp.EntryRecordedMessage
	err  error
}

func (p *recordingPublisher) PublishEntryRecorded(_ context.Context, msg *amqp.EntryRecordedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

// fixedClock returns a clock that advances one second per call, so entries
// created in sequence get distinct CreatedAt values.
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func setupCompany(t *testing.T, store *memory.Store) core.Company {
	t.Helper()
	svc := NewCompanyService(store, "", nil)
	c, err := svc.Setup(context.Background(), CompanyInput{Name: "Acme", Industry: "Manufacturing"})
	require.NoError(t, err)
	return c
}

func TestCompanyService_Setup(t *testing.T) {
	store := memory.New()
	svc := NewCompanyService(store, "", nil)
	ctx := context.Background()

	_, err := svc.Current(ctx)
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))

	_, err = svc.Setup(ctx, CompanyInput{Name: "   "})
	require.ErrorIs(t, err, core.ErrNameRequired)
	assert.True(t, core.IsValidation(err))

	c, err := svc.Setup(ctx, CompanyInput{Name: " Acme ", Industry: "Retail"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.Name)
	require.NotNil(t, c.Industry)
	assert.Equal(t, "Retail", *c.Industry)
	assert.Nil(t, c.Size)
	assert.NotEmpty(t, c.ID)

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.ID, current.ID)
}

func TestCompanyService_SetupTwiceKeepsFirst(t *testing.T) {
	store := memory.New()
	svc := NewCompanyService(store, "", nil)
	svc.now = fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	first, err := svc.Setup(ctx, CompanyInput{Name: "First"})
	require.NoError(t, err)
	_, err = svc.Setup(ctx, CompanyInput{Name: "Second"})
	require.NoError(t, err)

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, current.ID)
}

func TestCompanyService_ConfiguredID(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	setup := NewCompanyService(store, "", nil)
	setup.now = fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	_, err := setup.Setup(ctx, CompanyInput{Name: "First"})
	require.NoError(t, err)
	second, err := setup.Setup(ctx, CompanyInput{Name: "Second"})
	require.NoError(t, err)

	pinned := NewCompanyService(store, second.ID, nil)
	current, err := pinned.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Second", current.Name)

	missing := NewCompanyService(store, "00000000-0000-0000-0000-000000000000", nil)
	_, err = missing.Current(ctx)
	assert.True(t, core.IsNotFound(err))
}

func TestEntryService_Record(t *testing.T) {
	store := memory.New()
	company := setupCompany(t, store)
	pub := &recordingPublisher{}
	svc := NewEntryService(store, pub, nil)
	ctx := context.Background()

	e, err := svc.Record(ctx, company.ID, core.Emissions, core.EntryInput{
		Category:    "electricity",
		Amount:      amount("100"),
		Description: "office",
		Date:        "2025-04-01",
	})
	require.NoError(t, err)
	assert.Equal(t, core.Emissions, e.Kind)
	assert.Equal(t, company.ID, e.CompanyID)
	assert.InDelta(t, 100, e.Amount, 1e-9)
	assert.True(t, e.Date.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.NotEmpty(t, e.ID)

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, e.ID, pub.msgs[0].EntryID)
	assert.Equal(t, "emissions", pub.msgs[0].Kind)
}

func TestEntryService_ZeroAmountIsNotMissing(t *testing.T) {
	store := memory.New()
	company := setupCompany(t, store)
	svc := NewEntryService(store, nil, nil)
	ctx := context.Background()

	e, err := svc.Record(ctx, company.ID, core.Water, core.EntryInput{Category: "operations", Amount: amount("0")})
	require.NoError(t, err)
	assert.Zero(t, e.Amount)

	_, err = svc.Record(ctx, company.ID, core.Water, core.EntryInput{Category: "operations"})
	require.ErrorIs(t, err, core.ErrMissingEntryFields)
	assert.Equal(t, "Category and amount are required", err.Error())

	_, err = svc.Record(ctx, company.ID, core.Water, core.EntryInput{Amount: amount("10")})
	require.ErrorIs(t, err, core.ErrMissingEntryFields)
}

func TestEntryService_InvalidAmountRejected(t *testing.T) {
	store := memory.New()
	company := setupCompany(t, store)
	svc := NewEntryService(store, nil, nil)

	_, err := svc.Record(context.Background(), company.ID, core.Waste, core.EntryInput{Category: "landfill", Amount: amount("lots")})
	require.ErrorIs(t, err, core.ErrInvalidAmount)

	entries, err := svc.List(context.Background(), company.ID, core.Waste)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEntryService_HugeAmountsKeepTotalsFinite(t *testing.T) {
	store := memory.New()
	company := setupCompany(t, store)
	svc := NewEntryService(store, nil, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Record(ctx, company.ID, core.Emissions, core.EntryInput{Category: "fuel", Amount: amount("1e308")})
		require.ErrorIs(t, err, core.ErrInvalidAmount)
	}
	for i := 0; i < 2; i++ {
		_, err := svc.Record(ctx, company.ID, core.Emissions, core.EntryInput{Category: "fuel", Amount: amount("1e15")})
		require.NoError(t, err)
	}

	stats, err := NewAggregationService(store, 0).Summarize(ctx, company.ID)
	require.NoError(t, err)
	assert.False(t, math.IsInf(stats.TotalEmissions, 0))
	assert.InDelta(t, 2e15, stats.TotalEmissions, 1)

	_, err = json.Marshal(stats)
	assert.NoError(t, err)
}

func TestEntryService_NoCompanyIsNotFound(t *testing.T) {
	svc := NewEntryService(memory.New(), nil, nil)

	_, err := svc.Record(context.Background(), "missing", core.Emissions, core.EntryInput{Category: "fuel", Amount: amount("5")})
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))
	assert.False(t, core.IsValidation(err))
}

func TestEntryService_PublishFailureDoesNotFailRecord(t *testing.T) {
	store := memory.New()
	company := setupCompany(t, store)
	svc := NewEntryService(store, &recordingPublisher{err: errors.New("broker down")}, nil)

	e, err := svc.Record(context.Background(), company.ID, core.Emissions, core.EntryInput{Category: "fuel", Amount: amount("5")})
	require.NoError(t, err)

	stored, err := store.GetEntry(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, stored.ID)
}

func TestEntryService_UnknownKind(t *testing.T) {
	svc := NewEntryService(memory.New(), nil, nil)
	_, err := svc.Record(context.Background(), "c1", core.MetricKind("energy"), core.EntryInput{Category: "x", Amount: amount("1")})
	assert.True(t, core.IsValidation(err))

	_, err = svc.List(context.Background(), "c1", core.MetricKind("energy"))
	assert.True(t, core.IsValidation(err))
}

func TestEntryService_ListNewestFirst(t *testing.T) {
	store := memory.New()
	company := setupCompany(t, store)
	svc := NewEntryService(store, nil, nil)
	svc.now = fixedClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for _, d := range []string{"2025-01-05", "2025-03-01", "2025-02-10"} {
		_, err := svc.Record(ctx, company.ID, core.Waste, core.EntryInput{Category: "recycled", Amount: amount("1"), Date: d})
		require.NoError(t, err)
	}

	entries, err := svc.List(ctx, company.ID, core.Waste)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "2025-03-01", entries[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2025-02-10", entries[1].Date.Format("2006-01-02"))
	assert.Equal(t, "2025-01-05", entries[2].Date.Format("2006-01-02"))
}

func TestAggregationService_Summarize(t *testing.T) {
	store := memory.New()
	company := setupCompany(t, store)
	entries := NewEntryService(store, nil, nil)
	ctx := context.Background()

	_, err := entries.Record(ctx, company.ID, core.Emissions, core.EntryInput{Category: "electricity", Amount: amount("100")})
	require.NoError(t, err)
	_, err = entries.Record(ctx, company.ID, core.Emissions, core.EntryInput{Category: "fuel", Amount: amount("50")})
	require.NoError(t, err)

	stats, err := NewAggregationService(store, 0).Summarize(ctx, company.ID)
	require.NoError(t, err)

	assert.InDelta(t, 150, stats.TotalEmissions, 1e-9)
	assert.Zero(t, stats.TotalWater)
	assert.Zero(t, stats.TotalWaste)
	assert.Len(t, stats.RecentEmissions, 2)
	assert.NotNil(t, stats.RecentWater)
	assert.Empty(t, stats.RecentWater)
}

func TestAggregationService_RecentCapAndOrder(t *testing.T) {
	store := memory.New()
	company := setupCompany(t, store)
	entries := NewEntryService(store, nil, nil)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var want float64
	for i := 0; i < 15; i++ {
		_, err := entries.Record(ctx, company.ID, core.Water, core.EntryInput{
			Category: "operations",
			Amount:   amount("2.5"),
			Date:     base.AddDate(0, 0, i).Format("2006-01-02"),
		})
		require.NoError(t, err)
		want += 2.5
	}

	agg := NewAggregationService(store, 0)
	assert.Equal(t, core.DefaultRecentLimit, agg.RecentLimit())

	stats, err := agg.Summarize(ctx, company.ID)
	require.NoError(t, err)
	assert.InDelta(t, want, stats.TotalWater, 1e-9)
	require.Len(t, stats.RecentWater, core.DefaultRecentLimit)
	for i := 1; i < len(stats.RecentWater); i++ {
		assert.False(t, stats.RecentWater[i].Date.After(stats.RecentWater[i-1].Date), "recent list must be date descending")
	}
	assert.True(t, stats.RecentWater[0].Date.Equal(base.AddDate(0, 0, 14)))

	small, err := NewAggregationService(store, 3).Summarize(ctx, company.ID)
	require.NoError(t, err)
	assert.Len(t, small.RecentWater, 3)
}
