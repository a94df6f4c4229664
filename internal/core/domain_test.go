package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestParseMetricKind(t *testing.T) {
	cases := []struct {
		in   string
		want MetricKind
		ok   bool
	}{
		{"emissions", Emissions, true},
		{" Water ", Water, true},
		{"WASTE", Waste, true},
		{"energy", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMetricKind(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMetricKindUnits(t *testing.T) {
	if Emissions.Unit() != "kg CO2e" || Water.Unit() != "liters" || Waste.Unit() != "kg" {
		t.Fatalf("unexpected units: %q %q %q", Emissions.Unit(), Water.Unit(), Waste.Unit())
	}
	if Water.ShortUnit() != "L" || Waste.ShortUnit() != "kg" {
		t.Fatalf("unexpected short units")
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"0", 0, true},
		{"100", 100, true},
		{" 12.5 ", 12.5, true},
		{"12,5", 12.5, true},
		{"-3", -3, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"abc", 0, false},
		{"12abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1.2.3", 0, false},
		{"1e15", 1e15, true},
		{"-1e15", -1e15, true},
		{"1e16", 0, false},
		{"1e308", 0, false},
		{"-2e15", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestParseEntryDate(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	got, err := ParseEntryDate("", now)
	if err != nil || !got.Equal(now) {
		t.Fatalf("empty date should default to now, got %v (err=%v)", got, err)
	}

	got, err = ParseEntryDate("2025-01-15", now)
	if err != nil || !got.Equal(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date-only parse failed: %v (err=%v)", got, err)
	}

	got, err = ParseEntryDate("2025-01-15T08:30:00+02:00", now)
	if err != nil || !got.Equal(time.Date(2025, 1, 15, 6, 30, 0, 0, time.UTC)) {
		t.Fatalf("RFC 3339 parse failed: %v (err=%v)", got, err)
	}

	if _, err := ParseEntryDate("15/01/2025", now); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestEntryInputBuild(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	e, err := EntryInput{Category: "electricity", Amount: strPtr("0")}.Build("c1", Emissions, now)
	if err != nil {
		t.Fatalf("zero amount must be accepted: %v", err)
	}
	if e.Amount != 0 || e.Description != nil || !e.Date.Equal(now) {
		t.Fatalf("unexpected entry: %+v", e)
	}

	e, err = EntryInput{Category: " fuel ", Amount: strPtr("50"), Description: "  diesel "}.Build("c1", Emissions, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Category != "fuel" || e.Description == nil || *e.Description != "diesel" {
		t.Fatalf("fields not trimmed: %+v", e)
	}

	bads := []struct {
		in   EntryInput
		want error
	}{
		{EntryInput{Amount: strPtr("10")}, ErrMissingEntryFields},
		{EntryInput{Category: "fuel"}, ErrMissingEntryFields},
		{EntryInput{Category: "fuel", Amount: strPtr("ten")}, ErrInvalidAmount},
		{EntryInput{Category: "fuel", Amount: strPtr("1"), Date: "yesterday"}, ErrInvalidDate},
	}
	for i, tc := range bads {
		_, err := tc.in.Build("c1", Emissions, now)
		if !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
		if !IsValidation(err) {
			t.Fatalf("case %d expected a validation error", i)
		}
	}
}

func TestEntryValidate(t *testing.T) {
	good := Entry{CompanyID: "c1", Kind: Water, Category: "operations", Amount: 3, Date: time.Now()}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := good
	bad.Amount = math.NaN()
	if err := bad.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	bad = good
	bad.Amount = 1e308
	if err := bad.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for oversized amount, got %v", err)
	}

	bad = good
	bad.CompanyID = ""
	if err := bad.Validate(); !IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	if !IsNotFound(ErrCompanyNotFound) || !IsNotFound(ErrEntryNotFound) {
		t.Fatal("not-found errors must unwrap to ErrNotFound")
	}
	if IsValidation(ErrCompanyNotFound) {
		t.Fatal("not-found must not be a validation error")
	}
	if ErrMissingEntryFields.Error() != "Category and amount are required" {
		t.Fatalf("unexpected message %q", ErrMissingEntryFields.Error())
	}
	if (Company{Name: "  "}).Validate() != ErrNameRequired {
		t.Fatal("blank company name must fail")
	}
}

func TestSortByDateDesc(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC) }
	entries := []Entry{
		{ID: "a", Date: d(1)},
		{ID: "b", Date: d(3)},
		{ID: "c", Date: d(2), CreatedAt: d(2)},
		{ID: "d", Date: d(2), CreatedAt: d(5)},
	}
	SortByDateDesc(entries)
	want := []string{"b", "d", "c", "a"}
	for i, id := range want {
		if entries[i].ID != id {
			t.Fatalf("position %d: want %s, got %s", i, id, entries[i].ID)
		}
	}
}

func TestStatsAccessors(t *testing.T) {
	s := NewStats()
	for _, k := range Kinds() {
		if s.Total(k) != 0 || s.Recent(k) == nil {
			t.Fatalf("zero stats expected for %s", k)
		}
	}
	s.SetTotal(Waste, 7)
	s.SetRecent(Water, nil)
	if s.TotalWaste != 7 || s.RecentWater == nil {
		t.Fatalf("setters misbehaved: %+v", s)
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[float64]string{
		0:      "0.00",
		150:    "150.00",
		12.346: "12.35",
		-3.1:   "-3.10",
		1234.5: "1234.50",
	}
	for in, want := range cases {
		if got := FormatAmount(in); got != want {
			t.Errorf("FormatAmount(%v) = %q, want %q", in, got, want)
		}
	}
}
