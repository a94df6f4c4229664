package google

import (
	"testing"
	"time"

	"esgreporter/internal/core"
)

func TestRowValues(t *testing.T) {
	desc := "grid power"
	e := core.Entry{
		ID:          "e-1",
		Kind:        core.Water,
		Date:        time.Date(2025, 7, 3, 15, 0, 0, 0, time.UTC),
		Category:    "operations",
		Amount:      1250.5,
		Description: &desc,
	}

	row := rowValues(e)
	if len(row) != 6 {
		t.Fatalf("expected 6 cells, got %d", len(row))
	}
	if row[0] != "2025-07-03" {
		t.Errorf("date cell = %v", row[0])
	}
	if amt, ok := row[2].(float64); !ok || amt != 1250.5 {
		t.Errorf("amount cell should be numeric 1250.5, got %#v", row[2])
	}
	if row[3] != "L" {
		t.Errorf("unit cell = %v", row[3])
	}
	if row[4] != desc || row[5] != "e-1" {
		t.Errorf("unexpected trailing cells: %v", row[4:])
	}
}

func TestContainsEntryID(t *testing.T) {
	values := [][]interface{}{
		{"Entry ID"},
		{},
		{" abc-1 "},
		{"def-2"},
	}

	if !containsEntryID(values, "abc-1") {
		t.Error("expected abc-1 to be found")
	}
	if !containsEntryID(values, "def-2") {
		t.Error("expected def-2 to be found")
	}
	if containsEntryID(values, "zzz") {
		t.Error("zzz should not be found")
	}
	if containsEntryID(values, "") {
		t.Error("empty id must never match")
	}
}

func TestResolveTabs(t *testing.T) {
	tabs := resolveTabs(map[core.MetricKind]string{
		core.Water:            "2025 Water",
		core.Waste:            "  ",
		core.MetricKind("co"): "Ignored",
	})

	if tabs[core.Emissions] != "Emissions" {
		t.Errorf("emissions tab = %q", tabs[core.Emissions])
	}
	if tabs[core.Water] != "2025 Water" {
		t.Errorf("water tab = %q", tabs[core.Water])
	}
	if tabs[core.Waste] != "Waste" {
		t.Errorf("blank override should keep default, got %q", tabs[core.Waste])
	}
	if _, ok := tabs[core.MetricKind("co")]; ok {
		t.Error("unknown kinds must be dropped")
	}
}
