package memory

import (
	"context"
	"testing"
	"time"

	"esgreporter/internal/core"
)

func TestAppendAndLookup(t *testing.T) {
	s := New()
	ctx := context.Background()
	e := core.Entry{
		ID:       "e-1",
		Kind:     core.Waste,
		Date:     time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Category: "recycled",
		Amount:   12,
	}

	ref, err := s.AppendEntry(ctx, e)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "mem:waste:1" {
		t.Fatalf("unexpected ref: %s", ref)
	}

	ok, err := s.HasEntry(ctx, core.Waste, "e-1")
	if err != nil || !ok {
		t.Fatalf("expected entry to be found (err=%v)", err)
	}
	ok, _ = s.HasEntry(ctx, core.Water, "e-1")
	if ok {
		t.Fatal("entry must only be visible under its own kind")
	}

	rows := s.Rows(core.Waste)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	want := []string{"2025-02-01", "recycled", "12.00", "kg", "", "e-1"}
	for i := range want {
		if rows[0][i] != want[i] {
			t.Fatalf("cell %d: want %q, got %q", i, want[i], rows[0][i])
		}
	}
}

func TestAppendRejectsUnknownKind(t *testing.T) {
	s := New()
	if _, err := s.AppendEntry(context.Background(), core.Entry{Kind: "energy"}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
