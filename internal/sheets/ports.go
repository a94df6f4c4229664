package sheets

import (
	"context"

	"esgreporter/internal/core"
)

// Ports for the spreadsheet mirror of recorded entries.
type (
	EntryWriter interface {
		// AppendEntry adds one row for e to the tab of its kind and returns
		// a reference to the written range.
		AppendEntry(ctx context.Context, e core.Entry) (rowRef string, err error)
	}

	EntryLookup interface {
		// HasEntry reports whether a row for entryID already exists in the
		// tab of kind.
		HasEntry(ctx context.Context, kind core.MetricKind, entryID string) (bool, error)
	}

	EntryMirror interface {
		EntryWriter
		EntryLookup
	}
)

// Header is the column layout of every mirror tab.
var Header = []string{"Date", "Category", "Amount", "Unit", "Description", "Entry ID"}

// Row renders e in Header order.
func Row(e core.Entry) []string {
	desc := ""
	if e.Description != nil {
		desc = *e.Description
	}
	return []string{
		e.Date.UTC().Format("2006-01-02"),
		e.Category,
		core.FormatAmount(e.Amount),
		e.Kind.ShortUnit(),
		desc,
		e.ID,
	}
}
