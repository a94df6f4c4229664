package google

import (
	"fmt"
	"strings"

	"esgreporter/internal/core"
	ports "esgreporter/internal/sheets"
)

// rowValues converts the mirror row into the cell values sent to the API.
// The amount goes out as a number so the sheet can sum it.
func rowValues(e core.Entry) []any {
	row := ports.Row(e)
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	out[2] = e.Amount
	return out
}

// containsEntryID scans the first column of values (the Entry ID column
// range) for id. Header and blank cells never match.
func containsEntryID(values [][]any, id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return true
		}
	}
	return false
}
