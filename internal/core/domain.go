package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	Emissions MetricKind = "emissions"
	Water     MetricKind = "water"
	Waste     MetricKind = "waste"
)

// DefaultRecentLimit caps the recent-entry lists returned with the dashboard stats.
const DefaultRecentLimit = 10

type (
	// MetricKind tags which partition of the metric store an entry belongs to.
	MetricKind string

	Company struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Industry  *string   `json:"industry"`
		Size      *string   `json:"size"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// Entry is a single dated, categorized measurement. Entries are never
	// updated once stored.
	Entry struct {
		ID          string     `json:"id"`
		CompanyID   string     `json:"companyId"`
		Kind        MetricKind `json:"kind"`
		Date        time.Time  `json:"date"`
		Category    string     `json:"category"`
		Amount      float64    `json:"amount"`
		Description *string    `json:"description"`
		CreatedAt   time.Time  `json:"createdAt"`
	}

	// Report is the record kept for every generated report. Totals are a
	// snapshot at generation time.
	Report struct {
		ID             string    `json:"id"`
		CompanyID      string    `json:"companyId"`
		Period         string    `json:"period"`
		Type           string    `json:"type"`
		TotalEmissions float64   `json:"totalEmissions"`
		TotalWater     float64   `json:"totalWater"`
		TotalWaste     float64   `json:"totalWaste"`
		ArchiveKey     string    `json:"archiveKey,omitempty"`
		CreatedAt      time.Time `json:"createdAt"`
	}
)

// Kinds returns every metric kind in display order.
func Kinds() []MetricKind {
	return []MetricKind{Emissions, Water, Waste}
}

// ParseMetricKind maps a path segment or message field to a MetricKind.
func ParseMetricKind(s string) (MetricKind, error) {
	k := MetricKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("unknown metric kind %q", s)
	}
	return k, nil
}

func (k MetricKind) String() string {
	return string(k)
}

// IsValid reports whether k is one of the three metric kinds.
func (k MetricKind) IsValid() bool {
	switch k {
	case Emissions, Water, Waste:
		return true
	default:
		return false
	}
}

// Unit is the long unit label used on totals.
func (k MetricKind) Unit() string {
	switch k {
	case Emissions:
		return "kg CO2e"
	case Water:
		return "liters"
	case Waste:
		return "kg"
	default:
		return ""
	}
}

// ShortUnit is the compact unit label used in entry lists.
func (k MetricKind) ShortUnit() string {
	if k == Water {
		return "L"
	}
	return k.Unit()
}

// Label is the human title of the kind.
func (k MetricKind) Label() string {
	switch k {
	case Emissions:
		return "Emissions"
	case Water:
		return "Water Usage"
	case Waste:
		return "Waste"
	default:
		return string(k)
	}
}

// Singular names one entry of the kind, e.g. in "Failed to create emission".
func (k MetricKind) Singular() string {
	switch k {
	case Emissions:
		return "emission"
	case Water:
		return "water entry"
	case Waste:
		return "waste entry"
	default:
		return "entry"
	}
}

// Validate checks the fields a company must carry before it is stored.
func (c Company) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

// Validate checks an entry built by the ingestion path.
func (e Entry) Validate() error {
	if !e.Kind.IsValid() {
		return NewValidationError("Unknown metric kind")
	}
	if strings.TrimSpace(e.CompanyID) == "" {
		return ErrCompanyNotFound
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrMissingEntryFields
	}
	if !validAmount(e.Amount) {
		return ErrInvalidAmount
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}
