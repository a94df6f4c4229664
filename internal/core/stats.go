package core

import "sort"

// Stats is the dashboard aggregate for one company.
type Stats struct {
	TotalEmissions  float64 `json:"totalEmissions"`
	TotalWater      float64 `json:"totalWater"`
	TotalWaste      float64 `json:"totalWaste"`
	RecentEmissions []Entry `json:"recentEmissions"`
	RecentWater     []Entry `json:"recentWater"`
	RecentWaste     []Entry `json:"recentWaste"`
}

// NewStats returns zero totals and empty (non-nil) recent lists.
func NewStats() Stats {
	return Stats{
		RecentEmissions: []Entry{},
		RecentWater:     []Entry{},
		RecentWaste:     []Entry{},
	}
}

func (s Stats) Total(k MetricKind) float64 {
	switch k {
	case Emissions:
		return s.TotalEmissions
	case Water:
		return s.TotalWater
	case Waste:
		return s.TotalWaste
	}
	return 0
}

func (s *Stats) SetTotal(k MetricKind, v float64) {
	switch k {
	case Emissions:
		s.TotalEmissions = v
	case Water:
		s.TotalWater = v
	case Waste:
		s.TotalWaste = v
	}
}

func (s Stats) Recent(k MetricKind) []Entry {
	switch k {
	case Emissions:
		return s.RecentEmissions
	case Water:
		return s.RecentWater
	case Waste:
		return s.RecentWaste
	}
	return nil
}

func (s *Stats) SetRecent(k MetricKind, entries []Entry) {
	if entries == nil {
		entries = []Entry{}
	}
	switch k {
	case Emissions:
		s.RecentEmissions = entries
	case Water:
		s.RecentWater = entries
	case Waste:
		s.RecentWaste = entries
	}
}

// SortByDateDesc orders entries newest first. Equal dates fall back to
// creation time (newest first) and then ID, so the order is total.
func SortByDateDesc(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
