package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"esgreporter/internal/core"
	"esgreporter/internal/storage"
)

// AggregationService computes dashboard stats. Nothing is cached; every call
// reads the store.
type AggregationService struct {
	entries     storage.EntryStore
	recentLimit int
}

// NewAggregationService caps recent lists at recentLimit, or
// core.DefaultRecentLimit when recentLimit <= 0.
func NewAggregationService(entries storage.EntryStore, recentLimit int) *AggregationService {
	if recentLimit <= 0 {
		recentLimit = core.DefaultRecentLimit
	}
	return &AggregationService{entries: entries, recentLimit: recentLimit}
}

// RecentLimit is the cap applied to each recent list.
func (s *AggregationService) RecentLimit() int {
	return s.recentLimit
}

// Summarize returns per-kind totals and recent entries for the company. The
// store reads run concurrently; the first failure cancels the rest.
func (s *AggregationService) Summarize(ctx context.Context, companyID string) (core.Stats, error) {
	kinds := core.Kinds()
	totals := make([]float64, len(kinds))
	recents := make([][]core.Entry, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		i, kind := i, kind
		g.Go(func() error {
			total, err := s.entries.SumAmounts(gctx, companyID, kind)
			if err != nil {
				return fmt.Errorf("total %s: %w", kind, err)
			}
			totals[i] = total
			return nil
		})
		g.Go(func() error {
			recent, err := s.entries.RecentEntries(gctx, companyID, kind, s.recentLimit)
			if err != nil {
				return fmt.Errorf("recent %s: %w", kind, err)
			}
			recents[i] = recent
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.Stats{}, err
	}

	stats := core.NewStats()
	for i, kind := range kinds {
		stats.SetTotal(kind, totals[i])
		stats.SetRecent(kind, recents[i])
	}
	return stats, nil
}
