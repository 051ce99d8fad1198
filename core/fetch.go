package core

import (
	"context"
	"fmt"
	"time"

	"github.com/semiconip/patentspike/core/algo"
	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/schema"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// fetchMonths is the fetch window. It always covers the spike history so that
// narrowing the period only changes the views.
const fetchMonths = 12

// fetchWindow returns the publication window fetched for a run at now.
func fetchWindow(now time.Time) (start, end time.Time) {
	return algo.MonthsBefore(now, fetchMonths), now
}

// fetchAll fetches every company concurrently with at most cfg.Workers requests in flight.
// The result is indexed like cfg.Companies. The first failure cancels the others.
func fetchAll(ctx context.Context, cfg *contract.Config, source contract.PatentSource, mgr contract.CacheManager, now time.Time) ([][]schema.Patent, error) {
	start, end := fetchWindow(now)
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetCacheStore()
	}

	results := make([][]schema.Patent, len(cfg.Companies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i, company := range cfg.Companies {
		g.Go(func() error {
			patents, err := cachedSearch(gctx, cfg, source, store, company.Query, start, end, now)
			if err != nil {
				if m := metricsFromContext(ctx); m != nil {
					m.FetchFailed(company.Name)
				}
				return fmt.Errorf("fetch patents for %s: %w", company.Name, err)
			}
			contract.Logger().Debug("fetched patents",
				zap.String("company", company.Name),
				zap.Int("patents", len(patents)))
			results[i] = patents
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
