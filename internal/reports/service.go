package reports

import (
	"context"
	"encoding/json"
	"sort"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Service composes the report queries with caching. Concurrent requests for
// the same report collapse onto one database round trip via singleflight.
type Service struct {
	repo  Repository
	cache *Cache
	group singleflight.Group
}

func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

func (s *Service) Dashboard(ctx context.Context) (DashboardSummary, error) {
	var summary DashboardSummary
	err := s.fetch(ctx, "reports:dashboard", &summary, func(ctx context.Context) (interface{}, error) {
		return s.repo.DashboardSummary(ctx)
	})
	return summary, err
}

func (s *Service) CustomerRevenue(ctx context.Context) ([]CustomerRevenueRow, error) {
	out := []CustomerRevenueRow{}
	err := s.fetch(ctx, "reports:customers", &out, func(ctx context.Context) (interface{}, error) {
		return s.repo.CustomerRevenue(ctx)
	})
	return out, err
}

// StockLevels returns per product totals sorted by product name using
// locale-aware collation, so names with accents land where a person expects.
func (s *Service) StockLevels(ctx context.Context) ([]StockRow, error) {
	out := []StockRow{}
	err := s.fetch(ctx, "reports:stock", &out, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.StockLevels(ctx)
		if err != nil {
			return nil, err
		}
		collator := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(rows, func(i, j int) bool {
			return collator.CompareString(rows[i].ProductName, rows[j].ProductName) < 0
		})
		return rows, nil
	})
	return out, err
}

// InvalidateAll bumps the cache version. Write paths call this through the
// orders and stock services.
func (s *Service) InvalidateAll(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) fetch(ctx context.Context, name string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	key, err := s.cache.BuildKey(ctx, name)
	if err != nil {
		return err
	}

	resultChan := s.group.DoChan(key, func() (interface{}, error) {
		var payload json.RawMessage
		err := s.cache.FetchJSON(ctx, key, &payload, loader)
		return payload, err
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.(json.RawMessage), dest)
	}
}
