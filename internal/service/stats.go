package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/prompt-market/internal/model"
	"github.com/sakif/prompt-market/internal/repository"
)

// StatsService derives the landing-page counters from the store. Every value
// is a real aggregate: activeUsers counts users and totalEarnings sums the
// purchase ledger.
type StatsService struct {
	store repository.Store
}

func NewStatsService(store repository.Store) *StatsService {
	return &StatsService{store: store}
}

func (s *StatsService) Compute(ctx context.Context) (*model.Stats, error) {
	var (
		stats    model.Stats
		earnings decimal.Decimal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalPrompts, err = s.store.Prompts().Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveUsers, err = s.store.Users().Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.CategoriesCount, err = s.store.Categories().Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		earnings, err = s.store.Purchases().TotalEarnings(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("computing stats: %w", err)
	}

	stats.TotalEarnings = earnings.Round(2)
	return &stats, nil
}
