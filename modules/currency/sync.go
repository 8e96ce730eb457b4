package currency

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	currencydomain "github.com/Serhii-Leonenko/price-analyzer/domain/currency"
)

// ratePrecision is the stored scale of rate_to_usd.
const ratePrecision = 6

// RateSyncService pulls the official rate table and stores every currency's
// rate re-based against the US dollar.
type RateSyncService struct {
	repo    *currencydomain.Repository
	fetcher RateFetcher
	now     func() time.Time
}

// NewRateSyncService creates a rate sync service.
func NewRateSyncService(repo *currencydomain.Repository, fetcher RateFetcher) *RateSyncService {
	return &RateSyncService{repo: repo, fetcher: fetcher, now: time.Now}
}

// Execute syncs the rate table for today.
func (s *RateSyncService) Execute(ctx context.Context) (int, error) {
	return s.ExecuteFor(ctx, s.now())
}

// ExecuteFor fetches the rate table for the given reference date and
// upserts one row per currency. The source quotes rates against its own
// base currency, so the USD row is required to re-base; a table without
// USD is a hard error, not a partial sync. Returns the number of rates
// written.
func (s *RateSyncService) ExecuteFor(ctx context.Context, date time.Time) (int, error) {
	rows, err := s.fetcher.Fetch(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch rate table: %w", err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("rate table for %s is empty", date.Format("2006-01-02"))
	}

	usdPerBase := decimal.Zero
	for _, row := range rows {
		if row.Code == "USD" {
			usdPerBase = row.Rate.Div(decimal.NewFromInt(row.Units))
			break
		}
	}
	if usdPerBase.IsZero() {
		return 0, fmt.Errorf("rate table for %s has no USD row", date.Format("2006-01-02"))
	}

	written := 0
	for _, row := range rows {
		currency, err := s.repo.EnsureCurrency(ctx, row.Code, row.Name)
		if err != nil {
			return written, err
		}

		perUnit := row.Rate.Div(decimal.NewFromInt(row.Units))
		rateToUSD := perUnit.Div(usdPerBase).Round(ratePrecision)

		if err := s.repo.UpsertRate(ctx, currency.ID, date, rateToUSD); err != nil {
			return written, err
		}
		written++
	}

	log.Printf("[currency] Synced %d exchange rates for %s", written, currencydomain.DateOf(date).Format("2006-01-02"))
	return written, nil
}
