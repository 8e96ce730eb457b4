package pricing

import (
	"context"
	"time"

	pricingdomain "github.com/Serhii-Leonenko/price-analyzer/domain/pricing"
)

// Trend classifies today's price midpoint against the 30-day average.
type Trend string

// Trend values.
const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendStable  Trend = "stable"
	TrendUnknown Trend = "unknown"
)

// averageWindow is the trailing window for the rolling price average.
const averageWindow = 30 * 24 * time.Hour

// QueryService computes price analytics over stored snapshots. It is
// stateless and read-only; everything is computed on demand.
type QueryService struct {
	repo *pricingdomain.Repository
	now  func() time.Time
}

// NewQueryService creates an analytics query service.
func NewQueryService(repo *pricingdomain.Repository) *QueryService {
	return &QueryService{repo: repo, now: time.Now}
}

// TodayPrices returns, per store, the most recent snapshot of the product
// observed since local midnight. At most one entry per store.
func (s *QueryService) TodayPrices(ctx context.Context, productID uint) ([]pricingdomain.StorePrice, error) {
	return s.repo.LatestPerStoreSince(ctx, productID, startOfDay(s.now()))
}

// PriceRangeToday returns the min/max cents across today's per-store
// prices; both nil when nothing was observed today.
func (s *QueryService) PriceRangeToday(ctx context.Context, productID uint) (pricingdomain.PriceRange, error) {
	prices, err := s.TodayPrices(ctx, productID)
	if err != nil {
		return pricingdomain.PriceRange{}, err
	}
	if len(prices) == 0 {
		return pricingdomain.PriceRange{}, nil
	}

	min, max := prices[0].PriceCents, prices[0].PriceCents
	for _, price := range prices[1:] {
		if price.PriceCents < min {
			min = price.PriceCents
		}
		if price.PriceCents > max {
			max = price.PriceCents
		}
	}
	return pricingdomain.PriceRange{MinPriceCents: &min, MaxPriceCents: &max}, nil
}

// AverageLast30Days returns the integer average of all the product's
// snapshot prices in the trailing 30-day window, or nil if there are none.
func (s *QueryService) AverageLast30Days(ctx context.Context, productID uint) (*int64, error) {
	return s.repo.AverageCentsSince(ctx, productID, s.now().Add(-averageWindow))
}

// GetTrend classifies the product's price movement by comparing the
// midpoint of today's min/max against the 30-day average. A tie is stable;
// if either input is unavailable the trend is unknown.
func (s *QueryService) GetTrend(ctx context.Context, productID uint) (Trend, error) {
	priceRange, err := s.PriceRangeToday(ctx, productID)
	if err != nil {
		return TrendUnknown, err
	}
	avg, err := s.AverageLast30Days(ctx, productID)
	if err != nil {
		return TrendUnknown, err
	}

	if avg == nil || priceRange.MinPriceCents == nil {
		return TrendUnknown, nil
	}

	todayMidpoint := float64(*priceRange.MinPriceCents+*priceRange.MaxPriceCents) / 2

	switch {
	case todayMidpoint > float64(*avg):
		return TrendUp, nil
	case todayMidpoint < float64(*avg):
		return TrendDown, nil
	default:
		return TrendStable, nil
	}
}

// History returns the product's full snapshot history with store
// attribution, oldest first.
func (s *QueryService) History(ctx context.Context, productID uint) ([]pricingdomain.StorePriceHistory, error) {
	return s.repo.History(ctx, productID)
}

// startOfDay returns local midnight for t.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
