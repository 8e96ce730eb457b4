package currency

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	currencydomain "github.com/Serhii-Leonenko/price-analyzer/domain/currency"
	"github.com/Serhii-Leonenko/price-analyzer/pkg/money"
)

// amountPrecision is the scale of converted amounts.
const amountPrecision = 2

// ConversionService converts stored USD cent amounts into other currencies
// using the most recent synced rate.
type ConversionService struct {
	repo *currencydomain.Repository
}

// NewConversionService creates a conversion service.
func NewConversionService(repo *currencydomain.Repository) *ConversionService {
	return &ConversionService{repo: repo}
}

// Convert converts cents of USD into the target currency using the latest
// rate dated on or before date. Returns nil when no usable rate exists;
// callers decide whether that is an error or a fallback to USD. Rounding is
// half away from zero at two decimal places.
func (s *ConversionService) Convert(ctx context.Context, cents int64, code string, date time.Time) (*decimal.Decimal, error) {
	amountUSD := money.CentsToUSD(cents)

	if code == "USD" {
		return &amountUSD, nil
	}

	rate, err := s.repo.LatestRateOnOrBefore(ctx, code, date)
	if err != nil {
		return nil, err
	}
	if rate == nil || rate.RateToUSD.IsZero() {
		return nil, nil
	}

	converted := amountUSD.Div(rate.RateToUSD).Round(amountPrecision)
	return &converted, nil
}
