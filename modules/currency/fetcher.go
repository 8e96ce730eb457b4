package currency

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Serhii-Leonenko/price-analyzer/pkg/storefetch"
)

// RateRow is one currency row from the central bank rate table. Rate is
// quoted in the bank's base currency per Units of the foreign currency.
type RateRow struct {
	Code  string
	Name  string
	Rate  decimal.Decimal
	Units int64
}

// RateFetcher retrieves the official rate table for a given date.
type RateFetcher interface {
	Fetch(ctx context.Context, date time.Time) ([]RateRow, error)
}

// NBUFetcher reads the National Bank of Ukraine statdirectory exchange
// endpoint: [{"cc": "USD", "txt": "US Dollar", "rate": 41.2, "units": 1}].
type NBUFetcher struct {
	client  *storefetch.Client
	baseURL string
}

// NewNBUFetcher creates a fetcher against the given endpoint URL.
func NewNBUFetcher(baseURL string, timeout time.Duration) *NBUFetcher {
	return &NBUFetcher{
		client:  storefetch.NewClient(timeout),
		baseURL: baseURL,
	}
}

type nbuRateRow struct {
	Code  string          `json:"cc"`
	Name  string          `json:"txt"`
	Rate  decimal.Decimal `json:"rate"`
	Units int64           `json:"units"`
}

// Fetch retrieves the rate table for the given date. The endpoint expects
// the date as YYYYMMDD and serves the last published table for that day.
func (f *NBUFetcher) Fetch(ctx context.Context, date time.Time) ([]RateRow, error) {
	query := url.Values{}
	query.Set("json", "")
	query.Set("date", date.Format("20060102"))

	var payload []nbuRateRow
	if err := f.client.GetJSON(ctx, fmt.Sprintf("%s?%s", f.baseURL, query.Encode()), &payload); err != nil {
		return nil, err
	}

	rows := make([]RateRow, 0, len(payload))
	for _, row := range payload {
		units := row.Units
		if units <= 0 {
			units = 1
		}
		rows = append(rows, RateRow{
			Code:  row.Code,
			Name:  row.Name,
			Rate:  row.Rate,
			Units: units,
		})
	}
	return rows, nil
}
