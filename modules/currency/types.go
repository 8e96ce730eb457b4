package currency

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SyncRatesRequest is the request for running an exchange rate sync. Date
// is an optional reference date as 2006-01-02; empty means today.
type SyncRatesRequest struct {
	Date string `json:"date,omitempty"`
}

// SyncRatesResponse reports how many rates the run wrote.
type SyncRatesResponse struct {
	RatesWritten int `json:"rates_written"`
}

// ConvertRequest is the request for converting a USD cent amount.
type ConvertRequest struct {
	Cents        int64     `json:"cents"`
	CurrencyCode string    `json:"currency_code"`
	Date         time.Time `json:"date"`
}

// ConvertResponse carries the converted amount. Amount is nil when no
// usable rate exists for the requested currency and date.
type ConvertResponse struct {
	Amount       *decimal.Decimal `json:"amount"`
	CurrencyCode string           `json:"currency_code"`
}

// CurrencyPort is the interface other modules use to reach currency services.
type CurrencyPort interface {
	SyncRates(ctx context.Context) (*SyncRatesResponse, error)
	Convert(ctx context.Context, cents int64, code string, date time.Time) (*ConvertResponse, error)
}
