package currency

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is a tracked currency, keyed by its ISO-style code.
type Currency struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	Code      string `gorm:"size:10;not null;uniqueIndex" json:"code"`
	Name      string `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for Currency model.
func (Currency) TableName() string {
	return "currencies"
}

// ExchangeRate records that 1 USD was worth RateToUSD units of the currency
// as of Date. Rows are append-only per (currency, date); historical rows
// are never modified.
type ExchangeRate struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	CurrencyID uint            `gorm:"not null;uniqueIndex:uniq_currency_date" json:"currency_id"`
	RateToUSD  decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"rate_to_usd"`
	Date       time.Time       `gorm:"not null;uniqueIndex:uniq_currency_date;index" json:"date"`

	Currency Currency `gorm:"foreignKey:CurrencyID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for ExchangeRate model.
func (ExchangeRate) TableName() string {
	return "exchange_rates"
}

// DateOf truncates t to its UTC calendar date. Rate rows are keyed by this
// normalized value so (currency, date) uniqueness holds across time zones.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
