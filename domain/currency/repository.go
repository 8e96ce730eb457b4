package currency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides database operations for currencies and exchange rates.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new currency repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate runs database migrations for the currency tables.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&Currency{}, &ExchangeRate{})
}

// EnsureCurrency creates a currency with the given code if it does not
// exist yet and returns it.
func (r *Repository) EnsureCurrency(ctx context.Context, code, name string) (*Currency, error) {
	currency := Currency{Code: code, Name: name}
	if err := r.db.WithContext(ctx).Where(Currency{Code: code}).FirstOrCreate(&currency).Error; err != nil {
		return nil, fmt.Errorf("failed to ensure currency %q: %w", code, err)
	}
	return &currency, nil
}

// UpsertRate writes the rate for (currency, date), updating the existing
// row if the same date was already synced.
func (r *Repository) UpsertRate(ctx context.Context, currencyID uint, date time.Time, rateToUSD decimal.Decimal) error {
	rate := ExchangeRate{
		CurrencyID: currencyID,
		RateToUSD:  rateToUSD,
		Date:       DateOf(date),
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "currency_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"rate_to_usd"}),
		}).
		Create(&rate).Error
	if err != nil {
		return fmt.Errorf("failed to upsert exchange rate: %w", err)
	}
	return nil
}

// LatestRateOnOrBefore returns the most recent exchange rate for the
// currency code dated on or before date, or nil if none exists. Future
// dated rates are never used.
func (r *Repository) LatestRateOnOrBefore(ctx context.Context, code string, date time.Time) (*ExchangeRate, error) {
	var rate ExchangeRate
	err := r.db.WithContext(ctx).
		Joins("JOIN currencies ON currencies.id = exchange_rates.currency_id").
		Where("currencies.code = ? AND exchange_rates.date <= ?", code, DateOf(date)).
		Order("exchange_rates.date DESC").
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query exchange rate: %w", err)
	}
	return &rate, nil
}
