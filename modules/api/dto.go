package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// ErrorResponse is the error body for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ProductListItem is one row of the product list. Price bounds are in the
// requested currency and null when no price was observed today or the
// conversion is unavailable.
type ProductListItem struct {
	ID       uint             `json:"id"`
	Name     string           `json:"name"`
	PriceMin *decimal.Decimal `json:"price_min"`
	PriceMax *decimal.Decimal `json:"price_max"`
	Trend    string           `json:"trend"`
	Currency string           `json:"currency"`
}

// ProductDetail is the single product response.
type ProductDetail struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	PriceMin    *decimal.Decimal `json:"price_min"`
	PriceMax    *decimal.Decimal `json:"price_max"`
	Currency    string           `json:"currency"`
}

// StorePrice is one store's price in the requested currency.
type StorePrice struct {
	Store     string           `json:"store"`
	StoreSlug string           `json:"store_slug"`
	Price     *decimal.Decimal `json:"price"`
}

// HistoryPoint is one historical price observation.
type HistoryPoint struct {
	Store     string           `json:"store"`
	StoreSlug string           `json:"store_slug"`
	Price     *decimal.Decimal `json:"price"`
	CreatedAt time.Time        `json:"created_at"`
}

// DailyAverage is the mean of all converted prices observed on one day.
type DailyAverage struct {
	Price decimal.Decimal `json:"price"`
	Date  string          `json:"date"`
}

// PriceHistoryResponse is the price history endpoint body.
type PriceHistoryResponse struct {
	History        []HistoryPoint `json:"history"`
	AverageHistory []DailyAverage `json:"average_history"`
}

// CreateAlertBody is the request body for creating an alert. TargetPrice
// is in US dollars.
type CreateAlertBody struct {
	UserID      string          `json:"user_id"`
	Email       string          `json:"email"`
	ProductID   uint            `json:"product_id"`
	TargetPrice decimal.Decimal `json:"target_price"`
	Currency    string          `json:"currency"`
}

// AlertBody is the stored alert returned to clients.
type AlertBody struct {
	ID               uint       `json:"id"`
	UserID           string     `json:"user_id"`
	ProductID        uint       `json:"product_id"`
	TargetPriceCents int64      `json:"target_price_cents"`
	CurrencyCode     string     `json:"currency_code"`
	IsActive         bool       `json:"is_active"`
	TriggeredAt      *time.Time `json:"triggered_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

// AlertListResponse lists a user's alerts.
type AlertListResponse struct {
	Alerts []AlertBody `json:"alerts"`
	Total  int         `json:"total"`
}
