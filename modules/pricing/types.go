package pricing

import (
	"context"
	"time"
)

// SyncPricesRequest is the request for running a price sync.
type SyncPricesRequest struct{}

// SyncPricesResponse reports how many snapshots the run wrote.
type SyncPricesResponse struct {
	SnapshotsWritten int `json:"snapshots_written"`
}

// PriceRangeRequest is the request for a product's today price range.
type PriceRangeRequest struct {
	ProductID uint `json:"product_id"`
}

// PriceRangeResponse is the min/max of today's per-store prices; both nil
// when no price was observed today.
type PriceRangeResponse struct {
	MinPriceCents *int64 `json:"min_price_cents"`
	MaxPriceCents *int64 `json:"max_price_cents"`
}

// TodayPricesRequest is the request for a product's per-store prices today.
type TodayPricesRequest struct {
	ProductID uint `json:"product_id"`
}

// StorePriceResponse is one store's most recent price today.
type StorePriceResponse struct {
	StoreName  string `json:"store_name"`
	StoreSlug  string `json:"store_slug"`
	PriceCents int64  `json:"price_cents"`
}

// TodayPricesResponse lists today's per-store prices.
type TodayPricesResponse struct {
	Prices []StorePriceResponse `json:"prices"`
}

// TrendRequest is the request for a product's price trend.
type TrendRequest struct {
	ProductID uint `json:"product_id"`
}

// TrendResponse carries the trend classification.
type TrendResponse struct {
	Trend string `json:"trend"`
}

// HistoryRequest is the request for a product's full price history.
type HistoryRequest struct {
	ProductID uint `json:"product_id"`
}

// HistoryPointResponse is one historical price point.
type HistoryPointResponse struct {
	StoreName  string    `json:"store_name"`
	StoreSlug  string    `json:"store_slug"`
	PriceCents int64     `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryResponse lists the product's snapshots, oldest first.
type HistoryResponse struct {
	History []HistoryPointResponse `json:"history"`
}

// PricingPort is the interface other modules use to reach pricing services.
type PricingPort interface {
	SyncPrices(ctx context.Context) (*SyncPricesResponse, error)
	PriceRangeToday(ctx context.Context, productID uint) (*PriceRangeResponse, error)
	TodayPrices(ctx context.Context, productID uint) (*TodayPricesResponse, error)
	GetTrend(ctx context.Context, productID uint) (*TrendResponse, error)
	History(ctx context.Context, productID uint) (*HistoryResponse, error)
}
