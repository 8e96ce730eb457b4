package pricing

import (
	"time"

	"github.com/Serhii-Leonenko/price-analyzer/domain/catalog"
)

// PriceSnapshot is one immutable observed price fact for a product at a
// store at a point in time. Snapshots are never updated or deleted by
// normal operation.
type PriceSnapshot struct {
	ID             uint  `gorm:"primarykey" json:"id"`
	ProductStoreID uint  `gorm:"not null;index:idx_snapshot_link_created,priority:1" json:"product_store_id"`
	PriceCents     int64 `gorm:"not null;check:price_cents >= 0" json:"price_cents"`

	ProductStore catalog.ProductStore `gorm:"foreignKey:ProductStoreID" json:"-"`

	CreatedAt time.Time `gorm:"index:idx_snapshot_link_created,priority:2" json:"created_at"`
}

// TableName returns the table name for PriceSnapshot model.
func (PriceSnapshot) TableName() string {
	return "price_snapshots"
}

// StorePrice is a product's most recent observed price at one store.
type StorePrice struct {
	StoreName  string `json:"store_name"`
	StoreSlug  string `json:"store_slug"`
	PriceCents int64  `json:"price_cents"`
}

// StorePriceHistory is one historical price point with store attribution.
type StorePriceHistory struct {
	StoreName  string    `json:"store_name"`
	StoreSlug  string    `json:"store_slug"`
	PriceCents int64     `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

// PriceRange is the min/max of today's per-store prices. Both fields are
// nil when no price was observed today.
type PriceRange struct {
	MinPriceCents *int64 `json:"min_price_cents"`
	MaxPriceCents *int64 `json:"max_price_cents"`
}
