package alert

import (
	"time"

	"github.com/Serhii-Leonenko/price-analyzer/domain/catalog"
)

// PriceAlert is a one-shot user alert that fires once the product's lowest
// observed price of the day drops to or below the target. A user has at
// most one live alert per product; re-creating replaces the prior target
// and reactivates it.
//
// The recipient address is captured at creation time: user accounts are
// managed outside this system.
type PriceAlert struct {
	ID               uint   `gorm:"primarykey" json:"id"`
	UserID           string `gorm:"size:36;not null;uniqueIndex:uniq_user_product" json:"user_id"`
	Email            string `gorm:"size:255;not null" json:"email"`
	ProductID        uint   `gorm:"not null;uniqueIndex:uniq_user_product" json:"product_id"`
	TargetPriceCents int64  `gorm:"not null" json:"target_price_cents"`
	CurrencyCode     string `gorm:"size:10;not null" json:"currency_code"`
	IsActive         bool   `gorm:"not null;default:true" json:"is_active"`
	TriggeredAt      *time.Time `json:"triggered_at"`

	Product catalog.Product `gorm:"foreignKey:ProductID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for PriceAlert model.
func (PriceAlert) TableName() string {
	return "price_alerts"
}
