package catalog

import "time"

// Store identifies an external catalog source. Immutable after creation
// except for the display name.
type Store struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	Slug      string `gorm:"size:50;not null;uniqueIndex" json:"slug"`
	Name      string `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for Store model.
func (Store) TableName() string {
	return "stores"
}

// Product is the canonical cross-store identity. Products are created once
// by the importer and never deleted by the pipeline. The name is the
// deduplication key across stores.
type Product struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Name        string `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the table name for Product model.
func (Product) TableName() string {
	return "products"
}

// ProductStore links a canonical product to a store-specific external
// identifier. Unique on (product, store).
type ProductStore struct {
	ID         uint  `gorm:"primarykey" json:"id"`
	ProductID  uint  `gorm:"not null;uniqueIndex:uniq_product_store" json:"product_id"`
	StoreID    uint  `gorm:"not null;uniqueIndex:uniq_product_store;index:idx_store_external,priority:1" json:"store_id"`
	ExternalID int64 `gorm:"not null;index:idx_store_external,priority:2" json:"external_id"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
	Store   Store   `gorm:"foreignKey:StoreID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for ProductStore model.
func (ProductStore) TableName() string {
	return "product_stores"
}
