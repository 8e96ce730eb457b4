package pricing

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const batchSize = 1000

// Repository provides database operations for price snapshots.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new pricing repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate runs database migrations for the price snapshot table.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&PriceSnapshot{})
}

// CreateSnapshots bulk-inserts price snapshots, ignoring conflicting rows.
// Returns the number of rows actually inserted.
func (r *Repository) CreateSnapshots(ctx context.Context, snapshots []*PriceSnapshot) (int64, error) {
	if len(snapshots) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(snapshots, batchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to create price snapshots: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// snapshotRow is the scan target for joined snapshot queries.
type snapshotRow struct {
	StoreName  string
	StoreSlug  string
	PriceCents int64
	CreatedAt  time.Time
}

// LatestPerStoreSince returns, for each store, the most recent snapshot of
// the product observed at or after since. At most one row per store,
// ordered by store slug.
func (r *Repository) LatestPerStoreSince(ctx context.Context, productID uint, since time.Time) ([]StorePrice, error) {
	var rows []snapshotRow
	err := r.db.WithContext(ctx).
		Table("price_snapshots AS ps").
		Select("s.name AS store_name, s.slug AS store_slug, ps.price_cents, ps.created_at").
		Joins("JOIN product_stores pst ON pst.id = ps.product_store_id").
		Joins("JOIN stores s ON s.id = pst.store_id").
		Where("pst.product_id = ? AND ps.created_at >= ?", productID, since).
		Order("s.slug ASC, ps.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query latest prices: %w", err)
	}

	// Rows come back newest-first within each store; keep the first per slug.
	prices := make([]StorePrice, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if seen[row.StoreSlug] {
			continue
		}
		seen[row.StoreSlug] = true
		prices = append(prices, StorePrice{
			StoreName:  row.StoreName,
			StoreSlug:  row.StoreSlug,
			PriceCents: row.PriceCents,
		})
	}
	return prices, nil
}

// AverageCentsSince returns the integer average of all the product's
// snapshot prices observed at or after cutoff, or nil if there are none.
func (r *Repository) AverageCentsSince(ctx context.Context, productID uint, cutoff time.Time) (*int64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).
		Table("price_snapshots AS ps").
		Select("AVG(ps.price_cents)").
		Joins("JOIN product_stores pst ON pst.id = ps.product_store_id").
		Where("pst.product_id = ? AND ps.created_at >= ?", productID, cutoff).
		Scan(&avg).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query average price: %w", err)
	}
	if avg == nil {
		return nil, nil
	}

	cents := int64(*avg)
	return &cents, nil
}

// History returns the product's full snapshot history with store
// attribution, oldest first.
func (r *Repository) History(ctx context.Context, productID uint) ([]StorePriceHistory, error) {
	var rows []snapshotRow
	err := r.db.WithContext(ctx).
		Table("price_snapshots AS ps").
		Select("s.name AS store_name, s.slug AS store_slug, ps.price_cents, ps.created_at").
		Joins("JOIN product_stores pst ON pst.id = ps.product_store_id").
		Joins("JOIN stores s ON s.id = pst.store_id").
		Where("pst.product_id = ?", productID).
		Order("ps.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}

	history := make([]StorePriceHistory, 0, len(rows))
	for _, row := range rows {
		history = append(history, StorePriceHistory{
			StoreName:  row.StoreName,
			StoreSlug:  row.StoreSlug,
			PriceCents: row.PriceCents,
			CreatedAt:  row.CreatedAt,
		})
	}
	return history, nil
}
