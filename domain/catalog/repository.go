package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a product is not found.
var ErrNotFound = errors.New("product not found")

const batchSize = 1000

// Repository provides database operations for stores, products and
// product-store links.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate runs database migrations for the catalog tables.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&Store{}, &Product{}, &ProductStore{})
}

// Transaction runs fn inside a database transaction, giving it a
// repository bound to the transaction connection.
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// EnsureStore creates a store with the given slug if it does not exist yet
// and returns it.
func (r *Repository) EnsureStore(ctx context.Context, slug, name string) (*Store, error) {
	store := Store{Slug: slug, Name: name}
	if err := r.db.WithContext(ctx).Where(Store{Slug: slug}).FirstOrCreate(&store).Error; err != nil {
		return nil, fmt.Errorf("failed to ensure store %q: %w", slug, err)
	}
	return &store, nil
}

// ListStores retrieves all stores ordered by slug.
func (r *Repository) ListStores(ctx context.Context) ([]Store, error) {
	var stores []Store
	if err := r.db.WithContext(ctx).Order("slug ASC").Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return stores, nil
}

// GetProduct retrieves a product by its ID.
func (r *Repository) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// ListProducts retrieves products ordered by name, optionally filtered by a
// case-insensitive name substring.
func (r *Repository) ListProducts(ctx context.Context, search string) ([]Product, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var products []Product
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ExistingProductNames returns which of names already exist as products.
func (r *Repository) ExistingProductNames(ctx context.Context, names []string) (map[string]bool, error) {
	if len(names) == 0 {
		return map[string]bool{}, nil
	}

	var existing []string
	err := r.db.WithContext(ctx).
		Model(&Product{}).
		Where("name IN ?", names).
		Pluck("name", &existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query existing product names: %w", err)
	}

	byName := make(map[string]bool, len(existing))
	for _, name := range existing {
		byName[name] = true
	}
	return byName, nil
}

// CreateProducts bulk-inserts products, ignoring rows that conflict on the
// unique product name. Returns the number of rows actually inserted.
func (r *Repository) CreateProducts(ctx context.Context, products []*Product) (int64, error) {
	if len(products) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(products, batchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to create products: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ProductsMissingLink returns the products among names that do not yet have
// a ProductStore row for the given store.
func (r *Repository) ProductsMissingLink(ctx context.Context, storeID uint, names []string) ([]Product, error) {
	if len(names) == 0 {
		return nil, nil
	}

	var products []Product
	err := r.db.WithContext(ctx).
		Where("name IN ?", names).
		Where("id NOT IN (?)", r.db.
			Model(&ProductStore{}).
			Select("product_id").
			Where("store_id = ?", storeID)).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find unlinked products: %w", err)
	}
	return products, nil
}

// CreateLinks bulk-inserts product-store links, ignoring rows that conflict
// on the (product, store) unique key. Returns the number of rows actually
// inserted.
func (r *Repository) CreateLinks(ctx context.Context, links []*ProductStore) (int64, error) {
	if len(links) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(links, batchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to create product-store links: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// LinksByExternalIDs resolves a store's external ids to existing
// ProductStore rows, keyed by external id. External ids with no link are
// simply absent from the result.
func (r *Repository) LinksByExternalIDs(ctx context.Context, storeID uint, externalIDs []int64) (map[int64]ProductStore, error) {
	if len(externalIDs) == 0 {
		return map[int64]ProductStore{}, nil
	}

	var links []ProductStore
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND external_id IN ?", storeID, externalIDs).
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve external ids: %w", err)
	}

	byExternalID := make(map[int64]ProductStore, len(links))
	for _, link := range links {
		byExternalID[link.ExternalID] = link
	}
	return byExternalID, nil
}
