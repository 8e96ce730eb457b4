package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	catalogdomain "github.com/Serhii-Leonenko/price-analyzer/domain/catalog"
	pricingdomain "github.com/Serhii-Leonenko/price-analyzer/domain/pricing"
)

// fakePriceFetcher returns canned prices or a fixed error.
type fakePriceFetcher struct {
	items []PriceItem
	err   error
}

func (f *fakePriceFetcher) Fetch(_ context.Context) ([]PriceItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

type syncFixture struct {
	db          *gorm.DB
	repo        *pricingdomain.Repository
	catalogRepo *catalogdomain.Repository
	store       *catalogdomain.Store
}

// setupSyncTest migrates both schemas and seeds one store with one linked
// product (external id 1).
func setupSyncTest(t *testing.T) *syncFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	catalogRepo := catalogdomain.NewRepository(db)
	require.NoError(t, catalogRepo.Migrate())
	repo := pricingdomain.NewRepository(db)
	require.NoError(t, repo.Migrate())

	ctx := context.Background()
	store, err := catalogRepo.EnsureStore(ctx, "dummyjson", "DummyJSON")
	require.NoError(t, err)

	_, err = catalogRepo.CreateProducts(ctx, []*catalogdomain.Product{{Name: "iPhone 15"}})
	require.NoError(t, err)
	products, err := catalogRepo.ListProducts(ctx, "")
	require.NoError(t, err)
	require.Len(t, products, 1)

	_, err = catalogRepo.CreateLinks(ctx, []*catalogdomain.ProductStore{
		{ProductID: products[0].ID, StoreID: store.ID, ExternalID: 1},
	})
	require.NoError(t, err)

	return &syncFixture{db: db, repo: repo, catalogRepo: catalogRepo, store: store}
}

func (f *syncFixture) snapshotCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&pricingdomain.PriceSnapshot{}).Count(&count).Error)
	return count
}

func TestSyncService_WritesSnapshotsInCents(t *testing.T) {
	f := setupSyncTest(t)

	fetchers := map[string]PriceFetcher{
		"dummyjson": &fakePriceFetcher{items: []PriceItem{
			{ExternalID: 1, Price: decimal.RequireFromString("19.999")},
		}},
	}

	sync := NewSyncService(f.repo, f.catalogRepo, fetchers, 2)
	written, err := sync.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	var snapshot pricingdomain.PriceSnapshot
	require.NoError(t, f.db.First(&snapshot).Error)
	assert.Equal(t, int64(1999), snapshot.PriceCents, "cents truncate toward zero")
}

func TestSyncService_DropsUnlinkedExternalIDs(t *testing.T) {
	f := setupSyncTest(t)

	fetchers := map[string]PriceFetcher{
		"dummyjson": &fakePriceFetcher{items: []PriceItem{
			{ExternalID: 1, Price: decimal.RequireFromString("10.00")},
			{ExternalID: 999, Price: decimal.RequireFromString("5.00")},
		}},
	}

	sync := NewSyncService(f.repo, f.catalogRepo, fetchers, 2)
	written, err := sync.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, written, "unlinked external ids are dropped")
	assert.Equal(t, int64(1), f.snapshotCount(t), "no orphan snapshots")
}

func TestSyncService_PartialStoreFailure(t *testing.T) {
	f := setupSyncTest(t)
	ctx := context.Background()

	other, err := f.catalogRepo.EnsureStore(ctx, "fakestore", "Fake Store")
	require.NoError(t, err)
	products, err := f.catalogRepo.ListProducts(ctx, "")
	require.NoError(t, err)
	_, err = f.catalogRepo.CreateLinks(ctx, []*catalogdomain.ProductStore{
		{ProductID: products[0].ID, StoreID: other.ID, ExternalID: 7},
	})
	require.NoError(t, err)

	fetchers := map[string]PriceFetcher{
		"dummyjson": &fakePriceFetcher{err: errors.New("upstream 502")},
		"fakestore": &fakePriceFetcher{items: []PriceItem{
			{ExternalID: 7, Price: decimal.RequireFromString("12.50")},
		}},
	}

	sync := NewSyncService(f.repo, f.catalogRepo, fetchers, 2)
	written, err := sync.Execute(ctx)
	require.NoError(t, err, "single store failure must not fail the run")
	assert.Equal(t, 1, written)
}

func TestSyncService_NoFetcherRegistered(t *testing.T) {
	f := setupSyncTest(t)

	sync := NewSyncService(f.repo, f.catalogRepo, map[string]PriceFetcher{}, 2)
	written, err := sync.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, written)
}
