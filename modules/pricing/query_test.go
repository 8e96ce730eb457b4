package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/Serhii-Leonenko/price-analyzer/domain/catalog"
	pricingdomain "github.com/Serhii-Leonenko/price-analyzer/domain/pricing"
)

type queryFixture struct {
	*syncFixture
	query     *QueryService
	productID uint
	linkID    uint
	now       time.Time
}

// setupQueryTest builds on the sync fixture with a pinned clock so "today"
// is deterministic.
func setupQueryTest(t *testing.T) *queryFixture {
	t.Helper()

	f := setupSyncTest(t)
	ctx := context.Background()

	products, err := f.catalogRepo.ListProducts(ctx, "")
	require.NoError(t, err)
	require.Len(t, products, 1)

	links, err := f.catalogRepo.LinksByExternalIDs(ctx, f.store.ID, []int64{1})
	require.NoError(t, err)
	link, ok := links[1]
	require.True(t, ok)

	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.Local)
	query := NewQueryService(f.repo)
	query.now = func() time.Time { return now }

	return &queryFixture{
		syncFixture: f,
		query:       query,
		productID:   products[0].ID,
		linkID:      link.ID,
		now:         now,
	}
}

// seedSnapshot inserts a snapshot with an explicit observation time.
func (f *queryFixture) seedSnapshot(t *testing.T, linkID uint, cents int64, at time.Time) {
	t.Helper()
	snapshot := pricingdomain.PriceSnapshot{
		ProductStoreID: linkID,
		PriceCents:     cents,
		CreatedAt:      at,
	}
	require.NoError(t, f.db.Create(&snapshot).Error)
}

// addStoreLink links the fixture product to a new store and returns the
// link id.
func (f *queryFixture) addStoreLink(t *testing.T, slug, name string, externalID int64) uint {
	t.Helper()
	ctx := context.Background()

	store, err := f.catalogRepo.EnsureStore(ctx, slug, name)
	require.NoError(t, err)
	_, err = f.catalogRepo.CreateLinks(ctx, []*catalogdomain.ProductStore{
		{ProductID: f.productID, StoreID: store.ID, ExternalID: externalID},
	})
	require.NoError(t, err)

	links, err := f.catalogRepo.LinksByExternalIDs(ctx, store.ID, []int64{externalID})
	require.NoError(t, err)
	return links[externalID].ID
}

func TestQueryService_PriceRangeToday(t *testing.T) {
	f := setupQueryTest(t)
	otherLink := f.addStoreLink(t, "fakestore", "Fake Store", 7)

	f.seedSnapshot(t, f.linkID, 1000, f.now.Add(-time.Hour))
	f.seedSnapshot(t, otherLink, 1500, f.now.Add(-2*time.Hour))
	// Yesterday's snapshot must not count.
	f.seedSnapshot(t, f.linkID, 1, f.now.Add(-24*time.Hour))

	priceRange, err := f.query.PriceRangeToday(context.Background(), f.productID)
	require.NoError(t, err)
	require.NotNil(t, priceRange.MinPriceCents)
	require.NotNil(t, priceRange.MaxPriceCents)
	assert.Equal(t, int64(1000), *priceRange.MinPriceCents)
	assert.Equal(t, int64(1500), *priceRange.MaxPriceCents)
}

func TestQueryService_PriceRangeToday_Empty(t *testing.T) {
	f := setupQueryTest(t)

	priceRange, err := f.query.PriceRangeToday(context.Background(), f.productID)
	require.NoError(t, err)
	assert.Nil(t, priceRange.MinPriceCents)
	assert.Nil(t, priceRange.MaxPriceCents)
}

func TestQueryService_TodayPrices_LatestPerStore(t *testing.T) {
	f := setupQueryTest(t)

	f.seedSnapshot(t, f.linkID, 1000, f.now.Add(-3*time.Hour))
	f.seedSnapshot(t, f.linkID, 1200, f.now.Add(-time.Hour))

	prices, err := f.query.TodayPrices(context.Background(), f.productID)
	require.NoError(t, err)
	require.Len(t, prices, 1, "one entry per store")
	assert.Equal(t, int64(1200), prices[0].PriceCents, "latest snapshot wins")
	assert.Equal(t, "dummyjson", prices[0].StoreSlug)
}

func TestQueryService_GetTrend(t *testing.T) {
	tests := []struct {
		name       string
		today      []int64
		historical []int64
		want       Trend
	}{
		{"up when midpoint above average", []int64{1100, 1300}, []int64{1000}, TrendUp},
		{"down when midpoint below average", []int64{800, 900}, []int64{1000}, TrendDown},
		{"stable on exact tie", []int64{900, 1100}, []int64{1000}, TrendStable},
		{"unknown with no data", nil, nil, TrendUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupQueryTest(t)

			for _, cents := range tt.historical {
				f.seedSnapshot(t, f.linkID, cents, f.now.Add(-10*24*time.Hour))
			}
			for i, cents := range tt.today {
				f.seedSnapshot(t, f.linkID, cents, f.now.Add(-time.Duration(i+1)*time.Hour))
			}

			// The range uses the latest snapshot per store; spread today's
			// prices across distinct stores so min and max both survive.
			if len(tt.today) == 2 {
				otherLink := f.addStoreLink(t, "fakestore", "Fake Store", 7)
				var moved pricingdomain.PriceSnapshot
				require.NoError(t, f.db.Where("price_cents = ?", tt.today[1]).First(&moved).Error)
				require.NoError(t, f.db.Model(&moved).Update("product_store_id", otherLink).Error)
			}

			trend, err := f.query.GetTrend(context.Background(), f.productID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, trend)
		})
	}
}

func TestQueryService_GetTrend_NoTodayPrices(t *testing.T) {
	f := setupQueryTest(t)

	// Historical data exists but nothing today.
	f.seedSnapshot(t, f.linkID, 1000, f.now.Add(-10*24*time.Hour))

	trend, err := f.query.GetTrend(context.Background(), f.productID)
	require.NoError(t, err)
	assert.Equal(t, TrendUnknown, trend)
}

func TestQueryService_History_OldestFirst(t *testing.T) {
	f := setupQueryTest(t)

	f.seedSnapshot(t, f.linkID, 1200, f.now.Add(-time.Hour))
	f.seedSnapshot(t, f.linkID, 1000, f.now.Add(-48*time.Hour))

	history, err := f.query.History(context.Background(), f.productID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(1000), history[0].PriceCents)
	assert.Equal(t, int64(1200), history[1].PriceCents)
}
