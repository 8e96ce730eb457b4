package pricing

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	catalogdomain "github.com/Serhii-Leonenko/price-analyzer/domain/catalog"
	pricingdomain "github.com/Serhii-Leonenko/price-analyzer/domain/pricing"
	"github.com/Serhii-Leonenko/price-analyzer/pkg/money"
	"github.com/Serhii-Leonenko/price-analyzer/pkg/storefetch"
)

// DefaultConcurrency bounds the number of store fetches in flight.
const DefaultConcurrency = 10

// SyncService records current store prices as immutable snapshots. Fetched
// external ids that have no product-store link are silently dropped: a
// catalog import must precede a price sync for an item to be recorded.
type SyncService struct {
	repo        *pricingdomain.Repository
	catalogRepo *catalogdomain.Repository
	fetchers    map[string]PriceFetcher
	concurrency int
}

// NewSyncService creates a price sync job over the given fetcher registry.
// A non-positive concurrency falls back to DefaultConcurrency.
func NewSyncService(repo *pricingdomain.Repository, catalogRepo *catalogdomain.Repository, fetchers map[string]PriceFetcher, concurrency int) *SyncService {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &SyncService{
		repo:        repo,
		catalogRepo: catalogRepo,
		fetchers:    fetchers,
		concurrency: concurrency,
	}
}

type priceFetchResult struct {
	store catalogdomain.Store
	items []PriceItem
}

// Execute fetches all stores' current prices concurrently and bulk-inserts
// snapshots, returning how many were written. One store's fetch or
// persistence failure is logged and skipped; the other stores still land.
func (s *SyncService) Execute(ctx context.Context) (int, error) {
	stores, err := s.catalogRepo.ListStores(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, result := range s.fetchAll(ctx, stores) {
		written, err := s.addSnapshots(ctx, result.store, result.items)
		if err != nil {
			log.Printf("[pricing] Failed to persist prices for store %s: %v", result.store.Slug, err)
			continue
		}
		total += int(written)
	}
	return total, nil
}

func (s *SyncService) fetchAll(ctx context.Context, stores []catalogdomain.Store) []priceFetchResult {
	var (
		mu      sync.Mutex
		results []priceFetchResult
	)

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)

	for _, store := range stores {
		store := store
		g.Go(func() error {
			fetcher, ok := s.fetchers[store.Slug]
			if !ok {
				log.Printf("[pricing] No price fetcher registered for store %s, skipping", store.Slug)
				return nil
			}

			items, err := fetcher.Fetch(ctx)
			if err != nil {
				log.Printf("[pricing] %v", storefetch.NewError(store.Slug, err))
				return nil
			}

			mu.Lock()
			results = append(results, priceFetchResult{store: store, items: items})
			mu.Unlock()
			return nil
		})
	}

	g.Wait()
	return results
}

// addSnapshots resolves one store's fetched external ids against existing
// product-store links and bulk-inserts snapshots for the matches. Prices
// are converted to cents truncating toward zero.
func (s *SyncService) addSnapshots(ctx context.Context, store catalogdomain.Store, items []PriceItem) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	externalIDs := make([]int64, 0, len(items))
	for _, item := range items {
		externalIDs = append(externalIDs, item.ExternalID)
	}

	links, err := s.catalogRepo.LinksByExternalIDs(ctx, store.ID, externalIDs)
	if err != nil {
		return 0, err
	}

	snapshots := make([]*pricingdomain.PriceSnapshot, 0, len(items))
	for _, item := range items {
		link, ok := links[item.ExternalID]
		if !ok {
			continue
		}
		snapshots = append(snapshots, &pricingdomain.PriceSnapshot{
			ProductStoreID: link.ID,
			PriceCents:     money.USDToCents(item.Price),
		})
	}

	return s.repo.CreateSnapshots(ctx, snapshots)
}
