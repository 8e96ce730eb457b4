package catalog

import (
	"context"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	catalogdomain "github.com/Serhii-Leonenko/price-analyzer/domain/catalog"
	"github.com/Serhii-Leonenko/price-analyzer/pkg/storefetch"
)

// DefaultConcurrency bounds the number of store fetches in flight.
const DefaultConcurrency = 10

// ImportService reconciles store catalogs against the canonical product
// table: it fetches every store's catalog concurrently, creates missing
// products and links them to store-specific external ids. A product name
// (trimmed) is the identity join key across stores, so two stores selling
// an identically named product share one canonical product row.
type ImportService struct {
	repo        *catalogdomain.Repository
	fetchers    map[string]Fetcher
	concurrency int
}

// NewImportService creates an importer over the given fetcher registry.
// A non-positive concurrency falls back to DefaultConcurrency.
func NewImportService(repo *catalogdomain.Repository, fetchers map[string]Fetcher, concurrency int) *ImportService {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &ImportService{
		repo:        repo,
		fetchers:    fetchers,
		concurrency: concurrency,
	}
}

type fetchResult struct {
	store catalogdomain.Store
	items []CatalogItem
}

// Execute imports all stores' catalogs and returns the number of
// newly-created product-store links. One store's fetch or persistence
// failure is logged and skipped; the other stores still land. Import
// across stores is not globally atomic.
func (s *ImportService) Execute(ctx context.Context) (int, error) {
	stores, err := s.repo.ListStores(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, result := range s.fetchAll(ctx, stores) {
		created, err := s.storeProducts(ctx, result.store, result.items)
		if err != nil {
			log.Printf("[catalog] Failed to persist products for store %s: %v", result.store.Slug, err)
			continue
		}
		total += int(created)
	}
	return total, nil
}

// fetchAll fans the fetchers out over the stores with bounded concurrency
// and collects the successful results. Fetch failures are logged, never
// propagated: the job must not abort on a single store.
func (s *ImportService) fetchAll(ctx context.Context, stores []catalogdomain.Store) []fetchResult {
	var (
		mu      sync.Mutex
		results []fetchResult
	)

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)

	for _, store := range stores {
		store := store
		g.Go(func() error {
			fetcher, ok := s.fetchers[store.Slug]
			if !ok {
				log.Printf("[catalog] No fetcher registered for store %s, skipping", store.Slug)
				return nil
			}

			items, err := fetcher.Fetch(ctx)
			if err != nil {
				log.Printf("[catalog] %v", storefetch.NewError(store.Slug, err))
				return nil
			}

			mu.Lock()
			results = append(results, fetchResult{store: store, items: items})
			mu.Unlock()
			return nil
		})
	}

	g.Wait()
	return results
}

// storeProducts reconciles one store's catalog inside a single
// transaction: missing products are created (name conflicts ignored), then
// fetched products without a link for this store get one. Returns the
// number of links created.
func (s *ImportService) storeProducts(ctx context.Context, store catalogdomain.Store, items []CatalogItem) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	itemsByName := make(map[string]CatalogItem, len(items))
	names := make([]string, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		if _, ok := itemsByName[name]; !ok {
			names = append(names, name)
		}
		itemsByName[name] = item
	}
	if len(names) == 0 {
		return 0, nil
	}

	var created int64
	err := s.repo.Transaction(ctx, func(tx *catalogdomain.Repository) error {
		existing, err := tx.ExistingProductNames(ctx, names)
		if err != nil {
			return err
		}

		var toCreate []*catalogdomain.Product
		for _, name := range names {
			if existing[name] {
				continue
			}
			toCreate = append(toCreate, &catalogdomain.Product{
				Name:        name,
				Description: itemsByName[name].Description,
			})
		}
		if _, err := tx.CreateProducts(ctx, toCreate); err != nil {
			return err
		}

		unlinked, err := tx.ProductsMissingLink(ctx, store.ID, names)
		if err != nil {
			return err
		}

		links := make([]*catalogdomain.ProductStore, 0, len(unlinked))
		for _, product := range unlinked {
			links = append(links, &catalogdomain.ProductStore{
				ProductID:  product.ID,
				StoreID:    store.ID,
				ExternalID: itemsByName[product.Name].ExternalID,
			})
		}

		created, err = tx.CreateLinks(ctx, links)
		return err
	})
	return created, err
}
