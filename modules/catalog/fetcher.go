package catalog

import (
	"context"
	"time"

	"github.com/Serhii-Leonenko/price-analyzer/pkg/storefetch"
)

// CatalogItem is one product row returned by a store's catalog endpoint.
type CatalogItem struct {
	ExternalID  int64
	Name        string
	Description string
}

// Fetcher retrieves a store's full product catalog. Implementations do not
// retry; retry policy belongs to the caller.
type Fetcher interface {
	Fetch(ctx context.Context) ([]CatalogItem, error)
}

// DummyJSONFetcher reads the dummyjson.com catalog shape:
// {"products": [{"id": 1, "title": "...", "description": "..."}]}.
type DummyJSONFetcher struct {
	client *storefetch.Client
	url    string
}

// NewDummyJSONFetcher creates a fetcher against the given catalog URL.
func NewDummyJSONFetcher(url string, timeout time.Duration) *DummyJSONFetcher {
	return &DummyJSONFetcher{
		client: storefetch.NewClient(timeout),
		url:    url,
	}
}

type dummyJSONCatalogItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type dummyJSONCatalog struct {
	Products []dummyJSONCatalogItem `json:"products"`
}

// Fetch retrieves the full catalog. limit=0 asks the API for every product.
func (f *DummyJSONFetcher) Fetch(ctx context.Context) ([]CatalogItem, error) {
	var payload dummyJSONCatalog
	if err := f.client.GetJSON(ctx, f.url+"?limit=0", &payload); err != nil {
		return nil, err
	}

	items := make([]CatalogItem, 0, len(payload.Products))
	for _, item := range payload.Products {
		items = append(items, CatalogItem{
			ExternalID:  item.ID,
			Name:        item.Title,
			Description: item.Description,
		})
	}
	return items, nil
}

// FakeStoreFetcher reads the fakestoreapi.com catalog shape:
// [{"id": 1, "title": "...", "description": "..."}].
type FakeStoreFetcher struct {
	client *storefetch.Client
	url    string
}

// NewFakeStoreFetcher creates a fetcher against the given catalog URL.
func NewFakeStoreFetcher(url string, timeout time.Duration) *FakeStoreFetcher {
	return &FakeStoreFetcher{
		client: storefetch.NewClient(timeout),
		url:    url,
	}
}

type fakeStoreCatalogItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Fetch retrieves the full catalog.
func (f *FakeStoreFetcher) Fetch(ctx context.Context) ([]CatalogItem, error) {
	var payload []fakeStoreCatalogItem
	if err := f.client.GetJSON(ctx, f.url, &payload); err != nil {
		return nil, err
	}

	items := make([]CatalogItem, 0, len(payload))
	for _, item := range payload {
		items = append(items, CatalogItem{
			ExternalID:  item.ID,
			Name:        item.Title,
			Description: item.Description,
		})
	}
	return items, nil
}
