package pricing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Serhii-Leonenko/price-analyzer/pkg/storefetch"
)

// PriceItem is one current price row returned by a store's price endpoint.
type PriceItem struct {
	ExternalID int64
	Price      decimal.Decimal
}

// PriceFetcher retrieves a store's current prices. Implementations do not
// retry; retry policy belongs to the caller.
type PriceFetcher interface {
	Fetch(ctx context.Context) ([]PriceItem, error)
}

// DummyJSONPriceFetcher reads the dummyjson.com price shape:
// {"products": [{"id": 1, "price": 9.99}]}.
type DummyJSONPriceFetcher struct {
	client *storefetch.Client
	url    string
}

// NewDummyJSONPriceFetcher creates a fetcher against the given URL.
func NewDummyJSONPriceFetcher(url string, timeout time.Duration) *DummyJSONPriceFetcher {
	return &DummyJSONPriceFetcher{
		client: storefetch.NewClient(timeout),
		url:    url,
	}
}

type dummyJSONPriceItem struct {
	ID    int64           `json:"id"`
	Price decimal.Decimal `json:"price"`
}

type dummyJSONPrices struct {
	Products []dummyJSONPriceItem `json:"products"`
}

// Fetch retrieves current prices for the full catalog.
func (f *DummyJSONPriceFetcher) Fetch(ctx context.Context) ([]PriceItem, error) {
	var payload dummyJSONPrices
	if err := f.client.GetJSON(ctx, f.url+"?limit=0", &payload); err != nil {
		return nil, err
	}

	items := make([]PriceItem, 0, len(payload.Products))
	for _, item := range payload.Products {
		items = append(items, PriceItem{ExternalID: item.ID, Price: item.Price})
	}
	return items, nil
}

// FakeStorePriceFetcher reads the fakestoreapi.com price shape:
// [{"id": 1, "price": 9.99}].
type FakeStorePriceFetcher struct {
	client *storefetch.Client
	url    string
}

// NewFakeStorePriceFetcher creates a fetcher against the given URL.
func NewFakeStorePriceFetcher(url string, timeout time.Duration) *FakeStorePriceFetcher {
	return &FakeStorePriceFetcher{
		client: storefetch.NewClient(timeout),
		url:    url,
	}
}

type fakeStorePriceItem struct {
	ID    int64           `json:"id"`
	Price decimal.Decimal `json:"price"`
}

// Fetch retrieves current prices for the full catalog.
func (f *FakeStorePriceFetcher) Fetch(ctx context.Context) ([]PriceItem, error) {
	var payload []fakeStorePriceItem
	if err := f.client.GetJSON(ctx, f.url, &payload); err != nil {
		return nil, err
	}

	items := make([]PriceItem, 0, len(payload))
	for _, item := range payload {
		items = append(items, PriceItem{ExternalID: item.ID, Price: item.Price})
	}
	return items, nil
}
