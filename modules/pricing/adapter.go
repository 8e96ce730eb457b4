package pricing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// pricingAdapter wraps ServiceContainer for type-safe cross-module calls.
type pricingAdapter struct {
	container mono.ServiceContainer
}

// NewPricingAdapter creates an adapter over the pricing module's service
// container received via SetDependencyServiceContainer.
func NewPricingAdapter(container mono.ServiceContainer) PricingPort {
	if container == nil {
		panic("pricing adapter requires non-nil ServiceContainer")
	}
	return &pricingAdapter{container: container}
}

// SyncPrices runs a price sync via the sync-prices service.
func (a *pricingAdapter) SyncPrices(ctx context.Context) (*SyncPricesResponse, error) {
	req := SyncPricesRequest{}
	var resp SyncPricesResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "sync-prices",
		json.Marshal, json.Unmarshal,
		&req, &resp,
	); err != nil {
		return nil, fmt.Errorf("sync-prices service call failed: %w", err)
	}
	return &resp, nil
}

// PriceRangeToday fetches today's price range via the price-range service.
func (a *pricingAdapter) PriceRangeToday(ctx context.Context, productID uint) (*PriceRangeResponse, error) {
	req := PriceRangeRequest{ProductID: productID}
	var resp PriceRangeResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "price-range",
		json.Marshal, json.Unmarshal,
		&req, &resp,
	); err != nil {
		return nil, fmt.Errorf("price-range service call failed: %w", err)
	}
	return &resp, nil
}

// TodayPrices fetches today's per-store prices via the today-prices service.
func (a *pricingAdapter) TodayPrices(ctx context.Context, productID uint) (*TodayPricesResponse, error) {
	req := TodayPricesRequest{ProductID: productID}
	var resp TodayPricesResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "today-prices",
		json.Marshal, json.Unmarshal,
		&req, &resp,
	); err != nil {
		return nil, fmt.Errorf("today-prices service call failed: %w", err)
	}
	return &resp, nil
}

// GetTrend fetches the trend classification via the trend service.
func (a *pricingAdapter) GetTrend(ctx context.Context, productID uint) (*TrendResponse, error) {
	req := TrendRequest{ProductID: productID}
	var resp TrendResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "trend",
		json.Marshal, json.Unmarshal,
		&req, &resp,
	); err != nil {
		return nil, fmt.Errorf("trend service call failed: %w", err)
	}
	return &resp, nil
}

// History fetches the full price history via the history service.
func (a *pricingAdapter) History(ctx context.Context, productID uint) (*HistoryResponse, error) {
	req := HistoryRequest{ProductID: productID}
	var resp HistoryResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "history",
		json.Marshal, json.Unmarshal,
		&req, &resp,
	); err != nil {
		return nil, fmt.Errorf("history service call failed: %w", err)
	}
	return &resp, nil
}
