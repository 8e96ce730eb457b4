package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// currencyAdapter wraps ServiceContainer for type-safe cross-module calls.
type currencyAdapter struct {
	container mono.ServiceContainer
}

// NewCurrencyAdapter creates an adapter over the currency module's service
// container received via SetDependencyServiceContainer.
func NewCurrencyAdapter(container mono.ServiceContainer) CurrencyPort {
	if container == nil {
		panic("currency adapter requires non-nil ServiceContainer")
	}
	return &currencyAdapter{container: container}
}

// SyncRates runs a rate sync via the sync-rates service.
func (a *currencyAdapter) SyncRates(ctx context.Context) (*SyncRatesResponse, error) {
	req := SyncRatesRequest{}
	var resp SyncRatesResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "sync-rates",
		json.Marshal, json.Unmarshal,
		&req, &resp,
	); err != nil {
		return nil, fmt.Errorf("sync-rates service call failed: %w", err)
	}
	return &resp, nil
}

// Convert converts a USD cent amount via the convert service.
func (a *currencyAdapter) Convert(ctx context.Context, cents int64, code string, date time.Time) (*ConvertResponse, error) {
	req := ConvertRequest{Cents: cents, CurrencyCode: code, Date: date}
	var resp ConvertResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "convert",
		json.Marshal, json.Unmarshal,
		&req, &resp,
	); err != nil {
		return nil, fmt.Errorf("convert service call failed: %w", err)
	}
	return &resp, nil
}
