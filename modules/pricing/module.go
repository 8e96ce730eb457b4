// Package pricing records price snapshots and computes price analytics.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"

	catalogdomain "github.com/Serhii-Leonenko/price-analyzer/domain/catalog"
	pricingdomain "github.com/Serhii-Leonenko/price-analyzer/domain/pricing"
	"github.com/Serhii-Leonenko/price-analyzer/events"
	"github.com/Serhii-Leonenko/price-analyzer/pkg/storefetch"
)

// Module provides the price sync job and the analytics query services.
type Module struct {
	db       *gorm.DB
	repo     *pricingdomain.Repository
	sync     *SyncService
	query    *QueryService
	fetchers map[string]PriceFetcher
	eventBus mono.EventBus
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.DependentModule = (*Module)(nil)
var _ mono.EventEmitterModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the pricing module over a shared database connection.
func NewModule(db *gorm.DB) *Module {
	fetchers := map[string]PriceFetcher{
		"dummyjson": NewDummyJSONPriceFetcher(
			getEnv("STORE_API_DUMMYJSON", "https://dummyjson.com/products"),
			storefetch.DefaultTimeout,
		),
		"fakestore": NewFakeStorePriceFetcher(
			getEnv("STORE_API_FAKESTORE", "https://fakestoreapi.com/products"),
			storefetch.DefaultTimeout,
		),
	}
	return &Module{db: db, fetchers: fetchers}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "pricing"
}

// Dependencies orders pricing after catalog: snapshots reference
// product-store links, so the catalog tables must exist first.
func (m *Module) Dependencies() []string {
	return []string{"catalog"}
}

// SetDependencyServiceContainer receives dependency containers. Pricing
// reads the catalog tables directly through the shared database, so the
// dependency exists for start ordering only.
func (m *Module) SetDependencyServiceContainer(_ string, _ mono.ServiceContainer) {}

// SetEventBus receives the application event bus.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares which events this module publishes.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.PriceSyncCompletedV1.ToBase(),
	}
}

// RegisterServices registers the pricing request-reply services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "sync-prices", json.Unmarshal, json.Marshal, m.syncPrices,
	); err != nil {
		return fmt.Errorf("failed to register sync-prices service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "price-range", json.Unmarshal, json.Marshal, m.priceRange,
	); err != nil {
		return fmt.Errorf("failed to register price-range service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "today-prices", json.Unmarshal, json.Marshal, m.todayPrices,
	); err != nil {
		return fmt.Errorf("failed to register today-prices service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "trend", json.Unmarshal, json.Marshal, m.trend,
	); err != nil {
		return fmt.Errorf("failed to register trend service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "history", json.Unmarshal, json.Marshal, m.history,
	); err != nil {
		return fmt.Errorf("failed to register history service: %w", err)
	}

	log.Printf("[pricing] Registered services: services.pricing.{sync-prices,price-range,today-prices,trend,history}")
	return nil
}

// Start migrates the snapshot table and wires the services.
func (m *Module) Start(_ context.Context) error {
	m.repo = pricingdomain.NewRepository(m.db)
	if err := m.repo.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate pricing tables: %w", err)
	}

	catalogRepo := catalogdomain.NewRepository(m.db)
	m.sync = NewSyncService(m.repo, catalogRepo, m.fetchers, DefaultConcurrency)
	m.query = NewQueryService(m.repo)

	log.Println("[pricing] Module started")
	return nil
}

// Stop stops the module. The shared database connection is owned by main.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[pricing] Module stopped")
	return nil
}

// Health reports whether the backing database is reachable.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("failed to get sql.DB: %v", err)}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("database ping failed: %v", err)}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

// syncPrices handles the pricing.sync-prices service request. After a run
// it publishes PriceSyncCompleted so alert evaluation can chain off it
// without being awaited here.
func (m *Module) syncPrices(ctx context.Context, _ SyncPricesRequest, _ *mono.Msg) (SyncPricesResponse, error) {
	written, err := m.sync.Execute(ctx)
	if err != nil {
		return SyncPricesResponse{}, fmt.Errorf("price sync failed: %w", err)
	}

	log.Printf("[pricing] Sync run wrote %d price snapshots", written)

	if m.eventBus != nil {
		event := events.PriceSyncCompletedEvent{
			SnapshotsWritten: written,
			CompletedAt:      time.Now(),
		}
		if err := events.PriceSyncCompletedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[pricing] Warning: failed to publish PriceSyncCompleted event: %v", err)
		}
	}

	return SyncPricesResponse{SnapshotsWritten: written}, nil
}

// priceRange handles the pricing.price-range service request.
func (m *Module) priceRange(ctx context.Context, req PriceRangeRequest, _ *mono.Msg) (PriceRangeResponse, error) {
	if req.ProductID == 0 {
		return PriceRangeResponse{}, fmt.Errorf("product_id is required")
	}

	priceRange, err := m.query.PriceRangeToday(ctx, req.ProductID)
	if err != nil {
		return PriceRangeResponse{}, err
	}
	return PriceRangeResponse{
		MinPriceCents: priceRange.MinPriceCents,
		MaxPriceCents: priceRange.MaxPriceCents,
	}, nil
}

// todayPrices handles the pricing.today-prices service request.
func (m *Module) todayPrices(ctx context.Context, req TodayPricesRequest, _ *mono.Msg) (TodayPricesResponse, error) {
	if req.ProductID == 0 {
		return TodayPricesResponse{}, fmt.Errorf("product_id is required")
	}

	prices, err := m.query.TodayPrices(ctx, req.ProductID)
	if err != nil {
		return TodayPricesResponse{}, err
	}

	response := TodayPricesResponse{Prices: make([]StorePriceResponse, 0, len(prices))}
	for _, price := range prices {
		response.Prices = append(response.Prices, StorePriceResponse{
			StoreName:  price.StoreName,
			StoreSlug:  price.StoreSlug,
			PriceCents: price.PriceCents,
		})
	}
	return response, nil
}

// trend handles the pricing.trend service request.
func (m *Module) trend(ctx context.Context, req TrendRequest, _ *mono.Msg) (TrendResponse, error) {
	if req.ProductID == 0 {
		return TrendResponse{}, fmt.Errorf("product_id is required")
	}

	trend, err := m.query.GetTrend(ctx, req.ProductID)
	if err != nil {
		return TrendResponse{}, err
	}
	return TrendResponse{Trend: string(trend)}, nil
}

// history handles the pricing.history service request.
func (m *Module) history(ctx context.Context, req HistoryRequest, _ *mono.Msg) (HistoryResponse, error) {
	if req.ProductID == 0 {
		return HistoryResponse{}, fmt.Errorf("product_id is required")
	}

	history, err := m.query.History(ctx, req.ProductID)
	if err != nil {
		return HistoryResponse{}, err
	}

	response := HistoryResponse{History: make([]HistoryPointResponse, 0, len(history))}
	for _, point := range history {
		response.History = append(response.History, HistoryPointResponse{
			StoreName:  point.StoreName,
			StoreSlug:  point.StoreSlug,
			PriceCents: point.PriceCents,
			CreatedAt:  point.CreatedAt,
		})
	}
	return response, nil
}

// getEnv reads an environment variable with a fallback default.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
