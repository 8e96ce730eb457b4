// Package currency syncs official exchange rates and converts stored USD
// amounts into other currencies.
package currency

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

	currencydomain "github.com/Serhii-Leonenko/price-analyzer/domain/currency"
	"github.com/Serhii-Leonenko/price-analyzer/events"
	"github.com/Serhii-Leonenko/price-analyzer/pkg/storefetch"
)

// defaultRateAPIURL is the NBU statdirectory exchange endpoint.
const defaultRateAPIURL = "https://bank.gov.ua/NBUStatService/v1/statdirectory/exchange"

// Module provides the exchange rate sync job and the conversion service.
type Module struct {
	db        *gorm.DB
	repo      *currencydomain.Repository
	rateSync  *RateSyncService
	converter *ConversionService
	fetcher   RateFetcher
	eventBus  mono.EventBus
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.EventEmitterModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the currency module over a shared database connection.
func NewModule(db *gorm.DB) *Module {
	fetcher := NewNBUFetcher(
		getEnv("EXCHANGE_RATE_API_URL", defaultRateAPIURL),
		storefetch.DefaultTimeout,
	)
	return &Module{db: db, fetcher: fetcher}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "currency"
}

// SetEventBus receives the application event bus.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares which events this module publishes.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.RatesSyncedV1.ToBase(),
	}
}

// RegisterServices registers the currency request-reply services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "sync-rates", json.Unmarshal, json.Marshal, m.syncRates,
	); err != nil {
		return fmt.Errorf("failed to register sync-rates service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "convert", json.Unmarshal, json.Marshal, m.convert,
	); err != nil {
		return fmt.Errorf("failed to register convert service: %w", err)
	}

	log.Printf("[currency] Registered services: services.currency.{sync-rates,convert}")
	return nil
}

// Start migrates the currency tables and wires the services.
func (m *Module) Start(_ context.Context) error {
	m.repo = currencydomain.NewRepository(m.db)
	if err := m.repo.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate currency tables: %w", err)
	}

	m.rateSync = NewRateSyncService(m.repo, m.fetcher)
	m.converter = NewConversionService(m.repo)

	log.Println("[currency] Module started")
	return nil
}

// Stop stops the module. The shared database connection is owned by main.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[currency] Module stopped")
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

// syncRates handles the currency.sync-rates service request.
func (m *Module) syncRates(ctx context.Context, req SyncRatesRequest, _ *mono.Msg) (SyncRatesResponse, error) {
	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return SyncRatesResponse{}, fmt.Errorf("invalid date %q: %w", req.Date, err)
		}
		date = parsed
	}

	written, err := m.rateSync.ExecuteFor(ctx, date)
	if err != nil {
		return SyncRatesResponse{}, fmt.Errorf("rate sync failed: %w", err)
	}

	if m.eventBus != nil {
		event := events.RatesSyncedEvent{
			Date:         currencydomain.DateOf(date).Format("2006-01-02"),
			RatesWritten: written,
			CompletedAt:  time.Now(),
		}
		if err := events.RatesSyncedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[currency] Warning: failed to publish RatesSynced event: %v", err)
		}
	}

	return SyncRatesResponse{RatesWritten: written}, nil
}

// convert handles the currency.convert service request.
func (m *Module) convert(ctx context.Context, req ConvertRequest, _ *mono.Msg) (ConvertResponse, error) {
	if req.CurrencyCode == "" {
		return ConvertResponse{}, fmt.Errorf("currency_code is required")
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	amount, err := m.converter.Convert(ctx, req.Cents, req.CurrencyCode, date)
	if err != nil {
		return ConvertResponse{}, err
	}
	return ConvertResponse{Amount: amount, CurrencyCode: req.CurrencyCode}, nil
}

// getEnv reads an environment variable with a fallback default.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
