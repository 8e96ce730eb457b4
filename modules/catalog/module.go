// Package catalog imports store catalogs into the canonical product table.
package catalog

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
	"github.com/Serhii-Leonenko/price-analyzer/events"
	"github.com/Serhii-Leonenko/price-analyzer/pkg/storefetch"
)

// knownStores are the storefronts this deployment tracks, seeded at startup.
var knownStores = map[string]string{
	"dummyjson": "DummyJSON",
	"fakestore": "Fake Store",
}

// Module provides catalog import and product lookup services.
type Module struct {
	db       *gorm.DB
	repo     *catalogdomain.Repository
	importer *ImportService
	fetchers map[string]Fetcher
	eventBus mono.EventBus
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.EventEmitterModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the catalog module over a shared database connection.
// The fetcher registry is built from environment configuration rather than
// a package-level default, so deployments can rewire store endpoints.
func NewModule(db *gorm.DB) *Module {
	fetchers := map[string]Fetcher{
		"dummyjson": NewDummyJSONFetcher(
			getEnv("STORE_API_DUMMYJSON", "https://dummyjson.com/products"),
			storefetch.DefaultTimeout,
		),
		"fakestore": NewFakeStoreFetcher(
			getEnv("STORE_API_FAKESTORE", "https://fakestoreapi.com/products"),
			storefetch.DefaultTimeout,
		),
	}
	return &Module{db: db, fetchers: fetchers}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "catalog"
}

// SetEventBus receives the application event bus.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares which events this module publishes.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.CatalogImportCompletedV1.ToBase(),
	}
}

// RegisterServices registers the catalog request-reply services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "import-products", json.Unmarshal, json.Marshal, m.importProducts,
	); err != nil {
		return fmt.Errorf("failed to register import-products service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-product", json.Unmarshal, json.Marshal, m.getProduct,
	); err != nil {
		return fmt.Errorf("failed to register get-product service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-products", json.Unmarshal, json.Marshal, m.listProducts,
	); err != nil {
		return fmt.Errorf("failed to register list-products service: %w", err)
	}

	log.Printf("[catalog] Registered services: services.catalog.{import-products,get-product,list-products}")
	return nil
}

// Start migrates the catalog tables and seeds the known stores.
func (m *Module) Start(ctx context.Context) error {
	m.repo = catalogdomain.NewRepository(m.db)
	if err := m.repo.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate catalog tables: %w", err)
	}

	for slug, name := range knownStores {
		if _, err := m.repo.EnsureStore(ctx, slug, name); err != nil {
			return err
		}
	}

	m.importer = NewImportService(m.repo, m.fetchers, DefaultConcurrency)

	log.Println("[catalog] Module started")
	return nil
}

// Stop stops the module. The shared database connection is owned by main.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[catalog] Module stopped")
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
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"stores": len(m.fetchers)},
	}
}

// importProducts handles the catalog.import-products service request.
func (m *Module) importProducts(ctx context.Context, _ ImportProductsRequest, _ *mono.Msg) (ImportProductsResponse, error) {
	created, err := m.importer.Execute(ctx)
	if err != nil {
		return ImportProductsResponse{}, fmt.Errorf("catalog import failed: %w", err)
	}

	log.Printf("[catalog] Import run created %d product-store links", created)

	if m.eventBus != nil {
		event := events.CatalogImportCompletedEvent{
			LinksCreated: created,
			CompletedAt:  time.Now(),
		}
		if err := events.CatalogImportCompletedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[catalog] Warning: failed to publish CatalogImportCompleted event: %v", err)
		}
	}

	return ImportProductsResponse{LinksCreated: created}, nil
}

// getProduct handles the catalog.get-product service request.
func (m *Module) getProduct(ctx context.Context, req GetProductRequest, _ *mono.Msg) (ProductResponse, error) {
	if req.ID == 0 {
		return ProductResponse{}, fmt.Errorf("id is required")
	}

	product, err := m.repo.GetProduct(ctx, req.ID)
	if err != nil {
		return ProductResponse{}, err
	}
	return toProductResponse(product), nil
}

// listProducts handles the catalog.list-products service request.
func (m *Module) listProducts(ctx context.Context, req ListProductsRequest, _ *mono.Msg) (ListProductsResponse, error) {
	products, err := m.repo.ListProducts(ctx, req.Search)
	if err != nil {
		return ListProductsResponse{}, err
	}

	response := ListProductsResponse{
		Products: make([]ProductResponse, 0, len(products)),
		Total:    len(products),
	}
	for i := range products {
		response.Products = append(response.Products, toProductResponse(&products[i]))
	}
	return response, nil
}

// toProductResponse converts a Product entity to a ProductResponse.
func toProductResponse(product *catalogdomain.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		CreatedAt:   product.CreatedAt,
	}
}

// getEnv reads an environment variable with a fallback default.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
