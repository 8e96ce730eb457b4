// Package scheduler runs the periodic jobs: catalog import, price sync and
// exchange rate sync. Alert checks are not scheduled here; they chain off
// price sync completion events.
package scheduler

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/go-monolith/mono"

	"github.com/Serhii-Leonenko/price-analyzer/modules/catalog"
	"github.com/Serhii-Leonenko/price-analyzer/modules/currency"
	"github.com/Serhii-Leonenko/price-analyzer/modules/pricing"
)

// Default job intervals, overridable via environment.
const (
	defaultImportInterval   = 24 * time.Hour
	defaultPriceInterval    = time.Hour
	defaultRateSyncInterval = 24 * time.Hour
)

// jobTimeout bounds a single scheduled run.
const jobTimeout = 5 * time.Minute

// Module triggers the periodic jobs through the other modules' services.
type Module struct {
	catalogPort  catalog.CatalogPort
	pricingPort  pricing.PricingPort
	currencyPort currency.CurrencyPort

	importInterval time.Duration
	priceInterval  time.Duration
	rateInterval   time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.DependentModule = (*Module)(nil)

// NewModule creates the scheduler module with intervals from environment
// configuration.
func NewModule() *Module {
	return &Module{
		importInterval: getDuration("CATALOG_IMPORT_INTERVAL", defaultImportInterval),
		priceInterval:  getDuration("PRICE_SYNC_INTERVAL", defaultPriceInterval),
		rateInterval:   getDuration("RATE_SYNC_INTERVAL", defaultRateSyncInterval),
		stopCh:         make(chan struct{}),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "scheduler"
}

// Dependencies lists every module the scheduler invokes.
func (m *Module) Dependencies() []string {
	return []string{"catalog", "pricing", "currency"}
}

// SetDependencyServiceContainer wires the job ports.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "catalog":
		m.catalogPort = catalog.NewCatalogAdapter(container)
	case "pricing":
		m.pricingPort = pricing.NewPricingAdapter(container)
	case "currency":
		m.currencyPort = currency.NewCurrencyAdapter(container)
	}
}

// Start launches one ticker goroutine per job. Each job also runs once at
// startup so a fresh deployment has data before the first tick.
func (m *Module) Start(_ context.Context) error {
	m.launch("catalog import", m.importInterval, m.runImport)
	m.launch("price sync", m.priceInterval, m.runPriceSync)
	m.launch("rate sync", m.rateInterval, m.runRateSync)

	log.Printf("[scheduler] Module started (import %s, prices %s, rates %s)",
		m.importInterval, m.priceInterval, m.rateInterval)
	return nil
}

// Stop signals all job goroutines and waits for in-flight runs to finish.
func (m *Module) Stop(_ context.Context) error {
	close(m.stopCh)
	m.wg.Wait()
	log.Println("[scheduler] Module stopped")
	return nil
}

// launch runs the job once immediately, then on every tick until Stop.
func (m *Module) launch(name string, interval time.Duration, job func(context.Context) error) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		m.runJob(name, job)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.runJob(name, job)
			}
		}
	}()
}

// runJob executes one scheduled run with a bounded context. Failures are
// logged and swallowed; the next tick retries.
func (m *Module) runJob(name string, job func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := job(ctx); err != nil {
		log.Printf("[scheduler] %s run failed: %v", name, err)
	}
}

func (m *Module) runImport(ctx context.Context) error {
	resp, err := m.catalogPort.ImportProducts(ctx)
	if err != nil {
		return err
	}
	log.Printf("[scheduler] Catalog import created %d links", resp.LinksCreated)
	return nil
}

func (m *Module) runPriceSync(ctx context.Context) error {
	resp, err := m.pricingPort.SyncPrices(ctx)
	if err != nil {
		return err
	}
	log.Printf("[scheduler] Price sync wrote %d snapshots", resp.SnapshotsWritten)
	return nil
}

func (m *Module) runRateSync(ctx context.Context) error {
	resp, err := m.currencyPort.SyncRates(ctx)
	if err != nil {
		return err
	}
	log.Printf("[scheduler] Rate sync wrote %d rates", resp.RatesWritten)
	return nil
}

// getDuration reads a duration environment variable with a fallback.
func getDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		log.Printf("[scheduler] Invalid %s=%q, using %s: %v", key, value, fallback, err)
		return fallback
	}
	return parsed
}
