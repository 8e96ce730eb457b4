// Package alert manages one-shot price drop alerts and their delivery.
package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"

	alertdomain "github.com/Serhii-Leonenko/price-analyzer/domain/alert"
	"github.com/Serhii-Leonenko/price-analyzer/events"
	"github.com/Serhii-Leonenko/price-analyzer/modules/currency"
	"github.com/Serhii-Leonenko/price-analyzer/modules/pricing"
)

// Module provides alert creation and evaluation services. Evaluation runs
// after every price sync, chained through the PriceSyncCompleted event.
type Module struct {
	db           *gorm.DB
	repo         *alertdomain.Repository
	service      *Service
	notifier     Notifier
	pricingPort  pricing.PricingPort
	currencyPort currency.CurrencyPort
	eventBus     mono.EventBus
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.DependentModule = (*Module)(nil)
var _ mono.EventEmitterModule = (*Module)(nil)
var _ mono.EventConsumerModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the alert module over a shared database connection.
// Notifications go over SMTP when SMTP_HOST is set, otherwise to the log.
func NewModule(db *gorm.DB) *Module {
	var notifier Notifier
	if host := os.Getenv("SMTP_HOST"); host != "" {
		notifier = NewSMTPNotifier(SMTPConfig{
			Host:     host,
			Port:     getEnv("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "alerts@price-analyzer.local"),
		})
	} else {
		notifier = NewLogNotifier()
	}
	return &Module{db: db, notifier: notifier}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "alert"
}

// Dependencies lists the modules alert calls into. Catalog is included for
// start ordering: the alert table carries a foreign key to products.
func (m *Module) Dependencies() []string {
	return []string{"catalog", "pricing", "currency"}
}

// SetDependencyServiceContainer wires the pricing and currency ports.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "pricing":
		m.pricingPort = pricing.NewPricingAdapter(container)
	case "currency":
		m.currencyPort = currency.NewCurrencyAdapter(container)
	}
}

// SetEventBus receives the application event bus.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares which events this module publishes.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.AlertTriggeredV1.ToBase(),
	}
}

// RegisterEventConsumers subscribes alert evaluation to price sync runs.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.PriceSyncCompletedV1, m.handlePriceSyncCompleted, m,
	); err != nil {
		return fmt.Errorf("failed to register PriceSyncCompleted consumer: %w", err)
	}

	log.Printf("[alert] Registered event consumers: PriceSyncCompleted")
	return nil
}

// RegisterServices registers the alert request-reply services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create", json.Unmarshal, json.Marshal, m.create,
	); err != nil {
		return fmt.Errorf("failed to register create service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.list,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "check", json.Unmarshal, json.Marshal, m.check,
	); err != nil {
		return fmt.Errorf("failed to register check service: %w", err)
	}

	log.Printf("[alert] Registered services: services.alert.{create,list,check}")
	return nil
}

// Start migrates the alert table and wires the service.
func (m *Module) Start(_ context.Context) error {
	m.repo = alertdomain.NewRepository(m.db)
	if err := m.repo.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate alert tables: %w", err)
	}

	m.service = NewService(m.repo, m.pricingPort, m.currencyPort, m.notifier)

	log.Println("[alert] Module started")
	return nil
}

// Stop stops the module. The shared database connection is owned by main.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[alert] Module stopped")
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

// handlePriceSyncCompleted runs an alert check after every price sync.
func (m *Module) handlePriceSyncCompleted(ctx context.Context, event events.PriceSyncCompletedEvent, _ *mono.Msg) error {
	log.Printf("[alert] Price sync wrote %d snapshots, checking alerts", event.SnapshotsWritten)

	triggered, err := m.runCheck(ctx)
	if err != nil {
		log.Printf("[alert] Alert check after price sync failed: %v", err)
		return nil
	}
	if triggered > 0 {
		log.Printf("[alert] %d alerts triggered after price sync", triggered)
	}
	return nil
}

// runCheck executes an evaluation pass and publishes one AlertTriggered
// event per fired alert.
func (m *Module) runCheck(ctx context.Context) (int, error) {
	triggered, err := m.service.CheckAndSend(ctx)
	if err != nil {
		return 0, err
	}

	if m.eventBus != nil {
		for _, fired := range triggered {
			event := events.AlertTriggeredEvent{
				AlertID:          fired.AlertID,
				UserID:           fired.UserID,
				ProductID:        fired.ProductID,
				ProductName:      fired.ProductName,
				TargetPriceCents: fired.TargetPriceCents,
				MinPriceCents:    fired.MinPriceCents,
				CurrencyCode:     fired.CurrencyCode,
				TriggeredAt:      fired.TriggeredAt,
			}
			if err := events.AlertTriggeredV1.Publish(m.eventBus, event, nil); err != nil {
				log.Printf("[alert] Warning: failed to publish AlertTriggered event: %v", err)
			}
		}
	}

	return len(triggered), nil
}

// create handles the alert.create service request.
func (m *Module) create(ctx context.Context, req CreateAlertRequest, _ *mono.Msg) (AlertResponse, error) {
	alert, err := m.service.Create(ctx, req)
	if err != nil {
		return AlertResponse{}, err
	}
	return toAlertResponse(alert), nil
}

// list handles the alert.list service request.
func (m *Module) list(ctx context.Context, req ListAlertsRequest, _ *mono.Msg) (ListAlertsResponse, error) {
	alerts, err := m.service.ListByUser(ctx, req.UserID)
	if err != nil {
		return ListAlertsResponse{}, err
	}

	response := ListAlertsResponse{
		Alerts: make([]AlertResponse, 0, len(alerts)),
		Total:  len(alerts),
	}
	for i := range alerts {
		response.Alerts = append(response.Alerts, toAlertResponse(&alerts[i]))
	}
	return response, nil
}

// check handles the alert.check service request.
func (m *Module) check(ctx context.Context, _ CheckAlertsRequest, _ *mono.Msg) (CheckAlertsResponse, error) {
	triggered, err := m.runCheck(ctx)
	if err != nil {
		return CheckAlertsResponse{}, fmt.Errorf("alert check failed: %w", err)
	}
	return CheckAlertsResponse{Triggered: triggered}, nil
}

// toAlertResponse converts a PriceAlert entity to an AlertResponse.
func toAlertResponse(alert *alertdomain.PriceAlert) AlertResponse {
	return AlertResponse{
		ID:               alert.ID,
		UserID:           alert.UserID,
		Email:            alert.Email,
		ProductID:        alert.ProductID,
		TargetPriceCents: alert.TargetPriceCents,
		CurrencyCode:     alert.CurrencyCode,
		IsActive:         alert.IsActive,
		TriggeredAt:      alert.TriggeredAt,
		CreatedAt:        alert.CreatedAt,
	}
}

// getEnv reads an environment variable with a fallback default.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
