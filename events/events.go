// Package events defines the typed domain events exchanged between modules.
package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// CatalogImportCompletedEvent is emitted after a catalog import run.
type CatalogImportCompletedEvent struct {
	LinksCreated int       `json:"links_created"`
	CompletedAt  time.Time `json:"completed_at"`
}

// CatalogImportCompletedV1 is the typed event definition for import completion.
// Subject: events.catalog.v1.catalog-import-completed
var CatalogImportCompletedV1 = helper.EventDefinition[CatalogImportCompletedEvent](
	"catalog", "CatalogImportCompleted", "v1",
)

// PriceSyncCompletedEvent is emitted after a price sync run. Alert
// evaluation chains off this event rather than an in-process call, so each
// job keeps its own retry policy.
type PriceSyncCompletedEvent struct {
	SnapshotsWritten int       `json:"snapshots_written"`
	CompletedAt      time.Time `json:"completed_at"`
}

// PriceSyncCompletedV1 is the typed event definition for price sync completion.
// Subject: events.pricing.v1.price-sync-completed
var PriceSyncCompletedV1 = helper.EventDefinition[PriceSyncCompletedEvent](
	"pricing", "PriceSyncCompleted", "v1",
)

// RatesSyncedEvent is emitted after an exchange rate sync run.
type RatesSyncedEvent struct {
	Date         string    `json:"date"`
	RatesWritten int       `json:"rates_written"`
	CompletedAt  time.Time `json:"completed_at"`
}

// RatesSyncedV1 is the typed event definition for rate sync completion.
// Subject: events.currency.v1.rates-synced
var RatesSyncedV1 = helper.EventDefinition[RatesSyncedEvent](
	"currency", "RatesSynced", "v1",
)

// AlertTriggeredEvent is emitted when a price alert fires.
type AlertTriggeredEvent struct {
	AlertID          uint      `json:"alert_id"`
	UserID           string    `json:"user_id"`
	ProductID        uint      `json:"product_id"`
	ProductName      string    `json:"product_name"`
	TargetPriceCents int64     `json:"target_price_cents"`
	MinPriceCents    int64     `json:"min_price_cents"`
	CurrencyCode     string    `json:"currency_code"`
	TriggeredAt      time.Time `json:"triggered_at"`
}

// AlertTriggeredV1 is the typed event definition for a fired alert.
// Subject: events.alert.v1.alert-triggered
var AlertTriggeredV1 = helper.EventDefinition[AlertTriggeredEvent](
	"alert", "AlertTriggered", "v1",
)
