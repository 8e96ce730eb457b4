package alert

import (
	"context"
	"time"
)

// CreateAlertRequest is the request for creating or replacing an alert.
type CreateAlertRequest struct {
	UserID           string `json:"user_id"`
	Email            string `json:"email"`
	ProductID        uint   `json:"product_id"`
	TargetPriceCents int64  `json:"target_price_cents"`
	CurrencyCode     string `json:"currency_code"`
}

// AlertResponse is the stored state of a single alert.
type AlertResponse struct {
	ID               uint       `json:"id"`
	UserID           string     `json:"user_id"`
	Email            string     `json:"email"`
	ProductID        uint       `json:"product_id"`
	TargetPriceCents int64      `json:"target_price_cents"`
	CurrencyCode     string     `json:"currency_code"`
	IsActive         bool       `json:"is_active"`
	TriggeredAt      *time.Time `json:"triggered_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

// ListAlertsRequest is the request for a user's alerts.
type ListAlertsRequest struct {
	UserID string `json:"user_id"`
}

// ListAlertsResponse lists a user's alerts.
type ListAlertsResponse struct {
	Alerts []AlertResponse `json:"alerts"`
	Total  int             `json:"total"`
}

// CheckAlertsRequest is the request for evaluating all active alerts.
type CheckAlertsRequest struct{}

// CheckAlertsResponse reports how many alerts fired during the run.
type CheckAlertsResponse struct {
	Triggered int `json:"triggered"`
}

// AlertPort is the interface other modules use to reach alert services.
type AlertPort interface {
	CreateAlert(ctx context.Context, req CreateAlertRequest) (*AlertResponse, error)
	ListAlerts(ctx context.Context, userID string) (*ListAlertsResponse, error)
	CheckAlerts(ctx context.Context) (*CheckAlertsResponse, error)
}
