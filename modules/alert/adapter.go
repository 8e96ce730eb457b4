package alert

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// alertAdapter wraps ServiceContainer for type-safe cross-module calls.
type alertAdapter struct {
	container mono.ServiceContainer
}

// NewAlertAdapter creates an adapter over the alert module's service
// container received via SetDependencyServiceContainer.
func NewAlertAdapter(container mono.ServiceContainer) AlertPort {
	if container == nil {
		panic("alert adapter requires non-nil ServiceContainer")
	}
	return &alertAdapter{container: container}
}

// CreateAlert creates or replaces an alert via the create service.
func (a *alertAdapter) CreateAlert(ctx context.Context, req CreateAlertRequest) (*AlertResponse, error) {
	var resp AlertResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "create",
		json.Marshal, json.Unmarshal,
		&req, &resp,
	); err != nil {
		return nil, fmt.Errorf("create service call failed: %w", err)
	}
	return &resp, nil
}

// ListAlerts fetches a user's alerts via the list service.
func (a *alertAdapter) ListAlerts(ctx context.Context, userID string) (*ListAlertsResponse, error) {
	req := ListAlertsRequest{UserID: userID}
	var resp ListAlertsResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list",
		json.Marshal, json.Unmarshal,
		&req, &resp,
	); err != nil {
		return nil, fmt.Errorf("list service call failed: %w", err)
	}
	return &resp, nil
}

// CheckAlerts evaluates all active alerts via the check service.
func (a *alertAdapter) CheckAlerts(ctx context.Context) (*CheckAlertsResponse, error) {
	req := CheckAlertsRequest{}
	var resp CheckAlertsResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "check",
		json.Marshal, json.Unmarshal,
		&req, &resp,
	); err != nil {
		return nil, fmt.Errorf("check service call failed: %w", err)
	}
	return &resp, nil
}
