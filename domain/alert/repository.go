package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when an alert is not found.
var ErrNotFound = errors.New("alert not found")

// Repository provides database operations for price alerts.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new alert repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate runs database migrations for the price alert table.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&PriceAlert{})
}

// Upsert creates an alert for (user, product), or replaces the existing
// one's target, currency and recipient while resetting it to
// active/untriggered. Returns the stored row.
func (r *Repository) Upsert(ctx context.Context, alert *PriceAlert) (*PriceAlert, error) {
	alert.IsActive = true
	alert.TriggeredAt = nil

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"target_price_cents", "currency_code", "email",
				"is_active", "triggered_at", "updated_at",
			}),
		}).
		Create(alert).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert alert: %w", err)
	}

	var stored PriceAlert
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", alert.UserID, alert.ProductID).
		First(&stored).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load upserted alert: %w", err)
	}
	return &stored, nil
}

// ListActive returns all active alerts with their products preloaded.
func (r *Repository) ListActive(ctx context.Context) ([]PriceAlert, error) {
	var alerts []PriceAlert
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active alerts: %w", err)
	}
	return alerts, nil
}

// ListByUser returns all of a user's alerts with products preloaded.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]PriceAlert, error) {
	var alerts []PriceAlert
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts for user: %w", err)
	}
	return alerts, nil
}

// MarkTriggered transitions an alert to inactive with the trigger
// timestamp set. The transition happens at most once per alert lifecycle:
// only an explicit re-create clears the trigger state again.
func (r *Repository) MarkTriggered(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&PriceAlert{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"is_active":    false,
			"triggered_at": at,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark alert triggered: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
