package alert

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	alertdomain "github.com/Serhii-Leonenko/price-analyzer/domain/alert"
	"github.com/Serhii-Leonenko/price-analyzer/modules/currency"
	"github.com/Serhii-Leonenko/price-analyzer/modules/pricing"
	"github.com/Serhii-Leonenko/price-analyzer/pkg/money"
)

// TriggeredAlert describes one alert that fired during a check run.
type TriggeredAlert struct {
	AlertID          uint
	UserID           string
	ProductID        uint
	ProductName      string
	TargetPriceCents int64
	MinPriceCents    int64
	CurrencyCode     string
	TriggeredAt      time.Time
}

// Service owns the alert lifecycle: create or replace, evaluate against
// today's lowest prices, notify and retire.
type Service struct {
	repo     *alertdomain.Repository
	pricing  pricing.PricingPort
	currency currency.CurrencyPort
	notifier Notifier
	now      func() time.Time
}

// NewService creates an alert service.
func NewService(repo *alertdomain.Repository, pricingPort pricing.PricingPort, currencyPort currency.CurrencyPort, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		pricing:  pricingPort,
		currency: currencyPort,
		notifier: notifier,
		now:      time.Now,
	}
}

// Create stores an alert for (user, product). An existing alert for the
// same pair is replaced and reset to active, so a user can re-arm a
// triggered alert with a new target.
func (s *Service) Create(ctx context.Context, req CreateAlertRequest) (*alertdomain.PriceAlert, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if req.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if req.ProductID == 0 {
		return nil, fmt.Errorf("product_id is required")
	}
	if req.TargetPriceCents <= 0 {
		return nil, fmt.Errorf("target_price_cents must be positive")
	}

	code := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	if code == "" {
		code = "USD"
	}

	alert := &alertdomain.PriceAlert{
		UserID:           req.UserID,
		Email:            req.Email,
		ProductID:        req.ProductID,
		TargetPriceCents: req.TargetPriceCents,
		CurrencyCode:     code,
	}
	return s.repo.Upsert(ctx, alert)
}

// ListByUser returns all of a user's alerts.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]alertdomain.PriceAlert, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	return s.repo.ListByUser(ctx, userID)
}

// CheckAndSend evaluates every active alert against today's lowest observed
// price. An alert fires when the day's minimum is at or below the target;
// firing notifies the recipient and retires the alert so it cannot fire
// again. One alert's failure never stops the rest of the run.
func (s *Service) CheckAndSend(ctx context.Context) ([]TriggeredAlert, error) {
	alerts, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var triggered []TriggeredAlert
	for i := range alerts {
		result, err := s.checkOne(ctx, &alerts[i])
		if err != nil {
			log.Printf("[alert] Failed to check alert %d: %v", alerts[i].ID, err)
			continue
		}
		if result != nil {
			triggered = append(triggered, *result)
		}
	}
	return triggered, nil
}

// checkOne evaluates a single alert. Returns nil when the alert did not
// fire. The notifier runs before the state transition but its failure is
// logged, not propagated: a dead mail server must not re-arm alerts.
func (s *Service) checkOne(ctx context.Context, alert *alertdomain.PriceAlert) (*TriggeredAlert, error) {
	priceRange, err := s.pricing.PriceRangeToday(ctx, alert.ProductID)
	if err != nil {
		return nil, err
	}
	if priceRange.MinPriceCents == nil {
		return nil, nil
	}

	minCents := *priceRange.MinPriceCents
	if minCents > alert.TargetPriceCents {
		return nil, nil
	}

	now := s.now()
	target, current := s.displayAmounts(ctx, alert, minCents, now)

	notification := Notification{
		Email:         alert.Email,
		ProductName:   alert.Product.Name,
		TargetAmount:  target.amount,
		CurrentAmount: current.amount,
		CurrencyCode:  target.code,
	}
	if err := s.notifier.SendPriceAlert(ctx, notification); err != nil {
		log.Printf("[alert] Failed to notify %s for alert %d: %v", alert.Email, alert.ID, err)
	}

	if err := s.repo.MarkTriggered(ctx, alert.ID, now); err != nil {
		return nil, err
	}

	log.Printf("[alert] Alert %d triggered: %q at %d cents (target %d)",
		alert.ID, alert.Product.Name, minCents, alert.TargetPriceCents)

	return &TriggeredAlert{
		AlertID:          alert.ID,
		UserID:           alert.UserID,
		ProductID:        alert.ProductID,
		ProductName:      alert.Product.Name,
		TargetPriceCents: alert.TargetPriceCents,
		MinPriceCents:    minCents,
		CurrencyCode:     alert.CurrencyCode,
		TriggeredAt:      now,
	}, nil
}

type displayAmount struct {
	amount decimal.Decimal
	code   string
}

// displayAmounts converts the target and current prices into the alert's
// currency for the notification text. When no usable rate exists both
// amounts fall back to USD so the message still goes out.
func (s *Service) displayAmounts(ctx context.Context, alert *alertdomain.PriceAlert, minCents int64, date time.Time) (displayAmount, displayAmount) {
	usdTarget := displayAmount{amount: money.CentsToUSD(alert.TargetPriceCents), code: "USD"}
	usdCurrent := displayAmount{amount: money.CentsToUSD(minCents), code: "USD"}

	if alert.CurrencyCode == "USD" {
		return usdTarget, usdCurrent
	}

	target, err := s.currency.Convert(ctx, alert.TargetPriceCents, alert.CurrencyCode, date)
	if err != nil || target.Amount == nil {
		if err != nil {
			log.Printf("[alert] Conversion to %s failed, falling back to USD: %v", alert.CurrencyCode, err)
		}
		return usdTarget, usdCurrent
	}
	current, err := s.currency.Convert(ctx, minCents, alert.CurrencyCode, date)
	if err != nil || current.Amount == nil {
		if err != nil {
			log.Printf("[alert] Conversion to %s failed, falling back to USD: %v", alert.CurrencyCode, err)
		}
		return usdTarget, usdCurrent
	}

	return displayAmount{amount: *target.Amount, code: alert.CurrencyCode},
		displayAmount{amount: *current.Amount, code: alert.CurrencyCode}
}
