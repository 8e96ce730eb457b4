package alert

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/shopspring/decimal"
)

// Notification is the payload delivered to an alert's recipient.
type Notification struct {
	Email         string
	ProductName   string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	CurrencyCode  string
}

// Notifier delivers a triggered alert to its recipient. Delivery failure
// must not block the alert lifecycle; callers log and move on.
type Notifier interface {
	SendPriceAlert(ctx context.Context, n Notification) error
}

// SMTPConfig configures the SMTP notifier.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPNotifier delivers alerts over plain SMTP.
type SMTPNotifier struct {
	config SMTPConfig
}

// NewSMTPNotifier creates a notifier against the given SMTP server.
func NewSMTPNotifier(config SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{config: config}
}

// SendPriceAlert sends the price drop message to the recipient.
func (s *SMTPNotifier) SendPriceAlert(_ context.Context, n Notification) error {
	subject := fmt.Sprintf("Price alert: %s", n.ProductName)
	body := fmt.Sprintf(
		"%s dropped to %s %s, at or below your target of %s %s.",
		n.ProductName,
		n.CurrentAmount.StringFixed(2), n.CurrencyCode,
		n.TargetAmount.StringFixed(2), n.CurrencyCode,
	)

	message := strings.Join([]string{
		fmt.Sprintf("From: %s", s.config.From),
		fmt.Sprintf("To: %s", n.Email),
		fmt.Sprintf("Subject: %s", subject),
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	addr := fmt.Sprintf("%s:%s", s.config.Host, s.config.Port)
	if err := smtp.SendMail(addr, auth, s.config.From, []string{n.Email}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send alert mail to %s: %w", n.Email, err)
	}
	return nil
}

// LogNotifier writes notifications to the application log. Used when no
// SMTP server is configured, typically in development.
type LogNotifier struct{}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// SendPriceAlert logs the notification instead of delivering it.
func (l *LogNotifier) SendPriceAlert(_ context.Context, n Notification) error {
	log.Printf("[alert] Notification for %s: %s at %s %s (target %s %s)",
		n.Email, n.ProductName,
		n.CurrentAmount.StringFixed(2), n.CurrencyCode,
		n.TargetAmount.StringFixed(2), n.CurrencyCode,
	)
	return nil
}
