package alert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	alertdomain "github.com/Serhii-Leonenko/price-analyzer/domain/alert"
	"github.com/Serhii-Leonenko/price-analyzer/domain/catalog"
	"github.com/Serhii-Leonenko/price-analyzer/modules/currency"
	"github.com/Serhii-Leonenko/price-analyzer/modules/pricing"
)

// stubPricing serves a fixed price range per product.
type stubPricing struct {
	ranges map[uint]pricing.PriceRangeResponse
}

func (s *stubPricing) SyncPrices(context.Context) (*pricing.SyncPricesResponse, error) {
	return &pricing.SyncPricesResponse{}, nil
}

func (s *stubPricing) PriceRangeToday(_ context.Context, productID uint) (*pricing.PriceRangeResponse, error) {
	r := s.ranges[productID]
	return &r, nil
}

func (s *stubPricing) TodayPrices(context.Context, uint) (*pricing.TodayPricesResponse, error) {
	return &pricing.TodayPricesResponse{}, nil
}

func (s *stubPricing) GetTrend(context.Context, uint) (*pricing.TrendResponse, error) {
	return &pricing.TrendResponse{Trend: "unknown"}, nil
}

func (s *stubPricing) History(context.Context, uint) (*pricing.HistoryResponse, error) {
	return &pricing.HistoryResponse{}, nil
}

// stubCurrency converts with a fixed EUR rate, or reports no rate at all.
type stubCurrency struct {
	unavailable bool
}

func (s *stubCurrency) SyncRates(context.Context) (*currency.SyncRatesResponse, error) {
	return &currency.SyncRatesResponse{}, nil
}

func (s *stubCurrency) Convert(_ context.Context, cents int64, code string, _ time.Time) (*currency.ConvertResponse, error) {
	amount := decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
	if code != "USD" {
		if s.unavailable {
			return &currency.ConvertResponse{CurrencyCode: code}, nil
		}
		amount = amount.Div(decimal.RequireFromString("1.1")).Round(2)
	}
	return &currency.ConvertResponse{Amount: &amount, CurrencyCode: code}, nil
}

// recordingNotifier records sends and optionally fails them.
type recordingNotifier struct {
	sent []Notification
	err  error
}

func (n *recordingNotifier) SendPriceAlert(_ context.Context, notification Notification) error {
	n.sent = append(n.sent, notification)
	return n.err
}

type serviceFixture struct {
	repo      *alertdomain.Repository
	service   *Service
	pricing   *stubPricing
	notifier  *recordingNotifier
	productID uint
}

func setupServiceTest(t *testing.T) *serviceFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&catalog.Store{}, &catalog.Product{}, &catalog.ProductStore{}, &alertdomain.PriceAlert{}))

	product := catalog.Product{Name: "iPhone 15"}
	require.NoError(t, db.Create(&product).Error)

	repo := alertdomain.NewRepository(db)
	pricingStub := &stubPricing{ranges: map[uint]pricing.PriceRangeResponse{}}
	notifier := &recordingNotifier{}
	service := NewService(repo, pricingStub, &stubCurrency{}, notifier)

	return &serviceFixture{
		repo:      repo,
		service:   service,
		pricing:   pricingStub,
		notifier:  notifier,
		productID: product.ID,
	}
}

func (f *serviceFixture) setTodayRange(productID uint, min, max int64) {
	f.pricing.ranges[productID] = pricing.PriceRangeResponse{
		MinPriceCents: &min,
		MaxPriceCents: &max,
	}
}

func (f *serviceFixture) createAlert(t *testing.T, targetCents int64, code string) *alertdomain.PriceAlert {
	t.Helper()
	alert, err := f.service.Create(context.Background(), CreateAlertRequest{
		UserID:           "user-1",
		Email:            "user@example.com",
		ProductID:        f.productID,
		TargetPriceCents: targetCents,
		CurrencyCode:     code,
	})
	require.NoError(t, err)
	return alert
}

func TestService_CheckAndSend_FiresAtOrBelowTarget(t *testing.T) {
	f := setupServiceTest(t)
	f.createAlert(t, 1000, "USD")
	f.setTodayRange(f.productID, 1000, 1500)

	triggered, err := f.service.CheckAndSend(context.Background())
	require.NoError(t, err)
	require.Len(t, triggered, 1, "equal to target must fire")
	assert.Equal(t, int64(1000), triggered[0].MinPriceCents)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "user@example.com", f.notifier.sent[0].Email)
	assert.Equal(t, "iPhone 15", f.notifier.sent[0].ProductName)
}

func TestService_CheckAndSend_FiresExactlyOnce(t *testing.T) {
	f := setupServiceTest(t)
	f.createAlert(t, 1000, "USD")
	f.setTodayRange(f.productID, 900, 1500)

	triggered, err := f.service.CheckAndSend(context.Background())
	require.NoError(t, err)
	require.Len(t, triggered, 1)

	// Price stays below target; a second run must send nothing.
	triggered, err = f.service.CheckAndSend(context.Background())
	require.NoError(t, err)
	assert.Empty(t, triggered)
	assert.Len(t, f.notifier.sent, 1)
}

func TestService_CheckAndSend_AboveTargetDoesNotFire(t *testing.T) {
	f := setupServiceTest(t)
	f.createAlert(t, 1000, "USD")
	f.setTodayRange(f.productID, 1001, 1500)

	triggered, err := f.service.CheckAndSend(context.Background())
	require.NoError(t, err)
	assert.Empty(t, triggered)
	assert.Empty(t, f.notifier.sent)
}

func TestService_CheckAndSend_SkipsWithoutTodayPrice(t *testing.T) {
	f := setupServiceTest(t)
	f.createAlert(t, 1000, "USD")
	// No range registered: MinPriceCents stays nil.

	triggered, err := f.service.CheckAndSend(context.Background())
	require.NoError(t, err)
	assert.Empty(t, triggered)

	active, err := f.repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 1, "alert must stay armed")
}

func TestService_CheckAndSend_NotifierFailureStillTriggers(t *testing.T) {
	f := setupServiceTest(t)
	f.notifier.err = errors.New("smtp down")
	f.createAlert(t, 1000, "USD")
	f.setTodayRange(f.productID, 900, 1500)

	triggered, err := f.service.CheckAndSend(context.Background())
	require.NoError(t, err)
	require.Len(t, triggered, 1, "delivery failure must not re-arm the alert")

	active, err := f.repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestService_CheckAndSend_ConvertsToAlertCurrency(t *testing.T) {
	f := setupServiceTest(t)
	f.createAlert(t, 1100, "EUR")
	f.setTodayRange(f.productID, 1100, 1500)

	_, err := f.service.CheckAndSend(context.Background())
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	sent := f.notifier.sent[0]
	assert.Equal(t, "EUR", sent.CurrencyCode)
	// 11.00 USD / 1.1 = 10.00 EUR
	assert.True(t, sent.TargetAmount.Equal(decimal.RequireFromString("10")), "got %s", sent.TargetAmount)
}

func TestService_CheckAndSend_ConversionUnavailableFallsBackToUSD(t *testing.T) {
	f := setupServiceTest(t)
	f.service = NewService(f.repo, f.pricing, &stubCurrency{unavailable: true}, f.notifier)
	f.createAlert(t, 1100, "EUR")
	f.setTodayRange(f.productID, 1000, 1500)

	triggered, err := f.service.CheckAndSend(context.Background())
	require.NoError(t, err)
	require.Len(t, triggered, 1)

	require.Len(t, f.notifier.sent, 1)
	sent := f.notifier.sent[0]
	assert.Equal(t, "USD", sent.CurrencyCode, "falls back to USD amounts")
	assert.True(t, sent.TargetAmount.Equal(decimal.RequireFromString("11")), "got %s", sent.TargetAmount)
}

func TestService_Create_RecreateResetsTriggerState(t *testing.T) {
	f := setupServiceTest(t)
	f.createAlert(t, 1000, "USD")
	f.setTodayRange(f.productID, 900, 1500)

	triggered, err := f.service.CheckAndSend(context.Background())
	require.NoError(t, err)
	require.Len(t, triggered, 1)

	// Re-create with a lower target; the alert is armed again.
	recreated := f.createAlert(t, 800, "USD")
	assert.True(t, recreated.IsActive)
	assert.Nil(t, recreated.TriggeredAt)

	f.setTodayRange(f.productID, 750, 1500)
	triggered, err = f.service.CheckAndSend(context.Background())
	require.NoError(t, err)
	assert.Len(t, triggered, 1, "re-created alert can fire again")
}

func TestService_Create_Validation(t *testing.T) {
	f := setupServiceTest(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, CreateAlertRequest{Email: "a@b.c", ProductID: 1, TargetPriceCents: 100})
	assert.Error(t, err, "missing user_id")

	_, err = f.service.Create(ctx, CreateAlertRequest{UserID: "u", ProductID: 1, TargetPriceCents: 100})
	assert.Error(t, err, "missing email")

	_, err = f.service.Create(ctx, CreateAlertRequest{UserID: "u", Email: "a@b.c", TargetPriceCents: 100})
	assert.Error(t, err, "missing product_id")

	_, err = f.service.Create(ctx, CreateAlertRequest{UserID: "u", Email: "a@b.c", ProductID: 1})
	assert.Error(t, err, "non-positive target")

	// Currency defaults to USD and is upcased.
	alert, err := f.service.Create(ctx, CreateAlertRequest{
		UserID: "u", Email: "a@b.c", ProductID: f.productID, TargetPriceCents: 100, CurrencyCode: "eur",
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR", alert.CurrencyCode)
}
