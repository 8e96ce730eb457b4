package currency

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversionService_USDIdentity(t *testing.T) {
	repo := setupCurrencyTest(t)
	service := NewConversionService(repo)

	amount, err := service.Convert(context.Background(), 1999, "USD", time.Now())
	require.NoError(t, err)
	require.NotNil(t, amount)
	assert.True(t, amount.Equal(decimal.RequireFromString("19.99")), "got %s", amount)
}

func TestConversionService_UsesLatestRateOnOrBefore(t *testing.T) {
	repo := setupCurrencyTest(t)
	ctx := context.Background()

	eur, err := repo.EnsureCurrency(ctx, "EUR", "Euro")
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, repo.UpsertRate(ctx, eur.ID, now.Add(-72*time.Hour), decimal.RequireFromString("1.25")))
	require.NoError(t, repo.UpsertRate(ctx, eur.ID, now.Add(-24*time.Hour), decimal.RequireFromString("1.1")))
	// A future-dated rate must never be used.
	require.NoError(t, repo.UpsertRate(ctx, eur.ID, now.Add(48*time.Hour), decimal.RequireFromString("2")))

	service := NewConversionService(repo)
	amount, err := service.Convert(ctx, 1100, "EUR", now)
	require.NoError(t, err)
	require.NotNil(t, amount)
	// 11.00 USD / 1.1 = 10.00 EUR
	assert.True(t, amount.Equal(decimal.RequireFromString("10")), "got %s", amount)
}

func TestConversionService_MissingRateIsNil(t *testing.T) {
	repo := setupCurrencyTest(t)
	service := NewConversionService(repo)

	amount, err := service.Convert(context.Background(), 1000, "EUR", time.Now())
	require.NoError(t, err, "a missing rate is not an error")
	assert.Nil(t, amount)
}

func TestConversionService_RoundsHalfAwayFromZero(t *testing.T) {
	repo := setupCurrencyTest(t)
	ctx := context.Background()

	eur, err := repo.EnsureCurrency(ctx, "EUR", "Euro")
	require.NoError(t, err)
	require.NoError(t, repo.UpsertRate(ctx, eur.ID, time.Now(), decimal.RequireFromString("1.6")))

	service := NewConversionService(repo)
	// 1.00 USD / 1.6 = 0.625 -> 0.63
	amount, err := service.Convert(ctx, 100, "EUR", time.Now())
	require.NoError(t, err)
	require.NotNil(t, amount)
	assert.True(t, amount.Equal(decimal.RequireFromString("0.63")), "got %s", amount)
}
