package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestUSDToCents_TruncatesTowardZero(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   int64
	}{
		{"whole dollars", "20", 2000},
		{"two decimal places", "19.99", 1999},
		{"truncates below half cent", "19.994", 1999},
		{"truncates above half cent", "19.999", 1999},
		{"single decimal place", "0.1", 10},
		{"zero", "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			if err != nil {
				t.Fatalf("invalid test amount %q: %v", tt.amount, err)
			}
			if got := USDToCents(amount); got != tt.want {
				t.Errorf("USDToCents(%s) = %d, want %d", tt.amount, got, tt.want)
			}
		})
	}
}

func TestCentsToUSD_RoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 1999, 123456789} {
		usd := CentsToUSD(cents)
		if got := USDToCents(usd); got != cents {
			t.Errorf("round trip for %d cents: got %d", cents, got)
		}
	}
}

func TestCentsToUSD_Exact(t *testing.T) {
	got := CentsToUSD(1999)
	want := decimal.RequireFromString("19.99")
	if !got.Equal(want) {
		t.Errorf("CentsToUSD(1999) = %s, want %s", got, want)
	}
}
