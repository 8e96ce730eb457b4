package currency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNBUFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20260310", r.URL.Query().Get("date"))
		assert.True(t, r.URL.Query().Has("json"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"cc": "USD", "txt": "US Dollar", "rate": 41.25, "units": 1},
			{"cc": "JPY", "txt": "Yen", "rate": 27.5, "units": 100},
			{"cc": "XAU", "txt": "Gold", "rate": 90000.1}
		]`))
	}))
	defer server.Close()

	fetcher := NewNBUFetcher(server.URL, 5*time.Second)
	rows, err := fetcher.Fetch(context.Background(), time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "USD", rows[0].Code)
	assert.True(t, rows[0].Rate.Equal(decimal.RequireFromString("41.25")))
	assert.Equal(t, int64(100), rows[1].Units)
	assert.Equal(t, int64(1), rows[2].Units, "missing units defaults to 1")
}
