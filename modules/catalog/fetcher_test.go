package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDummyJSONFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products": [
			{"id": 1, "title": "iPhone 15", "description": "Phone"},
			{"id": 2, "title": "MacBook Air", "description": "Laptop"}
		]}`))
	}))
	defer server.Close()

	fetcher := NewDummyJSONFetcher(server.URL, 5*time.Second)
	items, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ExternalID)
	assert.Equal(t, "iPhone 15", items[0].Name)
	assert.Equal(t, "Laptop", items[1].Description)
}

func TestFakeStoreFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": 7, "title": "Backpack", "description": "Bag"}]`))
	}))
	defer server.Close()

	fetcher := NewFakeStoreFetcher(server.URL, 5*time.Second)
	items, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(7), items[0].ExternalID)
	assert.Equal(t, "Backpack", items[0].Name)
}

func TestDummyJSONFetcher_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	fetcher := NewDummyJSONFetcher(server.URL, 5*time.Second)
	_, err := fetcher.Fetch(context.Background())
	assert.Error(t, err)
}
