package storefetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name": "widget"}`))
	}))
	defer server.Close()

	var payload struct {
		Name string `json:"name"`
	}
	client := NewClient(5 * time.Second)
	if err := client.GetJSON(context.Background(), server.URL, &payload); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if payload.Name != "widget" {
		t.Errorf("expected name widget, got %q", payload.Name)
	}
}

func TestClient_GetJSON_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(5 * time.Second)
	err := client.GetJSON(context.Background(), server.URL, &struct{}{})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewError("dummyjson", inner)

	if !errors.Is(err, inner) {
		t.Error("expected wrapped error to match with errors.Is")
	}
	if got := err.Error(); got == "" {
		t.Error("expected non-empty error message")
	}
}
