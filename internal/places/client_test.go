package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

func TestClient_SearchNearby(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("category"); got != "cafe" {
			t.Errorf("expected category=cafe, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("expected bearer auth header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"places":[{"id":"p1","name":"Blue Door Coffee","categories":["cafe"],"latitude":52.37,"longitude":4.89}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", zap.NewNop())
	results, err := c.SearchNearby(context.Background(), SearchQuery{
		Category:  "cafe",
		Latitude:  52.37,
		Longitude: 4.89,
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("SearchNearby: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 place, got %d", len(results))
	}
	if results[0].ID != "p1" || results[0].Name != "Blue Door Coffee" {
		t.Errorf("unexpected place: %+v", results[0])
	}
}

func TestClient_SearchNearby_ProviderError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", zap.NewNop())
	_, err := c.SearchNearby(context.Background(), SearchQuery{Latitude: 1, Longitude: 2})
	if err == nil {
		t.Error("expected error for non-200 provider response")
	}
}

func TestClient_GetDetails_CachesResult(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/v1/places/p42" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"p42","name":"Night Market","categories":["market"],"latitude":13.75,"longitude":100.5}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", zap.NewNop())

	for i := 0; i < 3; i++ {
		place, err := c.GetDetails(context.Background(), "p42")
		if err != nil {
			t.Fatalf("GetDetails: %v", err)
		}
		if place.Name != "Night Market" {
			t.Errorf("unexpected place name %q", place.Name)
		}
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("expected 1 upstream hit with caching, got %d", got)
	}
}

func TestClient_GetDetails_EmptyID(t *testing.T) {
	t.Parallel()

	c := NewClient("http://example.invalid", "", zap.NewNop())
	if _, err := c.GetDetails(context.Background(), ""); err == nil {
		t.Error("expected error for empty place id")
	}
}
