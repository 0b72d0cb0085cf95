package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wanderlist/wanderlist/internal/places"
)

func TestPlaceHandler_Search(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/search" {
			t.Errorf("Unexpected upstream path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"places": []map[string]any{
				{"id": "p1", "name": "Blue Bottle", "categories": []string{"cafe"}},
			},
		})
	}))
	defer upstream.Close()

	client := places.NewClient(upstream.URL, "test-key", zap.NewNop())
	handler := NewPlaceHandler(client)

	req := httptest.NewRequest("GET", "/places/search?lat=37.7&lng=-122.4&category=cafe", nil)
	w := httptest.NewRecorder()

	handler.Search(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		Data []places.Place `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].ID != "p1" {
		t.Errorf("Unexpected search results: %+v", body.Data)
	}
}

func TestPlaceHandler_Search_InvalidParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
	}{
		{name: "missing lat", query: "lng=-122.4&category=cafe"},
		{name: "lat out of range", query: "lat=91&lng=-122.4&category=cafe"},
		{name: "lng out of range", query: "lat=37.7&lng=200&category=cafe"},
		{name: "missing category", query: "lat=37.7&lng=-122.4"},
		{name: "bad radius", query: "lat=37.7&lng=-122.4&category=cafe&radius=-5"},
		{name: "bad limit", query: "lat=37.7&lng=-122.4&category=cafe&limit=zero"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := NewPlaceHandler(places.NewClient("http://unused.invalid", "", zap.NewNop()))

			req := httptest.NewRequest("GET", "/places/search?"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.Search(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestPlaceHandler_GetDetails_UpstreamError(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	client := places.NewClient(upstream.URL, "test-key", zap.NewNop())
	handler := NewPlaceHandler(client)

	req := httptest.NewRequest("GET", "/places/p1", nil)
	req = mux.SetURLVars(req, map[string]string{"placeID": "p1"})
	w := httptest.NewRecorder()

	handler.GetDetails(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", resp.StatusCode)
	}
}
