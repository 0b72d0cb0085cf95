package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanderlist/wanderlist/internal/middleware"
	"github.com/wanderlist/wanderlist/internal/models"
	"github.com/wanderlist/wanderlist/internal/suggest"
)

type stubPreferenceSource struct {
	counts map[string]int
}

func (s *stubPreferenceSource) GetInteractionCounts(ctx context.Context, userID uuid.UUID) (map[string]int, error) {
	return s.counts, nil
}

func newTestEngine(t *testing.T, prefs suggest.PreferenceSource) *suggest.Engine {
	t.Helper()

	cfg := suggest.DefaultConfig()
	cfg.Seed = 42
	cfg.CacheTTL = 0

	engine, err := suggest.NewEngine(cfg, prefs, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return engine
}

func TestGetSuggestions_Anonymous(t *testing.T) {
	t.Parallel()

	handler := NewSuggestionHandler(newTestEngine(t, nil))

	req := httptest.NewRequest("GET", "/suggestions?local_hour=12", nil)
	w := httptest.NewRecorder()

	handler.GetSuggestions(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		Success bool           `json:"success"`
		Data    suggest.Result `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if !body.Success {
		t.Error("Expected success to be true")
	}
	if body.Data.Metadata.Source != models.SourceDefault {
		t.Errorf("Expected default source for anonymous user, got %s", body.Data.Metadata.Source)
	}
	if len(body.Data.Suggestions) == 0 {
		t.Error("Expected at least one suggestion")
	}
	if body.Data.Metadata.HasPreferences {
		t.Error("Expected has_preferences to be false for anonymous user")
	}
}

func TestGetSuggestions_Personalized(t *testing.T) {
	t.Parallel()

	prefs := &stubPreferenceSource{counts: map[string]int{
		"restaurant": 30,
		"cafe":       25,
		"bar":        20,
		"museum":     15,
		"park":       12,
		"bakery":     10,
		"gym":        8,
		"theater":    7,
		"bookstore":  6,
		"spa":        5,
		"market":     5,
		"gallery":    4,
		"cinema":     4,
		"arcade":     3,
		"zoo":        3,
		"aquarium":   2,
		"winery":     2,
		"brewery":    2,
		"pier":       1,
		"garden":     1,
	}}
	handler := NewSuggestionHandler(newTestEngine(t, prefs))

	user := &models.User{ID: uuid.New(), Username: "tester"}
	req := httptest.NewRequest("GET", "/suggestions?local_hour=12", nil)
	req = req.WithContext(middleware.SetUserInContext(req.Context(), user))
	w := httptest.NewRecorder()

	handler.GetSuggestions(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		Data suggest.Result `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if !body.Data.Metadata.HasPreferences {
		t.Error("Expected has_preferences to be true")
	}
	if body.Data.Metadata.Source == models.SourceDefault {
		t.Error("Expected personalized source, got default")
	}
}

func TestGetSuggestions_InvalidParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
	}{
		{name: "local_hour not a number", query: "local_hour=noon"},
		{name: "local_hour out of range", query: "local_hour=24"},
		{name: "negative local_hour", query: "local_hour=-1"},
		{name: "timezone_offset not a number", query: "timezone_offset=pst"},
		{name: "timezone_offset out of range", query: "timezone_offset=2000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := NewSuggestionHandler(newTestEngine(t, nil))

			req := httptest.NewRequest("GET", "/suggestions?"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.GetSuggestions(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", resp.StatusCode)
			}
		})
	}
}
