package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wanderlist/wanderlist/internal/middleware"
	"github.com/wanderlist/wanderlist/internal/models"
)

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Username: "tester", Email: "tester@example.com"}
}

func TestListHandler_Unauthorized(t *testing.T) {
	t.Parallel()

	// All list endpoints reject requests with no user in context before
	// touching storage, so a zero-value handler is enough here.
	handler := &ListHandler{}

	tests := []struct {
		name  string
		serve func(http.ResponseWriter, *http.Request)
	}{
		{name: "list lists", serve: handler.ListLists},
		{name: "create list", serve: handler.CreateList},
		{name: "get list", serve: handler.GetList},
		{name: "update list", serve: handler.UpdateList},
		{name: "delete list", serve: handler.DeleteList},
		{name: "get membership", serve: handler.GetMembership},
		{name: "put membership", serve: handler.PutMembership},
		{name: "like", serve: handler.Like},
		{name: "unlike", serve: handler.Unlike},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest("GET", "/test", nil)
			w := httptest.NewRecorder()

			tt.serve(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("Expected status 401, got %d", resp.StatusCode)
			}
		})
	}
}

func TestListHandler_InvalidListID(t *testing.T) {
	t.Parallel()

	handler := &ListHandler{}

	req := httptest.NewRequest("GET", "/lists/not-a-uuid", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "not-a-uuid"})
	req = req.WithContext(middleware.SetUserInContext(req.Context(), testUser()))
	w := httptest.NewRecorder()

	handler.GetList(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestListHandler_InvalidPlaceID(t *testing.T) {
	t.Parallel()

	handler := &ListHandler{}

	tests := []struct {
		name    string
		placeID string
	}{
		{name: "empty", placeID: ""},
		{name: "whitespace", placeID: "  "},
		{name: "embedded space", placeID: "place id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest("GET", "/places/x/lists", nil)
			req = mux.SetURLVars(req, map[string]string{"placeID": tt.placeID})
			req = req.WithContext(middleware.SetUserInContext(req.Context(), testUser()))
			w := httptest.NewRecorder()

			handler.GetMembership(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestPutMembership_InvalidBody(t *testing.T) {
	t.Parallel()

	handler := &ListHandler{}

	req := newTestRequest("PUT", "/places/abc123/lists", map[string]any{
		"list_ids": []string{"not-a-uuid"},
	})
	req = mux.SetURLVars(req, map[string]string{"placeID": "abc123"})
	req = req.WithContext(middleware.SetUserInContext(req.Context(), testUser()))
	w := httptest.NewRecorder()

	handler.PutMembership(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestCreateList_InvalidName(t *testing.T) {
	t.Parallel()

	handler := &ListHandler{}

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "empty name", body: map[string]any{"name": ""}},
		{name: "whitespace name", body: map[string]any{"name": "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := newTestRequest("POST", "/lists", tt.body)
			req = req.WithContext(middleware.SetUserInContext(req.Context(), testUser()))
			w := httptest.NewRecorder()

			handler.CreateList(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", resp.StatusCode)
			}
		})
	}
}
