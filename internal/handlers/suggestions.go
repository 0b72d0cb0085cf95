package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wanderlist/wanderlist/internal/middleware"
	"github.com/wanderlist/wanderlist/internal/suggest"
)

// SuggestionHandler serves category suggestions for the discovery surface.
type SuggestionHandler struct {
	engine *suggest.Engine
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(engine *suggest.Engine) *SuggestionHandler {
	return &SuggestionHandler{engine: engine}
}

// RegisterRoutes registers suggestion routes on the given router
func (h *SuggestionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/suggestions", h.GetSuggestions).Methods("GET")
}

// GetSuggestions returns the suggestion set for the caller. Works for
// anonymous requests too; those get the default set.
func (h *SuggestionHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	var userID *uuid.UUID
	if user := middleware.UserFromContext(r); user != nil {
		userID = &user.ID
	}

	var in suggest.TimeInput
	if lh := r.URL.Query().Get("local_hour"); lh != "" {
		parsed, err := strconv.Atoi(lh)
		if err != nil || parsed < 0 || parsed > 23 {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "local_hour must be an integer between 0 and 23")
			return
		}
		in.LocalHour = &parsed
	}
	if tz := r.URL.Query().Get("timezone_offset"); tz != "" {
		parsed, err := strconv.Atoi(tz)
		if err != nil || parsed < -720 || parsed > 840 {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "timezone_offset must be minutes in [-720, 840]")
			return
		}
		in.TimezoneOffsetMinutes = &parsed
	}

	result := h.engine.Suggest(r.Context(), userID, in)
	respondJSON(w, http.StatusOK, result)
}
