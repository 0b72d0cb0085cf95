package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wanderlist/wanderlist/internal/places"
	"github.com/wanderlist/wanderlist/internal/validation"
)

const (
	// DefaultSearchRadiusM is the default search radius in meters
	DefaultSearchRadiusM = 2000
	// MaxSearchRadiusM caps the search radius in meters
	MaxSearchRadiusM = 50000
	// DefaultSearchLimit is the default number of search results
	DefaultSearchLimit = 20
	// MaxSearchLimit caps the number of search results
	MaxSearchLimit = 60
)

// PlaceHandler proxies place search and detail requests to the provider
type PlaceHandler struct {
	client *places.Client
}

// NewPlaceHandler creates a new place handler
func NewPlaceHandler(client *places.Client) *PlaceHandler {
	return &PlaceHandler{client: client}
}

// RegisterRoutes registers place search routes on the /places prefix
func (h *PlaceHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/search", h.Search).Methods("GET")
	r.HandleFunc("/{placeID}", h.GetDetails).Methods("GET")
}

// Search looks up nearby places for a category
func (h *PlaceHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "lat must be a number between -90 and 90")
		return
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "lng must be a number between -180 and 180")
		return
	}

	category := validation.SanitizeText(q.Get("category"))
	if category == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "category is required")
		return
	}

	radius := DefaultSearchRadiusM
	if raw := q.Get("radius"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "radius must be a positive integer")
			return
		}
		if parsed > MaxSearchRadiusM {
			parsed = MaxSearchRadiusM
		}
		radius = parsed
	}

	limit := DefaultSearchLimit
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "limit must be a positive integer")
			return
		}
		if parsed > MaxSearchLimit {
			parsed = MaxSearchLimit
		}
		limit = parsed
	}

	results, err := h.client.SearchNearby(r.Context(), places.SearchQuery{
		Category:  category,
		Latitude:  lat,
		Longitude: lng,
		RadiusM:   radius,
		Limit:     limit,
	})
	if err != nil {
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Place search failed")
		return
	}

	respondJSON(w, http.StatusOK, results)
}

// GetDetails returns provider details for a single place
func (h *PlaceHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	placeID := mux.Vars(r)["placeID"]
	if err := validation.ValidatePlaceID(placeID); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	place, err := h.client.GetDetails(r.Context(), placeID)
	if err != nil {
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Place lookup failed")
		return
	}

	respondJSON(w, http.StatusOK, place)
}
