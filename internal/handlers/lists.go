package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wanderlist/wanderlist/internal/database"
	"github.com/wanderlist/wanderlist/internal/lists"
	"github.com/wanderlist/wanderlist/internal/middleware"
	"github.com/wanderlist/wanderlist/internal/models"
	"github.com/wanderlist/wanderlist/internal/validation"
)

// ListHandler handles list CRUD and place membership requests
type ListHandler struct {
	listRepo   *database.ListRepository
	reconciler *lists.Reconciler
}

// NewListHandler creates a new list handler
func NewListHandler(listRepo *database.ListRepository, reconciler *lists.Reconciler) *ListHandler {
	return &ListHandler{listRepo: listRepo, reconciler: reconciler}
}

// RegisterRoutes registers list routes on the given router
// The router should already have the /lists prefix (e.g., from apiRouter.PathPrefix("/lists"))
func (h *ListHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListLists).Methods("GET")
	r.HandleFunc("", h.CreateList).Methods("POST")
	r.HandleFunc("/{id}", h.GetList).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateList).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteList).Methods("DELETE")
	r.HandleFunc("/{id}/places", h.GetListPlaces).Methods("GET")
}

// RegisterPlaceRoutes registers membership routes on the /places prefix
func (h *ListHandler) RegisterPlaceRoutes(r *mux.Router) {
	r.HandleFunc("/{placeID}/lists", h.GetMembership).Methods("GET")
	r.HandleFunc("/{placeID}/lists", h.PutMembership).Methods("PUT")
	r.HandleFunc("/{placeID}/like", h.Like).Methods("POST")
	r.HandleFunc("/{placeID}/like", h.Unlike).Methods("DELETE")
}

// CreateListRequest represents a create list request
type CreateListRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=120"`
	IsPublic bool   `json:"is_public"`
}

// UpdateListRequest represents an update list request
type UpdateListRequest struct {
	Name     *string `json:"name,omitempty"`
	IsPublic *bool   `json:"is_public,omitempty"`
}

// PutMembershipRequest carries the full desired set of lists for a place.
type PutMembershipRequest struct {
	ListIDs []string `json:"list_ids"`
}

// ListLists lists all lists for the authenticated user, default list first
func (h *ListHandler) ListLists(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	userLists, err := h.listRepo.GetByUserID(r.Context(), user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve lists")
		return
	}

	respondJSON(w, http.StatusOK, userLists)
}

// CreateList creates a new named list
func (h *ListHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	req.Name = validation.SanitizeText(req.Name)
	if err := validation.ValidateListName(req.Name); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	list := &models.UserList{
		ID:       uuid.New(),
		UserID:   user.ID,
		Name:     req.Name,
		IsPublic: req.IsPublic,
	}

	if err := h.listRepo.Create(r.Context(), list); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create list")
		return
	}

	respondJSON(w, http.StatusCreated, list)
}

// GetList retrieves a list by ID
func (h *ListHandler) GetList(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	list, ok := h.ownedList(w, r, user.ID)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, list)
}

// UpdateList renames a list or changes its visibility. The default list
// cannot be modified.
func (h *ListHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	list, ok := h.ownedList(w, r, user.ID)
	if !ok {
		return
	}
	if list.IsDefault {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Default list cannot be modified")
		return
	}

	var req UpdateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if req.Name != nil {
		sanitized := validation.SanitizeText(*req.Name)
		if err := validation.ValidateListName(sanitized); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		list.Name = sanitized
	}
	if req.IsPublic != nil {
		list.IsPublic = *req.IsPublic
	}

	if err := h.listRepo.Update(r.Context(), list); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update list")
		return
	}

	respondJSON(w, http.StatusOK, list)
}

// DeleteList deletes a list. The default list cannot be deleted.
func (h *ListHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	list, ok := h.ownedList(w, r, user.ID)
	if !ok {
		return
	}
	if list.IsDefault {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Default list cannot be deleted")
		return
	}

	if err := h.listRepo.Delete(r.Context(), list.ID); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete list")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetListPlaces returns the place IDs saved to a list
func (h *ListHandler) GetListPlaces(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	list, ok := h.ownedList(w, r, user.ID)
	if !ok {
		return
	}

	placeIDs, err := h.listRepo.GetPlaceIDsByList(r.Context(), list.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve list places")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"list":      list,
		"place_ids": placeIDs,
	})
}

// GetMembership returns all of the user's lists with a contains-place flag
// for the given place
func (h *ListHandler) GetMembership(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	placeID := mux.Vars(r)["placeID"]
	if err := validation.ValidatePlaceID(placeID); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	memberships, err := h.listRepo.GetMembershipByUser(r.Context(), user.ID, placeID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve list membership")
		return
	}

	respondJSON(w, http.StatusOK, memberships)
}

// PutMembership reconciles which of the user's lists contain the place so
// that exactly the submitted lists do
func (h *ListHandler) PutMembership(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	placeID := mux.Vars(r)["placeID"]
	if err := validation.ValidatePlaceID(placeID); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	var req PutMembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	desired := make([]uuid.UUID, 0, len(req.ListIDs))
	for _, raw := range req.ListIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Invalid list ID: %s", raw))
			return
		}
		desired = append(desired, id)
	}

	if err := h.reconciler.Reconcile(r.Context(), user.ID, placeID, desired); err != nil {
		h.respondReconcileError(w, err)
		return
	}

	memberships, err := h.listRepo.GetMembershipByUser(r.Context(), user.ID, placeID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve list membership")
		return
	}

	respondJSON(w, http.StatusOK, memberships)
}

// Like adds the place to the user's default list
func (h *ListHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.setLiked(w, r, true)
}

// Unlike removes the place from the user's default list
func (h *ListHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.setLiked(w, r, false)
}

func (h *ListHandler) setLiked(w http.ResponseWriter, r *http.Request, liked bool) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	placeID := mux.Vars(r)["placeID"]
	if err := validation.ValidatePlaceID(placeID); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	if err := h.reconciler.SetLiked(r.Context(), user.ID, placeID, liked); err != nil {
		h.respondReconcileError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"place_id": placeID,
		"liked":    liked,
	})
}

func (h *ListHandler) respondReconcileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lists.ErrInvalidPlaceID):
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Place ID is required")
	case errors.Is(err, lists.ErrListNotOwned):
		respondJSONError(w, http.StatusForbidden, "Forbidden", "List does not belong to user")
	case errors.Is(err, lists.ErrNoDefaultList):
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Default list missing")
	default:
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update list membership")
	}
}

// ownedList loads the list from the path and verifies ownership. Writes the
// error response itself when returning false.
func (h *ListHandler) ownedList(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*models.UserList, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid list ID")
		return nil, false
	}

	list, err := h.listRepo.GetByID(r.Context(), id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "List not found")
		return nil, false
	}

	if list.UserID != userID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "List does not belong to user")
		return nil, false
	}

	return list, true
}
