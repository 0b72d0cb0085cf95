package models

import (
	"time"

	"github.com/google/uuid"
)

// UserList represents a named collection of places owned by a user.
// Exactly one list per user has IsDefault set; it is created at sign-up
// and backs the implicit "likes" collection.
type UserList struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListPlace is the join row between a list and an external place ID.
// Place IDs are opaque strings owned by the places provider.
// A given (ListID, PlaceID) pair appears at most once.
type ListPlace struct {
	ID        uuid.UUID `json:"id"`
	ListID    uuid.UUID `json:"list_id"`
	PlaceID   string    `json:"place_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ListMembership reports, for one of a user's lists, whether it currently
// contains a particular place. Produced by a single batched read.
type ListMembership struct {
	List          *UserList `json:"list"`
	ContainsPlace bool      `json:"contains_place"`
}
