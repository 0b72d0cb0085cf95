// Package lists implements list membership reconciliation: given the set of
// lists a place should belong to, it computes and applies the minimal
// add/remove diff against the user's current lists.
package lists

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanderlist/wanderlist/internal/models"
)

var (
	// ErrInvalidPlaceID is returned before any I/O when the place id is
	// empty or blank.
	ErrInvalidPlaceID = errors.New("place id is required")
	// ErrListNotOwned is returned when a desired list id does not belong
	// to the user. Callers are expected to have filtered foreign ids; the
	// reconciler still refuses them rather than silently dropping them.
	ErrListNotOwned = errors.New("list does not belong to user")
	// ErrNoDefaultList is returned when a user has no default list. Every
	// account gets one at sign-up, so this indicates corrupted state.
	ErrNoDefaultList = errors.New("user has no default list")
)

// MembershipStore is the storage surface the reconciler needs. Both calls
// must be idempotent: a duplicate add and a redundant remove are no-ops so
// racing reconciliations converge instead of erroring.
type MembershipStore interface {
	// GetMembershipByUser returns all of the user's lists with a
	// contains-place flag for placeID, in a single batched read.
	GetMembershipByUser(ctx context.Context, userID uuid.UUID, placeID string) ([]models.ListMembership, error)

	// ApplyMembership applies all adds and removes as one unit of work.
	// Either everything is applied or the error describes a rolled-back
	// attempt.
	ApplyMembership(ctx context.Context, placeID string, toAdd, toRemove []uuid.UUID) error
}

// Reconciler mutates list membership so that exactly the desired lists
// contain a place. It is stateless and safe for concurrent use; concurrent
// reconciliations of the same (user, place) converge because the store's
// writes are idempotent.
type Reconciler struct {
	store  MembershipStore
	logger *zap.Logger
}

// NewReconciler creates a reconciler over the given membership store.
func NewReconciler(store MembershipStore, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, logger: logger}
}

// Reconcile makes exactly the lists in desired (and no others, among the
// user's lists) contain placeID. Lists already in the correct state are not
// touched; calling twice with the same desired set issues zero writes the
// second time. Any storage failure is surfaced as a hard error: silent
// partial application would corrupt user-visible list state.
func (r *Reconciler) Reconcile(ctx context.Context, userID uuid.UUID, placeID string, desired []uuid.UUID) error {
	if strings.TrimSpace(placeID) == "" {
		return ErrInvalidPlaceID
	}

	memberships, err := r.store.GetMembershipByUser(ctx, userID, placeID)
	if err != nil {
		return fmt.Errorf("load list membership: %w", err)
	}

	owned := make(map[uuid.UUID]bool, len(memberships))
	current := make(map[uuid.UUID]bool, len(memberships))
	for _, m := range memberships {
		owned[m.List.ID] = true
		if m.ContainsPlace {
			current[m.List.ID] = true
		}
	}

	desiredSet := make(map[uuid.UUID]bool, len(desired))
	for _, id := range desired {
		if !owned[id] {
			return fmt.Errorf("%w: %s", ErrListNotOwned, id)
		}
		desiredSet[id] = true
	}

	toAdd, toRemove := diffMembership(desiredSet, current)
	if len(toAdd) == 0 && len(toRemove) == 0 {
		r.logger.Debug("membership_already_reconciled",
			zap.String("user_id", userID.String()),
			zap.String("place_id", placeID),
		)
		return nil
	}

	if err := r.store.ApplyMembership(ctx, placeID, toAdd, toRemove); err != nil {
		return fmt.Errorf("apply list membership: %w", err)
	}

	r.logger.Info("membership_reconciled",
		zap.String("user_id", userID.String()),
		zap.String("place_id", placeID),
		zap.Int("added", len(toAdd)),
		zap.Int("removed", len(toRemove)),
	)
	return nil
}

// SetLiked toggles the place's presence in the user's default list while
// leaving every other list untouched.
func (r *Reconciler) SetLiked(ctx context.Context, userID uuid.UUID, placeID string, liked bool) error {
	if strings.TrimSpace(placeID) == "" {
		return ErrInvalidPlaceID
	}

	memberships, err := r.store.GetMembershipByUser(ctx, userID, placeID)
	if err != nil {
		return fmt.Errorf("load list membership: %w", err)
	}

	var defaultListID uuid.UUID
	found := false
	desired := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		if m.List.IsDefault {
			defaultListID = m.List.ID
			found = true
			continue
		}
		if m.ContainsPlace {
			desired = append(desired, m.List.ID)
		}
	}
	if !found {
		return ErrNoDefaultList
	}
	if liked {
		desired = append(desired, defaultListID)
	}

	return r.Reconcile(ctx, userID, placeID, desired)
}

// diffMembership computes the minimal add/remove sets between desired and
// current membership. The sets are disjoint by construction.
func diffMembership(desired, current map[uuid.UUID]bool) (toAdd, toRemove []uuid.UUID) {
	for id := range desired {
		if !current[id] {
			toAdd = append(toAdd, id)
		}
	}
	for id := range current {
		if !desired[id] {
			toRemove = append(toRemove, id)
		}
	}
	return toAdd, toRemove
}
