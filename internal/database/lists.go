package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanderlist/wanderlist/internal/models"
)

// ListRepository handles user list and list membership database operations.
// Membership writes are idempotent: a duplicate add and a redundant remove
// are both no-ops, so concurrent reconciliations of the same (user, place)
// converge instead of erroring.
type ListRepository struct {
	db     *DB
	logger *zap.Logger

	// membershipChangeHandler fires after a successful membership write so
	// callers can mark preference statistics stale and enqueue analysis.
	membershipChangeHandler func(ctx context.Context, userID uuid.UUID) error
}

// NewListRepository creates a new list repository
func NewListRepository(db *DB) *ListRepository {
	return &ListRepository{db: db}
}

// SetLogger sets the logger used for membership change reporting.
func (r *ListRepository) SetLogger(logger *zap.Logger) {
	r.logger = logger
}

// SetMembershipChangeHandler registers a callback invoked after membership
// writes. Handler failures are logged, never propagated: stale statistics
// self-heal on the next analysis run.
func (r *ListRepository) SetMembershipChangeHandler(handler func(ctx context.Context, userID uuid.UUID) error) {
	r.membershipChangeHandler = handler
}

// Create creates a new (non-default) list for a user.
func (r *ListRepository) Create(ctx context.Context, list *models.UserList) error {
	if list.ID == uuid.Nil {
		list.ID = uuid.New()
	}
	now := time.Now()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO user_lists (id, user_id, name, is_default, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, false, $4, $5, $5)
		RETURNING created_at, updated_at
	`, list.ID, list.UserID, list.Name, list.IsPublic, now,
	).Scan(&list.CreatedAt, &list.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create list: %w", err)
	}
	return nil
}

// GetByID retrieves a list by ID.
func (r *ListRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UserList, error) {
	list := &models.UserList{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, is_default, is_public, created_at, updated_at
		FROM user_lists WHERE id = $1
	`, id).Scan(
		&list.ID, &list.UserID, &list.Name, &list.IsDefault, &list.IsPublic,
		&list.CreatedAt, &list.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("list not found")
		}
		return nil, fmt.Errorf("failed to get list: %w", err)
	}
	return list, nil
}

// GetByUserID retrieves all lists owned by a user, default list first.
func (r *ListRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.UserList, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, is_default, is_public, created_at, updated_at
		FROM user_lists
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user lists: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var lists []*models.UserList
	for rows.Next() {
		list := &models.UserList{}
		if err := rows.Scan(
			&list.ID, &list.UserID, &list.Name, &list.IsDefault, &list.IsPublic,
			&list.CreatedAt, &list.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lists: %w", err)
	}
	return lists, nil
}

// Update renames a list or changes its visibility. The default list cannot
// be renamed.
func (r *ListRepository) Update(ctx context.Context, list *models.UserList) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE user_lists
		SET name = $1, is_public = $2, updated_at = $3
		WHERE id = $4 AND is_default = false
	`, list.Name, list.IsPublic, time.Now(), list.ID)
	if err != nil {
		return fmt.Errorf("failed to update list: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("list not found or is the default list")
	}
	return nil
}

// Delete removes a non-default list and its memberships.
func (r *ListRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM user_lists WHERE id = $1 AND is_default = false
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("list not found or is the default list")
	}
	return nil
}

// GetMembershipByUser returns all of the user's lists with a flag for
// whether each currently contains placeID. One batched query, no per-list
// round trips.
func (r *ListRepository) GetMembershipByUser(ctx context.Context, userID uuid.UUID, placeID string) ([]models.ListMembership, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.id, l.user_id, l.name, l.is_default, l.is_public, l.created_at, l.updated_at,
		       lp.place_id IS NOT NULL AS contains_place
		FROM user_lists l
		LEFT JOIN list_places lp ON lp.list_id = l.id AND lp.place_id = $2
		WHERE l.user_id = $1
		ORDER BY l.is_default DESC, l.created_at ASC
	`, userID, placeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load list membership: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var memberships []models.ListMembership
	for rows.Next() {
		list := &models.UserList{}
		var contains bool
		if err := rows.Scan(
			&list.ID, &list.UserID, &list.Name, &list.IsDefault, &list.IsPublic,
			&list.CreatedAt, &list.UpdatedAt, &contains,
		); err != nil {
			return nil, fmt.Errorf("failed to scan membership row: %w", err)
		}
		memberships = append(memberships, models.ListMembership{List: list, ContainsPlace: contains})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate membership rows: %w", err)
	}
	return memberships, nil
}

// ApplyMembership applies all adds and removes in one transaction. Inserts
// use ON CONFLICT DO NOTHING and removes of absent rows affect zero rows,
// so the whole operation is safe to repeat. On any failure the transaction
// rolls back and a single error is returned.
func (r *ListRepository) ApplyMembership(ctx context.Context, placeID string, toAdd, toRemove []uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin membership transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	for _, listID := range toAdd {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO list_places (id, list_id, place_id, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (list_id, place_id) DO NOTHING
		`, uuid.New(), listID, placeID, now)
		if err != nil {
			return fmt.Errorf("failed to add place to list %s: %w", listID, err)
		}
	}
	for _, listID := range toRemove {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM list_places WHERE list_id = $1 AND place_id = $2
		`, listID, placeID)
		if err != nil {
			return fmt.Errorf("failed to remove place from list %s: %w", listID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit membership changes: %w", err)
	}

	r.notifyMembershipChange(ctx, toAdd, toRemove)
	return nil
}

// notifyMembershipChange fires the change handler for the owning user.
// All touched lists belong to one user, so one lookup suffices.
func (r *ListRepository) notifyMembershipChange(ctx context.Context, toAdd, toRemove []uuid.UUID) {
	if r.membershipChangeHandler == nil {
		return
	}
	var listID uuid.UUID
	switch {
	case len(toAdd) > 0:
		listID = toAdd[0]
	case len(toRemove) > 0:
		listID = toRemove[0]
	default:
		return
	}

	var userID uuid.UUID
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM user_lists WHERE id = $1`, listID).Scan(&userID)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("failed_to_resolve_list_owner_for_change_handler", zap.Error(err))
		}
		return
	}
	if err := r.membershipChangeHandler(ctx, userID); err != nil && r.logger != nil {
		r.logger.Warn("membership_change_handler_failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
}

// GetPlaceIDsByList returns the place ids saved in a list, newest first.
func (r *ListRepository) GetPlaceIDsByList(ctx context.Context, listID uuid.UUID) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT place_id FROM list_places
		WHERE list_id = $1
		ORDER BY created_at DESC
	`, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to list place ids: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var placeIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan place id: %w", err)
		}
		placeIDs = append(placeIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate place ids: %w", err)
	}
	return placeIDs, nil
}
