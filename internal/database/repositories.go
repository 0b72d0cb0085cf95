package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/wanderlist/wanderlist/internal/models"
)

// ListRepositoryInterface defines the interface for list repository operations
// This interface enables better testability by allowing mock implementations
type ListRepositoryInterface interface {
	Create(ctx context.Context, list *models.UserList) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.UserList, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.UserList, error)
	Update(ctx context.Context, list *models.UserList) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetMembershipByUser(ctx context.Context, userID uuid.UUID, placeID string) ([]models.ListMembership, error)
	ApplyMembership(ctx context.Context, placeID string, toAdd, toRemove []uuid.UUID) error
	GetPlaceIDsByList(ctx context.Context, listID uuid.UUID) ([]string, error)
}

// PreferenceRepositoryInterface defines the interface for preference repository operations
type PreferenceRepositoryInterface interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.PreferenceStatistics, error)
	GetByUserIDOrCreate(ctx context.Context, userID uuid.UUID) (*models.PreferenceStatistics, error)
	GetInteractionCounts(ctx context.Context, userID uuid.UUID) (map[string]int, error)
	UpdateStatistics(ctx context.Context, stats *models.PreferenceStatistics) (bool, error)
	MarkTainted(ctx context.Context, userID uuid.UUID) (bool, error)
	AggregateTypeCounts(ctx context.Context, userID uuid.UUID) (map[string]int, error)
}

// UserActivityRepositoryInterface defines the interface for user activity repository operations
type UserActivityRepositoryInterface interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserActivity, error)
	UpdateLastInteraction(ctx context.Context, userID uuid.UUID) error
	GetEligibleUsersForReanalysis(ctx context.Context) ([]uuid.UUID, error)
}

// Ensure concrete types implement the interfaces
var (
	_ ListRepositoryInterface         = (*ListRepository)(nil)
	_ PreferenceRepositoryInterface   = (*PreferenceRepository)(nil)
	_ UserActivityRepositoryInterface = (*UserActivityRepository)(nil)
)
