package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wanderlist/wanderlist/internal/models"
)

// PreferenceRepository handles preference statistics database operations
type PreferenceRepository struct {
	db *DB
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetByUserID retrieves preference statistics by user ID
func (r *PreferenceRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.PreferenceStatistics, error) {
	stats := &models.PreferenceStatistics{}
	var typeCountsJSON []byte
	var lastAnalyzedAt sql.NullTime

	query := `
		SELECT user_id, type_counts, tainted, last_analyzed_at, analysis_version, created_at, updated_at
		FROM preference_statistics
		WHERE user_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.UserID,
		&typeCountsJSON,
		&stats.Tainted,
		&lastAnalyzedAt,
		&stats.AnalysisVersion,
		&stats.CreatedAt,
		&stats.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("preference statistics not found for user %s", userID)
		}
		return nil, fmt.Errorf("failed to get preference statistics: %w", err)
	}

	if len(typeCountsJSON) > 0 {
		if err := json.Unmarshal(typeCountsJSON, &stats.TypeCounts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal type_counts: %w", err)
		}
	} else {
		stats.TypeCounts = make(map[string]int)
	}

	if lastAnalyzedAt.Valid {
		stats.LastAnalyzedAt = &lastAnalyzedAt.Time
	}

	return stats, nil
}

// GetByUserIDOrCreate retrieves preference statistics or creates a new record if not found
func (r *PreferenceRepository) GetByUserIDOrCreate(ctx context.Context, userID uuid.UUID) (*models.PreferenceStatistics, error) {
	stats, err := r.GetByUserID(ctx, userID)
	if err == nil {
		return stats, nil
	}

	// Create new record if not found
	stats = &models.PreferenceStatistics{
		UserID:          userID,
		TypeCounts:      make(map[string]int),
		Tainted:         true,
		AnalysisVersion: 0,
	}

	// Use Upsert to handle race condition where record might be created between GetByUserID and Create
	if err := r.Upsert(ctx, stats); err != nil {
		return nil, fmt.Errorf("failed to create preference statistics: %w", err)
	}

	// Re-fetch to get the created record with timestamps
	return r.GetByUserID(ctx, userID)
}

// GetInteractionCounts returns the user's per-category interaction counts.
// Missing statistics are not an error: a brand new user simply has no
// recorded interactions yet.
func (r *PreferenceRepository) GetInteractionCounts(ctx context.Context, userID uuid.UUID) (map[string]int, error) {
	var typeCountsJSON []byte

	err := r.db.QueryRowContext(ctx, `
		SELECT type_counts FROM preference_statistics WHERE user_id = $1
	`, userID).Scan(&typeCountsJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return map[string]int{}, nil
		}
		return nil, fmt.Errorf("failed to get interaction counts: %w", err)
	}

	counts := make(map[string]int)
	if len(typeCountsJSON) > 0 {
		if err := json.Unmarshal(typeCountsJSON, &counts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal type_counts: %w", err)
		}
	}
	return counts, nil
}

// UpdateStatistics atomically updates preference statistics with version check
// Returns true if update succeeded, false if version conflict occurred
func (r *PreferenceRepository) UpdateStatistics(ctx context.Context, stats *models.PreferenceStatistics) (bool, error) {
	query := `
		UPDATE preference_statistics
		SET type_counts = $1, tainted = false, last_analyzed_at = $2, analysis_version = analysis_version + 1, updated_at = $3
		WHERE user_id = $4 AND analysis_version = $5
		RETURNING analysis_version, created_at, updated_at
	`

	typeCountsJSON, err := json.Marshal(stats.TypeCounts)
	if err != nil {
		return false, fmt.Errorf("failed to marshal type_counts: %w", err)
	}

	now := time.Now()
	var lastAnalyzedAt sql.NullTime
	if stats.LastAnalyzedAt != nil {
		lastAnalyzedAt = sql.NullTime{Time: *stats.LastAnalyzedAt, Valid: true}
	} else {
		lastAnalyzedAt = sql.NullTime{Time: now, Valid: true}
	}

	var newVersion int
	err = r.db.QueryRowContext(ctx, query,
		typeCountsJSON,
		lastAnalyzedAt,
		now,
		stats.UserID,
		stats.AnalysisVersion,
	).Scan(&newVersion, &stats.CreatedAt, &stats.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			// Version conflict - another update occurred
			return false, nil
		}
		return false, fmt.Errorf("failed to update preference statistics: %w", err)
	}

	stats.AnalysisVersion = newVersion
	stats.Tainted = false
	if lastAnalyzedAt.Valid {
		stats.LastAnalyzedAt = &lastAnalyzedAt.Time
	}

	return true, nil
}

// MarkTainted atomically marks statistics as tainted if currently not tainted
// Returns true if transition occurred (false->true), false if already tainted
func (r *PreferenceRepository) MarkTainted(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `
		UPDATE preference_statistics
		SET tainted = true, updated_at = $1
		WHERE user_id = $2 AND tainted = false
		RETURNING user_id
	`

	var resultID uuid.UUID
	err := r.db.QueryRowContext(ctx, query, time.Now(), userID).Scan(&resultID)

	if err != nil {
		if err == sql.ErrNoRows {
			// Already tainted or record doesn't exist - create/update record
			// Use upsert to ensure record exists
			upsertQuery := `
				INSERT INTO preference_statistics (user_id, type_counts, tainted, analysis_version, created_at, updated_at)
				VALUES ($1, '{}', true, 0, $2, $2)
				ON CONFLICT (user_id) DO UPDATE
				SET tainted = true, updated_at = $2
				WHERE preference_statistics.tainted = false
				RETURNING user_id
			`
			err = r.db.QueryRowContext(ctx, upsertQuery, userID, time.Now()).Scan(&resultID)
			if err != nil {
				if err == sql.ErrNoRows {
					// Already tainted, no transition
					return false, nil
				}
				return false, fmt.Errorf("failed to mark tainted: %w", err)
			}
			// Transition occurred via upsert
			return true, nil
		}
		return false, fmt.Errorf("failed to mark tainted: %w", err)
	}

	// Transition occurred
	return true, nil
}

// Upsert creates or updates preference statistics
func (r *PreferenceRepository) Upsert(ctx context.Context, stats *models.PreferenceStatistics) error {
	query := `
		INSERT INTO preference_statistics (user_id, type_counts, tainted, last_analyzed_at, analysis_version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET type_counts = EXCLUDED.type_counts,
		    tainted = EXCLUDED.tainted,
		    last_analyzed_at = EXCLUDED.last_analyzed_at,
		    analysis_version = EXCLUDED.analysis_version,
		    updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`

	typeCountsJSON, err := json.Marshal(stats.TypeCounts)
	if err != nil {
		return fmt.Errorf("failed to marshal type_counts: %w", err)
	}

	var lastAnalyzedAt sql.NullTime
	if stats.LastAnalyzedAt != nil {
		lastAnalyzedAt = sql.NullTime{Time: *stats.LastAnalyzedAt, Valid: true}
	}

	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		stats.UserID,
		typeCountsJSON,
		stats.Tainted,
		lastAnalyzedAt,
		stats.AnalysisVersion,
		now,
		now,
	).Scan(&stats.CreatedAt, &stats.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert preference statistics: %w", err)
	}

	return nil
}

// AggregateTypeCounts recomputes per-category interaction counts from the
// user's saved places. Saved place categories are the source of truth;
// the statistics row is a cache of this aggregation.
func (r *PreferenceRepository) AggregateTypeCounts(ctx context.Context, userID uuid.UUID) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT pc.category_id, COUNT(*)
		FROM list_places lp
		JOIN user_lists l ON l.id = lp.list_id
		JOIN place_categories pc ON pc.place_id = lp.place_id
		WHERE l.user_id = $1
		GROUP BY pc.category_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate type counts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make(map[string]int)
	for rows.Next() {
		var categoryID string
		var count int
		if err := rows.Scan(&categoryID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan type count: %w", err)
		}
		counts[categoryID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate type counts: %w", err)
	}
	return counts, nil
}

// RecordPlaceCategories stores the categories observed for a place so
// later aggregations can attribute saves to categories. Idempotent per
// (place, category) pair.
func (r *PreferenceRepository) RecordPlaceCategories(ctx context.Context, placeID string, categoryIDs []string) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	now := time.Now()
	for _, categoryID := range categoryIDs {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO place_categories (place_id, category_id, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (place_id, category_id) DO NOTHING
		`, placeID, categoryID, now)
		if err != nil {
			return fmt.Errorf("failed to record place category: %w", err)
		}
	}
	return nil
}
