package models

import (
	"time"

	"github.com/google/uuid"
)

// PreferenceStatistics holds a user's interaction counts by place type.
// Counts aggregate likes and list-saves involving places of that type; an
// absent entry means zero interactions. Tainted marks the counts stale
// until the analyzer recomputes them; AnalysisVersion guards concurrent
// updates optimistically.
type PreferenceStatistics struct {
	UserID          uuid.UUID      `json:"user_id"`
	TypeCounts      map[string]int `json:"type_counts"`
	Tainted         bool           `json:"tainted"`
	LastAnalyzedAt  *time.Time     `json:"last_analyzed_at,omitempty"`
	AnalysisVersion int            `json:"analysis_version"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
