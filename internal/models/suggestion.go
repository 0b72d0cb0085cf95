package models

// TimeOfDay represents a coarse bucket of the viewer's local day
type TimeOfDay string

const (
	TimeOfDayMorning   TimeOfDay = "morning"
	TimeOfDayLunch     TimeOfDay = "lunch"
	TimeOfDayAfternoon TimeOfDay = "afternoon"
	TimeOfDayEvening   TimeOfDay = "evening"
	TimeOfDayLateNight TimeOfDay = "late_night"
)

// SuggestionPurpose classifies why a category group exists in the catalog
type SuggestionPurpose string

const (
	PurposePrimary    SuggestionPurpose = "primary"
	PurposeSecondary  SuggestionPurpose = "secondary"
	PurposeContextual SuggestionPurpose = "contextual"
)

// SuggestionSource describes how a suggestion set was produced
type SuggestionSource string

const (
	// SourceDefault means no preferences were available and the set was
	// sampled from the catalog by base weight.
	SourceDefault SuggestionSource = "default"
	// SourceUserPreferences means the set was built purely from preference
	// signal (no exploration slots).
	SourceUserPreferences SuggestionSource = "user_preferences"
	// SourceMixed means the set blends exploitation and exploration.
	SourceMixed SuggestionSource = "mixed"
)

// PlaceType is an immutable catalog category key with a popularity prior
type PlaceType struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	BaseWeight float64 `json:"base_weight"`
}

// CategoryMetadata carries the per-request flags attached to a category
// group. It is a closed structure: the time filter and exploration flagging
// switch on explicit fields, never on an open bag.
type CategoryMetadata struct {
	// TimeAppropriate maps a time of day to an explicit allow/deny.
	// Absent entries are permissive.
	TimeAppropriate         map[TimeOfDay]bool `json:"time_appropriate,omitempty"`
	RequiresUserIntent      bool               `json:"requires_user_intent,omitempty"`
	MinimumInteractionCount int                `json:"minimum_interaction_count,omitempty"`
	IsNightSuggestion       bool               `json:"is_night_suggestion,omitempty"`
	// IsVeryLate intensifies nightlife styling when the local hour is in
	// [2,5). It never changes selection.
	IsVeryLate          bool `json:"is_very_late,omitempty"`
	IsRandomExploration bool `json:"is_random_exploration,omitempty"`
}

// CategoryGroup is a named, queryable suggestion bucket mapping to one or
// more underlying place types. Weight and Metadata are populated per
// request by the suggestion engine and are not persisted.
type CategoryGroup struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Query    string            `json:"query"`
	Types    []PlaceType       `json:"types"`
	Purpose  SuggestionPurpose `json:"purpose"`
	Weight   float64           `json:"weight,omitempty"`
	Metadata *CategoryMetadata `json:"metadata,omitempty"`
}

// BaseWeight returns the group's prior weight: the sum of its types'
// base weights, defaulting to 1 when the group carries no types.
func (g *CategoryGroup) BaseWeight() float64 {
	if len(g.Types) == 0 {
		return 1
	}
	var w float64
	for _, t := range g.Types {
		w += t.BaseWeight
	}
	if w <= 0 {
		return 1
	}
	return w
}

// TypeIDs returns the IDs of the group's place types.
func (g *CategoryGroup) TypeIDs() []string {
	ids := make([]string, 0, len(g.Types))
	for _, t := range g.Types {
		ids = append(ids, t.ID)
	}
	return ids
}
