package suggest

import (
	"time"

	"github.com/wanderlist/wanderlist/internal/models"
)

// TimeInput carries the caller's view of the current time. The viewer's
// wall-clock hour takes precedence over everything else: "late night" has to
// reflect where the viewer is, not where the server runs. A timezone offset
// is the fallback; with neither, the server clock decides.
type TimeInput struct {
	LocalHour             *int `json:"local_hour,omitempty"`      // 0-23
	TimezoneOffsetMinutes *int `json:"timezone_offset,omitempty"` // minutes east of UTC
}

// EffectiveHour resolves the viewer's local hour from the input, falling
// back to the server clock.
func (in TimeInput) EffectiveHour(now time.Time) int {
	if in.LocalHour != nil && *in.LocalHour >= 0 && *in.LocalHour <= 23 {
		return *in.LocalHour
	}
	if in.TimezoneOffsetMinutes != nil {
		return now.UTC().Add(time.Duration(*in.TimezoneOffsetMinutes) * time.Minute).Hour()
	}
	return now.Hour()
}

// TimeOfDayForHour buckets an hour of day.
func TimeOfDayForHour(hour int) models.TimeOfDay {
	switch {
	case hour < 5:
		return models.TimeOfDayLateNight
	case hour < 11:
		return models.TimeOfDayMorning
	case hour < 14:
		return models.TimeOfDayLunch
	case hour < 17:
		return models.TimeOfDayAfternoon
	case hour < 22:
		return models.TimeOfDayEvening
	default:
		return models.TimeOfDayLateNight
	}
}

// IsLateNight reports whether the hour falls in [22,24) or [0,5).
func IsLateNight(hour int) bool {
	return hour < 5 || hour >= 22
}

// IsVeryLate reports whether the hour falls in [2,5). Used only to
// intensify nightlife suggestion styling, never to change selection.
func IsVeryLate(hour int) bool {
	return hour >= 2 && hour < 5
}

// typeExclusions is the per-time-of-day denylist of place types. A category
// group containing an excluded type is dropped for that time of day.
// Absence means allowed: this is a denylist, the default is permissive.
var typeExclusions = map[models.TimeOfDay]map[string]struct{}{
	models.TimeOfDayMorning:   daytimeExclusions,
	models.TimeOfDayLunch:     daytimeExclusions,
	models.TimeOfDayAfternoon: daytimeExclusions,
	models.TimeOfDayEvening:   {},
	models.TimeOfDayLateNight: {
		"bakery":             {},
		"breakfast_spot":     {},
		"shopping_mall":      {},
		"clothing_store":     {},
		"book_store":         {},
		"market":             {},
		"museum":             {},
		"art_gallery":        {},
		"tourist_attraction": {},
		"zoo":                {},
		"amusement_park":     {},
		"park":               {},
		"hiking_area":        {},
		"beach":              {},
		"gym":                {},
		"yoga_studio":        {},
		"church":             {},
		"temple":             {},
		"mosque":             {},
	},
}

// Nightlife stays out of sight until the evening.
var daytimeExclusions = map[string]struct{}{
	"night_club": {},
	"bar":        {},
	"karaoke":    {},
	"casino":     {},
}

// typeExcludedAt reports whether a place type is denied for the given time
// of day.
func typeExcludedAt(tod models.TimeOfDay, typeID string) bool {
	excluded, ok := typeExclusions[tod]
	if !ok {
		return false
	}
	_, deny := excluded[typeID]
	return deny
}

// GroupAllowedAt reports whether a category group passes the time filter
// for the given time of day.
func GroupAllowedAt(g *models.CategoryGroup, tod models.TimeOfDay) bool {
	return groupAllowedAt(g, tod)
}

// groupAllowedAt applies the time filter to a category group: an explicit
// TimeAppropriate=false wins, then the per-type denylist.
func groupAllowedAt(g *models.CategoryGroup, tod models.TimeOfDay) bool {
	if g.Metadata != nil && g.Metadata.TimeAppropriate != nil {
		if allowed, ok := g.Metadata.TimeAppropriate[tod]; ok && !allowed {
			return false
		}
	}
	for _, t := range g.Types {
		if typeExcludedAt(tod, t.ID) {
			return false
		}
	}
	return true
}
