package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/wanderlist/wanderlist/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	if err := Validate.RegisterValidation("time_of_day", validateTimeOfDay); err != nil {
		panic(fmt.Sprintf("failed to register time_of_day validator: %v", err))
	}
	if err := Validate.RegisterValidation("suggestion_purpose", validateSuggestionPurpose); err != nil {
		panic(fmt.Sprintf("failed to register suggestion_purpose validator: %v", err))
	}
}

// validateTimeOfDay validates that a string is a valid TimeOfDay enum value
func validateTimeOfDay(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.TimeOfDay(value) {
	case models.TimeOfDayMorning, models.TimeOfDayLunch, models.TimeOfDayAfternoon,
		models.TimeOfDayEvening, models.TimeOfDayLateNight:
		return true
	default:
		return false
	}
}

// validateSuggestionPurpose validates that a string is a valid SuggestionPurpose enum value
func validateSuggestionPurpose(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.SuggestionPurpose(value) {
	case models.PurposePrimary, models.PurposeSecondary, models.PurposeContextual:
		return true
	default:
		return false
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateTimeOfDay validates a TimeOfDay string value
func ValidateTimeOfDay(value string) error {
	switch models.TimeOfDay(value) {
	case models.TimeOfDayMorning, models.TimeOfDayLunch, models.TimeOfDayAfternoon,
		models.TimeOfDayEvening, models.TimeOfDayLateNight:
		return nil
	default:
		return fmt.Errorf("invalid time_of_day: %s (must be 'morning', 'lunch', 'afternoon', 'evening', or 'late_night')", value)
	}
}

// ValidateListName validates a user list name after sanitization
func ValidateListName(name string) error {
	name = SanitizeText(name)
	if name == "" {
		return fmt.Errorf("list name cannot be empty")
	}
	if len(name) > 120 {
		return fmt.Errorf("list name cannot exceed 120 characters")
	}
	return nil
}

// ValidatePlaceID validates an external place identifier. Provider IDs are
// opaque strings; reject only the clearly broken ones.
func ValidatePlaceID(placeID string) error {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return fmt.Errorf("place id cannot be empty")
	}
	if len(placeID) > 256 {
		return fmt.Errorf("place id cannot exceed 256 characters")
	}
	for _, r := range placeID {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return fmt.Errorf("place id contains invalid characters")
		}
	}
	return nil
}
