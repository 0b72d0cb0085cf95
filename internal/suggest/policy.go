package suggest

import "math"

const (
	// defaultExploitationRatio is the share of suggestion slots given to
	// known preference.
	defaultExploitationRatio = 0.6
	// powerUserExploitationRatio applies once a user has interacted with
	// many distinct place types; heavy users get more exploration.
	powerUserExploitationRatio = 0.5
	// powerUserTypeThreshold is the distinct-type count at which the
	// power-user ratio kicks in.
	powerUserTypeThreshold = 20
)

// exploitationRatio returns the exploitation share for a user with the
// given number of distinct preferred place types.
func exploitationRatio(distinctTypes int) float64 {
	if distinctTypes >= powerUserTypeThreshold {
		return powerUserExploitationRatio
	}
	return defaultExploitationRatio
}

// splitSlots divides max suggestion slots between exploitation and
// exploration. Exploitation rounds up, exploration takes the remainder.
func splitSlots(maxSuggestions int, ratio float64) (exploit, explore int) {
	if maxSuggestions <= 0 {
		return 0, 0
	}
	exploit = int(math.Ceil(float64(maxSuggestions) * ratio))
	if exploit > maxSuggestions {
		exploit = maxSuggestions
	}
	return exploit, maxSuggestions - exploit
}
