// Package privacy redacts user display names for public surfaces.
package privacy

import (
	"strings"
	"unicode"
)

// Anonymous is shown for users who opted out of name display or never
// set a display name.
const Anonymous = "Anonymous"

// DisplayName reduces a display name to a leaderboard-safe form.
//
// A single name collapses to its uppercased initial ("Madison" -> "M.").
// Multiple names keep the first name and reduce the last to an initial
// ("Jane Q. Public" -> "Jane P."). Opted-out or empty names become
// Anonymous.
func DisplayName(name string, show bool) string {
	if !show {
		return Anonymous
	}

	names := strings.Fields(strings.TrimSpace(name))
	if len(names) == 0 {
		return Anonymous
	}

	if len(names) == 1 {
		return initial(names[0]) + "."
	}

	return names[0] + " " + initial(names[len(names)-1]) + "."
}

// initial returns the uppercased first rune of s.
func initial(s string) string {
	for _, r := range s {
		return string(unicode.ToUpper(r))
	}
	return ""
}
