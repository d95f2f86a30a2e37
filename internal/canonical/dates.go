package canonical

import (
	"regexp"
	"strings"
	"time"
)

// dateLayouts lists the formats legacy systems express dates in, tried in
// order. Slash and dash variants are generated from the same layout set.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01-02-2006",
	"01/02/2006",
	"02-01-2006",
	"January 2 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"20060102",
}

var ordinalSuffix = regexp.MustCompile(`(\d+)(st|nd|rd|th)`)

// nullTokens are source values that stand in for an absent date.
var nullTokens = map[string]bool{"": true, "NULL": true, "N/A": true, "NONE": true}

// ParseDate parses a date from any of the formats legacy sources use.
// Null tokens and unparseable values return ok=false.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if nullTokens[strings.ToUpper(value)] {
		return time.Time{}, false
	}
	value = ordinalSuffix.ReplaceAllString(value, "$1")

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// Date builds a UTC midnight time for the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from a to b. Negative when b is
// before a.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
