package snapshot

import (
	"strings"
	"time"

	"rollcall-backend/internal/components/chrono"
)

var dateLayouts = []string{
	"02-01-2006",
	"02.01.2006",
	time.DateOnly,
}

// ParseDate parses a calendar date given as DD-MM-YYYY, DD.MM.YYYY or
// YYYY-MM-DD. ok is false for anything else.
func ParseDate(s string) (date time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, chrono.Brussels())
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Age returns the number of full years between birth and now.
func Age(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}
