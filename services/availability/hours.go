// File: services/availability/hours.go
package availability

import (
	"strings"
	"time"
)

const closedMarker = "closed"

// parseHours splits a working-hours string like "9:00 AM - 5:00 PM" into
// open/close minutes from midnight. Returns ok=false for "Closed", empty, or
// anything it cannot parse; callers treat that day as having no slots.
func parseHours(hours string) (openMin, closeMin int, ok bool) {
	trimmed := strings.TrimSpace(hours)
	if trimmed == "" || strings.EqualFold(trimmed, closedMarker) {
		return 0, 0, false
	}
	parts := strings.Split(trimmed, "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	open, err := parseClock(parts[0])
	if err != nil {
		return 0, 0, false
	}
	close, err := parseClock(parts[1])
	if err != nil {
		return 0, 0, false
	}
	if close <= open {
		return 0, 0, false
	}
	return open, close, true
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("3:04 PM", strings.TrimSpace(s))
	if err != nil {
		t, err = time.Parse("15:04", strings.TrimSpace(s))
		if err != nil {
			return 0, err
		}
	}
	return t.Hour()*60 + t.Minute(), nil
}
