package ingest

import (
	"strings"
	"time"
)

// ParseTimestamp accepts ISO-8601 values (anything containing a 'T') and
// the list's local "DD/MM/YYYY HH:MM" format. Local values are read in loc.
// Anything else yields now, expressed in loc.
func ParseTimestamp(s string, loc *time.Location, now time.Time) time.Time {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	s = strings.TrimSpace(s)
	if s == "" {
		return now
	}
	if strings.Contains(s, "T") {
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
			var (
				t   time.Time
				err error
			)
			if layout == time.RFC3339Nano {
				t, err = time.Parse(layout, s)
			} else {
				t, err = time.ParseInLocation(layout, s, loc)
			}
			if err == nil {
				return t.In(loc)
			}
		}
		return now
	}
	for _, layout := range []string{"02/01/2006 15:04", "2/1/2006 15:04", "02/01/2006 15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t
		}
	}
	return now
}
