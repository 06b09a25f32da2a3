package app

import (
	"fmt"
	"strings"
	"time"
)

// Named planning-time buckets mapped to concrete clock times.
var dayparts = map[string]struct {
	hour, min int
	nextDay   bool
}{
	"breakfast":          {8, 0, false},
	"lunch":              {12, 30, false},
	"dinner":             {19, 0, false},
	"tomorrow-breakfast": {8, 0, true},
	"tomorrow-lunch":     {12, 30, true},
	"tomorrow-dinner":    {19, 0, true},
}

// ResolveInstant maps the request's `at` field to a concrete instant: empty
// means now, an RFC 3339 timestamp is taken as-is, and a daypart name means
// that clock time today — rolled forward to tomorrow if it already passed.
func ResolveInstant(at string, now time.Time) (time.Time, error) {
	if at == "" {
		return now, nil
	}
	if dp, ok := dayparts[strings.ToLower(strings.TrimSpace(at))]; ok {
		t := time.Date(now.Year(), now.Month(), now.Day(), dp.hour, dp.min, 0, 0, now.Location())
		if dp.nextDay {
			t = t.AddDate(0, 0, 1)
		} else if t.Before(now) {
			t = t.AddDate(0, 0, 1)
		}
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, at); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q (want RFC3339 or a daypart)", at)
}
