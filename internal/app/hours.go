package app

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"dinerank/internal/domain"
)

// ResolveOpen decides whether a venue is open at the target instant and, when
// known, until when. It accepts structured weekly periods or a free-text
// weekday table; both shapes run through the same span-coverage predicate so
// overnight crossing behaves identically. Missing or unparsable hour data
// means open: venues are never hidden for lack of data.
func ResolveOpen(h domain.Hours, at time.Time) (bool, string) {
	day := int(at.Weekday())
	min := at.Hour()*60 + at.Minute()

	if len(h.Periods) > 0 {
		return resolvePeriods(h.Periods, day, min)
	}
	if len(h.WeekdayText) > 0 {
		return resolveWeekdayText(h.WeekdayText, day, min)
	}
	return true, ""
}

func resolvePeriods(periods []domain.OpeningPeriod, day, min int) (bool, string) {
	for _, p := range periods {
		// An open-ended period means always open; payloads carry it as the
		// sole period, so returning early never shadows a real span.
		if p.Close == nil {
			return true, "24 hours"
		}
		if covers(p.Open, *p.Close, day, min, false) {
			return true, clock12(p.Close.Minutes)
		}
	}
	return false, ""
}

// covers reports whether the weekly span [open, close] contains the instant
// (day, min). A span either closes the same day it opens, or closes the next
// day (overnight) — the instant then matches either the opening evening or
// the continuation past midnight. closeExcl makes the close bound exclusive
// (free-text ranges use [open, close)).
func covers(open, close domain.TimePoint, day, min int, closeExcl bool) bool {
	beforeClose := min < close.Minutes || (!closeExcl && min == close.Minutes)
	switch {
	case open.Day == close.Day:
		return day == open.Day && min >= open.Minutes && beforeClose
	case (open.Day+1)%7 == close.Day:
		if day == open.Day {
			return min >= open.Minutes
		}
		if day == close.Day {
			return beforeClose
		}
		return false
	default:
		return false
	}
}

// ---- free-text weekday tables ("Mon: 10:00 AM - 2:00 AM") ----

var dayNames = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

var hoursRangeRe = regexp.MustCompile(`(?i)(\d{1,2})(?::(\d{2}))?\s*(AM|PM)?\s*[-–]\s*(\d{1,2})(?::(\d{2}))?\s*(AM|PM)?`)

func resolveWeekdayText(texts []string, day, min int) (bool, string) {
	// Yesterday's span may continue past midnight into today.
	prev := (day + 6) % 7
	if entry, found := entryFor(texts, prev); found {
		if p, ok := parseEntry(entry, prev); ok && p.Close.Day == day && covers(p.Open, *p.Close, day, min, true) {
			return true, clock12(p.Close.Minutes)
		}
	}

	entry, found := entryFor(texts, day)
	if !found {
		return true, "" // no entry for today: assume open
	}
	low := strings.ToLower(entry)
	if strings.Contains(low, "closed") {
		return false, ""
	}
	if strings.Contains(low, "24 hours") {
		return true, "24 hours"
	}
	p, ok := parseEntry(entry, day)
	if !ok {
		return true, "" // unparsable: assume open
	}
	if covers(p.Open, *p.Close, day, min, true) {
		return true, clock12(p.Close.Minutes)
	}
	return false, ""
}

// entryFor finds the table line for a weekday by name prefix ("Mon" or
// "Monday") and returns the text after the day label.
func entryFor(texts []string, day int) (string, bool) {
	full := dayNames[day]
	abbr := full[:3]
	for _, t := range texts {
		low := strings.ToLower(strings.TrimSpace(t))
		if strings.HasPrefix(low, full) || strings.HasPrefix(low, abbr) {
			if i := strings.Index(t, ":"); i >= 0 {
				return strings.TrimSpace(t[i+1:]), true
			}
			return "", true
		}
	}
	return "", false
}

// parseEntry parses a "<open> - <close>" 12-hour range into a weekly span
// anchored on day. A close earlier than the open crosses midnight.
func parseEntry(entry string, day int) (domain.OpeningPeriod, bool) {
	m := hoursRangeRe.FindStringSubmatch(entry)
	if m == nil {
		return domain.OpeningPeriod{}, false
	}
	openMin := toMinutes(m[1], m[2], m[3])
	closeMin := toMinutes(m[4], m[5], m[6])
	closeDay := day
	if closeMin < openMin {
		closeDay = (day + 1) % 7
	}
	return domain.OpeningPeriod{
		Open:  domain.TimePoint{Day: day, Minutes: openMin},
		Close: &domain.TimePoint{Day: closeDay, Minutes: closeMin % (24 * 60)},
	}, true
}

// toMinutes converts hour/minute/marker captures to minutes since midnight.
// Each side of a range carries its own optional AM/PM marker; without one the
// hour is taken as written.
func toMinutes(hh, mm, marker string) int {
	h, _ := strconv.Atoi(hh)
	m := 0
	if mm != "" {
		m, _ = strconv.Atoi(mm)
	}
	switch strings.ToUpper(marker) {
	case "AM":
		if h == 12 {
			h = 0
		}
	case "PM":
		if h != 12 {
			h += 12
		}
	}
	return h*60 + m
}

// clock12 renders minutes-since-midnight as a 12-hour clock string.
func clock12(min int) string {
	h := min / 60
	m := min % 60
	marker := "AM"
	switch {
	case h == 0:
		h = 12
	case h == 12:
		marker = "PM"
	case h > 12:
		h -= 12
		marker = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h, m, marker)
}
