package domain

// TimePoint is a recurring weekly instant: day of week (0=Sunday..6=Saturday)
// plus minutes since local midnight.
type TimePoint struct {
	Day     int
	Minutes int
}

// OpeningPeriod is one recurring weekly open interval. A nil Close means the
// venue never closes. A period may cross midnight (Close on the next day).
type OpeningPeriod struct {
	Open  TimePoint
	Close *TimePoint
}

// Hours carries whichever shape the discovery payload had: structured weekly
// periods, a free-text weekday table ("Mon: 10:00 AM - 10:00 PM"), or neither.
type Hours struct {
	Periods     []OpeningPeriod
	WeekdayText []string
}
