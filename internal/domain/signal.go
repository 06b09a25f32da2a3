package domain

import "time"

// RatingSignal is one review source's observation for a venue.
// Immutable once an adapter returns it.
type RatingSignal struct {
	Source      string
	Rating      float64 // 0..5
	ReviewCount int
	URL         *string
	ObservedAt  *time.Time
}

// AggregateResult is the merged view over all signals for one venue.
// Derived per request, never persisted.
type AggregateResult struct {
	Score      float64 // 2-decimal
	Confidence float64 // 0..1, 2-decimal
}
