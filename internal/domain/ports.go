package domain

import "context"

// SourceAdapter is the single capability every review source implements:
// given a venue name and a location, return one rating signal or report
// absence. Absence (not found, rate-limited upstream, unparsable payload) is
// (nil, nil); a non-nil error marks an adapter failure the caller records per
// source but never fails the request on. Implementations must respect ctx for
// their network calls; the orchestrator owns the deadline.
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context, name, location string) (*RatingSignal, error)
}

// VenueDiscovery is the external geo collaborator that supplies raw venue
// candidates. Its failure is fatal for a nearby request.
type VenueDiscovery interface {
	Nearby(ctx context.Context, location string, limit int) ([]VenueStub, error)
	Locate(ctx context.Context, name, location string) (VenueStub, error)
}
