package domain

type Coords struct{ Lat, Lon float64 }

// VenueStub is what the discovery collaborator knows about a venue before any
// rating source has been consulted.
type VenueStub struct {
	ID         string
	Name       string
	Address    string
	Coords     Coords
	DistanceKm float64 // from the search center, when the collaborator reports it
	Hours      Hours
}

// Candidate is one venue flowing through the recommendation pipeline. It is
// built from a VenueStub and enriched in a fixed order (signals+aggregate,
// geo/time, open-status, rank) and never mutated after ranking.
type Candidate struct {
	ID      string
	Name    string
	Address string
	Coords  Coords

	Signals   []RatingSignal
	Aggregate AggregateResult

	DistanceKm    float64
	TravelTimes   map[string]float64 // minutes, keyed by mode (walking, driving)
	TravelTimeMin float64            // the estimate used for ranking

	Open      bool
	OpenUntil string

	ValueScore  float64
	Exceptional bool
}

// TotalReviews sums review counts across all signals.
func (c Candidate) TotalReviews() int {
	n := 0
	for _, s := range c.Signals {
		n += s.ReviewCount
	}
	return n
}
