package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dinerank/internal/app"
	"dinerank/internal/domain"
)

// ---- fakes ----

type fakeDiscovery struct {
	stubs []domain.VenueStub
	one   domain.VenueStub
	err   error
}

func (f *fakeDiscovery) Nearby(ctx context.Context, location string, limit int) ([]domain.VenueStub, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.stubs) {
		return f.stubs[:limit], nil
	}
	return f.stubs, nil
}

func (f *fakeDiscovery) Locate(ctx context.Context, name, location string) (domain.VenueStub, error) {
	if f.err != nil {
		return domain.VenueStub{}, f.err
	}
	return f.one, nil
}

func newService(d domain.VenueDiscovery, adapters ...domain.SourceAdapter) *app.RecommendService {
	return app.NewRecommendService(d, app.NewFetchOrchestrator(adapters, time.Second), 4, 20)
}

// ---- validation ----

func TestRecommend_MalformedInput(t *testing.T) {
	svc := newService(&fakeDiscovery{})
	cases := []app.Request{
		{},                // no query
		{Query: "nearby"}, // nearby without location
		{Query: "nearby", Location: "Lisbon", MaxTravelMin: -5},
		{Query: "nearby", Location: "Lisbon", Strategy: app.StrategyConfig{Strategy: "median"}},
		{Query: "nearby", Location: "Lisbon", Mode: "teleport"},
		{Query: "nearby", Location: "Lisbon", At: "half past noon"},
	}
	for i, req := range cases {
		if _, err := svc.Recommend(context.Background(), req); !errors.Is(err, app.ErrMalformedInput) {
			t.Errorf("case %d: got %v, want ErrMalformedInput", i, err)
		}
	}
}

func TestRecommend_UpstreamFailureIsFatal(t *testing.T) {
	svc := newService(&fakeDiscovery{err: errors.New("quota exceeded")})
	_, err := svc.Recommend(context.Background(), app.Request{Query: "nearby", Location: "Lisbon"})
	if !errors.Is(err, app.ErrUpstream) {
		t.Fatalf("got %v, want ErrUpstream", err)
	}
}

// ---- pipeline ----

func stub(id, name string, lat, lon float64, hours domain.Hours) domain.VenueStub {
	return domain.VenueStub{
		ID: id, Name: name, Address: name + " st.",
		Coords: domain.Coords{Lat: lat, Lon: lon}, Hours: hours,
	}
}

func TestRecommend_NearbyEndToEnd(t *testing.T) {
	alwaysClosed := domain.Hours{WeekdayText: []string{
		"Sunday: Closed", "Monday: Closed", "Tuesday: Closed", "Wednesday: Closed",
		"Thursday: Closed", "Friday: Closed", "Saturday: Closed",
	}}
	disc := &fakeDiscovery{stubs: []domain.VenueStub{
		stub("a", "Great Spot", 38.72, -9.14, domain.Hours{}),
		stub("b", "Shut Spot", 38.72, -9.14, alwaysClosed),
		stub("c", "Okay Spot", 38.73, -9.15, domain.Hours{}),
	}}
	svc := newService(disc,
		&fakeAdapter{name: "google", sig: sigPtr("google", 4.8, 900)},
		&fakeAdapter{name: "yelp", err: errors.New("boom")},
	)

	resp, err := svc.Recommend(context.Background(), app.Request{
		Query:        "nearby",
		Location:     "38.72,-9.14",
		MaxTravelMin: 45,
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(resp.Candidates) != 2 {
		t.Fatalf("closed venue must be filtered: got %d candidates", len(resp.Candidates))
	}
	for _, c := range resp.Candidates {
		if c.Name == "Shut Spot" {
			t.Fatalf("closed venue in output")
		}
		if c.Aggregate.Score == 0 {
			t.Fatalf("candidate %q has no aggregate", c.Name)
		}
		if len(c.Signals) != 1 || c.Signals[0].Source != "google" {
			t.Fatalf("candidate %q signals: %+v", c.Name, c.Signals)
		}
	}
	// the venue at the search origin ranks above the one a walk away
	if resp.Candidates[0].Name != "Great Spot" {
		t.Fatalf("got %q first", resp.Candidates[0].Name)
	}
	if resp.SourceErrors["yelp"] != "boom" {
		t.Fatalf("per-source errors must accompany the response: %v", resp.SourceErrors)
	}
}

func TestRecommend_DefaultTravelCeiling(t *testing.T) {
	// MaxTravelMin left at zero is "unset", not malformed: the 60-minute
	// default ceiling applies.
	disc := &fakeDiscovery{stubs: []domain.VenueStub{
		stub("near", "Near Spot", 38.72, -9.14, domain.Hours{}), // at the origin
		stub("far", "Far Spot", 38.77, -9.14, domain.Hours{}),   // ~5.6 km, ~70 min on foot
	}}
	svc := newService(disc, &fakeAdapter{name: "google", sig: sigPtr("google", 4.4, 300)})

	resp, err := svc.Recommend(context.Background(), app.Request{
		Query:    "nearby",
		Location: "38.72,-9.14",
	})
	if err != nil {
		t.Fatalf("unset ceiling must not be rejected: %v", err)
	}
	if len(resp.Candidates) != 1 || resp.Candidates[0].Name != "Near Spot" {
		t.Fatalf("default 60-minute ceiling not applied: %+v", resp.Candidates)
	}
}

func TestRecommend_SpecificVenue(t *testing.T) {
	disc := &fakeDiscovery{one: stub("a", "Trattoria", 38.72, -9.14, domain.Hours{})}
	svc := newService(disc, &fakeAdapter{name: "google", sig: sigPtr("google", 4.5, 300)})

	resp, err := svc.Recommend(context.Background(), app.Request{Query: "Trattoria", Location: "Lisbon"})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(resp.Candidates) != 1 || resp.Candidates[0].Name != "Trattoria" {
		t.Fatalf("got %+v", resp.Candidates)
	}
	c := resp.Candidates[0]
	if c.ValueScore == 0 || !c.Open {
		t.Fatalf("candidate not fully enriched: %+v", c)
	}
}

func TestRecommend_BestEffortOnEmptySignals(t *testing.T) {
	disc := &fakeDiscovery{one: stub("a", "Ghost Town Cafe", 0, 0, domain.Hours{})}
	svc := newService(disc, &fakeAdapter{name: "google"}) // absent

	resp, err := svc.Recommend(context.Background(), app.Request{Query: "Ghost Town Cafe", Location: "Nowhere"})
	if err != nil {
		t.Fatalf("no signals must still produce a best-effort result: %v", err)
	}
	c := resp.Candidates[0]
	if c.Aggregate.Score != 0 || c.Aggregate.Confidence != 0 {
		t.Fatalf("empty signal set: got %+v, want 0/0", c.Aggregate)
	}
}

// ---- dayparts ----

func TestResolveInstant(t *testing.T) {
	now := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC) // Monday 09:00

	got, err := app.ResolveInstant("lunch", now)
	if err != nil || !got.Equal(time.Date(2024, 1, 8, 12, 30, 0, 0, time.UTC)) {
		t.Fatalf("lunch: got %v, %v", got, err)
	}

	// dinner already passed today: roll to tomorrow
	evening := time.Date(2024, 1, 8, 20, 0, 0, 0, time.UTC)
	got, err = app.ResolveInstant("dinner", evening)
	if err != nil || !got.Equal(time.Date(2024, 1, 9, 19, 0, 0, 0, time.UTC)) {
		t.Fatalf("rolled dinner: got %v, %v", got, err)
	}

	got, err = app.ResolveInstant("tomorrow-breakfast", now)
	if err != nil || !got.Equal(time.Date(2024, 1, 9, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("tomorrow-breakfast: got %v, %v", got, err)
	}

	got, err = app.ResolveInstant("2024-03-01T19:00:00Z", now)
	if err != nil || got.Hour() != 19 {
		t.Fatalf("RFC3339: got %v, %v", got, err)
	}

	if got, err = app.ResolveInstant("", now); err != nil || !got.Equal(now) {
		t.Fatalf("empty at: got %v, %v", got, err)
	}

	if _, err = app.ResolveInstant("brunch", now); err == nil {
		t.Fatalf("unknown daypart must error")
	}
}
