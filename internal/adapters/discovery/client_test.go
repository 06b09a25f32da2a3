package discovery_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"dinerank/internal/adapters/discovery"
)

func TestClient_Nearby_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			w.WriteHeader(200)
			_, _ = w.Write([]byte(`{"venues":[
				{"id":"v1","name":"Trattoria","address":"Rua A 1","lat":38.72,"lon":-9.14,"distance_m":350,
				 "opening_hours":{"periods":[{"open":{"day":1,"time":"1000"},"close":{"day":1,"time":"2200"}}],
				                  "weekday_text":["Monday: 10:00 AM - 10:00 PM"]}}
			]}`))
		}
	}))
	defer ts.Close()

	cl, err := discovery.New(ts.URL, "test-key", 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stubs, err := cl.Nearby(ctx, "Lisbon", 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(stubs) != 1 {
		t.Fatalf("got %d stubs, want 1", len(stubs))
	}
	v := stubs[0]
	if v.ID != "v1" || v.Name != "Trattoria" || v.DistanceKm != 0.35 {
		t.Fatalf("unexpected stub: %+v", v)
	}
	if len(v.Hours.Periods) != 1 || v.Hours.Periods[0].Open.Minutes != 600 || v.Hours.Periods[0].Close.Minutes != 1320 {
		t.Fatalf("hours not mapped: %+v", v.Hours)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_Locate_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl, err := discovery.New(ts.URL, "test-key", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := cl.Locate(ctx, "Nowhere", "Lisbon"); err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestClient_MissingIDGetsGenerated(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"venue":{"name":"Trattoria","vicinity":"Rua A","lat":1,"lon":2}}`))
	}))
	defer ts.Close()

	cl, err := discovery.New(ts.URL, "test-key", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	v, err := cl.Locate(context.Background(), "Trattoria", "Lisbon")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v.ID == "" {
		t.Fatalf("missing upstream id must be filled in")
	}
	if v.Address != "Rua A" {
		t.Fatalf("vicinity fallback not applied: %+v", v)
	}
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := discovery.New("http://example", "", 5); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
