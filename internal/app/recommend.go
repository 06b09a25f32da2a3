package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"dinerank/internal/adapters/observability"
	"dinerank/internal/domain"
)

var (
	// ErrMalformedInput rejects a request before any fetch work begins.
	ErrMalformedInput = errors.New("malformed input")
	// ErrUpstream marks a venue-discovery failure; fatal for a nearby request.
	ErrUpstream = errors.New("venue discovery failed")
)

// NearbyQuery is the query sentinel asking for candidates around a location
// instead of one named venue.
const NearbyQuery = "nearby"

// Travel-time estimation speeds. Rough urban averages.
const (
	walkingKmh = 4.8
	drivingKmh = 28.0
)

type Request struct {
	Query        string // venue name, or the "nearby" sentinel
	Location     string // free text or "lat,lon"
	Strategy     StrategyConfig
	MaxTravelMin float64 // travel ceiling in minutes; 0 means the 60-minute default, negative is rejected
	At           string // RFC3339 timestamp or daypart name
	Mode         string // walking (default) or driving
	Limit        int    // nearby candidate cap, 0 = service default
}

type Response struct {
	Candidates   []domain.Candidate
	SourceErrors map[string]string // present whenever any source failed
	EvaluatedAt  time.Time
}

// RecommendService runs the full pipeline: discovery, concurrent signal
// fetching, aggregation, open-status, ranking.
type RecommendService struct {
	discovery domain.VenueDiscovery
	fetcher   *FetchOrchestrator
	workers   int64
	maxNearby int
}

func NewRecommendService(d domain.VenueDiscovery, f *FetchOrchestrator, workers, maxNearby int) *RecommendService {
	if workers <= 0 {
		workers = 8
	}
	if maxNearby <= 0 {
		maxNearby = 20
	}
	return &RecommendService{discovery: d, fetcher: f, workers: int64(workers), maxNearby: maxNearby}
}

// Recommend answers a specific-venue or nearby query. Per-source failures
// never fail the request; only malformed input or a discovery failure does.
func (s *RecommendService) Recommend(ctx context.Context, req Request) (Response, error) {
	if err := s.validate(&req); err != nil {
		return Response{}, err
	}
	at, err := ResolveInstant(req.At, time.Now())
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	rid := uuid.NewString()
	origin := parseCoords(req.Location)

	if req.Query != NearbyQuery {
		stub, err := s.discovery.Locate(ctx, req.Query, req.Location)
		if err != nil {
			return Response{}, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		c, srcErrs := s.enrich(ctx, stub, origin, at, req)
		log.Info().Str("request_id", rid).Str("venue", c.Name).Float64("value", c.ValueScore).Msg("venue evaluated")
		return Response{Candidates: []domain.Candidate{c}, SourceErrors: srcErrs, EvaluatedAt: at}, nil
	}

	limit := req.Limit
	if limit <= 0 || limit > s.maxNearby {
		limit = s.maxNearby
	}
	stubs, err := s.discovery.Nearby(ctx, req.Location, limit)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	// Candidates are independent until the final sort: run the whole
	// per-venue pipeline concurrently, bounded by the worker semaphore.
	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	candidates := make([]domain.Candidate, len(stubs))
	srcErrs := make(map[string]string)

	for i, stub := range stubs {
		if err := sem.Acquire(ctx, 1); err != nil {
			return Response{}, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		wg.Add(1)
		go func(i int, stub domain.VenueStub) {
			defer wg.Done()
			defer sem.Release(1)
			c, errs := s.enrich(ctx, stub, origin, at, req)
			candidates[i] = c
			if len(errs) > 0 {
				mu.Lock()
				for src, msg := range errs {
					srcErrs[src] = msg
				}
				mu.Unlock()
			}
		}(i, stub)
	}
	wg.Wait()

	ranked := RankAndFilter(candidates, req.MaxTravelMin)
	observability.ObserveCandidates(len(stubs))
	log.Info().Str("request_id", rid).Int("candidates", len(stubs)).Int("ranked", len(ranked)).Msg("nearby query evaluated")
	return Response{Candidates: ranked, SourceErrors: srcErrs, EvaluatedAt: at}, nil
}

func (s *RecommendService) validate(req *Request) error {
	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("%w: query is required", ErrMalformedInput)
	}
	if req.Query == NearbyQuery && strings.TrimSpace(req.Location) == "" {
		return fmt.Errorf("%w: nearby search requires a location", ErrMalformedInput)
	}
	if req.MaxTravelMin < 0 {
		return fmt.Errorf("%w: max travel time must be positive", ErrMalformedInput)
	}
	if req.MaxTravelMin == 0 {
		req.MaxTravelMin = 60
	}
	if req.Strategy.Strategy == "" {
		req.Strategy = DefaultStrategy()
	} else if err := ValidateStrategy(req.Strategy.Strategy); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	switch req.Mode {
	case "":
		req.Mode = "walking"
	case "walking", "driving":
	default:
		return fmt.Errorf("%w: unknown travel mode %q", ErrMalformedInput, req.Mode)
	}
	return nil
}

// enrich runs one venue through fetch → aggregate → geo/time → open-status →
// rank-input, in that order.
func (s *RecommendService) enrich(ctx context.Context, stub domain.VenueStub, origin *domain.Coords, at time.Time, req Request) (domain.Candidate, map[string]string) {
	c := domain.Candidate{
		ID:      stub.ID,
		Name:    stub.Name,
		Address: stub.Address,
		Coords:  stub.Coords,
	}
	signals, errs := s.fetcher.FetchAll(ctx, stub.Name, req.Location)
	c.Signals = signals
	c.Aggregate = domain.AggregateResult{
		Score:      Aggregate(signals, req.Strategy),
		Confidence: Confidence(signals),
	}

	if origin != nil {
		c.DistanceKm = round2(haversineKm(*origin, stub.Coords))
	} else {
		c.DistanceKm = stub.DistanceKm
	}
	c.TravelTimes = map[string]float64{
		"walking": round2(c.DistanceKm / walkingKmh * 60),
		"driving": round2(c.DistanceKm / drivingKmh * 60),
	}
	c.TravelTimeMin = c.TravelTimes[req.Mode]

	c.Open, c.OpenUntil = ResolveOpen(stub.Hours, at)
	c.Exceptional = IsExceptional(c.Aggregate.Score, c.TotalReviews(), c.Name)
	c.ValueScore = ValueScore(c.Aggregate.Score, c.TravelTimeMin, req.MaxTravelMin, c.Exceptional)
	return c, errs
}

// parseCoords recognizes a "lat,lon" location string. Free-text locations
// return nil; the discovery collaborator owns geocoding.
func parseCoords(location string) *domain.Coords {
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		return nil
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	return &domain.Coords{Lat: lat, Lon: lon}
}

func haversineKm(a, b domain.Coords) float64 {
	const earthRadiusKm = 6371.0
	la1 := a.Lat * math.Pi / 180
	la2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
