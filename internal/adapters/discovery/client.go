// internal/adapters/discovery/client.go
package discovery

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"dinerank/internal/domain"
)

// Client talks to the geo candidate-discovery collaborator: given a location
// it supplies the raw list of nearby venues, including whatever opening-hours
// data the upstream has.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API (tries modern endpoints first, falls back to legacy variants) ----

func (c *Client) Nearby(ctx context.Context, location string, limit int) ([]domain.VenueStub, error) {
	q := fmt.Sprintf("location=%s&category=dining&limit=%d", url.QueryEscape(location), limit)
	candidates := []string{
		fmt.Sprintf("%s/venues/nearby?%s", c.base, q), // preferred
		fmt.Sprintf("%s/search/nearby?%s", c.base, q), // legacy
	}
	var out nearbyResponse
	if err := c.getFirst(ctx, candidates, &out); err != nil {
		return nil, err
	}
	raw := out.Venues
	if len(raw) == 0 {
		raw = out.Results
	}
	stubs := make([]domain.VenueStub, 0, len(raw))
	for _, v := range raw {
		stubs = append(stubs, v.toStub())
	}
	return stubs, nil
}

func (c *Client) Locate(ctx context.Context, name, location string) (domain.VenueStub, error) {
	q := fmt.Sprintf("name=%s&near=%s", url.QueryEscape(name), url.QueryEscape(location))
	candidates := []string{
		fmt.Sprintf("%s/venues/locate?%s", c.base, q), // preferred
		fmt.Sprintf("%s/venues/find?%s", c.base, q),   // legacy
	}
	var out locateResponse
	if err := c.getFirst(ctx, candidates, &out); err != nil {
		return domain.VenueStub{}, err
	}
	v := out.venuePayload
	if out.Venue != nil {
		v = *out.Venue
	}
	return v.toStub(), nil
}

// ---- wire payloads ----

type nearbyResponse struct {
	Venues  []venuePayload `json:"venues"`
	Results []venuePayload `json:"results"`
}

type locateResponse struct {
	venuePayload
	Venue *venuePayload `json:"venue"`
}

type venuePayload struct {
	ID        string  `json:"id"`
	PlaceID   string  `json:"place_id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Vicinity  string  `json:"vicinity"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	DistanceM float64 `json:"distance_m"`

	OpeningHours *struct {
		Periods []struct {
			Open  *wirePoint `json:"open"`
			Close *wirePoint `json:"close"`
		} `json:"periods"`
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
}

type wirePoint struct {
	Day  int    `json:"day"`
	Time string `json:"time"` // "1430"
}

func (v venuePayload) toStub() domain.VenueStub {
	s := domain.VenueStub{
		ID:         v.ID,
		Name:       v.Name,
		Address:    v.Address,
		Coords:     domain.Coords{Lat: v.Lat, Lon: v.Lon},
		DistanceKm: v.DistanceM / 1000,
	}
	if s.ID == "" {
		s.ID = v.PlaceID
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Address == "" {
		s.Address = v.Vicinity
	}
	if v.OpeningHours != nil {
		for _, p := range v.OpeningHours.Periods {
			if p.Open == nil {
				continue
			}
			op := domain.OpeningPeriod{Open: p.Open.toPoint()}
			if p.Close != nil {
				cl := p.Close.toPoint()
				op.Close = &cl
			}
			s.Hours.Periods = append(s.Hours.Periods, op)
		}
		s.Hours.WeekdayText = v.OpeningHours.WeekdayText
	}
	return s
}

func (p wirePoint) toPoint() domain.TimePoint {
	min := 0
	if n, err := strconv.Atoi(p.Time); err == nil {
		min = (n/100)*60 + n%100
	}
	return domain.TimePoint{Day: p.Day, Minutes: min}
}

// ---- Internals ----

var (
	ErrNotFound     = errors.New("discovery: not found")
	ErrUnauthorized = errors.New("discovery: unauthorized")
	ErrQuota        = errors.New("discovery: quota exceeded")
)

func (c *Client) getFirst(ctx context.Context, urls []string, out any) error {
	var last error
	for _, u := range urls {
		if err := c.get(ctx, u, out); err != nil {
			if errors.Is(err, ErrNotFound) {
				last = err
				continue // try next pattern
			}
			return err // non-404: stop early
		}
		return nil // success
	}
	if last != nil {
		return last
	}
	return errors.New("no candidate URL succeeded")
}

// get performs a GET with client-side rate limiting, retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, url string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("X-API-Key", c.key)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "dinerank/1.0")

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden, http.StatusPaymentRequired:
			resp.Body.Close()
			return ErrQuota

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential backoff delay with concurrency-safe jitter.
// i = retry attempt (0,1,2,...). Base doubles each attempt (200ms, 400ms, 800ms...),
// with up to +50% random jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
