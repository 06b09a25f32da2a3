package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"dinerank/internal/domain"
)

// TripAdvisor is the travel-site source.
type TripAdvisor struct {
	base string
	key  string
	hc   *http.Client
}

func NewTripAdvisor(base, key string) *TripAdvisor {
	return &TripAdvisor{base: base, key: key, hc: newHTTPClient()}
}

func (t *TripAdvisor) Name() string { return "tripadvisor" }

func (t *TripAdvisor) Fetch(ctx context.Context, name, location string) (*domain.RatingSignal, error) {
	u := fmt.Sprintf("%s/location/search?searchQuery=%s&address=%s",
		t.base, url.QueryEscape(name), url.QueryEscape(location))
	var payload map[string]any
	if err := getJSON(ctx, t.hc, u, t.key, &payload); err != nil {
		return nil, absorb(err)
	}
	return signalFrom(t.Name(), unwrap(payload, "data")), nil
}
