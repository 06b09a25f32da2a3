package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"dinerank/internal/domain"
)

// Google is the place-details source.
type Google struct {
	base string
	key  string
	hc   *http.Client
}

func NewGoogle(base, key string) *Google {
	return &Google{base: base, key: key, hc: newHTTPClient()}
}

func (g *Google) Name() string { return "google" }

func (g *Google) Fetch(ctx context.Context, name, location string) (*domain.RatingSignal, error) {
	u := fmt.Sprintf("%s/place/details?name=%s&near=%s",
		g.base, url.QueryEscape(name), url.QueryEscape(location))
	var payload map[string]any
	if err := getJSON(ctx, g.hc, u, g.key, &payload); err != nil {
		return nil, absorb(err)
	}
	return signalFrom(g.Name(), unwrap(payload, "result", "candidates")), nil
}
