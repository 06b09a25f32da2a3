package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"dinerank/internal/domain"
)

// Yelp is the business-search source.
type Yelp struct {
	base string
	key  string
	hc   *http.Client
}

func NewYelp(base, key string) *Yelp {
	return &Yelp{base: base, key: key, hc: newHTTPClient()}
}

func (y *Yelp) Name() string { return "yelp" }

func (y *Yelp) Fetch(ctx context.Context, name, location string) (*domain.RatingSignal, error) {
	u := fmt.Sprintf("%s/businesses/search?term=%s&location=%s&limit=1",
		y.base, url.QueryEscape(name), url.QueryEscape(location))
	var payload map[string]any
	if err := getJSON(ctx, y.hc, u, y.key, &payload); err != nil {
		return nil, absorb(err)
	}
	return signalFrom(y.Name(), unwrap(payload, "businesses")), nil
}
