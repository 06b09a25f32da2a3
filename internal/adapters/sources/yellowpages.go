package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"dinerank/internal/domain"
)

// YellowPages is the directory source. It is the one source aggressive enough
// about scraping traffic that consecutive calls are spaced out process-wide:
// the limiter is built once in main and shared across all requests, delaying
// this source's next call without blocking any other source.
type YellowPages struct {
	base string
	key  string
	hc   *http.Client
	rl   *rate.Limiter
}

// NewYellowPagesLimiter builds the process-wide soft serializer: one call per
// minInterval, burst 1.
func NewYellowPagesLimiter(minInterval time.Duration) *rate.Limiter {
	if minInterval <= 0 {
		minInterval = 500 * time.Millisecond
	}
	return rate.NewLimiter(rate.Every(minInterval), 1)
}

func NewYellowPages(base, key string, rl *rate.Limiter) *YellowPages {
	return &YellowPages{base: base, key: key, hc: newHTTPClient(), rl: rl}
}

func (y *YellowPages) Name() string { return "yellowpages" }

func (y *YellowPages) Fetch(ctx context.Context, name, location string) (*domain.RatingSignal, error) {
	if y.rl != nil {
		if err := y.rl.Wait(ctx); err != nil {
			return nil, nil // deadline hit while queued: absent, not an error
		}
	}
	u := fmt.Sprintf("%s/listings?name=%s&where=%s",
		y.base, url.QueryEscape(name), url.QueryEscape(location))
	var payload map[string]any
	if err := getJSON(ctx, y.hc, u, y.key, &payload); err != nil {
		return nil, absorb(err)
	}
	return signalFrom(y.Name(), unwrap(payload, "listings", "results")), nil
}
