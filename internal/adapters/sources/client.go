package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("source: not found")
	ErrRateLimited = errors.New("source: rate limited")
)

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// getJSON performs one GET and decodes the body into out. No retries: a
// source that cannot answer this request is simply absent from it, nothing is
// queued for a later attempt.
func getJSON(ctx context.Context, hc *http.Client, url, key string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "dinerank/1.0")

	resp, err := hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return json.NewDecoder(resp.Body).Decode(out)
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
}

// absorb collapses the outcomes that mean "no signal this time" into Absent.
// Only genuine adapter failures surface to the orchestrator's error map.
func absorb(err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrRateLimited) {
		return nil
	}
	return err
}
