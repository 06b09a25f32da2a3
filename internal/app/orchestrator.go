package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"dinerank/internal/adapters/observability"
	"dinerank/internal/domain"
)

// FetchOrchestrator runs every configured source adapter concurrently and
// races each call against one shared deadline. A source that times out is
// simply absent from the result; a source whose adapter fails is recorded in
// the error map. A single slow source never delays collection of the others.
type FetchOrchestrator struct {
	adapters []domain.SourceAdapter
	timeout  time.Duration
}

func NewFetchOrchestrator(adapters []domain.SourceAdapter, timeout time.Duration) *FetchOrchestrator {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &FetchOrchestrator{adapters: adapters, timeout: timeout}
}

type fetchResult struct {
	source string
	signal *domain.RatingSignal
	err    error
}

// FetchAll collects rating signals from all sources for one venue. Signal
// order is insignificant. The per-source error map is empty (non-nil) when
// every source either delivered or was merely absent.
//
// Each adapter writes its result into a buffered channel sized for every
// adapter, so a call that finishes after the deadline parks its write there
// and can never race into the already-returned slices. Adapters past the
// deadline are abandoned, not cancelled: they inherit the request context,
// not the fetch deadline.
func (o *FetchOrchestrator) FetchAll(ctx context.Context, name, location string) ([]domain.RatingSignal, map[string]string) {
	results := make(chan fetchResult, len(o.adapters))

	for _, a := range o.adapters {
		go func(a domain.SourceAdapter) {
			start := time.Now()
			sig, err := a.Fetch(ctx, name, location)
			switch {
			case err != nil:
				observability.ObserveSource(a.Name(), "error", time.Since(start))
			case sig == nil:
				observability.ObserveSource(a.Name(), "absent", time.Since(start))
			default:
				observability.ObserveSource(a.Name(), "hit", time.Since(start))
			}
			results <- fetchResult{source: a.Name(), signal: sig, err: err}
		}(a)
	}

	timer := time.NewTimer(o.timeout)
	defer timer.Stop()

	signals := make([]domain.RatingSignal, 0, len(o.adapters))
	errs := make(map[string]string)
	settled := make(map[string]bool, len(o.adapters))

	pending := len(o.adapters)
	for pending > 0 {
		select {
		case r := <-results:
			pending--
			settled[r.source] = true
			if r.err != nil {
				errs[r.source] = r.err.Error()
				log.Warn().Str("source", r.source).Err(r.err).Msg("source fetch failed")
				continue
			}
			if r.signal != nil {
				signals = append(signals, *r.signal)
			}
		case <-timer.C:
			// Everyone still running is abandoned and counts as absent.
			for _, a := range o.adapters {
				if !settled[a.Name()] {
					observability.ObserveSource(a.Name(), "timeout", o.timeout)
					log.Debug().Str("source", a.Name()).Dur("timeout", o.timeout).Msg("source abandoned")
				}
			}
			pending = 0
		}
	}
	return signals, errs
}
