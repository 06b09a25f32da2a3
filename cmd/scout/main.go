// scout runs one recommendation query from the command line and prints the
// ranked candidates.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"dinerank/internal/adapters/discovery"
	"dinerank/internal/adapters/observability"
	"dinerank/internal/adapters/sources"
	"dinerank/internal/app"
	"dinerank/internal/domain"
	"dinerank/internal/shared"
)

func main() {
	var (
		query    = flag.String("q", "nearby", "venue name, or 'nearby'")
		location = flag.String("location", "", "free-text location or lat,lon")
		strategy = flag.String("strategy", "", "weighting strategy (default bayesian_average)")
		maxMin   = flag.Float64("max-travel-min", 0, "travel-time ceiling in minutes")
		at       = flag.String("at", "", "RFC3339 instant or daypart (breakfast/lunch/dinner)")
		mode     = flag.String("mode", "", "travel mode: walking or driving")
		limit    = flag.Int("limit", 0, "nearby candidate cap")
	)
	flag.Parse()

	ctx := context.Background()
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	disc, err := discovery.New(cfg.DiscoveryBase, cfg.DiscoveryKey, cfg.DiscoveryRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize discovery client")
	}
	ypLimiter := sources.NewYellowPagesLimiter(cfg.YPMinInterval)
	adapters := []domain.SourceAdapter{
		sources.NewGoogle(cfg.GoogleBase, cfg.GoogleKey),
		sources.NewYelp(cfg.YelpBase, cfg.YelpKey),
		sources.NewTripAdvisor(cfg.TripAdvisorBase, cfg.TripAdvisorKey),
		sources.NewYellowPages(cfg.YellowPagesBase, cfg.YellowPagesKey, ypLimiter),
	}
	fetcher := app.NewFetchOrchestrator(adapters, cfg.FetchTimeout)
	svc := app.NewRecommendService(disc, fetcher, cfg.Workers, cfg.MaxNearby)

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	resp, err := svc.Recommend(ctx, app.Request{
		Query:        *query,
		Location:     *location,
		Strategy:     app.StrategyConfig{Strategy: *strategy},
		MaxTravelMin: *maxMin,
		At:           *at,
		Mode:         *mode,
		Limit:        *limit,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("recommendation failed")
	}

	fmt.Printf("evaluated at %s\n", resp.EvaluatedAt.Format(time.RFC1123))
	for i, c := range resp.Candidates {
		open := "closed"
		if c.Open {
			open = "open"
			if c.OpenUntil != "" {
				open += " until " + c.OpenUntil
			}
		}
		star := " "
		if c.Exceptional {
			star = "*"
		}
		fmt.Printf("%2d.%s %-32s value %.2f  score %.2f (conf %.2f)  %.0f min  %s\n",
			i+1, star, c.Name, c.ValueScore, c.Aggregate.Score, c.Aggregate.Confidence, c.TravelTimeMin, open)
	}
	for src, msg := range resp.SourceErrors {
		fmt.Fprintf(os.Stderr, "source %s failed: %s\n", src, msg)
	}
}
