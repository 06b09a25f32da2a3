package main

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"dinerank/internal/adapters/discovery"
	server "dinerank/internal/adapters/http_server"
	"dinerank/internal/adapters/observability"
	"dinerank/internal/adapters/sources"
	"dinerank/internal/app"
	"dinerank/internal/domain"
	"dinerank/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// deps
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

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{R: svc})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
