package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	DiscoveryBase string
	DiscoveryKey  string
	DiscoveryRPS  int

	GoogleBase      string
	GoogleKey       string
	YelpBase        string
	YelpKey         string
	TripAdvisorBase string
	TripAdvisorKey  string
	YellowPagesBase string
	YellowPagesKey  string

	FetchTimeout  time.Duration // per-source fetch deadline
	YPMinInterval time.Duration // process-wide spacing for the directory source
	Workers       int           // per-venue pipeline fan-out bound
	MaxNearby     int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),

		DiscoveryBase: env("DISCOVERY_BASE_URL", "https://api.geoscout.example/v1"),
		DiscoveryKey:  env("DISCOVERY_API_KEY", ""),
		DiscoveryRPS:  atoi("DISCOVERY_RPS", 5),

		GoogleBase:      env("GOOGLE_BASE_URL", "https://maps.googleapis.example/v1"),
		GoogleKey:       env("GOOGLE_API_KEY", ""),
		YelpBase:        env("YELP_BASE_URL", "https://api.yelp.example/v3"),
		YelpKey:         env("YELP_API_KEY", ""),
		TripAdvisorBase: env("TRIPADVISOR_BASE_URL", "https://api.tripadvisor.example/v2"),
		TripAdvisorKey:  env("TRIPADVISOR_API_KEY", ""),
		YellowPagesBase: env("YELLOWPAGES_BASE_URL", "https://api.yellowpages.example/v1"),
		YellowPagesKey:  env("YELLOWPAGES_API_KEY", ""),

		FetchTimeout:  time.Duration(atoi("FETCH_TIMEOUT_MS", 3000)) * time.Millisecond,
		YPMinInterval: time.Duration(atoi("YELLOWPAGES_MIN_INTERVAL_MS", 500)) * time.Millisecond,
		Workers:       atoi("PIPELINE_WORKERS", 8),
		MaxNearby:     atoi("MAX_NEARBY_CANDIDATES", 20),
	}
	if c.DiscoveryKey == "" {
		log.Warn().Msg("DISCOVERY_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
