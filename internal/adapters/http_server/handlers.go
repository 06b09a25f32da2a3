// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"dinerank/internal/app"
	"dinerank/internal/domain"
)

// Recommender is what the handlers need from the application layer.
type Recommender interface {
	Recommend(ctx context.Context, req app.Request) (app.Response, error)
}

type Handlers struct{ R Recommender }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/recommendations", h.recommend)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// ---- response shapes ----

type signalDTO struct {
	Source      string     `json:"source"`
	Rating      float64    `json:"rating"`
	ReviewCount int        `json:"review_count"`
	URL         *string    `json:"url,omitempty"`
	ObservedAt  *time.Time `json:"observed_at,omitempty"`
}

type candidateDTO struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Address       string             `json:"address,omitempty"`
	Lat           float64            `json:"lat"`
	Lon           float64            `json:"lon"`
	Signals       []signalDTO        `json:"signals"`
	Score         float64            `json:"score"`
	Confidence    float64            `json:"confidence"`
	DistanceKm    float64            `json:"distance_km"`
	TravelTimes   map[string]float64 `json:"travel_times_min"`
	TravelTimeMin float64            `json:"travel_time_min"`
	Open          bool               `json:"open"`
	OpenUntil     string             `json:"open_until,omitempty"`
	ValueScore    float64            `json:"value_score"`
	Exceptional   bool               `json:"exceptional"`
}

type recommendResponse struct {
	EvaluatedAt  time.Time         `json:"evaluated_at"`
	Candidates   []candidateDTO    `json:"candidates"`
	SourceErrors map[string]string `json:"source_errors,omitempty"`
}

func toDTO(c domain.Candidate) candidateDTO {
	sigs := make([]signalDTO, 0, len(c.Signals))
	for _, s := range c.Signals {
		sigs = append(sigs, signalDTO{
			Source: s.Source, Rating: s.Rating, ReviewCount: s.ReviewCount,
			URL: s.URL, ObservedAt: s.ObservedAt,
		})
	}
	return candidateDTO{
		ID: c.ID, Name: c.Name, Address: c.Address,
		Lat: c.Coords.Lat, Lon: c.Coords.Lon,
		Signals: sigs, Score: c.Aggregate.Score, Confidence: c.Aggregate.Confidence,
		DistanceKm: c.DistanceKm, TravelTimes: c.TravelTimes, TravelTimeMin: c.TravelTimeMin,
		Open: c.Open, OpenUntil: c.OpenUntil,
		ValueScore: c.ValueScore, Exceptional: c.Exceptional,
	}
}

// ---- GET /v1/recommendations ----

func (h *Handlers) recommend(w http.ResponseWriter, r *http.Request) {
	qp := r.URL.Query()
	req := app.Request{
		Query:    qp.Get("q"),
		Location: qp.Get("location"),
		At:       qp.Get("at"),
		Mode:     qp.Get("mode"),
		Strategy: app.StrategyConfig{Strategy: qp.Get("strategy")},
	}
	if v := qp.Get("max_travel_min"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid max_travel_min", "max_travel_min must be a positive number")
			return
		}
		req.MaxTravelMin = f
	}
	if v := qp.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 50 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 50")
			return
		}
		req.Limit = n
	}
	if v := qp.Get("prior"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.Strategy.PriorMean = f
		}
	}
	if v := qp.Get("prior_count"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.Strategy.PriorCount = f
		}
	}
	if v := qp.Get("weights"); v != "" {
		weights, err := parseWeights(v)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid weights", err.Error())
			return
		}
		req.Strategy.SourceWeights = weights
	}

	resp, err := h.R.Recommend(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMalformedInput):
			writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
		case errors.Is(err, app.ErrUpstream):
			writeProblem(w, http.StatusBadGateway, "Upstream Failure", err.Error())
		default:
			writeProblem(w, http.StatusInternalServerError, "Internal Error", "recommendation failed")
		}
		return
	}

	out := recommendResponse{
		EvaluatedAt:  resp.EvaluatedAt,
		Candidates:   make([]candidateDTO, 0, len(resp.Candidates)),
		SourceErrors: resp.SourceErrors,
	}
	if len(out.SourceErrors) == 0 {
		out.SourceErrors = nil
	}
	for _, c := range resp.Candidates {
		out.Candidates = append(out.Candidates, toDTO(c))
	}

	etag, body := calcETagAndBody(out)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write recommend body")
	}
}

// parseWeights reads a "source:weight" CSV like "google:1.0,yelp:0.9".
func parseWeights(s string) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, part := range strings.Split(s, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(kv) != 2 {
			return nil, errors.New("weights must be source:weight pairs")
		}
		f, err := strconv.ParseFloat(kv[1], 64)
		if err != nil || f < 0 {
			return nil, errors.New("weight must be a non-negative number")
		}
		out[strings.ToLower(strings.TrimSpace(kv[0]))] = f
	}
	return out, nil
}
