package app

import (
	"fmt"
	"math"

	"dinerank/internal/domain"
)

// Weighting strategies. All pure and deterministic.
const (
	StrategySimpleAverage      = "simple_average"
	StrategyReviewCountWeight  = "review_count_weighted"
	StrategyBayesianAverage    = "bayesian_average"
	StrategyConfidenceWeighted = "confidence_weighted"
	StrategyPlatformTrust      = "platform_trust"
)

// defaultSourceWeights is the platform_trust table used when the caller
// supplies none. Unlisted sources weigh 1.0.
var defaultSourceWeights = map[string]float64{
	"google":      1.0,
	"yelp":        1.0,
	"tripadvisor": 0.9,
	"yellowpages": 0.8,
}

type StrategyConfig struct {
	Strategy      string
	PriorMean     float64 // bayesian_average
	PriorCount    float64 // bayesian_average pseudo-count C
	SourceWeights map[string]float64
}

// DefaultStrategy is what the API uses when the request names no strategy.
func DefaultStrategy() StrategyConfig {
	return StrategyConfig{Strategy: StrategyBayesianAverage, PriorMean: 3.5, PriorCount: 10}
}

// ValidateStrategy rejects unknown strategy names before any fetch work begins.
func ValidateStrategy(name string) error {
	switch name {
	case StrategySimpleAverage, StrategyReviewCountWeight, StrategyBayesianAverage,
		StrategyConfidenceWeighted, StrategyPlatformTrust:
		return nil
	}
	return fmt.Errorf("unknown weighting strategy %q", name)
}

// Aggregate merges rating signals into one score under the configured
// strategy. Empty input is always 0.
func Aggregate(signals []domain.RatingSignal, cfg StrategyConfig) float64 {
	if len(signals) == 0 {
		return 0
	}
	var score float64
	switch cfg.Strategy {
	case StrategyReviewCountWeight:
		score = countWeighted(signals)
	case StrategyBayesianAverage:
		score = bayesian(signals, cfg.PriorMean, cfg.PriorCount)
	case StrategyConfidenceWeighted:
		score = confidenceWeighted(signals)
	case StrategyPlatformTrust:
		score = platformTrust(signals, cfg.SourceWeights)
	default:
		score = simpleAverage(signals)
	}
	return round2(score)
}

func simpleAverage(signals []domain.RatingSignal) float64 {
	var sum float64
	for _, s := range signals {
		sum += s.Rating
	}
	return sum / float64(len(signals))
}

func countWeighted(signals []domain.RatingSignal) float64 {
	var num, den float64
	for _, s := range signals {
		num += s.Rating * float64(s.ReviewCount)
		den += float64(s.ReviewCount)
	}
	if den == 0 {
		return simpleAverage(signals)
	}
	return num / den
}

// bayesian shrinks each signal toward the prior first, then averages the
// shrunk scores. Not a single pooled formula.
func bayesian(signals []domain.RatingSignal, prior, c float64) float64 {
	var sum float64
	for _, s := range signals {
		n := float64(s.ReviewCount)
		sum += (c*prior + n*s.Rating) / (c + n)
	}
	return sum / float64(len(signals))
}

func confidenceWeighted(signals []domain.RatingSignal) float64 {
	var num, den float64
	for _, s := range signals {
		w := math.Log10(float64(s.ReviewCount)+1) + 1 // always >= 1
		num += s.Rating * w
		den += w
	}
	return num / den
}

func platformTrust(signals []domain.RatingSignal, weights map[string]float64) float64 {
	if weights == nil {
		weights = defaultSourceWeights
	}
	var num, den float64
	for _, s := range signals {
		w, ok := weights[s.Source]
		if !ok {
			w = 1.0
		}
		num += s.Rating * w
		den += w
	}
	if den == 0 {
		return simpleAverage(signals)
	}
	return num / den
}

// Confidence estimates how trustworthy an aggregate is: a 0.3/0.4/0.3 blend of
// source count, review volume, and rating consistency, each clamped to [0,1].
func Confidence(signals []domain.RatingSignal) float64 {
	if len(signals) == 0 {
		return 0
	}
	total := 0
	for _, s := range signals {
		total += s.ReviewCount
	}

	sources := math.Min(float64(len(signals))/4, 1)
	volume := math.Min(math.Log10(float64(total)+1)/3, 1)
	consistency := math.Max(0, 1-variance(signals)/2)

	return round2(0.3*sources + 0.4*volume + 0.3*consistency)
}

func variance(signals []domain.RatingSignal) float64 {
	mean := simpleAverage(signals)
	var sum float64
	for _, s := range signals {
		d := s.Rating - mean
		sum += d * d
	}
	return sum / float64(len(signals))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
