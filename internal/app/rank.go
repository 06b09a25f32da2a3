package app

import (
	"sort"
	"strings"

	"dinerank/internal/domain"
)

// Exceptional venues may exceed the normal travel-time ceiling.
const (
	exceptionalScore   = 4.8
	exceptionalReviews = 500
	eliteScore         = 4.9
	eliteReviews       = 200
)

// awardKeywords mark venues worth traveling further for regardless of the
// numeric thresholds.
var awardKeywords = []string{"michelin", "james beard", "world's 50 best", "bib gourmand"}

// IsExceptional is the heuristic for "worth traveling past the ceiling":
// a very high score backed by enough reviews, or a top culinary award in the
// venue name.
func IsExceptional(score float64, totalReviews int, name string) bool {
	if score >= exceptionalScore && totalReviews >= exceptionalReviews {
		return true
	}
	if score >= eliteScore && totalReviews >= eliteReviews {
		return true
	}
	low := strings.ToLower(name)
	for _, k := range awardKeywords {
		if strings.Contains(low, k) {
			return true
		}
	}
	return false
}

// ValueScore trades rating quality against travel time. The time factor is
// 1.0 at the door, decays linearly to 0.7 at the ceiling, then keeps decaying
// per overtime minute (gently for exceptional venues, steeply otherwise)
// down to a floor of 0.3. Exceptional venues also get +0.2 effective rating.
func ValueScore(rating, travelMin, maxTravelMin float64, exceptional bool) float64 {
	if maxTravelMin <= 0 {
		maxTravelMin = 60
	}
	var factor float64
	if travelMin <= maxTravelMin {
		factor = 1.0 - 0.3*travelMin/maxTravelMin
	} else {
		over := travelMin - maxTravelMin
		slope := 0.4
		if exceptional {
			slope = 0.1
		}
		factor = 0.7 - slope*over/maxTravelMin
	}
	if factor < 0.3 {
		factor = 0.3
	}
	eff := rating
	if exceptional {
		eff += 0.2
	}
	return round2(eff * factor)
}

// RankAndFilter keeps candidates that are open and either within the travel
// ceiling or exceptional, sorted descending by value score. The sort is
// stable: exact ties preserve the input order.
func RankAndFilter(candidates []domain.Candidate, maxTravelMin float64) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !c.Open {
			continue
		}
		if c.TravelTimeMin > maxTravelMin && !c.Exceptional {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ValueScore > out[j].ValueScore
	})
	return out
}
