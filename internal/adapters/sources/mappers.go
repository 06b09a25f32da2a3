package sources

import (
	"strconv"
	"strings"
	"time"

	"dinerank/internal/domain"
)

/********** alias registries (single source of truth) **********/

// Each site names its fields differently; one alias set per target field
// keeps the per-site code down to payload unwrapping.
var signalAliases = map[string][]string{
	"rating": {"rating", "avg_rating", "average_rating", "rating.value", "aggregate_rating"},
	"count":  {"user_ratings_total", "review_count", "num_reviews", "reviews_count", "rating_count", "total_reviews"},
	"url":    {"url", "web_url", "website", "listing_url", "link"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "4,3").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func getIntFlexible(m map[string]any, paths ...string) int {
	if f := getFloatFlexible(m, paths...); f != nil && *f > 0 {
		return int(*f)
	}
	return 0
}

// unwrap picks the payload object carrying the signal fields: the first named
// key holding either an object or a non-empty array of objects. With no match
// the top-level payload itself is tried.
func unwrap(m map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		switch v := m[k].(type) {
		case map[string]any:
			return v
		case []any:
			if len(v) > 0 {
				if obj, ok := v[0].(map[string]any); ok {
					return obj
				}
			}
			return nil
		}
	}
	return m
}

// signalFrom maps an unwrapped payload to a RatingSignal. Payloads without a
// recognizable rating are Absent. 10-scale ratings are normalized to the
// 5-scale; the result is clamped to [0,5].
func signalFrom(source string, m map[string]any) *domain.RatingSignal {
	if m == nil {
		return nil
	}
	rp := getFloatFlexible(m, signalAliases["rating"]...)
	if rp == nil {
		return nil
	}
	r := *rp
	if r > 5 && r <= 10 {
		r /= 2
	}
	if r < 0 {
		r = 0
	}
	if r > 5 {
		r = 5
	}

	sig := &domain.RatingSignal{
		Source:      source,
		Rating:      r,
		ReviewCount: getIntFlexible(m, signalAliases["count"]...),
	}
	for _, p := range signalAliases["url"] {
		if u := lookupStr(m, p); u != "" {
			sig.URL = &u
			break
		}
	}
	now := time.Now()
	sig.ObservedAt = &now
	return sig
}
