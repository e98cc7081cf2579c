package pipeline

import (
	"math"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sells-group/safeplaces-cli/internal/model"
)

var (
	barPattern = regexp.MustCompile(`(?i)\bbar\b`)
	bbqPattern = regexp.MustCompile(`(?i)\bbar-b-q\b|\bbar b q\b`)
)

// IsBarName reports whether a restaurant name looks like a bar. Barbecue
// spellings ("Bar-B-Q", "Bar B Q") are not bars.
func IsBarName(name string) bool {
	return barPattern.MatchString(name) && !bbqPattern.MatchString(name)
}

// nameKey is the case-insensitive dedup key for a place name.
func nameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// nameSet tracks place names already claimed during one search.
type nameSet map[string]struct{}

func (s nameSet) has(name string) bool {
	_, ok := s[nameKey(name)]
	return ok
}

func (s nameSet) add(name string) {
	s[nameKey(name)] = struct{}{}
}

// ContainsKeyword reports whether name contains any keyword, ignoring case.
// An empty keyword list accepts every name.
func ContainsKeyword(name string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	fold := cases.Fold()
	folded := fold.String(name)
	for _, k := range keywords {
		if k != "" && strings.Contains(folded, fold.String(k)) {
			return true
		}
	}
	return false
}

// hasAnyType reports whether types and excluded share an entry.
func hasAnyType(types, excluded []string) bool {
	for _, t := range types {
		if slices.Contains(excluded, t) {
			return true
		}
	}
	return false
}

// WithinRadius reports whether d lies inside the radius. The boundary is
// inclusive.
func WithinRadius(distanceFeet, radiusFeet float64) bool {
	return distanceFeet <= radiusFeet
}

// roundTenth rounds to one decimal place.
func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// comparePtr orders present values ascending and missing ones last.
func comparePtr(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

// SortPlacesByDistance stable-sorts places ascending by distance with
// unknown distances last.
func SortPlacesByDistance(places []model.CongregationPlace) {
	slices.SortStableFunc(places, func(a, b model.CongregationPlace) int {
		return comparePtr(a.DistanceFeet, b.DistanceFeet)
	})
}

// SortRestaurantsByDistance stable-sorts restaurants ascending by distance
// from the search center.
func SortRestaurantsByDistance(rs []model.RestaurantCandidate) {
	slices.SortStableFunc(rs, func(a, b model.RestaurantCandidate) int {
		return comparePtr(&a.DistanceFeet, &b.DistanceFeet)
	})
}

// sortClearByOrigin stable-sorts clear restaurants by origin distance with
// unresolved ones last.
func sortClearByOrigin(rs []model.ClearRestaurant) {
	slices.SortStableFunc(rs, func(a, b model.ClearRestaurant) int {
		return comparePtr(a.OriginDistanceFeet, b.OriginDistanceFeet)
	})
}
