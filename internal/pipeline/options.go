// Package pipeline finds places where minors congregate near an address and
// cross-references them against restaurants inside a county boundary.
package pipeline

import (
	"github.com/sells-group/safeplaces-cli/internal/geo"
)

// Default search parameters.
const (
	DefaultRadiusFeet        = 1100
	DefaultSearchRadiusMiles = 5
	DefaultCountyRadiusMiles = 20

	// progressInterval is how many records pass between progress reports.
	progressInterval = 10
)

// DefaultIncludedCategories are the Places types searched for congregation
// places.
var DefaultIncludedCategories = []string{
	"park",
	"playground",
	"school",
	"library",
	"preschool",
	"sports_complex",
	"sports_activity_location",
	"fitness_center",
	"child_care_agency",
	"video_arcade",
	"swimming_pool",
}

// DefaultExcludedCategories drop nearby results carrying any of these types.
var DefaultExcludedCategories = []string{"university"}

// DefaultKeywords drive the text searches and filter their results by name.
var DefaultKeywords = []string{"Child", "Kid"}

// Options are the search parameters for a run. They are copied at
// construction and never mutated.
type Options struct {
	// RadiusFeet is the congregation radius around an address (inclusive).
	RadiusFeet float64
	// SearchRadiusMiles bounds the restaurant search around a given address.
	SearchRadiusMiles float64
	// CountyRadiusMiles bounds the restaurant search around the boundary
	// centroid when no address is given.
	CountyRadiusMiles float64

	IncludedCategories []string
	ExcludedCategories []string
	Keywords           []string
}

// DefaultOptions returns the stock search parameters.
func DefaultOptions() Options {
	return Options{
		RadiusFeet:         DefaultRadiusFeet,
		SearchRadiusMiles:  DefaultSearchRadiusMiles,
		CountyRadiusMiles:  DefaultCountyRadiusMiles,
		IncludedCategories: DefaultIncludedCategories,
		ExcludedCategories: DefaultExcludedCategories,
		Keywords:           DefaultKeywords,
	}
}

// RadiusMeters returns the congregation radius in meters.
func (o Options) RadiusMeters() float64 {
	return geo.FeetToMeters(o.RadiusFeet)
}

// clone returns a copy whose slices do not alias the caller's.
func (o Options) clone() Options {
	o.IncludedCategories = append([]string(nil), o.IncludedCategories...)
	o.ExcludedCategories = append([]string(nil), o.ExcludedCategories...)
	o.Keywords = append([]string(nil), o.Keywords...)
	return o
}
