// Package model holds the records that flow through the place-finding
// pipeline.
package model

import (
	"github.com/sells-group/safeplaces-cli/internal/geo"
)

// Place sources.
const (
	SourceNearby     = "nearby"
	SourceTextPrefix = "text:"
)

// Restaurant address sources.
const (
	AddressSourceOSM     = "osm"
	AddressSourceReverse = "reverse"
)

// CongregationPlace is a place where minors commonly gather.
type CongregationPlace struct {
	Name         string          `json:"name" yaml:"name"`
	Address      string          `json:"address,omitempty" yaml:"address,omitempty"`
	Types        []string        `json:"types,omitempty" yaml:"types,omitempty"`
	Location     *geo.Coordinate `json:"location,omitempty" yaml:"location,omitempty"`
	DistanceFeet *float64        `json:"distance_feet,omitempty" yaml:"distance_feet,omitempty"`
	Source       string          `json:"source" yaml:"source"`
	Website      string          `json:"website,omitempty" yaml:"website,omitempty"`
}

// HasDistance reports whether a distance has been computed.
func (p CongregationPlace) HasDistance() bool { return p.DistanceFeet != nil }

// RestaurantCandidate is a named restaurant found by the Overpass query.
type RestaurantCandidate struct {
	Name          string         `json:"name" yaml:"name"`
	Address       string         `json:"address" yaml:"address"`
	AddressSource string         `json:"address_source" yaml:"address_source"`
	Location      geo.Coordinate `json:"location" yaml:"location"`
	DistanceFeet  float64        `json:"distance_feet" yaml:"distance_feet"`
	OSMType       string         `json:"osm_type" yaml:"osm_type"`
	OSMID         int64          `json:"osm_id" yaml:"osm_id"`
}

// ClearRestaurant is a restaurant with no congregation place nearby.
// OriginDistanceFeet is set only when the run had an origin address and the
// restaurant's own address resolved.
type ClearRestaurant struct {
	RestaurantCandidate
	OriginDistanceFeet *float64 `json:"origin_distance_feet,omitempty" yaml:"origin_distance_feet,omitempty"`
}

// OriginDistanceMiles returns the distance from the origin in miles.
func (r ClearRestaurant) OriginDistanceMiles() (float64, bool) {
	if r.OriginDistanceFeet == nil {
		return 0, false
	}
	return geo.FeetToMiles(*r.OriginDistanceFeet), true
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
