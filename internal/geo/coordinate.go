// Package geo provides the geometry used to filter places: unit conversion,
// geodesic distance, and county boundary containment.
package geo

import (
	"fmt"

	"github.com/tidwall/geodesic"
)

// Unit conversion factors.
const (
	metersPerFoot = 0.3048
	feetPerMile   = 5280.0
)

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Valid reports whether the coordinate lies within the WGS84 degree ranges.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// String formats the coordinate as "lat,lon".
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// FeetToMeters converts feet to meters.
func FeetToMeters(feet float64) float64 {
	return feet * metersPerFoot
}

// MetersToFeet converts meters to feet.
func MetersToFeet(meters float64) float64 {
	return meters / metersPerFoot
}

// MilesToFeet converts statute miles to feet.
func MilesToFeet(miles float64) float64 {
	return miles * feetPerMile
}

// FeetToMiles converts feet to statute miles.
func FeetToMiles(feet float64) float64 {
	return feet / feetPerMile
}

// DistanceMeters returns the geodesic distance between a and b on the WGS84
// ellipsoid.
func DistanceMeters(a, b Coordinate) float64 {
	var s12 float64
	geodesic.WGS84.Inverse(a.Lat, a.Lon, b.Lat, b.Lon, &s12, nil, nil)
	return s12
}

// DistanceFeet returns the geodesic distance between a and b in feet.
func DistanceFeet(a, b Coordinate) float64 {
	return MetersToFeet(DistanceMeters(a, b))
}
