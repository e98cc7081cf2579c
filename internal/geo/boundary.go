package geo

import (
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/planar"
	"github.com/rotisserie/eris"
)

// DefaultBoundaryName names the embedded boundary.
const DefaultBoundaryName = "Shelby County, TN"

// DefaultFallbackCenter is downtown Memphis, used when a centroid cannot be
// computed from the boundary ring.
var DefaultFallbackCenter = Coordinate{Lat: 35.1495, Lon: -90.0490}

// ShelbyCountyWKT is the Shelby County, TN outline. The ring was adjusted by
// hand where the published county geometry clipped the river shoreline.
const ShelbyCountyWKT = `POLYGON ((-89.642786 35.04486, -89.643782 35.012092, -89.643739 35.011693,
-89.644282 34.995293, -89.724324 34.994763, -89.795187 34.994293,
-89.848488 34.994193, -89.883365 34.994261, -89.893402 34.994356,
-90.309297 34.995694, -90.309877 35.00975, -90.295596 35.040093,
-90.193859 35.061646, -90.174594 35.116682, -90.160058 35.12883,
-90.142794 35.135091, -90.109393 35.118891, -90.100593 35.116691,
-90.09061 35.118287, -90.08342 35.12167, -90.065392 35.137691,
-90.064612 35.140621, -90.073354 35.211004, -90.074262 35.218316,
-90.07741 35.225479, -90.097947 35.249983, -90.105093 35.254288,
-90.116493 35.255788, -90.140394 35.252289, -90.152094 35.255989,
-90.158865 35.262577, -90.166594 35.274588, -90.168871 35.281997,
-90.163812 35.296115, -90.158913 35.300637, -90.153394 35.302588,
-90.114893 35.303887, -90.086691 35.369935, -90.089612 35.379842,
-90.074992 35.384152, -90.061788 35.386184, -90.054322 35.389277,
-89.889317 35.390906, -89.70248 35.408584, -89.632776 35.375824,
-89.642786 35.04486))`

// Boundary is an immutable region used as a hard inclusion filter. Vertices
// are stored in (lon, lat) order.
type Boundary struct {
	name     string
	polygon  orb.Polygon
	fallback Coordinate
}

// NewBoundary creates a Boundary from an orb polygon. Only the outer ring
// takes part in containment and centroid calculations. The polygon is copied.
func NewBoundary(name string, polygon orb.Polygon, fallback Coordinate) *Boundary {
	var outer orb.Polygon
	if len(polygon) > 0 {
		outer = orb.Polygon{append(orb.Ring(nil), polygon[0]...)}
	}
	return &Boundary{name: name, polygon: outer, fallback: fallback}
}

// ParseBoundaryWKT parses a WKT POLYGON (or the first polygon of a
// MULTIPOLYGON) into a Boundary.
func ParseBoundaryWKT(name, text string, fallback Coordinate) (*Boundary, error) {
	g, err := wkt.Unmarshal(normalizeWKT(text))
	if err != nil {
		return nil, eris.Wrapf(err, "geo: parse boundary wkt for %s", name)
	}
	poly, err := polygonOf(g)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: boundary %s", name)
	}
	return NewBoundary(name, poly, fallback), nil
}

// EmbeddedBoundary returns the embedded Shelby County outline under name,
// or DefaultBoundaryName when name is empty.
func EmbeddedBoundary(name string, fallback Coordinate) *Boundary {
	if name == "" {
		name = DefaultBoundaryName
	}
	b, err := ParseBoundaryWKT(name, ShelbyCountyWKT, fallback)
	if err != nil {
		// The embedded WKT is a constant; failing to parse it is a programming error.
		panic(err)
	}
	return b
}

// Name returns the boundary name.
func (b *Boundary) Name() string { return b.name }

// Vertices returns the number of vertices in the outer ring.
func (b *Boundary) Vertices() int {
	if len(b.polygon) == 0 {
		return 0
	}
	return len(b.polygon[0])
}

// Contains reports whether c lies inside the boundary. Points exactly on the
// ring follow orb's planar ring test, which counts them as inside.
func (b *Boundary) Contains(c Coordinate) bool {
	if len(b.polygon) == 0 || len(b.polygon[0]) < 3 {
		return false
	}
	return planar.PolygonContains(b.polygon, orb.Point{c.Lon, c.Lat})
}

// Centroid returns the arithmetic mean of the outer ring's vertices. This is
// not an area centroid. For an empty ring the fallback center is returned.
func (b *Boundary) Centroid() Coordinate {
	if len(b.polygon) == 0 || len(b.polygon[0]) == 0 {
		return b.fallback
	}
	ring := b.polygon[0]
	var sumLon, sumLat float64
	for _, p := range ring {
		sumLon += p.Lon()
		sumLat += p.Lat()
	}
	n := float64(len(ring))
	c := Coordinate{Lat: sumLat / n, Lon: sumLon / n}
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || !c.Valid() {
		return b.fallback
	}
	return c
}

// wktSpacing strips whitespace around WKT punctuation.
var wktSpacing = strings.NewReplacer(" (", "(", "( ", "(", " )", ")", ") ", ")", ", ", ",", " ,", ",")

// normalizeWKT collapses line breaks and runs of spaces, which the orb parser
// does not accept between tokens.
func normalizeWKT(text string) string {
	s := strings.Join(strings.Fields(text), " ")
	for {
		next := wktSpacing.Replace(s)
		if next == s {
			return s
		}
		s = next
	}
}

// polygonOf extracts a polygon from a parsed geometry.
func polygonOf(g orb.Geometry) (orb.Polygon, error) {
	switch v := g.(type) {
	case orb.Polygon:
		if len(v) == 0 {
			return nil, eris.New("empty polygon")
		}
		return v, nil
	case orb.MultiPolygon:
		if len(v) == 0 || len(v[0]) == 0 {
			return nil, eris.New("empty multipolygon")
		}
		return v[0], nil
	default:
		return nil, eris.Errorf("unsupported geometry type %T", g)
	}
}
