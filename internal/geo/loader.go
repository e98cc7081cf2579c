package geo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// LoadOptions selects a boundary feature from a file.
type LoadOptions struct {
	// Name labels the resulting boundary.
	Name string
	// Field and Value select a feature by attribute (e.g. GEOID=47157). When
	// Field is empty the first polygon feature is used.
	Field string
	Value string
	// Fallback is the center returned by Centroid for a degenerate ring.
	Fallback Coordinate
}

// LoadBoundaryFile reads a boundary from a .wkt, .geojson/.json or .shp file.
func LoadBoundaryFile(path string, opts LoadOptions) (*Boundary, error) {
	log := zap.L().With(zap.String("component", "geo.loader"), zap.String("path", path))

	var (
		poly orb.Polygon
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wkt", ".txt":
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrap(err, "geo: read boundary file")
		}
		return ParseBoundaryWKT(opts.Name, string(data), opts.Fallback)
	case ".geojson", ".json":
		poly, err = loadGeoJSON(path, opts)
	case ".shp":
		poly, err = loadShapefile(path, opts)
	default:
		return nil, eris.Errorf("geo: unsupported boundary file %q", path)
	}
	if err != nil {
		return nil, err
	}

	b := NewBoundary(opts.Name, poly, opts.Fallback)
	log.Debug("boundary loaded", zap.String("name", opts.Name), zap.Int("vertices", b.Vertices()))
	return b, nil
}

// loadGeoJSON reads a bare geometry, a Feature, or a FeatureCollection.
func loadGeoJSON(path string, opts LoadOptions) (orb.Polygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "geo: read geojson")
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, eris.Wrap(err, "geo: parse geojson")
	}

	switch head.Type {
	case "FeatureCollection":
		var fc geojson.FeatureCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, eris.Wrap(err, "geo: parse feature collection")
		}
		for _, f := range fc.Features {
			if f == nil || !featureMatches(f, opts) {
				continue
			}
			if poly, err := geomToPolygon(f.Geometry); err == nil {
				return poly, nil
			}
		}
		return nil, eris.Errorf("geo: no polygon feature matching %s=%s", opts.Field, opts.Value)
	case "Feature":
		var f geojson.Feature
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, eris.Wrap(err, "geo: parse feature")
		}
		return geomToPolygon(f.Geometry)
	default:
		var g geom.T
		if err := geojson.Unmarshal(data, &g); err != nil {
			return nil, eris.Wrap(err, "geo: parse geometry")
		}
		return geomToPolygon(g)
	}
}

// featureMatches applies the attribute selector to a GeoJSON feature. Both
// the feature ID and its properties are consulted.
func featureMatches(f *geojson.Feature, opts LoadOptions) bool {
	if opts.Field == "" {
		return true
	}
	if strings.EqualFold(opts.Field, "id") && f.ID == opts.Value {
		return true
	}
	v, ok := f.Properties[opts.Field]
	if !ok {
		return false
	}
	switch val := v.(type) {
	case string:
		return val == opts.Value
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64) == opts.Value
	default:
		return false
	}
}

// geomToPolygon converts the outer ring of a go-geom polygon into orb form.
func geomToPolygon(g geom.T) (orb.Polygon, error) {
	var p *geom.Polygon
	switch v := g.(type) {
	case *geom.Polygon:
		p = v
	case *geom.MultiPolygon:
		if v.NumPolygons() == 0 {
			return nil, eris.New("geo: empty multipolygon")
		}
		p = v.Polygon(0)
	default:
		return nil, eris.Errorf("geo: unsupported geojson geometry %T", g)
	}
	if p.NumLinearRings() == 0 {
		return nil, eris.New("geo: polygon has no rings")
	}

	coords := p.LinearRing(0).Coords()
	ring := make(orb.Ring, 0, len(coords))
	for _, c := range coords {
		ring = append(ring, orb.Point{c.X(), c.Y()})
	}
	return orb.Polygon{ring}, nil
}

// loadShapefile reads the outer ring of the first polygon record matching the
// attribute selector, e.g. a TIGER county file filtered by GEOID.
func loadShapefile(path string, opts LoadOptions) (orb.Polygon, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "geo: open shapefile")
	}
	defer func() { _ = reader.Close() }()

	idx := -1
	if opts.Field != "" {
		idx = fieldIndex(reader, opts.Field)
		if idx < 0 {
			return nil, eris.Errorf("geo: shapefile field %s not found", opts.Field)
		}
	}

	for reader.Next() {
		_, shape := reader.Shape()
		polygon, ok := shape.(*shp.Polygon)
		if !ok || polygon == nil {
			continue
		}
		if idx >= 0 {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
			if val != opts.Value {
				continue
			}
		}
		ring := outerRing(polygon)
		if len(ring) == 0 {
			continue
		}
		return orb.Polygon{ring}, nil
	}
	return nil, eris.Errorf("geo: no polygon record matching %s=%s", opts.Field, opts.Value)
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// outerRing returns the first part of a shapefile polygon.
func outerRing(p *shp.Polygon) orb.Ring {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}
	end := int32(len(p.Points))
	if p.NumParts > 1 {
		end = p.Parts[1]
	}
	ring := make(orb.Ring, 0, end-p.Parts[0])
	for j := p.Parts[0]; j < end; j++ {
		ring = append(ring, orb.Point{p.Points[j].X, p.Points[j].Y})
	}
	return ring
}
