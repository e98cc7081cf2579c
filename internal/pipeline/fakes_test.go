package pipeline

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/safeplaces-cli/internal/geo"
	"github.com/sells-group/safeplaces-cli/internal/model"
	"github.com/sells-group/safeplaces-cli/pkg/geocode"
	"github.com/sells-group/safeplaces-cli/pkg/overpass"
)

var downtownMemphis = geo.Coordinate{Lat: 35.1495, Lon: -90.0490}

func shelby() *geo.Boundary {
	return geo.EmbeddedBoundary("", geo.DefaultFallbackCenter)
}

// fakeResolver resolves addresses from a fixed table.
type fakeResolver struct {
	coords map[string]geo.Coordinate
	calls  map[string]int
}

func newFakeResolver(coords map[string]geo.Coordinate) *fakeResolver {
	return &fakeResolver{coords: coords, calls: map[string]int{}}
}

func (f *fakeResolver) Resolve(_ context.Context, address string) (geo.Coordinate, error) {
	f.calls[address]++
	c, ok := f.coords[address]
	if !ok {
		return geo.Coordinate{}, eris.Wrapf(geocode.ErrAddressNotFound, "geocode: %q", address)
	}
	return c, nil
}

// fakeReverser returns a fixed address.
type fakeReverser struct {
	addr  string
	calls int
}

func (f *fakeReverser) Reverse(_ context.Context, _ geo.Coordinate) string {
	f.calls++
	if f.addr == "" {
		return geocode.AddressUnavailable
	}
	return f.addr
}

// fakeOverpass returns a canned response and records the query.
type fakeOverpass struct {
	resp  *overpass.Response
	err   error
	query string
}

func (f *fakeOverpass) Query(_ context.Context, q string) (*overpass.Response, error) {
	f.query = q
	return f.resp, f.err
}

// fakeFinder returns canned places per address.
type fakeFinder struct {
	places map[string][]model.CongregationPlace
	errs   map[string]error
	calls  []string
}

func (f *fakeFinder) Find(_ context.Context, address string) ([]model.CongregationPlace, error) {
	f.calls = append(f.calls, address)
	if err, ok := f.errs[address]; ok {
		return nil, err
	}
	return f.places[address], nil
}

func node(id int64, lat, lon float64, tags map[string]string) overpass.Element {
	return overpass.Element{Type: "node", ID: id, Lat: &lat, Lon: &lon, Tags: tags}
}

func way(id int64, lat, lon float64, tags map[string]string) overpass.Element {
	return overpass.Element{Type: "way", ID: id, Center: &overpass.LatLon{Lat: lat, Lon: lon}, Tags: tags}
}
