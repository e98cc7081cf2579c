package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/safeplaces-cli/internal/geo"
	"github.com/sells-group/safeplaces-cli/internal/model"
	"github.com/sells-group/safeplaces-cli/pkg/geocode"
	"github.com/sells-group/safeplaces-cli/pkg/overpass"
)

func fullAddressTags(name string) map[string]string {
	return map[string]string{
		"name":             name,
		"amenity":          "restaurant",
		"addr:housenumber": "310",
		"addr:street":      "S  Front St",
		"addr:city":        "Memphis",
		"addr:state":       "TN",
		"addr:postcode":    "38103",
	}
}

func TestExtractOSMAddress(t *testing.T) {
	t.Parallel()

	addr, ok := ExtractOSMAddress(fullAddressTags("Gus's"))
	require.True(t, ok)
	assert.Equal(t, "310 S Front St, Memphis, TN 38103", addr)

	town := fullAddressTags("x")
	delete(town, "addr:city")
	town["addr:town"] = "Germantown"
	addr, ok = ExtractOSMAddress(town)
	require.True(t, ok)
	assert.Equal(t, "310 S Front St, Germantown, TN 38103", addr)

	village := fullAddressTags("x")
	delete(village, "addr:city")
	village["addr:village"] = "Arlington"
	_, ok = ExtractOSMAddress(village)
	assert.True(t, ok)

	for _, key := range []string{"addr:housenumber", "addr:street", "addr:city", "addr:state", "addr:postcode"} {
		tags := fullAddressTags("x")
		delete(tags, key)
		_, ok := ExtractOSMAddress(tags)
		assert.False(t, ok, "missing %s", key)
	}
}

func TestRestaurantCollector_CollectCounty(t *testing.T) {
	op := &fakeOverpass{resp: &overpass.Response{Elements: []overpass.Element{
		node(1, 35.1200, -89.9700, map[string]string{"name": "Far Diner"}),
		node(2, 35.1495, -90.0490, fullAddressTags("Gus's Fried Chicken")),
		way(3, 35.1400, -90.0300, map[string]string{"name": "Central Bar-B-Q"}),
		node(4, 35.1410, -90.0310, map[string]string{"amenity": "restaurant"}),
		node(5, 35.1420, -90.0320, map[string]string{"name": "Joe's Bar"}),
		node(6, 35.1465, -90.1845, map[string]string{"name": "West Memphis Grill"}),
		{Type: "relation", ID: 7, Tags: map[string]string{"name": "Nowhere Cafe"}},
	}}}
	rev := &fakeReverser{addr: "2249 Central Ave, Memphis, TN 38104"}

	c := NewRestaurantCollector(newFakeResolver(nil), rev, op, shelby(), DefaultOptions())
	got, err := c.Collect(context.Background(), "")
	require.NoError(t, err)

	centroid := shelby().Centroid()
	assert.Contains(t, op.query, `node["amenity"="restaurant"](around:32186.88`)
	assert.Contains(t, op.query, "out center tags;")

	require.Len(t, got, 3)
	assert.Equal(t, "Gus's Fried Chicken", got[0].Name)
	assert.Equal(t, "310 S Front St, Memphis, TN 38103", got[0].Address)
	assert.Equal(t, model.AddressSourceOSM, got[0].AddressSource)
	assert.Equal(t, int64(2), got[0].OSMID)

	assert.Equal(t, "Central Bar-B-Q", got[1].Name)
	assert.Equal(t, "2249 Central Ave, Memphis, TN 38104", got[1].Address)
	assert.Equal(t, model.AddressSourceReverse, got[1].AddressSource)
	assert.Equal(t, "way", got[1].OSMType)

	assert.Equal(t, "Far Diner", got[2].Name)
	assert.Equal(t, 2, rev.calls, "only kept restaurants without OSM addresses are reverse geocoded")

	for i, r := range got {
		want := roundTenth(geo.DistanceFeet(centroid, r.Location))
		assert.InDelta(t, want, r.DistanceFeet, 1e-9)
		if i > 0 {
			assert.LessOrEqual(t, got[i-1].DistanceFeet, r.DistanceFeet)
		}
	}
}

func TestRestaurantCollector_CollectNearAddress(t *testing.T) {
	resolver := newFakeResolver(map[string]geo.Coordinate{"125 N Main St": downtownMemphis})
	op := &fakeOverpass{resp: &overpass.Response{Elements: []overpass.Element{
		node(1, 35.1495, -90.0490, map[string]string{"name": "Main Street Cafe"}),
	}}}

	c := NewRestaurantCollector(resolver, &fakeReverser{}, op, shelby(), DefaultOptions())
	got, err := c.Collect(context.Background(), "125 N Main St")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, geocode.AddressUnavailable, got[0].Address)
	assert.Zero(t, got[0].DistanceFeet)
	assert.Contains(t, op.query, "around:8046.7")
	assert.Contains(t, op.query, ",35.1495,-90.049)")
}

func TestRestaurantCollector_SearchArea(t *testing.T) {
	resolver := newFakeResolver(map[string]geo.Coordinate{"125 N Main St": downtownMemphis})
	c := NewRestaurantCollector(resolver, &fakeReverser{}, &fakeOverpass{}, shelby(), DefaultOptions())

	center, radius, err := c.SearchArea(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, shelby().Centroid(), center)
	assert.InDelta(t, 105600.0, radius, 1e-9)

	center, radius, err = c.SearchArea(context.Background(), "125 N Main St")
	require.NoError(t, err)
	assert.Equal(t, downtownMemphis, center)
	assert.InDelta(t, 26400.0, radius, 1e-9)
}

func TestRestaurantCollector_ResolveFailure(t *testing.T) {
	op := &fakeOverpass{}
	c := NewRestaurantCollector(newFakeResolver(nil), &fakeReverser{}, op, shelby(), DefaultOptions())

	_, err := c.Collect(context.Background(), "123 Nowhere")
	assert.ErrorIs(t, err, geocode.ErrAddressNotFound)
	assert.Empty(t, op.query, "no query without a center")
}

func TestRestaurantCollector_OverpassFailurePropagates(t *testing.T) {
	boom := errors.New("overpass: returned status 504")
	c := NewRestaurantCollector(newFakeResolver(nil), &fakeReverser{}, &fakeOverpass{err: boom}, shelby(), DefaultOptions())

	_, err := c.Collect(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestRestaurantCollector_Empty(t *testing.T) {
	c := NewRestaurantCollector(newFakeResolver(nil), &fakeReverser{}, &fakeOverpass{resp: &overpass.Response{}}, shelby(), DefaultOptions())

	got, err := c.Collect(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
}
