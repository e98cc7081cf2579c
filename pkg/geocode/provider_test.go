package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/safeplaces-cli/internal/geo"
)

func TestCascadeClient_FirstMatchWins(t *testing.T) {
	census := &stubProvider{name: "census", available: true, result: &Result{Matched: true, Source: "census", Latitude: 35.1, Longitude: -90.0}}
	arcgis := &stubProvider{name: "arcgis", available: true, result: &Result{Matched: true, Source: "arcgis"}}

	c := NewCascadeClient([]Provider{census, arcgis})
	result, err := c.Geocode(context.Background(), "100 Main St")
	require.NoError(t, err)
	assert.Equal(t, "census", result.Source)
	assert.Equal(t, 1, census.calls)
	assert.Equal(t, 0, arcgis.calls)
}

func TestCascadeClient_SkipsErrorsMissesAndUnavailable(t *testing.T) {
	census := &stubProvider{name: "census", available: true, err: errors.New("boom")}
	google := &stubProvider{name: "google", available: false, result: &Result{Matched: true}}
	arcgis := &stubProvider{name: "arcgis", available: true, result: &Result{Matched: false, Source: "arcgis"}}
	nominatim := &stubProvider{name: "nominatim", available: true, result: &Result{Matched: true, Source: "nominatim", Latitude: 35.2, Longitude: -89.9}}

	c := NewCascadeClient([]Provider{census, google, arcgis, nominatim})
	coord, err := c.Resolve(context.Background(), "Overton Park")
	require.NoError(t, err)
	assert.Equal(t, geo.Coordinate{Lat: 35.2, Lon: -89.9}, coord)
	assert.Equal(t, 0, google.calls)
	assert.Equal(t, 1, arcgis.calls)
}

func TestCascadeClient_SkipsInvalidCoordinate(t *testing.T) {
	bad := &stubProvider{name: "bad", available: true, result: &Result{Matched: true, Latitude: 120, Longitude: 0}}
	good := &stubProvider{name: "good", available: true, result: &Result{Matched: true, Latitude: 35, Longitude: -90}}

	c := NewCascadeClient([]Provider{bad, good})
	coord, err := c.Resolve(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, geo.Coordinate{Lat: 35, Lon: -90}, coord)
}

func TestCascadeClient_AllExhausted(t *testing.T) {
	c := NewCascadeClient([]Provider{
		&stubProvider{name: "census", available: true, result: &Result{Matched: false}},
		&stubProvider{name: "arcgis", available: true, err: errors.New("timeout")},
	})
	_, err := c.Resolve(context.Background(), "123 Nowhere")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestCascadeClient_EmptyAddress(t *testing.T) {
	p := &stubProvider{name: "census", available: true}
	c := NewCascadeClient([]Provider{p})
	_, err := c.Resolve(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrAddressNotFound)
	assert.Equal(t, 0, p.calls)
}

func TestCascadeClient_CanceledContext(t *testing.T) {
	p := &stubProvider{name: "census", available: true, result: &Result{Matched: true}}
	c := NewCascadeClient([]Provider{p})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Resolve(ctx, "100 Main St")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, p.calls)
}

func TestCascadeClient_Reverse(t *testing.T) {
	arcgis := &stubReverser{name: "arcgis", err: errors.New("no address")}
	nominatim := &stubReverser{name: "nominatim", addr: "1914 Poplar Ave, Memphis, TN"}

	c := NewCascadeClient(nil, WithReversers(arcgis, nominatim))
	addr := c.Reverse(context.Background(), geo.Coordinate{Lat: 35.14, Lon: -89.99})
	assert.Equal(t, "1914 Poplar Ave, Memphis, TN", addr)
	assert.Equal(t, 1, arcgis.calls)
}

func TestCascadeClient_ReverseSoftFails(t *testing.T) {
	c := NewCascadeClient(nil, WithReversers(
		&stubReverser{name: "arcgis", err: errors.New("down")},
		&stubReverser{name: "nominatim", addr: " , "},
	))
	assert.Equal(t, AddressUnavailable, c.Reverse(context.Background(), geo.Coordinate{}))

	assert.Equal(t, AddressUnavailable, NewCascadeClient(nil).Reverse(context.Background(), geo.Coordinate{}))
}

func TestNewDefaultCascade(t *testing.T) {
	assert.Equal(t, []string{"census", "arcgis", "nominatim"}, NewDefaultCascade("").Providers())
	assert.Equal(t, []string{"census", "arcgis", "nominatim", "google"}, NewDefaultCascade("key").Providers())
}

func TestCleanAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  100 Main St ,  Memphis,, TN 38103, ", "100 Main St, Memphis, TN 38103"},
		{", , ", ""},
		{"Overton Park", "Overton Park"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanAddress(tt.in))
	}
}
