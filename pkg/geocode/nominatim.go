package geocode

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/safeplaces-cli/internal/geo"
)

const (
	// DefaultNominatimURL is the public OpenStreetMap Nominatim instance.
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"
	// The public instance allows one request per second.
	nominatimRPS = 1
)

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
}

type nominatimReverse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// NominatimProvider geocodes and reverse geocodes against OpenStreetMap
// Nominatim.
type NominatimProvider struct {
	opts providerOptions
}

// NewNominatimProvider creates a NominatimProvider.
func NewNominatimProvider(opts ...Option) *NominatimProvider {
	return &NominatimProvider{opts: newProviderOptions(DefaultNominatimURL, nominatimRPS, opts)}
}

// Name implements Provider and Reverser.
func (p *NominatimProvider) Name() string { return "nominatim" }

// Available implements Provider.
func (p *NominatimProvider) Available() bool { return true }

// Geocode implements Provider.
func (p *NominatimProvider) Geocode(ctx context.Context, address string) (*Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return &Result{Matched: false, Source: "nominatim"}, nil
	}

	params := url.Values{
		"q":      {address},
		"format": {"jsonv2"},
		"limit":  {"1"},
	}

	var places []nominatimPlace
	if err := p.opts.getJSON(ctx, "nominatim", p.opts.baseURL+"/search?"+params.Encode(), &places); err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return &Result{Matched: false, Source: "nominatim"}, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim parse lat")
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim parse lon")
	}

	quality := "approximate"
	if places[0].Type == "house" || places[0].Type == "building" {
		quality = "rooftop"
	}

	return &Result{
		Latitude:       lat,
		Longitude:      lon,
		Source:         "nominatim",
		Quality:        quality,
		MatchedAddress: places[0].DisplayName,
		Matched:        true,
	}, nil
}

// Reverse implements Reverser.
func (p *NominatimProvider) Reverse(ctx context.Context, c geo.Coordinate) (string, error) {
	params := url.Values{
		"lat":    {fmt.Sprintf("%f", c.Lat)},
		"lon":    {fmt.Sprintf("%f", c.Lon)},
		"format": {"jsonv2"},
	}

	var resp nominatimReverse
	if err := p.opts.getJSON(ctx, "nominatim", p.opts.baseURL+"/reverse?"+params.Encode(), &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", eris.Errorf("geocode: nominatim reverse: %s", resp.Error)
	}
	if resp.DisplayName == "" {
		return "", eris.New("geocode: nominatim reverse returned no address")
	}
	return cleanAddress(resp.DisplayName), nil
}
