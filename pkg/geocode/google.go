package geocode

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// DefaultGoogleURL is the Google Geocoding API endpoint.
const DefaultGoogleURL = "https://maps.googleapis.com/maps/api/geocode/json"

// googleGeocodeResponse is the JSON response from the Google Geocoding API.
type googleGeocodeResponse struct {
	Results []googleResult `json:"results"`
	Status  string         `json:"status"`
}

type googleResult struct {
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
		LocationType string `json:"location_type"`
	} `json:"geometry"`
	FormattedAddress string `json:"formatted_address"`
}

// GoogleProvider geocodes via the Google Geocoding API. It is only available
// when an API key is configured.
type GoogleProvider struct {
	key  string
	opts providerOptions
}

// NewGoogleProvider creates a GoogleProvider.
func NewGoogleProvider(key string, opts ...Option) *GoogleProvider {
	return &GoogleProvider{key: key, opts: newProviderOptions(DefaultGoogleURL, 50, opts)}
}

// Name implements Provider.
func (p *GoogleProvider) Name() string { return "google" }

// Available implements Provider.
func (p *GoogleProvider) Available() bool { return p.key != "" }

// Geocode implements Provider.
func (p *GoogleProvider) Geocode(ctx context.Context, address string) (*Result, error) {
	if p.key == "" {
		return nil, eris.New("geocode: google api key not configured")
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return &Result{Matched: false, Source: "google"}, nil
	}

	params := url.Values{
		"address": {address},
		"key":     {p.key},
	}

	var googleResp googleGeocodeResponse
	if err := p.opts.getJSON(ctx, "google", p.opts.baseURL+"?"+params.Encode(), &googleResp); err != nil {
		return nil, err
	}

	if googleResp.Status != "OK" || len(googleResp.Results) == 0 {
		return &Result{Matched: false, Source: "google"}, nil
	}

	result := googleResp.Results[0]
	return &Result{
		Latitude:       result.Geometry.Location.Lat,
		Longitude:      result.Geometry.Location.Lng,
		Source:         "google",
		Quality:        googleLocationTypeToQuality(result.Geometry.LocationType),
		MatchedAddress: result.FormattedAddress,
		Matched:        true,
	}, nil
}

// googleLocationTypeToQuality maps Google's location_type to our quality taxonomy.
func googleLocationTypeToQuality(locType string) string {
	switch strings.ToUpper(locType) {
	case "ROOFTOP":
		return "rooftop"
	case "RANGE_INTERPOLATED":
		return "range"
	case "GEOMETRIC_CENTER":
		return "centroid"
	default:
		return "approximate"
	}
}
