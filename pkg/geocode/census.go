package geocode

import (
	"context"
	"net/url"
	"strings"
)

const (
	// DefaultCensusURL is the Census one-line address geocoder.
	DefaultCensusURL = "https://geocoding.geo.census.gov/geocoder/locations/onelineaddress"
	censusBenchmark  = "Public_AR_Current"
	censusRPS        = 50
)

// censusOneLineResponse is the JSON response from the Census single-address API.
type censusOneLineResponse struct {
	Result struct {
		AddressMatches []censusAddressMatch `json:"addressMatches"`
	} `json:"result"`
}

type censusAddressMatch struct {
	Coordinates struct {
		X float64 `json:"x"` // longitude
		Y float64 `json:"y"` // latitude
	} `json:"coordinates"`
	MatchedAddress string `json:"matchedAddress"`
}

// CensusProvider geocodes U.S. street addresses with the Census Geocoder. It
// is the most precise source for structured U.S. addresses.
type CensusProvider struct {
	opts providerOptions
}

// NewCensusProvider creates a CensusProvider.
func NewCensusProvider(opts ...Option) *CensusProvider {
	return &CensusProvider{opts: newProviderOptions(DefaultCensusURL, censusRPS, opts)}
}

// Name implements Provider.
func (p *CensusProvider) Name() string { return "census" }

// Available implements Provider.
func (p *CensusProvider) Available() bool { return true }

// Geocode implements Provider.
func (p *CensusProvider) Geocode(ctx context.Context, address string) (*Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return &Result{Matched: false, Source: "census"}, nil
	}

	params := url.Values{
		"address":   {address},
		"benchmark": {censusBenchmark},
		"format":    {"json"},
	}

	var censusResp censusOneLineResponse
	if err := p.opts.getJSON(ctx, "census", p.opts.baseURL+"?"+params.Encode(), &censusResp); err != nil {
		return nil, err
	}

	if len(censusResp.Result.AddressMatches) == 0 {
		return &Result{Matched: false, Source: "census"}, nil
	}

	match := censusResp.Result.AddressMatches[0]
	return &Result{
		Latitude:       match.Coordinates.Y,
		Longitude:      match.Coordinates.X,
		Source:         "census",
		Quality:        "rooftop", // Census one-line matches are exact
		MatchedAddress: match.MatchedAddress,
		Matched:        true,
	}, nil
}
