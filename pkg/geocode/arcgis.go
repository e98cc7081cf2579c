package geocode

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/safeplaces-cli/internal/geo"
)

const (
	// DefaultArcGISURL is the ArcGIS World GeocodeServer.
	DefaultArcGISURL = "https://geocode.arcgis.com/arcgis/rest/services/World/GeocodeServer"
	arcgisRPS        = 10
)

type arcgisCandidatesResponse struct {
	Candidates []struct {
		Address  string  `json:"address"`
		Score    float64 `json:"score"`
		Location struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"location"`
	} `json:"candidates"`
	Error *arcgisError `json:"error"`
}

type arcgisReverseResponse struct {
	Address struct {
		MatchAddr   string `json:"Match_addr"`
		LongLabel   string `json:"LongLabel"`
		Address     string `json:"Address"`
		City        string `json:"City"`
		Region      string `json:"Region"`
		Postal      string `json:"Postal"`
		CountryCode string `json:"CountryCode"`
	} `json:"address"`
	Error *arcgisError `json:"error"`
}

type arcgisError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ArcGISProvider geocodes and reverse geocodes with the ArcGIS World
// GeocodeServer.
type ArcGISProvider struct {
	opts providerOptions
}

// NewArcGISProvider creates an ArcGISProvider.
func NewArcGISProvider(opts ...Option) *ArcGISProvider {
	return &ArcGISProvider{opts: newProviderOptions(DefaultArcGISURL, arcgisRPS, opts)}
}

// Name implements Provider and Reverser.
func (p *ArcGISProvider) Name() string { return "arcgis" }

// Available implements Provider.
func (p *ArcGISProvider) Available() bool { return true }

// Geocode implements Provider.
func (p *ArcGISProvider) Geocode(ctx context.Context, address string) (*Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return &Result{Matched: false, Source: "arcgis"}, nil
	}

	params := url.Values{
		"SingleLine":   {address},
		"f":            {"json"},
		"maxLocations": {"1"},
	}

	var resp arcgisCandidatesResponse
	if err := p.opts.getJSON(ctx, "arcgis", p.opts.baseURL+"/findAddressCandidates?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, eris.Errorf("geocode: arcgis error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	if len(resp.Candidates) == 0 {
		return &Result{Matched: false, Source: "arcgis"}, nil
	}

	c := resp.Candidates[0]
	return &Result{
		Latitude:       c.Location.Y,
		Longitude:      c.Location.X,
		Source:         "arcgis",
		Quality:        arcgisScoreToQuality(c.Score),
		MatchedAddress: c.Address,
		Matched:        true,
	}, nil
}

// Reverse implements Reverser.
func (p *ArcGISProvider) Reverse(ctx context.Context, c geo.Coordinate) (string, error) {
	params := url.Values{
		"location": {fmt.Sprintf("%f,%f", c.Lon, c.Lat)},
		"f":        {"json"},
	}

	var resp arcgisReverseResponse
	if err := p.opts.getJSON(ctx, "arcgis", p.opts.baseURL+"/reverseGeocode?"+params.Encode(), &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", eris.Errorf("geocode: arcgis reverse error %d: %s", resp.Error.Code, resp.Error.Message)
	}

	a := resp.Address
	if a.Address == "" {
		label := a.MatchAddr
		if label == "" {
			label = a.LongLabel
		}
		if label == "" {
			return "", eris.New("geocode: arcgis reverse returned no address")
		}
		return label, nil
	}

	formatted := fmt.Sprintf("%s, %s, %s %s, %s", a.Address, a.City, a.Region, a.Postal, a.CountryCode)
	return cleanAddress(formatted), nil
}

// arcgisScoreToQuality maps an ArcGIS candidate score (0-100) to our quality taxonomy.
func arcgisScoreToQuality(score float64) string {
	switch {
	case score >= 95:
		return "rooftop"
	case score >= 85:
		return "range"
	default:
		return "approximate"
	}
}
