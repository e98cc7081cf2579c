package main

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/safeplaces-cli/internal/config"
	"github.com/sells-group/safeplaces-cli/internal/geo"
	"github.com/sells-group/safeplaces-cli/internal/pipeline"
	"github.com/sells-group/safeplaces-cli/pkg/geocode"
	"github.com/sells-group/safeplaces-cli/pkg/google"
	"github.com/sells-group/safeplaces-cli/pkg/overpass"
)

// services bundles the clients a command needs.
type services struct {
	geocoder *geocode.CascadeClient
	places   google.Client
	overpass overpass.Client
	boundary *geo.Boundary
	opts     pipeline.Options
}

// newServices builds the clients from configuration.
func newServices(c *config.Config) (*services, error) {
	boundary, err := c.LoadBoundary()
	if err != nil {
		return nil, eris.Wrap(err, "load boundary")
	}

	timeout := config.Seconds(c.Geocode.TimeoutSecs)
	common := []geocode.Option{geocode.WithTimeout(timeout), geocode.WithUserAgent(c.Geocode.UserAgent)}
	with := func(url string, extra ...geocode.Option) []geocode.Option {
		opts := append(append([]geocode.Option{}, common...), geocode.WithBaseURL(url))
		return append(opts, extra...)
	}

	arcgis := geocode.NewArcGISProvider(with(c.Geocode.ArcGISURL)...)
	nominatim := geocode.NewNominatimProvider(with(c.Geocode.NominatimURL, geocode.WithRateLimit(c.Geocode.NominatimRPS))...)
	providers := []geocode.Provider{
		geocode.NewCensusProvider(with(c.Geocode.CensusURL)...),
		arcgis,
		nominatim,
		geocode.NewGoogleProvider(c.Google.Key, with(c.Geocode.GoogleURL)...),
	}
	geocoder := geocode.NewCascadeClient(providers, geocode.WithReversers(arcgis, nominatim))

	places := google.NewClient(c.Google.Key,
		google.WithBaseURL(c.Google.BaseURL),
		google.WithTimeout(config.Seconds(c.Google.TimeoutSecs)),
		google.WithMaxResults(c.Search.MaxResults),
	)

	op := overpass.NewClient(
		overpass.WithBaseURL(c.Overpass.URL),
		overpass.WithTimeout(config.Seconds(c.Overpass.TimeoutSecs)),
		overpass.WithRetry(c.Overpass.MaxAttempts, config.Seconds(c.Overpass.RetryDelaySecs)),
	)

	zap.L().Debug("services ready",
		zap.Strings("geocoders", geocoder.Providers()),
		zap.String("boundary", boundary.Name()),
		zap.Int("boundary_vertices", boundary.Vertices()),
	)

	return &services{
		geocoder: geocoder,
		places:   places,
		overpass: op,
		boundary: boundary,
		opts:     c.PipelineOptions(),
	}, nil
}

func (s *services) finder() *pipeline.CongregationFinder {
	return pipeline.NewCongregationFinder(s.geocoder, s.places, s.opts)
}

func (s *services) collector() *pipeline.RestaurantCollector {
	return pipeline.NewRestaurantCollector(s.geocoder, s.geocoder, s.overpass, s.boundary, s.opts)
}
