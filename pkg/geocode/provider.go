package geocode

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/safeplaces-cli/internal/geo"
)

// Resolver is the forward geocoding surface consumed by the pipeline.
type Resolver interface {
	Resolve(ctx context.Context, address string) (geo.Coordinate, error)
}

// ReverseResolver is the reverse geocoding surface consumed by the pipeline.
type ReverseResolver interface {
	Reverse(ctx context.Context, c geo.Coordinate) string
}

// CascadeClient tries geocode providers in order until one succeeds.
type CascadeClient struct {
	providers []Provider
	reversers []Reverser
}

// CascadeOption configures the CascadeClient.
type CascadeOption func(*CascadeClient)

// WithReversers sets the reverse geocoders, tried in order.
func WithReversers(r ...Reverser) CascadeOption {
	return func(c *CascadeClient) {
		c.reversers = append([]Reverser(nil), r...)
	}
}

// NewCascadeClient creates a CascadeClient that tries providers in order.
func NewCascadeClient(providers []Provider, opts ...CascadeOption) *CascadeClient {
	c := &CascadeClient{providers: append([]Provider(nil), providers...)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewDefaultCascade builds the standard Census, ArcGIS, Nominatim cascade,
// with Google appended when googleKey is set. ArcGIS and Nominatim also serve
// reverse lookups. Options are applied to every provider; per-provider
// overrides go through the explicit constructors.
func NewDefaultCascade(googleKey string, opts ...Option) *CascadeClient {
	arcgis := NewArcGISProvider(opts...)
	nominatim := NewNominatimProvider(opts...)
	providers := []Provider{NewCensusProvider(opts...), arcgis, nominatim}
	if googleKey != "" {
		providers = append(providers, NewGoogleProvider(googleKey, opts...))
	}
	return NewCascadeClient(providers, WithReversers(arcgis, nominatim))
}

// Providers returns the names of the configured providers in order.
func (c *CascadeClient) Providers() []string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}

// Geocode returns the first matched result. Provider errors and misses are
// skipped; when every provider is exhausted ErrAddressNotFound is returned.
func (c *CascadeClient) Geocode(ctx context.Context, address string) (*Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, eris.Wrap(ErrAddressNotFound, "geocode: empty address")
	}

	log := zap.L().With(zap.String("component", "geocode.cascade"), zap.String("address", address))
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "geocode: cascade")
		}
		if !p.Available() {
			continue
		}
		result, err := p.Geocode(ctx, address)
		if err != nil {
			log.Debug("cascade: provider error, trying next",
				zap.String("provider", p.Name()),
				zap.Error(err),
			)
			continue
		}
		if result == nil || !result.Matched {
			log.Debug("cascade: provider miss", zap.String("provider", p.Name()))
			continue
		}
		if !result.Coordinate().Valid() {
			log.Debug("cascade: provider returned invalid coordinate",
				zap.String("provider", p.Name()),
				zap.Stringer("coordinate", result.Coordinate()),
			)
			continue
		}
		log.Debug("cascade: resolved",
			zap.String("provider", p.Name()),
			zap.String("quality", result.Quality),
		)
		return result, nil
	}

	return nil, eris.Wrapf(ErrAddressNotFound, "geocode: %q", address)
}

// Resolve implements Resolver.
func (c *CascadeClient) Resolve(ctx context.Context, address string) (geo.Coordinate, error) {
	result, err := c.Geocode(ctx, address)
	if err != nil {
		return geo.Coordinate{}, err
	}
	return result.Coordinate(), nil
}

// Reverse implements ReverseResolver. It never fails: when every reverser
// errors it returns AddressUnavailable.
func (c *CascadeClient) Reverse(ctx context.Context, coord geo.Coordinate) string {
	log := zap.L().With(zap.String("component", "geocode.cascade"), zap.Stringer("coordinate", coord))
	for _, r := range c.reversers {
		addr, err := r.Reverse(ctx, coord)
		if err != nil {
			log.Debug("cascade: reverse failed, trying next",
				zap.String("provider", r.Name()),
				zap.Error(err),
			)
			continue
		}
		if addr = cleanAddress(addr); addr != "" {
			return addr
		}
	}
	log.Warn("reverse geocoding exhausted")
	return AddressUnavailable
}

// cleanAddress collapses whitespace and trims stray separators left by
// empty address components.
func cleanAddress(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, " ,", ",")
	for strings.Contains(s, ",,") {
		s = strings.ReplaceAll(s, ",,", ",")
	}
	return strings.Trim(s, ", ")
}
