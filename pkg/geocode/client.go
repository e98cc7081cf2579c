// Package geocode resolves free-text addresses to coordinates through an
// ordered cascade of public geocoders (Census, ArcGIS, Nominatim, and
// optionally Google), and turns coordinates back into addresses.
package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/safeplaces-cli/internal/geo"
)

// ErrAddressNotFound is returned when no provider could resolve an address.
var ErrAddressNotFound = eris.New("geocode: address not found")

// AddressUnavailable is the address reported when reverse geocoding fails.
const AddressUnavailable = "Address unavailable"

// defaultTimeout bounds every geocoder request.
const defaultTimeout = 10 * time.Second

// Provider represents a single forward geocoding backend.
type Provider interface {
	Name() string
	Available() bool
	Geocode(ctx context.Context, address string) (*Result, error)
}

// Reverser turns a coordinate into a one-line street address.
type Reverser interface {
	Name() string
	Reverse(ctx context.Context, c geo.Coordinate) (string, error)
}

// Result holds the geocoding output for an address.
type Result struct {
	Latitude       float64
	Longitude      float64
	Source         string // "census", "arcgis", "nominatim" or "google"
	Quality        string // "rooftop", "range", "centroid", "approximate"
	MatchedAddress string
	Matched        bool
}

// Coordinate returns the result location.
func (r *Result) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: r.Latitude, Lon: r.Longitude}
}

// Option configures a provider.
type Option func(*providerOptions)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *providerOptions) {
		o.httpClient = hc
	}
}

// WithBaseURL overrides the provider's default endpoint.
func WithBaseURL(u string) Option {
	return func(o *providerOptions) {
		if u != "" {
			o.baseURL = u
		}
	}
}

// WithRateLimit sets the requests-per-second rate limit.
func WithRateLimit(rps float64) Option {
	return func(o *providerOptions) {
		if rps > 0 {
			burst := int(rps)
			if burst < 1 {
				burst = 1
			}
			o.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(o *providerOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(o *providerOptions) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

type providerOptions struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	timeout    time.Duration
	userAgent  string
}

func newProviderOptions(baseURL string, rps float64, opts []Option) providerOptions {
	o := providerOptions{
		baseURL:   baseURL,
		limiter:   rate.NewLimiter(rate.Limit(rps), max(1, int(rps))),
		timeout:   defaultTimeout,
		userAgent: "safeplaces-cli/1.0",
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}
	return o
}

// getJSON issues a rate-limited GET and decodes the JSON body into out.
func (o *providerOptions) getJSON(ctx context.Context, name, reqURL string, out any) error {
	if err := o.limiter.Wait(ctx); err != nil {
		return eris.Wrapf(err, "geocode: %s rate limit", name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrapf(err, "geocode: %s build request", name)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", o.userAgent)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return eris.Wrapf(err, "geocode: %s request", name)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("geocode: %s: returned status %d", name, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "geocode: %s read body", name)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "geocode: %s parse response", name)
	}
	return nil
}
