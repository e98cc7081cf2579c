// Package overpass queries the OpenStreetMap Overpass API.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/safeplaces-cli/internal/geo"
	"github.com/sells-group/safeplaces-cli/internal/resilience"
)

const (
	defaultBaseURL     = "https://overpass-api.de/api/interpreter"
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 3
	defaultRetryDelay  = 5 * time.Second
)

// Response is the JSON output of an Overpass query.
type Response struct {
	Version   float64   `json:"version"`
	Generator string    `json:"generator"`
	Elements  []Element `json:"elements"`
}

// Element is a node, way or relation. Nodes carry Lat/Lon directly; ways and
// relations carry Center when the query asks for "out center".
type Element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *LatLon           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// LatLon is a bare coordinate pair.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Coordinate returns the element's own position, falling back to its center.
// ok is false when neither is present.
func (e Element) Coordinate() (c geo.Coordinate, ok bool) {
	if e.Lat != nil && e.Lon != nil {
		return geo.Coordinate{Lat: *e.Lat, Lon: *e.Lon}, true
	}
	if e.Center != nil {
		return geo.Coordinate{Lat: e.Center.Lat, Lon: e.Center.Lon}, true
	}
	return geo.Coordinate{}, false
}

// Tag returns a tag value, or "" when absent.
func (e Element) Tag(key string) string {
	return e.Tags[key]
}

// RestaurantQuery builds a query for restaurant nodes and ways within
// radiusMeters of center, with centers and tags in the output.
func RestaurantQuery(center geo.Coordinate, radiusMeters float64) string {
	around := fmt.Sprintf("(around:%s,%s,%s)",
		strconv.FormatFloat(radiusMeters, 'f', -1, 64),
		strconv.FormatFloat(center.Lat, 'f', -1, 64),
		strconv.FormatFloat(center.Lon, 'f', -1, 64),
	)
	return "[out:json];\n(\n" +
		`  node["amenity"="restaurant"]` + around + ";\n" +
		`  way["amenity"="restaurant"]` + around + ";\n" +
		");\nout center tags;\n"
}

// Client runs Overpass QL queries.
type Client interface {
	Query(ctx context.Context, query string) (*Response, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the interpreter endpoint.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-attempt timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRetry sets the number of attempts and the fixed delay between them.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *httpClient) {
		if attempts > 0 {
			c.retry.MaxAttempts = attempts
		}
		if delay >= 0 {
			c.retry.Delay = delay
		}
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates an Overpass client. Failed queries are retried up to
// three attempts, five seconds apart; the last error is returned.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		retry:   resilience.FixedRetryConfig(defaultMaxAttempts, defaultRetryDelay),
	}
	c.retry.OnRetry = resilience.RetryLogger("overpass", "query")
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Query(ctx context.Context, query string) (*Response, error) {
	resp, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*Response, error) {
		return c.do(ctx, query)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "overpass: query failed after %d attempts", c.retry.MaxAttempts)
	}
	zap.L().Debug("overpass: query complete", zap.Int("elements", len(resp.Elements)))
	return resp, nil
}

func (c *httpClient) do(ctx context.Context, query string) (*Response, error) {
	reqURL := c.baseURL + "?" + url.Values{"data": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("overpass: returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: read response")
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "overpass: unmarshal response")
	}
	return &out, nil
}
