// Package google is a minimal client for the Google Places API (New): nearby
// search restricted to a circle and free-text search biased toward one.
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL = "https://places.googleapis.com/v1"

	// MaxResultCount is the most places either search returns per call.
	MaxResultCount = 20

	nearbyFieldMask = "places.displayName,places.formattedAddress,places.types,places.location"
	textFieldMask   = nearbyFieldMask + ",places.websiteUri"
)

// Client performs Google Places API operations.
type Client interface {
	SearchNearby(ctx context.Context, req NearbySearchRequest) (*SearchResponse, error)
	TextSearch(ctx context.Context, req TextSearchRequest) (*SearchResponse, error)
}

// NearbySearchRequest finds places of the included types inside a circle.
type NearbySearchRequest struct {
	Latitude      float64
	Longitude     float64
	RadiusMeters  float64
	IncludedTypes []string
}

// TextSearchRequest finds places matching a query, biased toward a circle.
type TextSearchRequest struct {
	Query        string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

// SearchResponse is the response from either search endpoint.
type SearchResponse struct {
	Places []Place `json:"places"`
}

// Place represents a place returned by the API. Any field may be absent.
type Place struct {
	DisplayName      DisplayName `json:"displayName"`
	FormattedAddress string      `json:"formattedAddress,omitempty"`
	Types            []string    `json:"types,omitempty"`
	Location         *LatLng     `json:"location,omitempty"`
	WebsiteURI       string      `json:"websiteUri,omitempty"`
}

// DisplayName holds the place's display name.
type DisplayName struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode,omitempty"`
}

// LatLng is a WGS84 location.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithMaxResults caps the number of places requested per call (1-20).
func WithMaxResults(n int) Option {
	return func(c *httpClient) {
		if n > 0 && n <= MaxResultCount {
			c.maxResults = n
		}
	}
}

type httpClient struct {
	apiKey     string
	baseURL    string
	maxResults int
	http       *http.Client
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		maxResults: MaxResultCount,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type circle struct {
	Center LatLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type area struct {
	Circle circle `json:"circle"`
}

type nearbyRequestBody struct {
	IncludedTypes       []string `json:"includedTypes,omitempty"`
	MaxResultCount      int      `json:"maxResultCount"`
	LocationRestriction area     `json:"locationRestriction"`
}

type textRequestBody struct {
	TextQuery    string `json:"textQuery"`
	PageSize     int    `json:"pageSize"`
	LocationBias area   `json:"locationBias"`
}

func (c *httpClient) SearchNearby(ctx context.Context, req NearbySearchRequest) (*SearchResponse, error) {
	body := nearbyRequestBody{
		IncludedTypes:  req.IncludedTypes,
		MaxResultCount: c.maxResults,
		LocationRestriction: area{Circle: circle{
			Center: LatLng{Latitude: req.Latitude, Longitude: req.Longitude},
			Radius: req.RadiusMeters,
		}},
	}
	return c.post(ctx, "/places:searchNearby", nearbyFieldMask, body)
}

func (c *httpClient) TextSearch(ctx context.Context, req TextSearchRequest) (*SearchResponse, error) {
	body := textRequestBody{
		TextQuery: req.Query,
		PageSize:  c.maxResults,
		LocationBias: area{Circle: circle{
			Center: LatLng{Latitude: req.Latitude, Longitude: req.Longitude},
			Radius: req.RadiusMeters,
		}},
	}
	return c.post(ctx, "/places:searchText", textFieldMask, body)
}

func (c *httpClient) post(ctx context.Context, path, fieldMask string, payload any) (*SearchResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "google: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "google: create request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "google: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "google: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("google: %s: returned status %d: %s", path, resp.StatusCode, string(respBody))
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "google: unmarshal response")
	}

	return &result, nil
}
