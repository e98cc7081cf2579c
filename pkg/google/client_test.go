package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchNearby_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/places:searchNearby", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Equal(t, nearbyFieldMask, r.Header.Get("X-Goog-FieldMask"))

		var body nearbyRequestBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"park", "school"}, body.IncludedTypes)
		assert.Equal(t, 20, body.MaxResultCount)
		assert.InDelta(t, 35.1495, body.LocationRestriction.Circle.Center.Latitude, 1e-9)
		assert.InDelta(t, -90.0490, body.LocationRestriction.Circle.Center.Longitude, 1e-9)
		assert.InDelta(t, 335.28, body.LocationRestriction.Circle.Radius, 1e-9)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"places": [{
			"displayName": {"text": "Court Square", "languageCode": "en"},
			"formattedAddress": "62 N Main St, Memphis, TN 38103, USA",
			"types": ["park", "point_of_interest"],
			"location": {"latitude": 35.1469, "longitude": -90.0510}
		}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.SearchNearby(context.Background(), NearbySearchRequest{
		Latitude:      35.1495,
		Longitude:     -90.0490,
		RadiusMeters:  335.28,
		IncludedTypes: []string{"park", "school"},
	})

	require.NoError(t, err)
	require.Len(t, resp.Places, 1)
	p := resp.Places[0]
	assert.Equal(t, "Court Square", p.DisplayName.Text)
	assert.Equal(t, "62 N Main St, Memphis, TN 38103, USA", p.FormattedAddress)
	assert.Equal(t, []string{"park", "point_of_interest"}, p.Types)
	require.NotNil(t, p.Location)
	assert.InDelta(t, 35.1469, p.Location.Latitude, 1e-9)
}

func TestTextSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/places:searchText", r.URL.Path)
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.websiteUri")

		var body textRequestBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Kid", body.TextQuery)
		assert.Equal(t, 5, body.PageSize)
		assert.InDelta(t, 100.0, body.LocationBias.Circle.Radius, 1e-9)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"places": [{
			"displayName": {"text": "Kidz Zone"},
			"websiteUri": "https://kidzzone.example"
		}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithMaxResults(5))
	resp, err := client.TextSearch(context.Background(), TextSearchRequest{
		Query:        "Kid",
		Latitude:     35.1,
		Longitude:    -90.0,
		RadiusMeters: 100,
	})

	require.NoError(t, err)
	require.Len(t, resp.Places, 1)
	assert.Equal(t, "Kidz Zone", resp.Places[0].DisplayName.Text)
	assert.Equal(t, "https://kidzzone.example", resp.Places[0].WebsiteURI)
	assert.Nil(t, resp.Places[0].Location)
}

func TestTextSearch_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), TextSearchRequest{Query: "Child"})

	require.NoError(t, err)
	assert.Empty(t, resp.Places)
}

func TestSearchNearby_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"message": "API key not valid"}}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := client.SearchNearby(context.Background(), NearbySearchRequest{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
	assert.Contains(t, err.Error(), "status 403")
}

func TestTextSearch_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.TextSearch(context.Background(), TextSearchRequest{Query: "Kid"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned status 429")
}

func TestTextSearch_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{invalid`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.TextSearch(context.Background(), TextSearchRequest{Query: "Kid"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal response")
}

func TestSearchNearby_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.SearchNearby(ctx, NearbySearchRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptions(t *testing.T) {
	hc := &http.Client{}
	c := NewClient("k", WithHTTPClient(hc), WithMaxResults(50), WithBaseURL("")).(*httpClient)
	assert.Same(t, hc, c.http)
	assert.Equal(t, MaxResultCount, c.maxResults)
	assert.Equal(t, defaultBaseURL, c.baseURL)
}
