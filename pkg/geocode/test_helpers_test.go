package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"

	"github.com/sells-group/safeplaces-cli/internal/geo"
)

// newTestLimiter creates a rate limiter that effectively does not limit for tests.
func newTestLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

// testOptions points a provider at a test server without rate limiting.
func testOptions(srvURL string) []Option {
	return []Option{
		WithBaseURL(srvURL),
		func(o *providerOptions) { o.limiter = newTestLimiter() },
	}
}

// newJSONServer serves body as JSON for every request and records the last
// request it saw.
func newJSONServer(t *testing.T, body string, last **http.Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if last != nil {
			*last = r
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// stubProvider is an in-memory Provider.
type stubProvider struct {
	name      string
	available bool
	result    *Result
	err       error
	calls     int
}

func (s *stubProvider) Name() string    { return s.name }
func (s *stubProvider) Available() bool { return s.available }

func (s *stubProvider) Geocode(_ context.Context, _ string) (*Result, error) {
	s.calls++
	return s.result, s.err
}

// stubReverser is an in-memory Reverser.
type stubReverser struct {
	name  string
	addr  string
	err   error
	calls int
}

func (s *stubReverser) Name() string { return s.name }

func (s *stubReverser) Reverse(_ context.Context, _ geo.Coordinate) (string, error) {
	s.calls++
	return s.addr, s.err
}
