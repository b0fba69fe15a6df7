package adversarial_tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/jamesprial/go-pymments"
	"github.com/jamesprial/go-pymments/test_helpers"
)

// stubTransport answers every request with the same payload.
type stubTransport struct {
	mu      sync.Mutex
	payload string
	calls   int
}

func (s *stubTransport) Request(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return json.RawMessage(s.payload), nil
}

func (s *stubTransport) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newStubClient(t *testing.T, payload string) (*pymments.Client, *stubTransport) {
	t.Helper()
	st := &stubTransport{payload: payload}
	client, err := pymments.NewClient(&pymments.Config{Transport: st})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client, st
}

func newFakeClient(t *testing.T, fs *test_helpers.FakeService, rt http.RoundTripper) *pymments.Client {
	t.Helper()
	httpClient := fs.Client()
	if rt != nil {
		httpClient = &http.Client{Transport: rt}
	}
	client, err := pymments.NewClient(&pymments.Config{
		BaseURL:    fs.URL(),
		HTTPClient: httpClient,
		RateLimit:  &pymments.RateLimitConfig{RequestsPerMinute: 600000, Burst: 1000},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}
