package helpers

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ChaosMode defines the type of chaos to inject
type ChaosMode int

const (
	// ChaosNone passes requests through untouched
	ChaosNone ChaosMode = iota

	// ChaosConnectionReset fails the round trip before any response
	ChaosConnectionReset

	// ChaosPartialRead returns a body that breaks after PartialReadBytes
	ChaosPartialRead

	// ChaosSlowResponse delays the response by Delay
	ChaosSlowResponse

	// ChaosEmptyBody replaces the body with nothing
	ChaosEmptyBody

	// ChaosInvalidJSON replaces the body with a truncated JSON document
	ChaosInvalidJSON

	// ChaosOversizedBody replaces the body with more data than the client reads
	ChaosOversizedBody

	// ChaosServerError answers 503 with an HTML body
	ChaosServerError

	// ChaosIntermittent applies a random failure mode to FailureRate of requests
	ChaosIntermittent
)

// ErrConnectionReset is returned for ChaosConnectionReset.
var ErrConnectionReset = errors.New("chaos: connection reset by peer")

// ChaosConfig configures the chaos transport.
type ChaosConfig struct {
	Mode             ChaosMode
	FailureRate      float64
	Delay            time.Duration
	PartialReadBytes int
	Seed             int64
}

// ChaosTransport is an http.RoundTripper that injects failures in front of
// a real transport.
type ChaosTransport struct {
	base   http.RoundTripper
	config ChaosConfig

	requests uint64
	injected uint64

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewChaosTransport wraps base. A nil base uses http.DefaultTransport.
func NewChaosTransport(base http.RoundTripper, config ChaosConfig) *ChaosTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &ChaosTransport{base: base, config: config, rnd: rand.New(rand.NewSource(seed))}
}

// Requests returns how many round trips were attempted.
func (c *ChaosTransport) Requests() uint64 { return atomic.LoadUint64(&c.requests) }

// Injected returns how many round trips had chaos applied.
func (c *ChaosTransport) Injected() uint64 { return atomic.LoadUint64(&c.injected) }

// RoundTrip implements http.RoundTripper.
func (c *ChaosTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	atomic.AddUint64(&c.requests, 1)

	mode := c.config.Mode
	if mode == ChaosIntermittent {
		mode = c.pickMode()
	}
	if mode != ChaosNone {
		atomic.AddUint64(&c.injected, 1)
	}

	switch mode {
	case ChaosConnectionReset:
		return nil, ErrConnectionReset
	case ChaosSlowResponse:
		select {
		case <-time.After(c.config.Delay):
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	case ChaosServerError:
		return respond(req, http.StatusServiceUnavailable, "<html><body>upstream unavailable</body></html>"), nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ChaosPartialRead:
		resp.Body = &partialReadCloser{r: resp.Body, remaining: c.config.PartialReadBytes}
	case ChaosEmptyBody:
		resp.Body.Close()
		resp.Body = io.NopCloser(strings.NewReader(""))
	case ChaosInvalidJSON:
		resp.Body.Close()
		resp.Body = io.NopCloser(strings.NewReader(`{"id": 1, "name": "trunc`))
	case ChaosOversizedBody:
		resp.Body.Close()
		resp.Body = io.NopCloser(io.MultiReader(strings.NewReader(`["`), bytes.NewReader(bytes.Repeat([]byte("x"), 11<<20)), strings.NewReader(`"]`)))
	}
	return resp, nil
}

func (c *ChaosTransport) pickMode() ChaosMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rnd.Float64() >= c.config.FailureRate {
		return ChaosNone
	}
	modes := []ChaosMode{ChaosConnectionReset, ChaosEmptyBody, ChaosInvalidJSON, ChaosServerError}
	return modes[c.rnd.Intn(len(modes))]
}

func respond(req *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": {"text/html"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}

type partialReadCloser struct {
	r         io.ReadCloser
	remaining int
}

func (p *partialReadCloser) Read(buf []byte) (int, error) {
	if p.remaining <= 0 {
		return 0, io.ErrUnexpectedEOF
	}
	if len(buf) > p.remaining {
		buf = buf[:p.remaining]
	}
	n, err := p.r.Read(buf)
	p.remaining -= n
	return n, err
}

func (p *partialReadCloser) Close() error {
	return p.r.Close()
}
