package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velemoonkon/whodns/pkg/detect"
	"github.com/velemoonkon/whodns/pkg/metrics"
	"github.com/velemoonkon/whodns/pkg/registry"
)

// ============================================================================
// Helpers
// ============================================================================

type stubDetector struct {
	mu      sync.Mutex
	domains []string
	result  func(domain string) detect.RegistrarInfo
}

func (s *stubDetector) Detect(_ context.Context, domain string) detect.RegistrarInfo {
	s.mu.Lock()
	s.domains = append(s.domains, domain)
	s.mu.Unlock()
	if s.result != nil {
		return s.result(domain)
	}
	return detect.Unknown(domain)
}

func (s *stubDetector) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.domains...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, d Detector, opts Options) *httptest.Server {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	ts := httptest.NewServer(New(d, opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

// ============================================================================
// Routes
// ============================================================================

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &stubDetector{}, Options{})

	resp, body := get(t, ts.URL+"/healthz")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}

func TestDetect(t *testing.T) {
	d := &stubDetector{}
	ts := newTestServer(t, d, Options{})

	resp, body := get(t, ts.URL+"/v1/detect/Example.COM.")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info map[string]any
	require.NoError(t, json.Unmarshal(body, &info))
	assert.Equal(t, "example.com", info["domain"])
	assert.Equal(t, "unknown", info["registrar_code"])
	assert.Equal(t, []any{}, info["nameservers"])
	assert.Equal(t, []any{"unknown"}, info["status"])
	assert.Equal(t, false, info["auto_update_available"])

	assert.Equal(t, []string{"example.com"}, d.seen())
}

func TestDetectRegistrable(t *testing.T) {
	d := &stubDetector{}
	ts := newTestServer(t, d, Options{})

	resp, _ := get(t, ts.URL+"/v1/detect/www.shop.example.co.uk?registrable=true")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, ts.URL+"/v1/detect/www.example.org")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, []string{"example.co.uk", "www.example.org"}, d.seen())
}

func TestDetectInvalidDomain(t *testing.T) {
	d := &stubDetector{}
	ts := newTestServer(t, d, Options{})

	resp, body := get(t, ts.URL+"/v1/detect/localhost")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), `"error"`)
	assert.Empty(t, d.seen(), "invalid input must not reach the detector")
}

func TestRegistrars(t *testing.T) {
	ts := newTestServer(t, &stubDetector{}, Options{})

	resp, body := get(t, ts.URL+"/v1/registrars")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []registry.RegistrarConfig
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, len(registry.Codes()))
	assert.Equal(t, registry.Codes()[0], list[0].Code)
}

func TestRegistrarByCode(t *testing.T) {
	ts := newTestServer(t, &stubDetector{}, Options{})

	resp, body := get(t, ts.URL+"/v1/registrars/CloudFlare")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cfg registry.RegistrarConfig
	require.NoError(t, json.Unmarshal(body, &cfg))
	assert.Equal(t, "cloudflare", cfg.Code)
	assert.NotEmpty(t, cfg.SetupInstructions)
}

func TestRegistrarNotFound(t *testing.T) {
	ts := newTestServer(t, &stubDetector{}, Options{})

	resp, body := get(t, ts.URL+"/v1/registrars/cloudflare-hosting")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"no automated configuration for cloudflare-hosting"}`, string(body))
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, &stubDetector{}, Options{})

	resp, _ := get(t, ts.URL+"/v2/nothing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ============================================================================
// Metrics and recovery
// ============================================================================

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.IncrementOutcome("nameservers", "cloudflare")

	ts := newTestServer(t, &stubDetector{}, Options{Gatherer: reg})

	resp, body := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `whodns_detect_outcomes_total{code="cloudflare",method="nameservers"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	ts := newTestServer(t, &stubDetector{}, Options{})

	resp, _ := get(t, ts.URL+"/metrics")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecoverer(t *testing.T) {
	d := &stubDetector{result: func(string) detect.RegistrarInfo { panic("boom") }}
	ts := newTestServer(t, d, Options{})

	resp, _ := get(t, ts.URL+"/v1/detect/example.com")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// Server keeps serving after a recovered panic
	resp, _ = get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ============================================================================
// Lifecycle
// ============================================================================

func TestServeShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := New(&stubDetector{}, Options{Logger: quietLogger()})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	_, err = http.Get(url)
	assert.Error(t, err)
}

func TestListenAndServeBadAddr(t *testing.T) {
	s := New(&stubDetector{}, Options{Logger: quietLogger()})
	err := s.ListenAndServe(context.Background(), "not-an-address")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "not-an-address"))
}
