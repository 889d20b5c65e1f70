package dns

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/miekg/dns"
	"github.com/velemoonkon/whodns/pkg/config"
)

var (
	// Shared HTTP client for DoH and service requests to enable connection reuse
	sharedClient     *http.Client
	sharedClientOnce sync.Once
)

// getSharedClient returns the shared HTTP client. Deadlines come from the
// request context.
func getSharedClient() *http.Client {
	sharedClientOnce.Do(func() {
		sharedClient = &http.Client{Transport: config.NewTransport()}
	})
	return sharedClient
}

// DoHSource sends RFC 8484 wire-format POST queries to a DoH endpoint
type DoHSource struct {
	url      string
	client   *http.Client
	maxBody  int64
	ednsSize uint16
}

// NewDoHSource creates a DoH source. A nil client uses the shared one.
func NewDoHSource(url string, client *http.Client) *DoHSource {
	if client == nil {
		client = getSharedClient()
	}
	return &DoHSource{
		url:      url,
		client:   client,
		maxBody:  config.HTTP.MaxResponseSize,
		ednsSize: DefaultUDPOptions().EDNSBufferSize,
	}
}

// Name returns the source name
func (s *DoHSource) Name() string {
	return "doh"
}

// LookupNS performs the NS query over HTTPS
func (s *DoHSource) LookupNS(ctx context.Context, domain string) ([]string, error) {
	msg := newNSQuery(domain, s.ednsSize)
	// RFC 8484 recommends ID 0 for cache friendliness
	msg.Id = 0

	wireMsg, err := msg.Pack()
	if err != nil {
		return nil, fmt.Errorf("%w: pack: %w", ErrQuery, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(wireMsg))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	req.Header.Set("Content-Type", "application/dns-message")
	req.Header.Set("Accept", "application/dns-message")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: DoH returned %d", ErrStatus, resp.StatusCode)
	}

	// Check content type (case-insensitive, handles charset parameters)
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(contentType), "application/dns-message") {
		return nil, fmt.Errorf("%w: unexpected content type %q", ErrMalformed, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	if int64(len(body)) > s.maxBody {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrMalformed, s.maxBody)
	}

	dnsResp := new(dns.Msg)
	if err := dnsResp.Unpack(body); err != nil {
		return nil, fmt.Errorf("%w: unpack: %w", ErrMalformed, err)
	}

	return nameserversFrom(dnsResp)
}
