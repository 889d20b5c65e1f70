package dns

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/velemoonkon/whodns/pkg/config"
)

// ServiceSource asks an HTTP lookup service for NS records.
//
//	GET <endpoint>?domain=<domain>&type=NS  ->  {"records": ["ns1.example.net", ...]}
type ServiceSource struct {
	endpoint *url.URL
	client   *http.Client
	maxBody  int64
}

// NewServiceSource validates endpoint and creates the source. A nil client
// uses the shared one.
func NewServiceSource(endpoint string, client *http.Client) (*ServiceSource, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("ns: invalid service endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("ns: unsupported endpoint scheme %q", u.Scheme)
	}
	if client == nil {
		client = getSharedClient()
	}
	return &ServiceSource{endpoint: u, client: client, maxBody: config.HTTP.MaxResponseSize}, nil
}

// Name returns the source name
func (s *ServiceSource) Name() string {
	return "service"
}

type serviceResponse struct {
	Records []string `json:"records"`
}

// LookupNS fetches the records from the service
func (s *ServiceSource) LookupNS(ctx context.Context, domain string) ([]string, error) {
	u := *s.endpoint
	q := u.Query()
	q.Set("domain", domain)
	q.Set("type", "NS")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: http %d", ErrStatus, resp.StatusCode)
	}

	var out serviceResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, s.maxBody)).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	hosts := normalizeHosts(out.Records)
	if len(hosts) == 0 {
		return nil, ErrNoRecords
	}
	return hosts, nil
}
