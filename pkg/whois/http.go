package whois

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/velemoonkon/whodns/pkg/config"
)

// HTTPOptions configures the structured WHOIS service client
type HTTPOptions struct {
	Endpoint        string // GET <Endpoint>?domain=<domain>
	APIKey          string // sent as a bearer token when set
	Timeout         time.Duration
	MaxResponseSize int64
	HTTPClient      *http.Client
}

// HTTPClient queries a WHOIS service that answers with a JSON record
type HTTPClient struct {
	endpoint *url.URL
	apiKey   string
	timeout  time.Duration
	maxBody  int64
	http     *http.Client
}

// NewHTTPClient validates opts and builds a client
func NewHTTPClient(opts HTTPOptions) (*HTTPClient, error) {
	if strings.TrimSpace(opts.Endpoint) == "" {
		return nil, fmt.Errorf("whois: empty service endpoint")
	}
	u, err := url.Parse(opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("whois: invalid service endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("whois: unsupported endpoint scheme %q", u.Scheme)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxResponseSize <= 0 {
		opts.MaxResponseSize = config.HTTP.MaxResponseSize
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Transport: config.NewTransport()}
	}

	return &HTTPClient{
		endpoint: u,
		apiKey:   opts.APIKey,
		timeout:  opts.Timeout,
		maxBody:  opts.MaxResponseSize,
		http:     opts.HTTPClient,
	}, nil
}

// Name returns the backend identifier
func (c *HTTPClient) Name() string {
	return "service"
}

// Lookup fetches and decodes the WHOIS record for domain
func (c *HTTPClient) Lookup(ctx context.Context, domain string) (*Record, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	u := *c.endpoint
	q := u.Query()
	q.Set("domain", domain)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyErr(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: http %d", ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, classifyErr(ctx, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrMalformed, c.maxBody)
	}

	return decodeRecord(body)
}

// servicePayload accepts both spellings used by WHOIS JSON services
type servicePayload struct {
	Registrar        *string    `json:"registrar"`
	RegistrarName    *string    `json:"registrar_name"`
	Nameservers      stringList `json:"nameservers"`
	NameServers      stringList `json:"name_servers"`
	WhoisServer      *string    `json:"whois_server"`
	RegistryDomainID *string    `json:"registry_domain_id"`
	CreationDate     *string    `json:"creation_date"`
	ExpirationDate   *string    `json:"expiration_date"`
	UpdatedDate      *string    `json:"updated_date"`
	Status           stringList `json:"status"`
}

// stringList decodes either a JSON array of strings or a single string
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	var many []string
	if err := json.Unmarshal(b, &many); err == nil {
		*l = many
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err != nil {
		return fmt.Errorf("expected string or array of strings: %w", err)
	}
	if one = strings.TrimSpace(one); one != "" {
		*l = stringList{one}
	}
	return nil
}

func decodeRecord(body []byte) (*Record, error) {
	var p servicePayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	registrar := p.Registrar
	if registrar == nil {
		registrar = p.RegistrarName
	}
	if registrar == nil {
		return nil, fmt.Errorf("%w: no registrar field", ErrMalformed)
	}

	ns := p.Nameservers
	if len(ns) == 0 {
		ns = p.NameServers
	}

	rec := &Record{
		Registrar:        strings.TrimSpace(*registrar),
		Nameservers:      cleanHosts(ns),
		WhoisServer:      trimmed(p.WhoisServer),
		RegistryDomainID: trimmed(p.RegistryDomainID),
		CreationDate:     trimmed(p.CreationDate),
		ExpirationDate:   trimmed(p.ExpirationDate),
		UpdatedDate:      trimmed(p.UpdatedDate),
	}
	rec.Status = statusTokens(p.Status)
	return rec, nil
}

// trimmed keeps presence: a field sent as "" stays non-nil
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
