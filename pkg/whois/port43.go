package whois

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
)

// Port43Options configures the raw WHOIS backend
type Port43Options struct {
	Timeout time.Duration
}

// Port43Client queries registry WHOIS servers directly and parses the text
// response into a Record
type Port43Client struct {
	client  *whois.Client
	timeout time.Duration
	query   func(domain string) (string, error)
}

// NewPort43Client creates a raw WHOIS client
func NewPort43Client(opts Port43Options) *Port43Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	client := whois.NewClient()
	client.SetTimeout(opts.Timeout)

	c := &Port43Client{
		client:  client,
		timeout: opts.Timeout,
	}
	c.query = func(domain string) (string, error) {
		return c.client.Whois(domain)
	}
	return c
}

// Name returns the backend identifier
func (c *Port43Client) Name() string {
	return "port43"
}

type rawResult struct {
	text string
	err  error
}

// Lookup performs the WHOIS query. The library call is not context-aware, so
// it runs in its own goroutine and is abandoned when ctx ends.
func (c *Port43Client) Lookup(ctx context.Context, domain string) (*Record, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan rawResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- rawResult{err: fmt.Errorf("%w: panic: %v", ErrUnavailable, r)}
			}
		}()
		text, err := c.query(domain)
		done <- rawResult{text: text, err: err}
	}()

	var res rawResult
	select {
	case <-ctx.Done():
		return nil, classifyErr(ctx, ctx.Err())
	case res = <-done:
	}

	if res.err != nil {
		return nil, classifyErr(ctx, res.err)
	}
	if strings.TrimSpace(res.text) == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformed)
	}

	info, err := whoisparser.Parse(res.text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return recordFromInfo(info)
}

func recordFromInfo(info whoisparser.WhoisInfo) (*Record, error) {
	if info.Domain == nil {
		return nil, fmt.Errorf("%w: no domain section", ErrMalformed)
	}

	var registrar string
	if info.Registrar != nil {
		registrar = strings.TrimSpace(info.Registrar.Name)
		if registrar == "" {
			registrar = strings.TrimSpace(info.Registrar.Organization)
		}
	}
	if registrar == "" {
		return nil, fmt.Errorf("%w: no registrar", ErrMalformed)
	}

	d := info.Domain
	return &Record{
		Registrar:        registrar,
		Nameservers:      cleanHosts(d.NameServers),
		WhoisServer:      optional(d.WhoisServer),
		RegistryDomainID: optional(d.ID),
		CreationDate:     optional(d.CreatedDate),
		ExpirationDate:   optional(d.ExpirationDate),
		UpdatedDate:      optional(d.UpdatedDate),
		Status:           statusTokens(d.Status),
	}, nil
}
