package dns

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

// UDPOptions configures the plain DNS source
type UDPOptions struct {
	Timeout        time.Duration // per exchange
	EDNSBufferSize uint16
}

// DefaultUDPOptions returns default query options
func DefaultUDPOptions() UDPOptions {
	return UDPOptions{
		Timeout:        3 * time.Second,
		EDNSBufferSize: 1232,
	}
}

// UDPSource queries a recursive resolver over UDP and retries over TCP when
// the answer is truncated
type UDPSource struct {
	server string
	opts   UDPOptions
}

// NewUDPSource creates a source querying server (host or host:port)
func NewUDPSource(server string, opts UDPOptions) *UDPSource {
	// Ensure server has port
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultUDPOptions().Timeout
	}
	return &UDPSource{server: server, opts: opts}
}

// Name returns the source name
func (s *UDPSource) Name() string {
	return "dns"
}

// Server returns the resolver address in use
func (s *UDPSource) Server() string {
	return s.server
}

// LookupNS performs the NS query
func (s *UDPSource) LookupNS(ctx context.Context, domain string) ([]string, error) {
	msg := newNSQuery(domain, s.opts.EDNSBufferSize)

	client := &dns.Client{
		Net:     "udp",
		Timeout: s.opts.Timeout,
	}
	resp, _, err := client.ExchangeContext(ctx, msg, s.server)
	if err == nil && resp != nil && resp.Truncated {
		client.Net = "tcp"
		resp, _, err = client.ExchangeContext(ctx, msg, s.server)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s via %s: %w", ErrQuery, domain, client.Net, err)
	}

	return nameserversFrom(resp)
}
