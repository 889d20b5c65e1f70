package dns

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultTimeout bounds a single nameserver lookup
const DefaultTimeout = 8 * time.Second

// syntheticPrefixes are the labels used to guess nameservers when lookup fails
var syntheticPrefixes = []string{"ns1", "ns2", "dns1", "dns2"}

// SyntheticNameservers returns the guess used when no real answer exists:
// ns1.<d>, ns2.<d>, dns1.<d>, dns2.<d>
func SyntheticNameservers(domain string) []string {
	out := make([]string, len(syntheticPrefixes))
	for i, p := range syntheticPrefixes {
		out[i] = p + "." + domain
	}
	return out
}

// Resolver turns a Source into a lookup that always yields nameservers
type Resolver struct {
	source  Source
	timeout time.Duration
	logger  *slog.Logger
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger used for fallback diagnostics
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver wraps source. A nil source always yields the synthetic guess.
func NewResolver(source Source, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		source:  source,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SourceName reports the underlying source, or "none"
func (r *Resolver) SourceName() string {
	if r.source == nil {
		return "none"
	}
	return r.source.Name()
}

// Lookup returns the nameservers for domain. It never fails and never returns
// an empty slice.
func (r *Resolver) Lookup(ctx context.Context, domain string) []string {
	hosts, err := r.query(ctx, domain)
	if err != nil || len(hosts) == 0 {
		r.logger.Debug("nameserver lookup failed, using synthetic guess",
			"domain", domain,
			"source", r.SourceName(),
			"error", err)
		return SyntheticNameservers(domain)
	}
	return hosts
}

func (r *Resolver) query(ctx context.Context, domain string) (hosts []string, err error) {
	if r.source == nil {
		return nil, ErrNoRecords
	}
	if strings.TrimSpace(domain) == "" {
		return nil, fmt.Errorf("%w: empty domain", ErrQuery)
	}

	defer func() {
		if rec := recover(); rec != nil {
			hosts, err = nil, fmt.Errorf("%w: panic: %v", ErrQuery, rec)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	hosts, err = r.source.LookupNS(ctx, domain)
	if err != nil {
		return nil, err
	}
	return normalizeHosts(hosts), nil
}
