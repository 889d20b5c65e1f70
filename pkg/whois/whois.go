// Package whois wraps WHOIS lookups behind a result-or-error boundary.
//
// Every modeled failure (non-2xx status, malformed payload, timeout,
// transport error) comes back as an error wrapping one of the sentinel
// errors below, so callers branch with errors.Is instead of recovering.
package whois

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"strings"
	"time"
)

// DefaultTimeout bounds a single lookup
const DefaultTimeout = 10 * time.Second

var (
	ErrStatus      = errors.New("whois: unexpected status")
	ErrMalformed   = errors.New("whois: malformed response")
	ErrTimeout     = errors.New("whois: timeout")
	ErrUnavailable = errors.New("whois: unavailable")
)

// Record is the normalized WHOIS data for a domain. Optional fields are nil
// when the source did not provide them.
type Record struct {
	Registrar        string
	Nameservers      []string
	WhoisServer      *string
	RegistryDomainID *string
	CreationDate     *string
	ExpirationDate   *string
	UpdatedDate      *string
	Status           []string
}

// Client looks up WHOIS data for a domain
type Client interface {
	// Name identifies the backend (service, port43)
	Name() string

	// Lookup returns the record or an error wrapping a sentinel above
	Lookup(ctx context.Context, domain string) (*Record, error)
}

// classifyErr maps a transport-level error to ErrTimeout or ErrUnavailable
func classifyErr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultTimeout
	}
	return context.WithTimeout(ctx, d)
}

// cleanHosts lowercases nameservers, trims trailing dots and drops blanks
func cleanHosts(hosts []string) []string {
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		h = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(h)), ".")
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// statusTokens keeps the EPP token of each status line and drops duplicates.
// "clientTransferProhibited https://icann.org/epp#..." becomes "clientTransferProhibited".
func statusTokens(lines []string) []string {
	var out []string
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 || slices.Contains(out, fields[0]) {
			continue
		}
		out = append(out, fields[0])
	}
	return out
}
