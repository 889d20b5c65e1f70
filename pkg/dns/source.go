// Package dns looks up the authoritative nameservers of a domain.
//
// A Source performs one NS query and reports failures as errors. The Resolver
// wraps a Source and never fails: when the source errors, panics or answers
// with nothing, it returns a synthetic guess built from the domain itself.
package dns

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

var (
	ErrQuery     = errors.New("ns: query failed")
	ErrRcode     = errors.New("ns: non-success rcode")
	ErrNoRecords = errors.New("ns: no NS records")
	ErrStatus    = errors.New("ns: unexpected status")
	ErrMalformed = errors.New("ns: malformed response")
)

// Source answers NS queries for a domain
type Source interface {
	// Name identifies the source (dns, doh, service)
	Name() string

	// LookupNS returns the nameserver hostnames for domain
	LookupNS(ctx context.Context, domain string) ([]string, error)
}

// newNSQuery builds a recursive NS question with EDNS0 sized for large
// delegations
func newNSQuery(domain string, ednsSize uint16) *dns.Msg {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeNS)
	msg.RecursionDesired = true
	if ednsSize > 0 {
		msg.SetEdns0(ednsSize, false)
	}
	return msg
}

// nameserversFrom extracts NS targets from the answer section
func nameserversFrom(resp *dns.Msg) ([]string, error) {
	if resp == nil {
		return nil, ErrNoRecords
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("%w: %s", ErrRcode, dns.RcodeToString[resp.Rcode])
	}

	var hosts []string
	for _, rr := range resp.Answer {
		if ns, ok := rr.(*dns.NS); ok {
			hosts = append(hosts, ns.Ns)
		}
	}
	hosts = normalizeHosts(hosts)
	if len(hosts) == 0 {
		return nil, ErrNoRecords
	}
	return hosts, nil
}

// normalizeHosts lowercases, trims trailing dots, and drops blanks and
// duplicates while keeping the answer order
func normalizeHosts(hosts []string) []string {
	out := make([]string, 0, len(hosts))
	seen := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		h = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(h)), ".")
		if h == "" {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
