package input

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"net"
	"net/url"
	"os"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// Normalize turns user input into an ASCII domain name. It accepts URLs and
// host:port forms, strips paths and the trailing dot, lowercases and applies
// IDNA lookup rules. Single-label names are rejected.
func Normalize(target string) (string, error) {
	s := strings.TrimSpace(target)
	if s == "" {
		return "", fmt.Errorf("empty domain")
	}

	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			s = u.Host
		}
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if host, port, err := net.SplitHostPort(s); err == nil && port != "" {
		s = host
	}

	s = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), "."))
	if s == "" {
		return "", fmt.Errorf("empty domain in %q", target)
	}

	ascii, err := idna.Lookup.ToASCII(s)
	if err != nil {
		return "", fmt.Errorf("invalid domain %q: %w", target, err)
	}
	if !strings.Contains(ascii, ".") {
		return "", fmt.Errorf("domain must contain a dot: %q", target)
	}
	return ascii, nil
}

// Registrable reduces domain to its registrable part (eTLD+1) using the
// public suffix list: "www.shop.example.co.uk" becomes "example.co.uk"
func Registrable(domain string) (string, error) {
	reg, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		return "", fmt.Errorf("no registrable domain for %q: %w", domain, err)
	}
	return reg, nil
}

// ParseTargets parses command-line targets (domains, URLs, comma-separated)
func ParseTargets(targets []string) ([]string, error) {
	var domains []string

	for _, target := range targets {
		// Handle comma-separated values
		for part := range strings.SplitSeq(target, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			d, err := Normalize(part)
			if err != nil {
				return nil, err
			}
			domains = append(domains, d)
		}
	}

	return domains, nil
}

// ReadDomains yields one normalized domain per non-empty, non-comment line.
// Invalid lines yield an error carrying the line number; iteration continues
// unless the consumer stops.
func ReadDomains(r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		scanner := bufio.NewScanner(r)
		lineNum := 0

		for scanner.Scan() {
			lineNum++
			line := strings.TrimSpace(scanner.Text())

			// Skip empty lines and comments
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			d, err := Normalize(line)
			if err != nil {
				err = fmt.Errorf("line %d: %w", lineNum, err)
			}
			if !yield(d, err) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			yield("", fmt.Errorf("error reading input: %w", err))
		}
	}
}

// ParseFile reads domains from a file (one per line). The first invalid line
// aborts parsing.
func ParseFile(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return collect(ReadDomains(file))
}

func collect(seq iter.Seq2[string, error]) ([]string, error) {
	var domains []string
	for d, err := range seq {
		if err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}
	return domains, nil
}

// Unique drops repeated domains, keeping first occurrences in order
func Unique(domains []string) []string {
	seen := make(map[string]struct{}, len(domains))
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
