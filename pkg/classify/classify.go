// Package classify maps DNS evidence to a registrar or DNS-hosting provider.
//
// Classification is an ordered rule table evaluated against all nameservers
// at once. The first matching rule wins; there is no scoring across rules.
// Confidence values are authored constants describing how specific a
// fingerprint is, and callers apply their own acceptance threshold.
package classify

import (
	"regexp"
	"strings"
)

// Unknown identifiers returned when no rule matches
const (
	UnknownName = "Unknown Registrar"
	UnknownCode = "unknown"
)

// Result is the classification outcome
type Result struct {
	Name       string  `json:"name"`
	Code       string  `json:"code"`
	Confidence float64 `json:"confidence"`
}

// IsUnknown reports whether r is the no-match sentinel
func (r Result) IsUnknown() bool {
	return r.Code == UnknownCode
}

// Unknown returns the no-match sentinel
func Unknown() Result {
	return Result{Name: UnknownName, Code: UnknownCode, Confidence: 0.0}
}

// Matcher reports whether the joined, lowercased evidence string matches
type Matcher func(joined string) bool

// Rule is one entry of an ordered classification table
type Rule struct {
	Match      Matcher
	Name       string
	Code       string
	Confidence float64
}

func (r Rule) result() Result {
	return Result{Name: r.Name, Code: r.Code, Confidence: r.Confidence}
}

// separator joins hostnames; it never occurs inside a hostname
const separator = ","

// Join lowercases and trims each hostname and joins them in order
func Join(nameservers []string) string {
	parts := make([]string, 0, len(nameservers))
	for _, ns := range nameservers {
		ns = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(ns)), ".")
		if ns == "" {
			continue
		}
		parts = append(parts, ns)
	}
	return strings.Join(parts, separator)
}

// Classify returns the first rule in Rules matching any of the nameservers.
// It never fails; unmatched or empty input yields Unknown().
func Classify(nameservers []string) Result {
	res, _ := Explain(nameservers)
	return res
}

// Explain is Classify plus the index of the matching rule in Rules, or -1
func Explain(nameservers []string) (Result, int) {
	return firstMatch(Rules, Join(nameservers))
}

func firstMatch(rules []Rule, joined string) (Result, int) {
	if joined == "" {
		return Unknown(), -1
	}
	for i, rule := range rules {
		if rule.Match(joined) {
			return rule.result(), i
		}
	}
	return Unknown(), -1
}

// contains matches when any needle is a substring of the evidence
func contains(needles ...string) Matcher {
	return func(joined string) bool {
		for _, n := range needles {
			if strings.Contains(joined, n) {
				return true
			}
		}
		return false
	}
}

// matches compiles pattern once and matches it against the evidence
func matches(pattern string) Matcher {
	re := regexp.MustCompile(pattern)
	return re.MatchString
}

// suffix matches hostnames equal to, or under, any of the given domains.
// "hover.com" matches "ns1.hover.com" but not "ns1.makehover.com".
func suffix(domains ...string) Matcher {
	quoted := make([]string, len(domains))
	for i, d := range domains {
		quoted[i] = regexp.QuoteMeta(d)
	}
	return matches(`(?:^|[.` + separator + `])(?:` + strings.Join(quoted, "|") + `)(?:` + separator + `|$)`)
}

func anyOf(ms ...Matcher) Matcher {
	return func(joined string) bool {
		for _, m := range ms {
			if m(joined) {
				return true
			}
		}
		return false
	}
}
