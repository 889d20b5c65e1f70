// Package registry holds the static table of registrars and DNS providers
// whose management APIs support automated configuration.
//
// The table is built once on first access and never mutated afterwards, so
// it is safe for unsynchronized concurrent reads.
package registry

import (
	"slices"
	"strings"
	"sync"
)

// AuthType selects the credential-acquisition flow for a provider API
type AuthType string

const (
	AuthAPIKey      AuthType = "api_key"
	AuthOAuth       AuthType = "oauth"
	AuthCredentials AuthType = "credentials"
)

// Valid reports whether t is one of the known auth types
func (t AuthType) Valid() bool {
	switch t {
	case AuthAPIKey, AuthOAuth, AuthCredentials:
		return true
	}
	return false
}

// Operation is a capability token gating a provider API feature
type Operation string

const (
	OpDNSRecords       Operation = "dns_records"
	OpZoneSettings     Operation = "zone_settings"
	OpNameservers      Operation = "nameservers"
	OpDNSSEC           Operation = "dnssec"
	OpDomainForwarding Operation = "domain_forwarding"
)

// RegistrarConfig describes how to integrate with one provider's management API
type RegistrarConfig struct {
	Name                string      `json:"name"`
	Code                string      `json:"code"`
	APIEndpoint         *string     `json:"api_endpoint,omitempty"`
	AuthType            AuthType    `json:"auth_type"`
	SupportedOperations []Operation `json:"supported_operations"`
	DocsURL             string      `json:"docs_url"`
	SetupInstructions   []string    `json:"setup_instructions"` // ordered; earlier steps are prerequisites
}

// Supports reports whether the provider API offers op
func (c RegistrarConfig) Supports(op Operation) bool {
	return slices.Contains(c.SupportedOperations, op)
}

// clone returns a copy whose slices and pointers are not shared with the table
func (c RegistrarConfig) clone() RegistrarConfig {
	out := c
	out.SupportedOperations = slices.Clone(c.SupportedOperations)
	out.SetupInstructions = slices.Clone(c.SetupInstructions)
	if c.APIEndpoint != nil {
		ep := *c.APIEndpoint
		out.APIEndpoint = &ep
	}
	return out
}

// Registry is an immutable code -> RegistrarConfig mapping
type Registry struct {
	order   []string
	entries map[string]RegistrarConfig
}

func newRegistry(configs []RegistrarConfig) *Registry {
	r := &Registry{
		order:   make([]string, 0, len(configs)),
		entries: make(map[string]RegistrarConfig, len(configs)),
	}
	for _, c := range configs {
		if _, dup := r.entries[c.Code]; dup {
			continue
		}
		r.order = append(r.order, c.Code)
		r.entries[c.Code] = c
	}
	return r
}

// Get returns the configuration for code. The boolean is false when the
// provider has no automated-configuration support.
func (r *Registry) Get(code string) (RegistrarConfig, bool) {
	c, ok := r.entries[normalizeCode(code)]
	if !ok {
		return RegistrarConfig{}, false
	}
	return c.clone(), true
}

// All returns every entry in authoring order
func (r *Registry) All() []RegistrarConfig {
	out := make([]RegistrarConfig, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.entries[code].clone())
	}
	return out
}

// Codes returns all registry keys in authoring order
func (r *Registry) Codes() []string {
	return slices.Clone(r.order)
}

// SupportsAutoUpdate reports whether code has a registry entry
func (r *Registry) SupportsAutoUpdate(code string) bool {
	_, ok := r.entries[normalizeCode(code)]
	return ok
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	return newRegistry(builtin)
})

// Default returns the process-wide registry
func Default() *Registry {
	return defaultRegistry()
}

// Get looks up code in the default registry
func Get(code string) (RegistrarConfig, bool) {
	return Default().Get(code)
}

// All lists the default registry
func All() []RegistrarConfig {
	return Default().All()
}

// Codes lists the default registry keys
func Codes() []string {
	return Default().Codes()
}

// SupportsAutoUpdate reports whether code is present in the default registry
func SupportsAutoUpdate(code string) bool {
	return Default().SupportsAutoUpdate(code)
}
