package detect

import (
	"slices"

	"github.com/velemoonkon/whodns/pkg/classify"
	"github.com/velemoonkon/whodns/pkg/registry"
)

// How a RegistrarInfo was resolved
const (
	MethodWhois       = "whois"
	MethodNameservers = "nameservers"
	MethodNone        = "none"
)

// StatusUnknown is the sentinel for "never checked", distinct from an empty set
const StatusUnknown = "unknown"

// RegistrarInfo is the result of a detection. APISupported and
// AutoUpdateAvailable always reflect whether RegistrarCode is in the registry.
type RegistrarInfo struct {
	Domain           string   `json:"domain"`
	Registrar        string   `json:"registrar"`
	RegistrarCode    string   `json:"registrar_code"`
	Nameservers      []string `json:"nameservers"`
	WhoisServer      *string  `json:"whois_server,omitempty"`
	RegistryDomainID *string  `json:"registry_domain_id,omitempty"`
	CreationDate     *string  `json:"creation_date,omitempty"`
	ExpirationDate   *string  `json:"expiration_date,omitempty"`
	LastUpdated      *string  `json:"last_updated,omitempty"`
	Status           []string `json:"status"`

	APISupported        bool `json:"api_supported"`
	AutoUpdateAvailable bool `json:"auto_update_available"`

	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

// newInfo is the only place capability flags are computed
func newInfo(domain string, res classify.Result, nameservers, status []string, method string) RegistrarInfo {
	if nameservers == nil {
		nameservers = []string{}
	}
	if len(status) == 0 {
		status = []string{StatusUnknown}
	}
	supported := registry.SupportsAutoUpdate(res.Code)
	return RegistrarInfo{
		Domain:              domain,
		Registrar:           res.Name,
		RegistrarCode:       res.Code,
		Nameservers:         slices.Clone(nameservers),
		Status:              slices.Clone(status),
		APISupported:        supported,
		AutoUpdateAvailable: supported,
		Confidence:          res.Confidence,
		Method:              method,
	}
}

// Unknown returns the terminal result used when detection could not run at all
func Unknown(domain string) RegistrarInfo {
	return newInfo(domain, classify.Unknown(), nil, nil, MethodNone)
}

// IsUnknown reports whether no registrar was identified
func (i RegistrarInfo) IsUnknown() bool {
	return i.RegistrarCode == classify.UnknownCode
}
