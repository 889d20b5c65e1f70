package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/velemoonkon/whodns/pkg/config"
	"github.com/velemoonkon/whodns/pkg/dns"
	"github.com/velemoonkon/whodns/pkg/output"
	"github.com/velemoonkon/whodns/pkg/whois"
)

// WHOIS backends
const (
	whoisAuto    = "auto"
	whoisService = "service"
	whoisPort43  = "port43"
	whoisNone    = "none"
)

// Nameserver sources
const (
	nsDNS     = "dns"
	nsDoH     = "doh"
	nsService = "service"
)

// SourceFlags represents the CLI flags selecting detection collaborators.
// Empty strings fall back to the environment configuration.
type SourceFlags struct {
	Whois    string // auto, service, port43, none
	WhoisURL string
	NS       string // dns, doh, service
	Resolver string // host[:port] for the dns source
	DoHURL   string
	NSURL    string
}

// SourceConfig is the resolved collaborator selection
type SourceConfig struct {
	WhoisBackend string // service, port43 or none
	WhoisURL     string

	NSSource  string // dns, doh or service
	NSAddress string // resolver address or URL, depending on NSSource
}

// ResolveSourceConfig resolves CLI flags to collaborator configuration.
// Default behavior: the WHOIS service when a URL is configured, otherwise
// port 43; nameservers over plain DNS.
func ResolveSourceConfig(flags SourceFlags) (SourceConfig, error) {
	var cfg SourceConfig

	cfg.WhoisURL = firstNonEmpty(flags.WhoisURL, config.Whois.ServiceURL)
	switch backend := strings.ToLower(strings.TrimSpace(flags.Whois)); backend {
	case "", whoisAuto:
		cfg.WhoisBackend = whoisPort43
		if cfg.WhoisURL != "" {
			cfg.WhoisBackend = whoisService
		}
	case whoisService:
		if cfg.WhoisURL == "" {
			return SourceConfig{}, fmt.Errorf("--whois service requires --whois-url or WHODNS_WHOIS_URL")
		}
		cfg.WhoisBackend = whoisService
	case whoisPort43, whoisNone:
		cfg.WhoisBackend = backend
	default:
		return SourceConfig{}, fmt.Errorf("unknown whois backend %q (use: auto, service, port43, none)", flags.Whois)
	}
	if cfg.WhoisBackend != whoisService {
		cfg.WhoisURL = ""
	}

	source := strings.ToLower(strings.TrimSpace(firstNonEmpty(flags.NS, config.Nameserver.Source)))
	switch source {
	case nsDNS:
		cfg.NSAddress = firstNonEmpty(flags.Resolver, config.Nameserver.Resolver)
	case nsDoH:
		cfg.NSAddress = firstNonEmpty(flags.DoHURL, config.Nameserver.DoHURL)
	case nsService:
		cfg.NSAddress = firstNonEmpty(flags.NSURL, config.Nameserver.ServiceURL)
		if cfg.NSAddress == "" {
			return SourceConfig{}, fmt.Errorf("--ns service requires --ns-url or WHODNS_NS_URL")
		}
	default:
		return SourceConfig{}, fmt.Errorf("unknown nameserver source %q (use: dns, doh, service)", source)
	}
	cfg.NSSource = source

	return cfg, nil
}

// buildWhois creates the WHOIS client. A nil client disables WHOIS.
func buildWhois(cfg SourceConfig) (whois.Client, error) {
	switch cfg.WhoisBackend {
	case whoisService:
		return whois.NewHTTPClient(whois.HTTPOptions{
			Endpoint: cfg.WhoisURL,
			APIKey:   config.Whois.APIKey,
			Timeout:  config.Whois.Timeout,
		})
	case whoisPort43:
		return whois.NewPort43Client(whois.Port43Options{Timeout: config.Whois.Timeout}), nil
	default:
		return nil, nil
	}
}

// buildResolver creates the nameserver resolver with its synthetic fallback
func buildResolver(cfg SourceConfig, logger *slog.Logger) (*dns.Resolver, error) {
	var source dns.Source
	switch cfg.NSSource {
	case nsDoH:
		source = dns.NewDoHSource(cfg.NSAddress, nil)
	case nsService:
		s, err := dns.NewServiceSource(cfg.NSAddress, nil)
		if err != nil {
			return nil, err
		}
		source = s
	default:
		source = dns.NewUDPSource(cfg.NSAddress, dns.DefaultUDPOptions())
	}
	return dns.NewResolver(source,
		dns.WithTimeout(config.Nameserver.Timeout),
		dns.WithLogger(logger),
	), nil
}

// ResolveFormat picks the output format. "auto" renders a table on an
// interactive stdout and otherwise derives the format from the file
// extension, defaulting to JSONL.
func ResolveFormat(format, outputFile string, stdoutIsTTY bool) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case output.FormatJSONL, output.FormatParquet, output.FormatTable, output.FormatMarkdown:
		return format, nil
	case "", "auto":
	default:
		return "", fmt.Errorf("unknown output format %q (use: auto, jsonl, parquet, table, markdown)", format)
	}

	toStdout := outputFile == "" || outputFile == "-"
	if toStdout {
		if stdoutIsTTY {
			return output.FormatTable, nil
		}
		return output.FormatJSONL, nil
	}

	switch {
	case strings.HasSuffix(outputFile, ".parquet"):
		return output.FormatParquet, nil
	case strings.HasSuffix(outputFile, ".md"):
		return output.FormatMarkdown, nil
	default:
		return output.FormatJSONL, nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
