package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable prefix for all whodns settings
const envPrefix = "WHODNS_"

// HTTPClientConfig contains configurable HTTP client settings shared by the
// WHOIS service, nameserver service and DoH clients
type HTTPClientConfig struct {
	// Response body size limit (bytes)
	MaxResponseSize int64

	// HTTP client connection pool settings
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration

	DialTimeout time.Duration
	KeepAlive   time.Duration
}

// WhoisConfig contains WHOIS collaborator settings
type WhoisConfig struct {
	// ServiceURL is the structured WHOIS service endpoint. Empty selects the
	// port-43 backend.
	ServiceURL string
	APIKey     string

	// Upper bound for a single WHOIS lookup. The orchestrator relies on this
	// to reach the nameserver fallback within an interactive budget.
	Timeout time.Duration
}

// NameserverConfig contains NS lookup collaborator settings
type NameserverConfig struct {
	Source     string // dns, doh or service
	Resolver   string // host:port for the dns source
	DoHURL     string
	ServiceURL string
	Timeout    time.Duration
}

// ScannerConfig contains batch detection defaults (overridable via CLI)
type ScannerConfig struct {
	DefaultWorkers   int
	DefaultRateLimit int // domains per second, 0 = unlimited
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	EnableMetrics     bool // expose /metrics
}

// DefaultHTTPClientConfig returns default HTTP client configuration
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		MaxResponseSize:     getEnvInt64("MAX_RESPONSE_SIZE", 64*1024),                // 64KB
		MaxIdleConns:        getEnvInt("HTTP_MAX_IDLE_CONNS", 100),                    // 100 connections
		MaxIdleConnsPerHost: getEnvInt("HTTP_MAX_IDLE_CONNS_PER_HOST", 10),            // 10 per host
		IdleConnTimeout:     getEnvDuration("HTTP_IDLE_CONN_TIMEOUT", 90*time.Second), // 90s
		DialTimeout:         getEnvDuration("HTTP_DIAL_TIMEOUT", 5*time.Second),       // 5s
		KeepAlive:           getEnvDuration("HTTP_KEEPALIVE", 30*time.Second),         // 30s
	}
}

// DefaultWhoisConfig returns default WHOIS configuration
func DefaultWhoisConfig() WhoisConfig {
	return WhoisConfig{
		ServiceURL: getEnvString("WHOIS_URL", ""),
		APIKey:     getEnvString("WHOIS_API_KEY", ""),
		Timeout:    getEnvDuration("WHOIS_TIMEOUT", 10*time.Second),
	}
}

// DefaultNameserverConfig returns default nameserver lookup configuration
func DefaultNameserverConfig() NameserverConfig {
	return NameserverConfig{
		Source:     getEnvString("NS_SOURCE", "dns"),
		Resolver:   getEnvString("NS_RESOLVER", "1.1.1.1:53"),
		DoHURL:     getEnvString("NS_DOH_URL", "https://cloudflare-dns.com/dns-query"),
		ServiceURL: getEnvString("NS_URL", ""),
		Timeout:    getEnvDuration("NS_TIMEOUT", 8*time.Second),
	}
}

// DefaultScannerConfig returns default scanner configuration
func DefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		DefaultWorkers:   getEnvInt("DEFAULT_WORKERS", 16),    // 16 concurrent detections
		DefaultRateLimit: getEnvInt("DEFAULT_RATE_LIMIT", 20), // WHOIS servers throttle aggressively
	}
}

// DefaultServerConfig returns default HTTP API configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:              getEnvString("SERVER_ADDR", ":8080"),
		ReadHeaderTimeout: getEnvDuration("SERVER_READ_HEADER_TIMEOUT", 5*time.Second),
		ShutdownTimeout:   getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 20*time.Second),
		EnableMetrics:     getEnvBool("SERVER_METRICS", true),
	}
}

// getEnvInt retrieves an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(envPrefix + key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvInt64 retrieves an int64 environment variable with a default value
func getEnvInt64(key string, defaultValue int64) int64 {
	if val := os.Getenv(envPrefix + key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable with a default value.
// Accepts values like "5s", "10m", "1h". Non-positive durations fall back to the default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if val := os.Getenv(envPrefix + key); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable with a default value
// Accepts: "true", "false", "1", "0", "yes", "no" (case-insensitive)
func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(envPrefix + key); val != "" {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

// getEnvString retrieves a string environment variable with a default value
func getEnvString(key string, defaultValue string) string {
	if val := strings.TrimSpace(os.Getenv(envPrefix + key)); val != "" {
		return val
	}
	return defaultValue
}

// Global configuration instances (initialized once at startup)
var (
	HTTP       = DefaultHTTPClientConfig()
	Whois      = DefaultWhoisConfig()
	Nameserver = DefaultNameserverConfig()
	Scanner    = DefaultScannerConfig()
	Server     = DefaultServerConfig()
)

// Init initializes all configuration from environment variables
// Call this at application startup
func Init() {
	HTTP = DefaultHTTPClientConfig()
	Whois = DefaultWhoisConfig()
	Nameserver = DefaultNameserverConfig()
	Scanner = DefaultScannerConfig()
	Server = DefaultServerConfig()
}
