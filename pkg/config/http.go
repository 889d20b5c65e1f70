package config

import (
	"crypto/tls"
	"net"
	"net/http"
)

// NewTransport builds an HTTP transport from the HTTP client settings.
// Request deadlines come from the caller's context, not from the client.
func NewTransport() *http.Transport {
	cfg := HTTP
	return &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: cfg.KeepAlive,
		}).DialContext,
	}
}
