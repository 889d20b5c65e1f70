package whois

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	whoisparser "github.com/likexian/whois-parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// HTTP service client
// =============================================================================

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(HTTPOptions{
		Endpoint:   srv.URL + "/whois",
		APIKey:     "secret",
		Timeout:    timeout,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return c
}

func TestHTTPClient_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/whois", r.URL.Path)
		assert.Equal(t, "foo.com", r.URL.Query().Get("domain"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"registrar": "GoDaddy.com, LLC",
			"nameservers": ["NS45.DOMAINCONTROL.COM.", "ns46.domaincontrol.com"],
			"whois_server": "whois.godaddy.com",
			"registry_domain_id": "123_DOMAIN_COM-VRSN",
			"creation_date": "2001-01-01T00:00:00Z",
			"expiration_date": "2030-01-01T00:00:00Z",
			"updated_date": "2024-06-01T00:00:00Z",
			"status": ["clientTransferProhibited https://icann.org/epp#clientTransferProhibited", "clientDeleteProhibited"]
		}`))
	}, time.Second)

	rec, err := c.Lookup(context.Background(), "foo.com")
	require.NoError(t, err)
	assert.Equal(t, "GoDaddy.com, LLC", rec.Registrar)
	assert.Equal(t, []string{"ns45.domaincontrol.com", "ns46.domaincontrol.com"}, rec.Nameservers)
	require.NotNil(t, rec.WhoisServer)
	assert.Equal(t, "whois.godaddy.com", *rec.WhoisServer)
	require.NotNil(t, rec.RegistryDomainID)
	require.NotNil(t, rec.UpdatedDate)
	assert.Equal(t, []string{"clientTransferProhibited", "clientDeleteProhibited"}, rec.Status)
}

func TestHTTPClient_AlternateFieldNames(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"registrar_name": "NameCheap, Inc.", "name_servers": ["dns1.registrar-servers.com"], "status": "ok"}`))
	}, time.Second)

	rec, err := c.Lookup(context.Background(), "bar.io")
	require.NoError(t, err)
	assert.Equal(t, "NameCheap, Inc.", rec.Registrar)
	assert.Equal(t, []string{"dns1.registrar-servers.com"}, rec.Nameservers)
	assert.Equal(t, []string{"ok"}, rec.Status)
	assert.Nil(t, rec.WhoisServer)
	assert.Nil(t, rec.CreationDate)
	assert.Nil(t, rec.ExpirationDate)
}

func TestHTTPClient_EmptyFieldKeepsPresence(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"registrar": "Hover", "whois_server": ""}`))
	}, time.Second)

	rec, err := c.Lookup(context.Background(), "x.com")
	require.NoError(t, err)
	require.NotNil(t, rec.WhoisServer)
	assert.Equal(t, "", *rec.WhoisServer)
	assert.Nil(t, rec.RegistryDomainID)
}

func TestHTTPClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"Not found", http.StatusNotFound, `{"error":"not found"}`, ErrStatus},
		{"Server error", http.StatusBadGateway, ``, ErrStatus},
		{"Invalid JSON", http.StatusOK, `{"registrar":`, ErrMalformed},
		{"Array payload", http.StatusOK, `["GoDaddy"]`, ErrMalformed},
		{"Null payload", http.StatusOK, `null`, ErrMalformed},
		{"Missing registrar", http.StatusOK, `{"nameservers":["ns1.example.com"]}`, ErrMalformed},
		{"Registrar not a string", http.StatusOK, `{"registrar":{"name":"GoDaddy"}}`, ErrMalformed},
		{"Status wrong type", http.StatusOK, `{"registrar":"GoDaddy","status":42}`, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, time.Second)

			rec, err := c.Lookup(context.Background(), "foo.com")
			assert.Nil(t, rec)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHTTPClient_ResponseTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"registrar":"` + string(make([]byte, 256)) + `"}`))
	}))
	defer srv.Close()

	c, err := NewHTTPClient(HTTPOptions{Endpoint: srv.URL, MaxResponseSize: 64, HTTPClient: srv.Client()})
	require.NoError(t, err)

	_, err = c.Lookup(context.Background(), "foo.com")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestHTTPClient_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, 50*time.Millisecond)

	start := time.Now()
	_, err := c.Lookup(context.Background(), "slow.com")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestHTTPClient_CallerCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, 10*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := c.Lookup(ctx, "slow.com")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestHTTPClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewHTTPClient(HTTPOptions{Endpoint: url})
	require.NoError(t, err)

	_, err = c.Lookup(context.Background(), "foo.com")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNewHTTPClient_Validation(t *testing.T) {
	_, err := NewHTTPClient(HTTPOptions{})
	assert.Error(t, err)

	_, err = NewHTTPClient(HTTPOptions{Endpoint: "ftp://whois.example"})
	assert.Error(t, err)

	c, err := NewHTTPClient(HTTPOptions{Endpoint: "https://whois.example/api"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.timeout)
	assert.Equal(t, "service", c.Name())
}

// =============================================================================
// Port-43 client
// =============================================================================

func TestRecordFromInfo(t *testing.T) {
	info := whoisparser.WhoisInfo{
		Domain: &whoisparser.Domain{
			ID:             "2336799_DOMAIN_COM-VRSN",
			Domain:         "example.com",
			WhoisServer:    "whois.iana.org",
			Status:         []string{"clientDeleteProhibited", "clientDeleteProhibited", "clientUpdateProhibited"},
			NameServers:    []string{"A.IANA-SERVERS.NET", "b.iana-servers.net."},
			CreatedDate:    "1995-08-14T04:00:00Z",
			UpdatedDate:    "",
			ExpirationDate: "2026-08-13T04:00:00Z",
		},
		Registrar: &whoisparser.Contact{Name: "RESERVED-Internet Assigned Numbers Authority"},
	}

	rec, err := recordFromInfo(info)
	require.NoError(t, err)
	assert.Equal(t, "RESERVED-Internet Assigned Numbers Authority", rec.Registrar)
	assert.Equal(t, []string{"a.iana-servers.net", "b.iana-servers.net"}, rec.Nameservers)
	assert.Equal(t, []string{"clientDeleteProhibited", "clientUpdateProhibited"}, rec.Status)
	require.NotNil(t, rec.RegistryDomainID)
	assert.Equal(t, "2336799_DOMAIN_COM-VRSN", *rec.RegistryDomainID)
	assert.Nil(t, rec.UpdatedDate, "blank parser fields are absent")
}

func TestRecordFromInfo_OrganizationFallback(t *testing.T) {
	rec, err := recordFromInfo(whoisparser.WhoisInfo{
		Domain:    &whoisparser.Domain{},
		Registrar: &whoisparser.Contact{Organization: "Amazon Registrar, Inc."},
	})
	require.NoError(t, err)
	assert.Equal(t, "Amazon Registrar, Inc.", rec.Registrar)
}

func TestRecordFromInfo_Malformed(t *testing.T) {
	_, err := recordFromInfo(whoisparser.WhoisInfo{})
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = recordFromInfo(whoisparser.WhoisInfo{Domain: &whoisparser.Domain{}})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestPort43Client_QueryError(t *testing.T) {
	c := NewPort43Client(Port43Options{Timeout: time.Second})
	c.query = func(string) (string, error) { return "", errors.New("connection refused") }

	_, err := c.Lookup(context.Background(), "foo.com")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, "port43", c.Name())
}

func TestPort43Client_EmptyResponse(t *testing.T) {
	c := NewPort43Client(Port43Options{Timeout: time.Second})
	c.query = func(string) (string, error) { return "  \n", nil }

	_, err := c.Lookup(context.Background(), "foo.com")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestPort43Client_Timeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	c := NewPort43Client(Port43Options{Timeout: 30 * time.Millisecond})
	c.query = func(string) (string, error) {
		<-release
		return "", nil
	}

	_, err := c.Lookup(context.Background(), "foo.com")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestPort43Client_PanicContained(t *testing.T) {
	c := NewPort43Client(Port43Options{Timeout: time.Second})
	c.query = func(string) (string, error) { panic("parser bug") }

	_, err := c.Lookup(context.Background(), "foo.com")
	assert.ErrorIs(t, err, ErrUnavailable)
}
