// Package detect resolves which registrar or DNS provider controls a domain.
//
// Detection tries WHOIS first and falls back to classifying the domain's
// nameservers when WHOIS fails. Detect never returns an error and never
// panics: callers inspect RegistrarCode and the capability flags instead.
package detect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/velemoonkon/whodns/pkg/classify"
	"github.com/velemoonkon/whodns/pkg/dns"
	"github.com/velemoonkon/whodns/pkg/metrics"
	"github.com/velemoonkon/whodns/pkg/whois"
)

const tracerName = "github.com/velemoonkon/whodns/pkg/detect"

// WhoisLookup fetches the WHOIS record of a domain
type WhoisLookup interface {
	Lookup(ctx context.Context, domain string) (*whois.Record, error)
}

// NameserverLookup returns the nameservers of a domain. It must never return
// an empty slice; *dns.Resolver satisfies this.
type NameserverLookup interface {
	Lookup(ctx context.Context, domain string) []string
}

var (
	errWhoisDisabled = errors.New("whois: disabled")
	errWhoisEmpty    = errors.New("whois: empty record")
	errWhoisPanic    = errors.New("whois: panic")
)

// Options configures a Detector. Zero values are usable: no WHOIS lookup
// (straight to nameservers), a resolver that only guesses, slog.Default(),
// no metrics and the global tracer provider.
type Options struct {
	Whois       WhoisLookup
	Nameservers NameserverLookup
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Tracer      trace.Tracer
}

// Detector runs the WHOIS then nameserver pipeline. It holds no per-call
// state and is safe for concurrent use.
type Detector struct {
	whois       WhoisLookup
	nameservers NameserverLookup
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

// New creates a Detector
func New(opts Options) *Detector {
	d := &Detector{
		whois:       opts.Whois,
		nameservers: opts.Nameservers,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		tracer:      opts.Tracer,
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.nameservers == nil {
		d.nameservers = dns.NewResolver(nil, dns.WithLogger(d.logger))
	}
	if d.tracer == nil {
		d.tracer = otel.Tracer(tracerName)
	}
	return d
}

// Detect identifies the registrar of domain. The input is used as given: no
// case folding or IDN conversion happens here.
func (d *Detector) Detect(ctx context.Context, domain string) (info RegistrarInfo) {
	start := time.Now()
	ctx, span := d.tracer.Start(ctx, "detect", trace.WithAttributes(attribute.String("domain", domain)))

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("detection panicked, returning unknown",
				"domain", domain,
				"panic", fmt.Sprint(r))
			span.SetStatus(codes.Error, "panic")
			info = Unknown(domain)
		}
		span.SetAttributes(
			attribute.String("registrar_code", info.RegistrarCode),
			attribute.String("method", info.Method),
			attribute.Float64("confidence", info.Confidence),
		)
		span.End()
		d.metrics.IncrementOutcome(info.Method, info.RegistrarCode)
		d.metrics.ObserveDetect(time.Since(start))
	}()

	rec, err := d.lookupWhois(ctx, domain)
	if err == nil {
		info = fromWhois(domain, rec)
		d.logger.Debug("registrar detected from whois",
			"domain", domain,
			"registrar", info.Registrar,
			"code", info.RegistrarCode)
		return info
	}

	d.metrics.IncrementWhoisFailure(failureReason(err))
	if !errors.Is(err, errWhoisDisabled) {
		d.logger.Warn("whois lookup failed, falling back to nameservers",
			"domain", domain,
			"error", err)
	}

	return d.fromNameservers(ctx, domain)
}

// lookupWhois converts every way WHOIS can go wrong, including a panic in the
// client, into an error so the nameserver path still runs
func (d *Detector) lookupWhois(ctx context.Context, domain string) (rec *whois.Record, err error) {
	if d.whois == nil {
		return nil, errWhoisDisabled
	}

	ctx, span := d.tracer.Start(ctx, "detect.whois")
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			rec, err = nil, fmt.Errorf("%w: %v", errWhoisPanic, r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, failureReason(err))
		}
		span.End()
		d.metrics.ObserveStage("whois", time.Since(start))
	}()

	rec, err = d.whois.Lookup(ctx, domain)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errWhoisEmpty
	}
	return rec, nil
}

func (d *Detector) fromNameservers(ctx context.Context, domain string) RegistrarInfo {
	ctx, span := d.tracer.Start(ctx, "detect.nameservers")
	defer span.End()

	start := time.Now()
	ns := d.nameservers.Lookup(ctx, domain)
	d.metrics.ObserveStage("nameservers", time.Since(start))

	res, rule := classify.Explain(ns)
	span.SetAttributes(attribute.Int("rule", rule), attribute.StringSlice("nameservers", ns))
	d.logger.Debug("classified nameservers",
		"domain", domain,
		"nameservers", ns,
		"code", res.Code,
		"rule", rule)

	return newInfo(domain, res, ns, []string{"ok"}, MethodNameservers)
}

// fromWhois builds the result from a WHOIS record. An unrecognised registrar
// keeps its WHOIS name for display under the unknown code.
func fromWhois(domain string, rec *whois.Record) RegistrarInfo {
	res := classify.NormalizeName(rec.Registrar)
	if res.IsUnknown() {
		if name := strings.TrimSpace(rec.Registrar); name != "" {
			res.Name = name
		}
	}

	info := newInfo(domain, res, rec.Nameservers, rec.Status, MethodWhois)
	info.WhoisServer = rec.WhoisServer
	info.RegistryDomainID = rec.RegistryDomainID
	info.CreationDate = rec.CreationDate
	info.ExpirationDate = rec.ExpirationDate
	info.LastUpdated = rec.UpdatedDate
	return info
}

// failureReason labels a WHOIS failure for metrics and spans
func failureReason(err error) string {
	switch {
	case errors.Is(err, errWhoisDisabled):
		return "disabled"
	case errors.Is(err, errWhoisPanic):
		return "panic"
	case errors.Is(err, errWhoisEmpty), errors.Is(err, whois.ErrMalformed):
		return "malformed"
	case errors.Is(err, whois.ErrStatus):
		return "status"
	case errors.Is(err, whois.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "unavailable"
	}
}
