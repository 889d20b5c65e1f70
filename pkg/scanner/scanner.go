package scanner

import (
	"cmp"
	"context"
	"iter"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/velemoonkon/whodns/pkg/metrics"
)

// Scanner runs detections for many domains with bounded concurrency and a
// start-rate limit
type Scanner struct {
	config   Config
	limiter  *rate.Limiter
	detector Detector
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Option configures a Scanner
type Option func(*Scanner)

// WithMetrics records in-flight detections
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scanner) { s.metrics = m }
}

// WithLogger overrides slog.Default() for progress logging
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScanner creates a scanner running d for every domain
func NewScanner(cfg Config, d Detector, opts ...Option) *Scanner {
	// Workers=0 means "auto": detection is I/O bound, use max(4, 4*GOMAXPROCS)
	if cfg.Workers <= 0 {
		cfg.Workers = max(4, runtime.GOMAXPROCS(0)*4)
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)
	} else {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}

	s := &Scanner{
		config:   cfg,
		limiter:  limiter,
		detector: d,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Workers returns the effective concurrency bound
func (s *Scanner) Workers() int {
	return s.config.Workers
}

// Scan detects every domain and returns results in input order
func (s *Scanner) Scan(ctx context.Context, domains []string) ([]*ScanResult, error) {
	results := make([]*ScanResult, 0, len(domains))
	_, err := s.ScanStream(ctx, slices.Values(domains), func(r *ScanResult) error {
		results = append(results, r)
		return nil
	})
	slices.SortFunc(results, func(a, b *ScanResult) int { return cmp.Compare(a.Index, b.Index) })
	return results, err
}

// ScanStream detects domains from an iterator and calls handler for each
// result as it completes, so results are never accumulated. handler runs on
// a single goroutine. A handler error does not stop the scan; the first one
// is returned. Returns the number of results handled.
func (s *Scanner) ScanStream(ctx context.Context, domains iter.Seq[string], handler func(*ScanResult) error) (int, error) {
	runID := uuid.NewString()
	resultChan := make(chan *ScanResult, s.config.Workers)

	// Feed domains into a bounded group with cooperative cancellation
	go func() {
		defer close(resultChan)

		var g errgroup.Group
		g.SetLimit(s.config.Workers)

		index := 0
		for domain := range domains {
			if ctx.Err() != nil {
				break
			}
			if err := s.limiter.Wait(ctx); err != nil {
				break
			}

			i := index
			index++
			g.Go(func() error {
				result := s.scanDomain(ctx, runID, i, domain)
				// Drop results finished after cancellation
				if ctx.Err() != nil {
					return nil
				}
				resultChan <- result
				return nil
			})
		}
		_ = g.Wait()
	}()

	count := 0
	var handlerErr error
	for result := range resultChan {
		count++
		if !s.config.Quiet {
			s.logProgress(result)
		}
		if err := handler(result); err != nil && handlerErr == nil {
			handlerErr = err
		}
	}

	if handlerErr != nil {
		return count, handlerErr
	}
	return count, ctx.Err()
}

// scanDomain runs one detection
func (s *Scanner) scanDomain(ctx context.Context, runID string, index int, domain string) *ScanResult {
	s.metrics.ScanStarted()
	defer s.metrics.ScanFinished()

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	info := s.detector.Detect(ctx, domain)

	return &ScanResult{
		RunID:         runID,
		Index:         index,
		CheckedAt:     start.UTC(),
		ScanTime:      time.Since(start).Milliseconds(),
		RegistrarInfo: info,
	}
}

// logProgress logs each result with slog.Group for nested attributes
func (s *Scanner) logProgress(result *ScanResult) {
	s.logger.Info("detected",
		slog.String("domain", result.Domain),
		slog.Group("registrar",
			slog.String("code", result.RegistrarCode),
			slog.String("name", result.Registrar),
			slog.Float64("confidence", result.Confidence),
		),
		slog.String("method", result.Method),
		slog.Bool("auto_update", result.AutoUpdateAvailable),
		slog.Int64("ms", result.ScanTime),
	)
}
