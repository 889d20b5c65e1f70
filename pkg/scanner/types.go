package scanner

import (
	"context"
	"time"

	"github.com/velemoonkon/whodns/pkg/detect"
)

// Detector is the per-domain detection step; *detect.Detector satisfies it
type Detector interface {
	Detect(ctx context.Context, domain string) detect.RegistrarInfo
}

// DetectorFunc adapts a function to Detector
type DetectorFunc func(ctx context.Context, domain string) detect.RegistrarInfo

func (f DetectorFunc) Detect(ctx context.Context, domain string) detect.RegistrarInfo {
	return f(ctx, domain)
}

// ScanResult is one detection produced by a batch run
type ScanResult struct {
	RunID     string    `json:"run_id"`
	Index     int       `json:"index"` // position in the input sequence
	CheckedAt time.Time `json:"checked_at"`
	ScanTime  int64     `json:"scan_time_ms"`

	detect.RegistrarInfo
}

// Config contains scanner configuration
type Config struct {
	Workers   int           // Concurrent detections (0 or negative = auto)
	RateLimit int           // Max domains started per second (0 or negative = no limit)
	Timeout   time.Duration // Per-domain bound on top of collaborator timeouts (0 = none)
	Quiet     bool          // Suppress per-result progress logging
}

// DefaultConfig returns default scanner configuration
func DefaultConfig() Config {
	return Config{
		Workers:   16,
		RateLimit: 20,
	}
}
