package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/velemoonkon/whodns/pkg/config"
	"github.com/velemoonkon/whodns/pkg/detect"
	"github.com/velemoonkon/whodns/pkg/input"
	"github.com/velemoonkon/whodns/pkg/metrics"
	"github.com/velemoonkon/whodns/pkg/output"
	"github.com/velemoonkon/whodns/pkg/registry"
	"github.com/velemoonkon/whodns/pkg/scanner"
	"github.com/velemoonkon/whodns/pkg/server"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI flags
var (
	// Input
	inputFile   string
	registrable bool

	// Sources
	sourceFlags SourceFlags

	// Output
	outputFile   string
	outputFormat string

	// Performance
	workers int
	rate    int
	timeout time.Duration

	// Registrars
	registrarsJSON bool

	// Server
	serveAddr string

	// Logging
	quiet   bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "whodns",
	Short: "Registrar and DNS provider detection",
	Long: `whodns - find out who controls a domain's DNS

Detects the registrar or DNS hosting provider of a domain from WHOIS data,
falling back to nameserver patterns, and reports whether the provider's API
supports automated DNS configuration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var detectCmd = &cobra.Command{
	Use:   "detect [flags] <domain>...",
	Short: "Detect the registrar of one or more domains",
	Example: `  # Single domain, table on a terminal
  whodns detect example.com

  # Batch from file, JSONL to a file
  whodns detect -f domains.txt -o results.jsonl

  # Nameserver patterns only, over DoH
  whodns detect example.com --whois none --ns doh

  # Parquet for analytics
  whodns detect -f domains.txt -o results.parquet
  # Then query: duckdb -c "SELECT registrar_code, count(*) FROM 'results.parquet' GROUP BY 1"

  # Pipe JSONL to jq
  whodns detect example.com --format jsonl | jq '.registrar_code'`,
	Args: func(cmd *cobra.Command, args []string) error {
		if inputFile == "" && len(args) == 0 {
			return fmt.Errorf("requires domain(s) or -f/--file")
		}
		return nil
	},
	RunE: runDetect,
}

var registrarsCmd = &cobra.Command{
	Use:   "registrars [code]",
	Short: "List providers with automated configuration support",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRegistrars,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the detection HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("whodns %s (commit: %s, built: %s)\n", version, commit, date))

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	// Sources are shared by detect and serve
	for _, cmd := range []*cobra.Command{detectCmd, serveCmd} {
		f := cmd.Flags()
		f.StringVar(&sourceFlags.Whois, "whois", whoisAuto, "WHOIS backend: auto, service, port43, none")
		f.StringVar(&sourceFlags.WhoisURL, "whois-url", "", "WHOIS service endpoint (env WHODNS_WHOIS_URL)")
		f.StringVar(&sourceFlags.NS, "ns", "", "Nameserver source: dns, doh, service (env WHODNS_NS_SOURCE)")
		f.StringVar(&sourceFlags.Resolver, "resolver", "", "DNS resolver for --ns dns (env WHODNS_NS_RESOLVER)")
		f.StringVar(&sourceFlags.DoHURL, "doh-url", "", "DoH endpoint for --ns doh (env WHODNS_NS_DOH_URL)")
		f.StringVar(&sourceFlags.NSURL, "ns-url", "", "Nameserver service endpoint for --ns service (env WHODNS_NS_URL)")
	}

	df := detectCmd.Flags()
	df.StringVarP(&inputFile, "file", "f", "", "Read domains from file (one per line)")
	df.BoolVar(&registrable, "registrable", false, "Reduce inputs to their registrable domain (eTLD+1)")
	df.StringVarP(&outputFile, "output", "o", "-", "Output file (- for stdout)")
	df.StringVar(&outputFormat, "format", "auto", "Format: auto, jsonl, parquet, table, markdown")
	df.IntVarP(&workers, "workers", "w", config.Scanner.DefaultWorkers, "Concurrent detections (0 = auto)")
	df.IntVarP(&rate, "rate", "r", config.Scanner.DefaultRateLimit, "Max domains started per second (0 = unlimited)")
	df.DurationVarP(&timeout, "timeout", "t", 0, "Per-domain bound on top of WHOIS/NS timeouts (0 = none)")

	registrarsCmd.Flags().BoolVar(&registrarsJSON, "json", false, "Print the list as JSON")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (env WHODNS_SERVER_ADDR)")

	rootCmd.AddCommand(detectCmd, registrarsCmd, serveCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	initLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	domains, err := parseTargets(args)
	if err != nil {
		return err
	}
	if len(domains) == 0 {
		return fmt.Errorf("no valid domains found")
	}

	detector, err := newDetector(nil)
	if err != nil {
		return err
	}

	format, err := ResolveFormat(outputFormat, outputFile, term.IsTerminal(int(os.Stdout.Fd())))
	if err != nil {
		return err
	}
	writer, err := output.New(format, outputFile)
	if err != nil {
		return err
	}

	s := scanner.NewScanner(scanner.Config{
		Workers:   workers,
		RateLimit: rate,
		Timeout:   timeout,
		Quiet:     quiet,
	}, detector)

	slog.Info("starting detection", "domains", len(domains), "workers", s.Workers(), "format", format)
	startTime := time.Now()

	count, scanErr := s.ScanStream(ctx, slices.Values(domains), writer.Write)

	if closeErr := writer.Close(); closeErr != nil && scanErr == nil {
		scanErr = closeErr
	}
	if scanErr != nil && ctx.Err() == nil {
		return fmt.Errorf("detection failed: %w", scanErr)
	}

	slog.Info("detection completed", "results", count, "duration", time.Since(startTime).Round(time.Millisecond))
	return nil
}

func parseTargets(args []string) ([]string, error) {
	var (
		domains []string
		err     error
	)
	if inputFile != "" {
		slog.Debug("reading domains", "file", inputFile)
		domains, err = input.ParseFile(inputFile)
	} else {
		domains, err = input.ParseTargets(args)
	}
	if err != nil {
		return nil, err
	}

	if registrable {
		for i, d := range domains {
			if domains[i], err = input.Registrable(d); err != nil {
				return nil, err
			}
		}
	}
	return input.Unique(domains), nil
}

// newDetector wires the WHOIS client and nameserver resolver selected by
// flags and environment. m may be nil.
func newDetector(m *metrics.Metrics) (*detect.Detector, error) {
	cfg, err := ResolveSourceConfig(sourceFlags)
	if err != nil {
		return nil, err
	}

	whoisClient, err := buildWhois(cfg)
	if err != nil {
		return nil, err
	}
	resolver, err := buildResolver(cfg, slog.Default())
	if err != nil {
		return nil, err
	}

	opts := detect.Options{
		Nameservers: resolver,
		Logger:      slog.Default(),
		Metrics:     m,
	}
	if whoisClient != nil {
		opts.Whois = whoisClient
	}

	slog.Debug("detector configured",
		"whois", cfg.WhoisBackend,
		"ns_source", cfg.NSSource,
		"ns_address", cfg.NSAddress)
	return detect.New(opts), nil
}

func runRegistrars(cmd *cobra.Command, args []string) error {
	initLogger()
	return printRegistrars(cmd.OutOrStdout(), args, registrarsJSON)
}

func printRegistrars(w io.Writer, args []string, asJSON bool) error {
	if len(args) == 1 {
		cfg, ok := registry.Get(args[0])
		if !ok {
			return fmt.Errorf("no automated configuration for %q", args[0])
		}
		return writeIndentedJSON(w, cfg)
	}

	all := registry.All()
	if asJSON {
		return writeIndentedJSON(w, all)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tAUTH\tOPERATIONS")
	for _, c := range all {
		ops := make([]string, len(c.SupportedOperations))
		for i, op := range c.SupportedOperations {
			ops[i] = string(op)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Code, c.Name, c.AuthType, strings.Join(ops, ","))
	}
	return tw.Flush()
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runServe(cmd *cobra.Command, args []string) error {
	initLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	detector, err := newDetector(metrics.New(reg))
	if err != nil {
		return err
	}

	opts := server.Options{Logger: slog.Default()}
	if config.Server.EnableMetrics {
		opts.Gatherer = reg
	}

	addr := firstNonEmpty(serveAddr, config.Server.Addr)
	return server.New(detector, opts).ListenAndServe(ctx, addr)
}

func initLogger() {
	var level slog.Level
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func main() {
	config.Init()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
