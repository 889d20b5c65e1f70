// Package output writes detection results in the formats the CLI offers.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/velemoonkon/whodns/pkg/scanner"
)

// Supported formats
const (
	FormatJSONL    = "jsonl"
	FormatParquet  = "parquet"
	FormatTable    = "table"
	FormatMarkdown = "markdown"
)

// ResultWriter is implemented by every output format
type ResultWriter interface {
	Write(result *scanner.ScanResult) error
	Flush() error
	Close() error
	Count() int
}

// New opens a writer for format. filename "-" or "" is stdout; parquet needs
// a real file.
func New(format, filename string) (ResultWriter, error) {
	switch strings.ToLower(format) {
	case FormatJSONL:
		return NewWriter(filename)
	case FormatParquet:
		if filename == "" || filename == "-" {
			return nil, fmt.Errorf("parquet output requires a file (-o)")
		}
		return NewParquetWriter(filename)
	case FormatTable:
		return NewTableWriter(filename)
	case FormatMarkdown:
		return NewMarkdownWriter(filename, time.Now())
	default:
		return nil, fmt.Errorf("unknown output format %q (use: jsonl, parquet, table, markdown)", format)
	}
}

func createOrStdout(filename string) (*os.File, error) {
	if filename == "-" || filename == "" {
		return os.Stdout, nil
	}
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, nil
}

// closeUnlessStdout closes file unless it is stdout or nil
func closeUnlessStdout(file *os.File) error {
	if file != nil && file != os.Stdout {
		return file.Close()
	}
	return nil
}
