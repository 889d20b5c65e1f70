package output

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/velemoonkon/whodns/pkg/scanner"
)

// MarkdownWriter streams a Markdown report: a header, one table row per
// result, and a per-provider summary in the footer
type MarkdownWriter struct {
	file      *os.File
	writer    *bufio.Writer
	startTime time.Time
	count     int
	byCode    map[string]int
	autoCount int
}

// NewMarkdownWriter creates a report writer to filename ("-" for stdout)
func NewMarkdownWriter(filename string, startTime time.Time) (*MarkdownWriter, error) {
	file, err := createOrStdout(filename)
	if err != nil {
		return nil, err
	}
	w, err := NewMarkdownWriterFromWriter(file, startTime)
	if err != nil {
		closeUnlessStdout(file)
		return nil, err
	}
	w.file = file
	return w, nil
}

// NewMarkdownWriterFromWriter creates a report writer on out and writes the header
func NewMarkdownWriterFromWriter(out io.Writer, startTime time.Time) (*MarkdownWriter, error) {
	w := &MarkdownWriter{
		writer:    bufio.NewWriterSize(out, 64*1024),
		startTime: startTime,
		byCode:    make(map[string]int),
	}
	_, err := fmt.Fprintf(w.writer, "# Registrar Detection Report\n\n**Scan Date:** %s\n\n"+
		"| Domain | Registrar | Code | Confidence | Method | Auto-update |\n"+
		"|---|---|---|---|---|---|\n",
		startTime.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Write appends one table row
func (w *MarkdownWriter) Write(result *scanner.ScanResult) error {
	auto := ""
	if result.AutoUpdateAvailable {
		auto = "yes"
		w.autoCount++
	}
	_, err := fmt.Fprintf(w.writer, "| %s | %s | `%s` | %.2f | %s | %s |\n",
		escapeCell(result.Domain),
		escapeCell(result.Registrar),
		result.RegistrarCode,
		result.Confidence,
		result.Method,
		auto,
	)
	if err != nil {
		return err
	}

	w.count++
	w.byCode[result.RegistrarCode]++

	// Flush every 100 results for responsive output
	if w.count%100 == 0 {
		return w.writer.Flush()
	}
	return nil
}

// Flush forces any buffered data to be written
func (w *MarkdownWriter) Flush() error {
	return w.writer.Flush()
}

// Close writes the summary footer and closes the file
func (w *MarkdownWriter) Close() error {
	if err := w.writeFooter(); err != nil {
		return err
	}
	if err := w.writer.Flush(); err != nil {
		return err
	}
	return closeUnlessStdout(w.file)
}

// Count returns the number of results written
func (w *MarkdownWriter) Count() int {
	return w.count
}

func (w *MarkdownWriter) writeFooter() error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n## Summary\n\n- **Domains:** %d\n- **Auto-update available:** %d\n", w.count, w.autoCount)

	// most common providers first, ties by code
	codes := slices.SortedFunc(maps.Keys(w.byCode), func(a, b string) int {
		if c := cmp.Compare(w.byCode[b], w.byCode[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	for _, code := range codes {
		fmt.Fprintf(&sb, "- `%s`: %d\n", code, w.byCode[code])
	}

	fmt.Fprintf(&sb, "\n**Scan Duration:** %s\n", time.Since(w.startTime).Round(time.Millisecond))
	_, err := w.writer.WriteString(sb.String())
	return err
}

// escapeCell keeps pipes inside a value from splitting the table cell
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
