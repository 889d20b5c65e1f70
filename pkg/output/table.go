package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/velemoonkon/whodns/pkg/scanner"
)

const tableHeader = "DOMAIN\tREGISTRAR\tCODE\tCONFIDENCE\tMETHOD\tAUTO-UPDATE\tNAMESERVERS"

// TableWriter renders results as an aligned text table for terminals.
// Columns align on Flush, so rows appear when the writer is flushed or closed.
type TableWriter struct {
	file   *os.File
	tw     *tabwriter.Writer
	count  int
	header bool
}

// NewTableWriter creates a table writer to filename ("-" for stdout)
func NewTableWriter(filename string) (*TableWriter, error) {
	file, err := createOrStdout(filename)
	if err != nil {
		return nil, err
	}
	w := NewTableWriterFromWriter(file)
	w.file = file
	return w, nil
}

// NewTableWriterFromWriter creates a table writer on w
func NewTableWriterFromWriter(w io.Writer) *TableWriter {
	return &TableWriter{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

// Write adds one row
func (w *TableWriter) Write(result *scanner.ScanResult) error {
	if !w.header {
		if _, err := fmt.Fprintln(w.tw, tableHeader); err != nil {
			return err
		}
		w.header = true
	}

	auto := "no"
	if result.AutoUpdateAvailable {
		auto = "yes"
	}
	_, err := fmt.Fprintf(w.tw, "%s\t%s\t%s\t%.2f\t%s\t%s\t%s\n",
		result.Domain,
		result.Registrar,
		result.RegistrarCode,
		result.Confidence,
		result.Method,
		auto,
		strings.Join(result.Nameservers, ", "),
	)
	if err != nil {
		return err
	}
	w.count++
	return nil
}

// Flush writes aligned rows
func (w *TableWriter) Flush() error {
	return w.tw.Flush()
}

// Close flushes and closes the underlying file
func (w *TableWriter) Close() error {
	if err := w.tw.Flush(); err != nil {
		return err
	}
	return closeUnlessStdout(w.file)
}

// Count returns the number of rows written
func (w *TableWriter) Count() int {
	return w.count
}
