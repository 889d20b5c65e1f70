package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/velemoonkon/whodns/pkg/scanner"
)

// ParquetRow is a flattened representation of ScanResult for Parquet storage.
// Absent WHOIS fields stay null rather than empty.
type ParquetRow struct {
	// Core
	RunID      string `parquet:"run_id,zstd,dict"`
	Domain     string `parquet:"domain,zstd"`
	CheckedAt  int64  `parquet:"checked_at_unix_ms"`
	ScanTimeMs int64  `parquet:"scan_time_ms"`

	// Identity
	Registrar     string  `parquet:"registrar,zstd,dict"`
	RegistrarCode string  `parquet:"registrar_code,zstd,dict"`
	Confidence    float64 `parquet:"confidence"`
	Method        string  `parquet:"method,zstd,dict"`

	// Capabilities
	APISupported        bool `parquet:"api_supported"`
	AutoUpdateAvailable bool `parquet:"auto_update_available"`

	// Nameservers and status (comma-separated, order preserved)
	Nameservers string `parquet:"nameservers,zstd"`
	Status      string `parquet:"status,zstd,dict"`

	// WHOIS
	WhoisServer      *string `parquet:"whois_server,optional,zstd"`
	RegistryDomainID *string `parquet:"registry_domain_id,optional,zstd"`
	CreationDate     *string `parquet:"creation_date,optional,zstd"`
	ExpirationDate   *string `parquet:"expiration_date,optional,zstd"`
	LastUpdated      *string `parquet:"last_updated,optional,zstd"`
}

// ParquetWriter writes detection results to a Parquet file
type ParquetWriter struct {
	file   *os.File
	writer *parquet.GenericWriter[ParquetRow]
	count  int
}

// NewParquetWriter creates a Parquet writer with zstd compression
func NewParquetWriter(filename string) (*ParquetWriter, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet file: %w", err)
	}

	writer := parquet.NewGenericWriter[ParquetRow](file,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedDefault}),
		parquet.CreatedBy("whodns", "1.0.0", "go"),
	)

	return &ParquetWriter{
		file:   file,
		writer: writer,
	}, nil
}

// Write converts a ScanResult to a flat ParquetRow and writes it
func (w *ParquetWriter) Write(result *scanner.ScanResult) error {
	row := scanResultToParquetRow(result)

	if _, err := w.writer.Write([]ParquetRow{row}); err != nil {
		return fmt.Errorf("failed to write parquet row: %w", err)
	}

	w.count++
	return nil
}

// Flush forces buffered data to be written
func (w *ParquetWriter) Flush() error {
	return w.writer.Flush()
}

// Close finalizes and closes the Parquet file
func (w *ParquetWriter) Close() error {
	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return w.file.Close()
}

// Count returns the number of rows written
func (w *ParquetWriter) Count() int {
	return w.count
}

// scanResultToParquetRow flattens a ScanResult into a ParquetRow
func scanResultToParquetRow(r *scanner.ScanResult) ParquetRow {
	row := ParquetRow{
		RunID:               r.RunID,
		Domain:              r.Domain,
		ScanTimeMs:          r.ScanTime,
		Registrar:           r.Registrar,
		RegistrarCode:       r.RegistrarCode,
		Confidence:          r.Confidence,
		Method:              r.Method,
		APISupported:        r.APISupported,
		AutoUpdateAvailable: r.AutoUpdateAvailable,
		Nameservers:         strings.Join(r.Nameservers, ","),
		Status:              strings.Join(r.Status, ","),
		WhoisServer:         r.WhoisServer,
		RegistryDomainID:    r.RegistryDomainID,
		CreationDate:        r.CreationDate,
		ExpirationDate:      r.ExpirationDate,
		LastUpdated:         r.LastUpdated,
	}
	if !r.CheckedAt.IsZero() {
		row.CheckedAt = r.CheckedAt.UnixMilli()
	}
	return row
}
