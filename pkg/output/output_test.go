package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/velemoonkon/whodns/pkg/detect"
	"github.com/velemoonkon/whodns/pkg/scanner"
)

func ptr(s string) *string { return &s }

func sampleResult(domain, registrar, code string) *scanner.ScanResult {
	return &scanner.ScanResult{
		RunID:     "run-1",
		Index:     0,
		CheckedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		ScanTime:  42,
		RegistrarInfo: detect.RegistrarInfo{
			Domain:              domain,
			Registrar:           registrar,
			RegistrarCode:       code,
			Nameservers:         []string{"ns1.example.net", "ns2.example.net"},
			Status:              []string{"ok"},
			APISupported:        code != "unknown",
			AutoUpdateAvailable: code != "unknown",
			Confidence:          0.9,
			Method:              detect.MethodNameservers,
		},
	}
}

func TestNewWriter(t *testing.T) {
	// Test stdout
	w, err := NewWriter("-")
	if err != nil {
		t.Fatalf("Failed to create stdout writer: %v", err)
	}
	w.Close()

	// Test empty string (should be stdout)
	w, err = NewWriter("")
	if err != nil {
		t.Fatalf("Failed to create writer with empty string: %v", err)
	}
	w.Close()
}

func TestNewWriterFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "test.jsonl")

	w, err := NewWriter(tmpFile)
	if err != nil {
		t.Fatalf("Failed to create file writer: %v", err)
	}
	if err := w.Write(sampleResult("example.com", "Cloudflare", "cloudflare")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(tmpFile)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), `"domain":"example.com"`) {
		t.Errorf("Expected file to contain the domain, got: %s", data)
	}
}

func TestWriterWrite(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriterFromWriter(&buf)

	result := sampleResult("example.com", "Cloudflare", "cloudflare")
	result.WhoisServer = ptr("whois.cloudflare.com")

	if err := w.Write(result); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	output := buf.String()
	if !strings.HasSuffix(output, "\n") {
		t.Error("Expected output to end with newline")
	}

	// Embedded detection fields are flattened into the line
	var parsed map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	for key, want := range map[string]any{
		"domain":         "example.com",
		"registrar_code": "cloudflare",
		"run_id":         "run-1",
		"scan_time_ms":   float64(42),
		"whois_server":   "whois.cloudflare.com",
		"method":         "nameservers",
	} {
		if parsed[key] != want {
			t.Errorf("%s = %v, want %v", key, parsed[key], want)
		}
	}
	if _, ok := parsed["creation_date"]; ok {
		t.Error("Expected absent creation_date to be omitted")
	}
}

func TestWriterFlushEvery100(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriterFromWriter(&buf)

	for range 99 {
		if err := w.Write(sampleResult("example.com", "Cloudflare", "cloudflare")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if buf.Len() != 0 {
		t.Errorf("Expected buffered output before 100 results, got %d bytes", buf.Len())
	}

	if err := w.Write(sampleResult("example.com", "Cloudflare", "cloudflare")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 100 {
		t.Errorf("Expected 100 flushed lines, got %d", got)
	}
	if w.Count() != 100 {
		t.Errorf("Count = %d, want 100", w.Count())
	}
}

func TestParquetWriter(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "results.parquet")

	w, err := NewParquetWriter(tmpFile)
	if err != nil {
		t.Fatalf("Failed to create parquet writer: %v", err)
	}

	withWhois := sampleResult("example.com", "GoDaddy", "godaddy")
	withWhois.Method = detect.MethodWhois
	withWhois.ExpirationDate = ptr("2030-01-01T00:00:00Z")

	if err := w.Write(withWhois); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Write(sampleResult("unknown.test", "Unknown Registrar", "unknown")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if w.Count() != 2 {
		t.Errorf("Count = %d, want 2", w.Count())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(tmpFile)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PAR1")) || !bytes.HasSuffix(data, []byte("PAR1")) {
		t.Fatal("Expected parquet magic bytes at both ends")
	}

	rows, err := parquet.ReadFile[ParquetRow](tmpFile)
	if err != nil {
		t.Fatalf("Failed to read parquet file: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].RegistrarCode != "godaddy" || rows[0].Method != "whois" {
		t.Errorf("Unexpected first row: %+v", rows[0])
	}
	if rows[0].Nameservers != "ns1.example.net,ns2.example.net" {
		t.Errorf("Nameservers = %q", rows[0].Nameservers)
	}
	if rows[0].ExpirationDate == nil || *rows[0].ExpirationDate != "2030-01-01T00:00:00Z" {
		t.Errorf("ExpirationDate = %v", rows[0].ExpirationDate)
	}
	if rows[0].CreationDate != nil {
		t.Errorf("Expected null creation date, got %q", *rows[0].CreationDate)
	}
	if rows[1].AutoUpdateAvailable {
		t.Error("Expected unknown registrar to have no auto-update")
	}
}

func TestScanResultToParquetRow(t *testing.T) {
	result := sampleResult("example.com", "Cloudflare", "cloudflare")
	row := scanResultToParquetRow(result)

	if row.CheckedAt != result.CheckedAt.UnixMilli() {
		t.Errorf("CheckedAt = %d, want %d", row.CheckedAt, result.CheckedAt.UnixMilli())
	}
	if row.Status != "ok" || row.ScanTimeMs != 42 || row.Confidence != 0.9 {
		t.Errorf("Unexpected row: %+v", row)
	}

	result.CheckedAt = time.Time{}
	if got := scanResultToParquetRow(result).CheckedAt; got != 0 {
		t.Errorf("Expected zero CheckedAt for unset time, got %d", got)
	}
}

func TestTableWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewTableWriterFromWriter(&buf)

	if err := w.Write(sampleResult("example.com", "Cloudflare", "cloudflare")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Write(sampleResult("a-much-longer-name.example", "Unknown Registrar", "unknown")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "DOMAIN") {
		t.Errorf("Unexpected header: %q", lines[0])
	}
	// Columns are aligned: REGISTRAR starts at the same offset on every line
	col := strings.Index(lines[0], "REGISTRAR")
	if strings.Index(lines[1], "Cloudflare") != col || strings.Index(lines[2], "Unknown Registrar") != col {
		t.Errorf("Columns not aligned:\n%s", buf.String())
	}
	if !strings.Contains(lines[1], "yes") || !strings.Contains(lines[2], "no") {
		t.Errorf("Expected auto-update column:\n%s", buf.String())
	}
	if !strings.Contains(lines[1], "ns1.example.net, ns2.example.net") {
		t.Errorf("Expected joined nameservers:\n%s", buf.String())
	}
}

func TestTableWriterEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := NewTableWriterFromWriter(&buf)
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected no output for an empty table, got %q", buf.String())
	}
}

func TestMarkdownWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewMarkdownWriterFromWriter(&buf, time.Now())
	if err != nil {
		t.Fatalf("Failed to create markdown writer: %v", err)
	}

	for _, r := range []*scanner.ScanResult{
		sampleResult("a.com", "Cloudflare", "cloudflare"),
		sampleResult("b.com", "Cloudflare", "cloudflare"),
		sampleResult("c.com", "Weird | Name", "unknown"),
	} {
		if err := w.Write(r); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Registrar Detection Report",
		"| a.com | Cloudflare | `cloudflare` | 0.90 | nameservers | yes |",
		`Weird \| Name`,
		"- **Domains:** 3",
		"- **Auto-update available:** 2",
		"- `cloudflare`: 2\n- `unknown`: 1",
		"**Scan Duration:**",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected report to contain %q, got:\n%s", want, out)
		}
	}
}

func TestNewFactory(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		format   string
		filename string
		wantErr  bool
	}{
		{"jsonl", filepath.Join(dir, "a.jsonl"), false},
		{"JSONL", "-", false},
		{"table", filepath.Join(dir, "a.txt"), false},
		{"markdown", filepath.Join(dir, "a.md"), false},
		{"parquet", filepath.Join(dir, "a.parquet"), false},
		{"parquet", "-", true},
		{"parquet", "", true},
		{"csv", "-", true},
	}

	for _, tt := range tests {
		t.Run(tt.format+"/"+tt.filename, func(t *testing.T) {
			w, err := New(tt.format, tt.filename)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
		})
	}
}
