package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chadmayfield/weatherreportd/internal/store"
	"github.com/chadmayfield/weatherreportd/internal/weather"
)

func TestRedactDSN(t *testing.T) {
	got := redactDSN("postgres://weather:s3cret@db:5432/weather?sslmode=disable")
	if strings.Contains(got, "s3cret") {
		t.Errorf("password not redacted: %q", got)
	}
	if !strings.Contains(got, "weather:") {
		t.Errorf("username lost: %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int]string{0: "0", 999: "999", 1000: "1,000", 1247832: "1,247,832"}
	for in, want := range tests {
		if got := formatNumber(in); got != want {
			t.Errorf("formatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{512: "512 B", 2048: "2.0 KB", 5 << 20: "5.0 MB"}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestPrintHealth(t *testing.T) {
	var h healthReport
	h.Status = "ok"
	h.Version = "v1.0.0"
	h.Database.Driver = "sqlite"
	h.Database.Status = "ok"
	h.Database.TotalReadings = 1500
	h.Database.Locations = 2

	var buf bytes.Buffer
	printHealth(&buf, &h)
	out := buf.String()
	for _, want := range []string{"weatherreportd v1.0.0", "Status: ok", "1,500 across 2 location(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExportHelpers(t *testing.T) {
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "export.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close() //nolint:errcheck

	ctx := context.Background()
	loc := weather.Location{Lat: 47.37, Lon: 8.55}
	now := time.Now().UTC().Truncate(time.Hour)
	samples := []weather.Sample{
		{Timestamp: now.Add(-2 * time.Hour), Temperature: weather.Float(18.2), Humidity: weather.Float(60)},
		{Timestamp: now.Add(-time.Hour), Temperature: weather.Float(17.9), Humidity: weather.Float(61)},
	}
	if _, err := s.SaveReadings(ctx, loc, samples); err != nil {
		t.Fatal(err)
	}

	xlsx, err := exportSpreadsheet(ctx, s, 48, &loc)
	if err != nil {
		t.Fatalf("exportSpreadsheet: %v", err)
	}
	if !bytes.HasPrefix(xlsx, []byte("PK")) {
		t.Error("spreadsheet is not a zip container")
	}

	pdf, err := exportDocument(ctx, s, loc, "", "", now)
	if err != nil {
		t.Fatalf("exportDocument: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Error("document is not a PDF")
	}

	if _, err := exportDocument(ctx, s, loc, "not-a-date", "2025-08-27", now); err == nil {
		t.Error("expected error for malformed --start")
	}
}
