package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/chadmayfield/weatherreportd/internal/api"
	"github.com/chadmayfield/weatherreportd/internal/report"
	"github.com/chadmayfield/weatherreportd/internal/store"
	"github.com/chadmayfield/weatherreportd/internal/weather"
)

var (
	exportFormat string
	exportOut    string
	exportLat    float64
	exportLon    float64
	exportHours  int
	exportStart  string
	exportEnd    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a spreadsheet or PDF report of stored readings to a file",
	Long: `export renders the same reports as the HTTP export endpoints.

  xlsx: readings from the last --hours hours, optionally for one --lat/--lon.
  pdf:  readings for --lat/--lon between --start and --end (ISO, UTC),
        or the last 48 hours when both are omitted.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "xlsx", "report format (xlsx or pdf)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: derived from the query)")
	exportCmd.Flags().Float64Var(&exportLat, "lat", 0, "latitude (-90 to 90)")
	exportCmd.Flags().Float64Var(&exportLon, "lon", 0, "longitude (-180 to 180)")
	exportCmd.Flags().IntVar(&exportHours, "hours", 48, "xlsx: hours to look back (1-240)")
	exportCmd.Flags().StringVar(&exportStart, "start", "", "pdf: range start (ISO datetime, UTC)")
	exportCmd.Flags().StringVar(&exportEnd, "end", "", "pdf: range end (ISO datetime, UTC)")
	exportCmd.MarkFlagsRequiredTogether("lat", "lon")
	exportCmd.MarkFlagsRequiredTogether("start", "end")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	var loc *weather.Location
	if cmd.Flags().Changed("lat") {
		loc = &weather.Location{Lat: exportLat, Lon: exportLon}
		if err := loc.Validate(); err != nil {
			return err
		}
	}

	switch exportFormat {
	case "xlsx":
		if exportHours < 1 || exportHours > 240 {
			return fmt.Errorf("--hours must be between 1 and 240, got %d", exportHours)
		}
	case "pdf":
		if loc == nil {
			return fmt.Errorf("pdf export requires --lat and --lon")
		}
	default:
		return fmt.Errorf("--format must be 'xlsx' or 'pdf', got %q", exportFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var body []byte
	var name string
	if exportFormat == "xlsx" {
		body, err = exportSpreadsheet(ctx, s, exportHours, loc)
		name = api.SpreadsheetFilename(exportHours, loc)
	} else {
		body, err = exportDocument(ctx, s, *loc, exportStart, exportEnd, time.Now())
		name = api.DocumentFilename(*loc)
	}
	if err != nil {
		return err
	}

	if exportOut != "" {
		name = exportOut
	}
	if err := os.WriteFile(name, body, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}

	slog.Info("report written", "format", exportFormat, "path", name, "bytes", len(body))
	fmt.Fprintln(cmd.OutOrStdout(), name)
	return nil
}

func exportSpreadsheet(ctx context.Context, s store.Store, hours int, loc *weather.Location) ([]byte, error) {
	readings, err := s.RecentReadings(ctx, hours, loc)
	if err != nil {
		return nil, err
	}
	return report.WriteXLSX(report.NewTable(readings))
}

func exportDocument(ctx context.Context, s store.Store, loc weather.Location, startISO, endISO string, now time.Time) ([]byte, error) {
	now = now.UTC()
	start, end := now.Add(-48*time.Hour), now
	if startISO != "" {
		var err error
		if start, err = weather.ParseISO(startISO); err != nil {
			return nil, fmt.Errorf("invalid --start: %w", err)
		}
		if end, err = weather.ParseISO(endISO); err != nil {
			return nil, fmt.Errorf("invalid --end: %w", err)
		}
	}

	readings, err := s.RangeReadings(ctx, loc, start, end)
	if err != nil {
		return nil, err
	}
	return report.RenderPDF(report.Document{Location: loc, Readings: readings, GeneratedAt: now})
}
