package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chadmayfield/weatherreportd/internal/ingest"
	"github.com/chadmayfield/weatherreportd/internal/weather"
)

var (
	fetchLat  float64
	fetchLon  float64
	fetchDays int
	fetchFrom string
	fetchTo   string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch hourly readings for a location once and store the new ones",
	Long: `fetch pulls hourly temperature and humidity for one location from the upstream
API and inserts the hours not already stored. Use --days for a window ending at
the current hour, or --from/--to for explicit calendar dates.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Float64Var(&fetchLat, "lat", 0, "latitude (-90 to 90)")
	fetchCmd.Flags().Float64Var(&fetchLon, "lon", 0, "longitude (-180 to 180)")
	fetchCmd.Flags().IntVar(&fetchDays, "days", ingest.DefaultDays, "days to look back (1-7)")
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "start date (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "end date (YYYY-MM-DD)")
	_ = fetchCmd.MarkFlagRequired("lat")
	_ = fetchCmd.MarkFlagRequired("lon")
	fetchCmd.MarkFlagsRequiredTogether("from", "to")
	fetchCmd.MarkFlagsMutuallyExclusive("days", "from")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	loc := weather.Location{Lat: fetchLat, Lon: fetchLon}
	if err := loc.Validate(); err != nil {
		return err
	}
	if fetchFrom != "" {
		from, err := time.Parse(time.DateOnly, fetchFrom)
		if err != nil {
			return fmt.Errorf("invalid --from date: %w", err)
		}
		to, err := time.Parse(time.DateOnly, fetchTo)
		if err != nil {
			return fmt.Errorf("invalid --to date: %w", err)
		}
		if to.Before(from) {
			return fmt.Errorf("--from date must not be after --to date")
		}
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

	// Support context cancellation via signals.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ing := ingest.New(s, newFetcher(cfg), nil)

	var res *ingest.Result
	if fetchFrom != "" {
		res, err = ing.IngestDates(ctx, loc, fetchFrom, fetchTo)
	} else {
		res, err = ing.IngestDays(ctx, loc, fetchDays)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s to %s, fetched %d, inserted %d\n",
		res.Location, res.StartDate, res.EndDate, res.Fetched, res.Inserted)
	return nil
}
