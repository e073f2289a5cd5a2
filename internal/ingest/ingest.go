// Package ingest chains the upstream fetch with the deduplicating store
// insert.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chadmayfield/weatherreportd/internal/store"
	"github.com/chadmayfield/weatherreportd/internal/weather"
)

const (
	// MinDays and MaxDays bound the look-back window of IngestDays.
	MinDays     = 1
	MaxDays     = 7
	DefaultDays = 2
)

// ErrInvalidDays is returned when the look-back window is outside MinDays..MaxDays.
var ErrInvalidDays = errors.New("invalid day count")

// Fetcher returns hourly samples for a location between two calendar dates.
type Fetcher interface {
	FetchHourly(ctx context.Context, loc weather.Location, startDate, endDate string) ([]weather.Sample, error)
}

// Result reports what one ingest run did.
type Result struct {
	Location  weather.Location
	StartDate string
	EndDate   string
	Fetched   int
	Inserted  int
}

// Ingester fetches samples from the upstream API and stores the new ones.
type Ingester struct {
	store   store.Store
	fetcher Fetcher
	logger  *slog.Logger
	now     func() time.Time
}

// New creates an Ingester.
func New(s store.Store, f Fetcher, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{store: s, fetcher: f, logger: logger, now: time.Now}
}

// IngestDays fetches the last days days (UTC, ending at the current hour) for
// loc and inserts the samples not yet stored.
func (i *Ingester) IngestDays(ctx context.Context, loc weather.Location, days int) (*Result, error) {
	if days < MinDays || days > MaxDays {
		return nil, fmt.Errorf("%w: %d (must be %d-%d)", ErrInvalidDays, days, MinDays, MaxDays)
	}
	start, end := weather.LastNDays(i.now(), days)
	startDate, endDate := weather.DateParams(start, end)
	return i.IngestDates(ctx, loc, startDate, endDate)
}

// IngestDates fetches the calendar dates startDate..endDate (YYYY-MM-DD) for
// loc and inserts the samples not yet stored. Any fetch or storage error is
// returned as is; nothing is retried.
func (i *Ingester) IngestDates(ctx context.Context, loc weather.Location, startDate, endDate string) (*Result, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	samples, err := i.fetcher.FetchHourly(ctx, loc, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("fetching %s to %s: %w", startDate, endDate, err)
	}

	inserted, err := i.store.SaveReadings(ctx, loc, samples)
	if err != nil {
		return nil, fmt.Errorf("saving readings: %w", err)
	}

	i.logger.Info("ingest complete",
		"location", loc.String(),
		"start_date", startDate,
		"end_date", endDate,
		"fetched", len(samples),
		"inserted", inserted,
	)

	return &Result{
		Location:  loc,
		StartDate: startDate,
		EndDate:   endDate,
		Fetched:   len(samples),
		Inserted:  inserted,
	}, nil
}
