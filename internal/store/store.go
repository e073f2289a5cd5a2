package store

import (
	"context"
	"time"

	"github.com/chadmayfield/weatherreportd/internal/weather"
)

// Store defines the interface for weather reading storage.
// Both SQLite and PostgreSQL implementations satisfy this interface.
type Store interface {
	// SaveReadings inserts the samples for loc that are not already stored.
	// Rows are unique on (lat, lon, timestamp); existing rows are never
	// updated. All inserts of one call share a single transaction. Returns the
	// number of newly created rows.
	SaveReadings(ctx context.Context, loc weather.Location, samples []weather.Sample) (int, error)

	// RecentReadings returns readings with timestamp >= now-hours, oldest first.
	// A nil loc returns readings for every location.
	RecentReadings(ctx context.Context, hours int, loc *weather.Location) ([]weather.Reading, error)

	// RangeReadings returns readings for loc with start <= timestamp <= end,
	// oldest first.
	RangeReadings(ctx context.Context, loc weather.Location, start, end time.Time) ([]weather.Reading, error)

	// GetStats returns the row count and the stored time span.
	GetStats(ctx context.Context) (*Stats, error)

	// Close closes the database connection.
	Close() error
}

// Stats summarises the readings table.
type Stats struct {
	TotalReadings int
	Locations     int
	Oldest        time.Time
	Newest        time.Time
}
