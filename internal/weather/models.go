// Package weather holds the value types shared by the fetch, storage and
// report layers, plus the UTC time arithmetic used to drive the upstream API.
package weather

import (
	"errors"
	"fmt"
	"time"
)

// DefaultSource is the source tag recorded when a sample carries none.
const DefaultSource = "open-meteo"

// ErrInvalidLocation is returned for coordinates outside the valid ranges.
var ErrInvalidLocation = errors.New("invalid location")

// Location is a geographic point in decimal degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks latitude is within -90..90 and longitude within -180..180.
func (l Location) Validate() error {
	if l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidLocation, l.Lat)
	}
	if l.Lon < -180 || l.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidLocation, l.Lon)
	}
	return nil
}

func (l Location) String() string {
	return FormatCoord(l.Lat) + "," + FormatCoord(l.Lon)
}

// Sample is one hourly value pair returned by the upstream API.
// Timestamp is always UTC. Temperature and Humidity are nil when the
// upstream reported no value for that hour.
type Sample struct {
	Timestamp   time.Time
	Temperature *float64
	Humidity    *float64
	Source      string
}

// Reading is a persisted observation for one location and hour.
type Reading struct {
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature *float64  `json:"temperature_2m"`
	Humidity    *float64  `json:"relative_humidity_2m"`
	Source      string    `json:"source"`
}

// Location returns the point the reading was taken for.
func (r Reading) Location() Location {
	return Location{Lat: r.Lat, Lon: r.Lon}
}

// Float returns a pointer to v. Handy for building samples in code and tests.
func Float(v float64) *float64 {
	return &v
}
