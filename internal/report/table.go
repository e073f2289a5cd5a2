// Package report turns stored readings into downloadable documents: a
// spreadsheet table and a PDF with a time-series chart.
package report

import (
	"sort"
	"time"

	"github.com/chadmayfield/weatherreportd/internal/weather"
)

// Column headers shared by every tabular output.
var Columns = []string{"timestamp", "temperature_2m", "relative_humidity_2m"}

// Row is one table line.
type Row struct {
	Timestamp   time.Time
	Temperature *float64
	Humidity    *float64
}

// Table is an ascending-by-time series of rows.
type Table struct {
	Rows []Row
}

// NewTable builds a table from readings, sorted ascending by timestamp.
func NewTable(readings []weather.Reading) *Table {
	rows := make([]Row, len(readings))
	for i, r := range readings {
		rows[i] = Row{Timestamp: r.Timestamp.UTC(), Temperature: r.Temperature, Humidity: r.Humidity}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})
	return &Table{Rows: rows}
}

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}

// Span returns the first and last timestamps. An empty table spans the
// single instant now.
func (t *Table) Span(now time.Time) (start, end time.Time) {
	if t.Empty() {
		now = now.UTC()
		return now, now
	}
	return t.Rows[0].Timestamp, t.Rows[len(t.Rows)-1].Timestamp
}
