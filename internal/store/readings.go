package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/chadmayfield/weatherreportd/internal/weather"
)

const (
	dialectSQLite   = "sqlite"
	dialectPostgres = "postgres"

	// sqliteTimeLayout keeps stored timestamps naive UTC and fixed width so
	// text comparison orders them chronologically.
	sqliteTimeLayout = "2006-01-02 15:04:05"
)

const insertReadingSQL = `
	INSERT INTO weather_readings (
		lat, lon, timestamp, temperature_2m, relative_humidity_2m, source
	) VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (lat, lon, timestamp) DO NOTHING`

const selectReadingColumns = `SELECT lat, lon, timestamp, temperature_2m, relative_humidity_2m, source
	FROM weather_readings`

// readingStore holds the SQL shared by both backends. The dialect decides
// placeholder style and how timestamps are bound.
type readingStore struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

// DB returns the underlying database connection for migration commands.
func (s *readingStore) DB() *sql.DB {
	return s.db
}

func (s *readingStore) Close() error {
	return s.db.Close()
}

func (s *readingStore) query(q string) string {
	if s.dialect == dialectPostgres {
		return replacePlaceholders(q)
	}
	return q
}

func (s *readingStore) timeArg(t time.Time) any {
	t = t.UTC()
	if s.dialect == dialectSQLite {
		return t.Format(sqliteTimeLayout)
	}
	return t
}

func (s *readingStore) SaveReadings(ctx context.Context, loc weather.Location, samples []weather.Sample) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is harmless

	stmt, err := tx.PrepareContext(ctx, s.query(insertReadingSQL))
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close() //nolint:errcheck

	inserted := 0
	for _, smp := range samples {
		source := smp.Source
		if source == "" {
			source = weather.DefaultSource
		}
		res, err := stmt.ExecContext(ctx,
			loc.Lat, loc.Lon, s.timeArg(smp.Timestamp),
			nullFloat(smp.Temperature), nullFloat(smp.Humidity),
			source,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting reading at %s: %w", smp.Timestamp.UTC().Format(time.RFC3339), err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("reading affected rows: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return inserted, nil
}

func (s *readingStore) RecentReadings(ctx context.Context, hours int, loc *weather.Location) ([]weather.Reading, error) {
	cutoff := s.now().UTC().Add(-time.Duration(hours) * time.Hour)

	q := selectReadingColumns + ` WHERE timestamp >= ?`
	args := []any{s.timeArg(cutoff)}
	if loc != nil {
		q += ` AND lat = ? AND lon = ?`
		args = append(args, loc.Lat, loc.Lon)
	}
	q += ` ORDER BY timestamp ASC, lat, lon`

	rows, err := s.db.QueryContext(ctx, s.query(q), args...)
	if err != nil {
		return nil, fmt.Errorf("querying recent readings: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	return scanReadings(rows)
}

func (s *readingStore) RangeReadings(ctx context.Context, loc weather.Location, start, end time.Time) ([]weather.Reading, error) {
	q := selectReadingColumns + `
		WHERE timestamp >= ? AND timestamp <= ? AND lat = ? AND lon = ?
		ORDER BY timestamp ASC`

	rows, err := s.db.QueryContext(ctx, s.query(q), s.timeArg(start), s.timeArg(end), loc.Lat, loc.Lon)
	if err != nil {
		return nil, fmt.Errorf("querying readings by range: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	return scanReadings(rows)
}

func (s *readingStore) GetStats(ctx context.Context) (*Stats, error) {
	var (
		st                   Stats
		oldestRaw, newestRaw any
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT lat || ',' || lon), MIN(timestamp), MAX(timestamp)
		FROM weather_readings`).Scan(&st.TotalReadings, &st.Locations, &oldestRaw, &newestRaw)
	if err != nil {
		return nil, fmt.Errorf("querying stats: %w", err)
	}
	if oldestRaw == nil || newestRaw == nil {
		return &st, nil
	}
	if st.Oldest, err = parseTimestamp(oldestRaw); err != nil {
		return nil, fmt.Errorf("parsing oldest: %w", err)
	}
	if st.Newest, err = parseTimestamp(newestRaw); err != nil {
		return nil, fmt.Errorf("parsing newest: %w", err)
	}
	return &st, nil
}

// --- Shared helpers ---

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// parseTimestamp handles both time.Time and string timestamp values. SQLite
// hands back text or time.Time depending on the declared column type.
func parseTimestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case []byte:
		return parseTimestamp(string(t))
	case string:
		for _, layout := range []string{
			sqliteTimeLayout,
			time.RFC3339Nano,
			"2006-01-02 15:04:05.999999999-07:00",
			"2006-01-02 15:04:05.999999999 -0700 MST",
			"2006-01-02T15:04:05",
		} {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unable to parse timestamp: %q", t)
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type: %T", v)
	}
}

func scanReadings(rows *sql.Rows) ([]weather.Reading, error) {
	result := []weather.Reading{}
	for rows.Next() {
		var (
			r        weather.Reading
			tsRaw    any
			temp, rh sql.NullFloat64
			source   sql.NullString
		)
		if err := rows.Scan(&r.Lat, &r.Lon, &tsRaw, &temp, &rh, &source); err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}
		ts, err := parseTimestamp(tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		r.Timestamp = ts
		if temp.Valid {
			r.Temperature = weather.Float(temp.Float64)
		}
		if rh.Valid {
			r.Humidity = weather.Float(rh.Float64)
		}
		r.Source = source.String
		result = append(result, r)
	}
	return result, rows.Err()
}

// replacePlaceholders converts ? to $1, $2, $3 etc for postgres.
func replacePlaceholders(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			fmt.Fprintf(&b, "$%d", n)
			n++
		} else {
			b.WriteByte(query[i])
		}
	}
	return b.String()
}
