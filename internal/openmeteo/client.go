// Package openmeteo fetches hourly temperature and humidity series from the
// Open-Meteo forecast API.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/chadmayfield/weatherreportd/internal/weather"
)

const (
	// DefaultBaseURL is the Open-Meteo hourly forecast endpoint.
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"
	// DefaultTimeout bounds every upstream call.
	DefaultTimeout = 30 * time.Second

	hourlyFields = "temperature_2m,relative_humidity_2m"
	maxBodyBytes = 10 << 20
)

// ErrUpstreamStatus is wrapped when the API answers with a non-2xx status.
var ErrUpstreamStatus = errors.New("upstream returned non-success status")

// Client calls the Open-Meteo API. It never retries.
type Client struct {
	baseURL    string
	source     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithSource sets the source tag attached to every sample.
func WithSource(s string) Option {
	return func(c *Client) { c.source = s }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a client with the default endpoint and a 30s timeout.
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		source:     weather.DefaultSource,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type hourlyResponse struct {
	Hourly struct {
		Time             []string   `json:"time"`
		Temperature2m    []*float64 `json:"temperature_2m"`
		RelativeHumidity []*float64 `json:"relative_humidity_2m"`
	} `json:"hourly"`
}

// FetchHourly requests the hourly series for loc between the calendar dates
// startDate and endDate (YYYY-MM-DD, inclusive) in UTC.
//
// The three parallel arrays in the response are truncated to the shortest of
// them; trailing unmatched entries are dropped and logged.
func (c *Client) FetchHourly(ctx context.Context, loc weather.Location, startDate, endDate string) ([]weather.Sample, error) {
	params := url.Values{
		"latitude":   {strconv.FormatFloat(loc.Lat, 'f', -1, 64)},
		"longitude":  {strconv.FormatFloat(loc.Lon, 'f', -1, 64)},
		"hourly":     {hourlyFields},
		"start_date": {startDate},
		"end_date":   {endDate},
		"timezone":   {"UTC"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling open-meteo: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s: %s", ErrUpstreamStatus, resp.Status, body)
	}

	var payload hourlyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	h := payload.Hourly
	n := min(len(h.Time), len(h.Temperature2m), len(h.RelativeHumidity))
	if n != len(h.Time) || n != len(h.Temperature2m) || n != len(h.RelativeHumidity) {
		c.logger.Warn("upstream hourly arrays differ in length, truncating",
			"time", len(h.Time),
			"temperature_2m", len(h.Temperature2m),
			"relative_humidity_2m", len(h.RelativeHumidity),
			"kept", n,
		)
	}

	samples := make([]weather.Sample, 0, n)
	for i := range n {
		ts, err := weather.ParseISO(h.Time[i])
		if err != nil {
			return nil, fmt.Errorf("parsing hourly time %d: %w", i, err)
		}
		samples = append(samples, weather.Sample{
			Timestamp:   ts,
			Temperature: h.Temperature2m[i],
			Humidity:    h.RelativeHumidity[i],
			Source:      c.source,
		})
	}

	c.logger.Debug("fetched hourly series",
		"location", loc.String(),
		"start_date", startDate,
		"end_date", endDate,
		"samples", len(samples),
	)
	return samples, nil
}
