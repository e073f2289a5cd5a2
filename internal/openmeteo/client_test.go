package openmeteo

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chadmayfield/weatherreportd/internal/weather"
)

var zurich = weather.Location{Lat: 47.37, Lon: 8.55}

func newTestClient(url string, opts ...Option) *Client {
	return NewClient(slog.Default(), append([]Option{WithBaseURL(url)}, opts...)...)
}

func TestClient_FetchHourly(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{}
		for k := range q {
			gotQuery[k] = q.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"latitude": 47.37,
			"longitude": 8.55,
			"hourly": {
				"time": ["2025-08-27T00:00", "2025-08-27T01:00Z", "2025-08-27T02:00"],
				"temperature_2m": [18.2, 17.9, null],
				"relative_humidity_2m": [60, 61, 62]
			}
		}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	got, err := c.FetchHourly(context.Background(), zurich, "2025-08-27", "2025-08-29")
	if err != nil {
		t.Fatalf("FetchHourly: %v", err)
	}

	wantQuery := map[string]string{
		"latitude":   "47.37",
		"longitude":  "8.55",
		"hourly":     "temperature_2m,relative_humidity_2m",
		"start_date": "2025-08-27",
		"end_date":   "2025-08-29",
		"timezone":   "UTC",
	}
	for k, v := range wantQuery {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}

	if len(got) != 3 {
		t.Fatalf("got %d samples, want 3", len(got))
	}
	if want := time.Date(2025, 8, 27, 1, 0, 0, 0, time.UTC); !got[1].Timestamp.Equal(want) {
		t.Errorf("sample[1] time = %v, want %v", got[1].Timestamp, want)
	}
	if got[0].Temperature == nil || *got[0].Temperature != 18.2 {
		t.Errorf("sample[0] temperature = %v, want 18.2", got[0].Temperature)
	}
	if got[2].Temperature != nil {
		t.Errorf("sample[2] temperature = %v, want nil", *got[2].Temperature)
	}
	if got[2].Humidity == nil || *got[2].Humidity != 62 {
		t.Errorf("sample[2] humidity = %v, want 62", got[2].Humidity)
	}
	for i, s := range got {
		if s.Timestamp.Location() != time.UTC {
			t.Errorf("sample[%d] not UTC: %v", i, s.Timestamp.Location())
		}
		if s.Source != weather.DefaultSource {
			t.Errorf("sample[%d] source = %q", i, s.Source)
		}
	}
}

func TestClient_TruncatesToShortestArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hourly": {
			"time": ["2025-08-27T00:00", "2025-08-27T01:00", "2025-08-27T02:00", "2025-08-27T03:00", "2025-08-27T04:00"],
			"temperature_2m": [1, 2, 3, 4, 5],
			"relative_humidity_2m": [50, 51, 52]
		}}`))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).FetchHourly(context.Background(), zurich, "2025-08-27", "2025-08-27")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d samples, want 3", len(got))
	}
	if *got[2].Temperature != 3 || *got[2].Humidity != 52 {
		t.Errorf("last sample = %v/%v, want 3/52", *got[2].Temperature, *got[2].Humidity)
	}
}

func TestClient_MissingHourlySection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"latitude": 1}`))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).FetchHourly(context.Background(), zurich, "2025-08-27", "2025-08-27")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %d samples, want 0", len(got))
	}
}

func TestClient_ErrorStatus(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":true,"reason":"bad latitude"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchHourly(context.Background(), zurich, "2025-08-27", "2025-08-27")
	if !errors.Is(err, ErrUpstreamStatus) {
		t.Fatalf("err = %v, want ErrUpstreamStatus", err)
	}
	if calls != 1 {
		t.Errorf("upstream called %d times, want 1 (no retry)", calls)
	}
}

func TestClient_ServerErrorNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).FetchHourly(context.Background(), zurich, "2025-08-27", "2025-08-27"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("upstream called %d times, want 1", calls)
	}
}

func TestClient_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hourly": [`))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).FetchHourly(context.Background(), zurich, "2025-08-27", "2025-08-27"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClient_BadTimestamp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hourly": {"time": ["not-a-time"], "temperature_2m": [1], "relative_humidity_2m": [2]}}`))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).FetchHourly(context.Background(), zurich, "2025-08-27", "2025-08-27"); err == nil {
		t.Fatal("expected timestamp parse error")
	}
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := newTestClient(server.URL, WithTimeout(20*time.Millisecond))
	if _, err := c.FetchHourly(context.Background(), zurich, "2025-08-27", "2025-08-27"); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	if _, err := newTestClient(url).FetchHourly(context.Background(), zurich, "2025-08-27", "2025-08-27"); err == nil {
		t.Fatal("expected network error")
	}
}

func TestClient_WithSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hourly": {"time": ["2025-08-27T00:00"], "temperature_2m": [1], "relative_humidity_2m": [2]}}`))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL, WithSource("meteoswiss")).FetchHourly(context.Background(), zurich, "2025-08-27", "2025-08-27")
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Source != "meteoswiss" {
		t.Errorf("source = %q, want meteoswiss", got[0].Source)
	}
}
