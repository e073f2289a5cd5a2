package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/chadmayfield/weatherreportd/internal/ingest"
	"github.com/chadmayfield/weatherreportd/internal/report"
	"github.com/chadmayfield/weatherreportd/internal/store"
	"github.com/chadmayfield/weatherreportd/internal/weather"
)

// pdfDefaultWindow is the document range when start and end are omitted.
const pdfDefaultWindow = 48 * time.Hour

// Ingester runs one fetch and store cycle.
type Ingester interface {
	IngestDays(ctx context.Context, loc weather.Location, days int) (*ingest.Result, error)
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Store         store.Store
	Ingester      Ingester
	Logger        *slog.Logger
	StartTime     time.Time
	StorageDriver string
	StoragePath   string
	Version       string

	// Now returns the current time; nil means time.Now.
	Now func() time.Time
}

// apiError is a JSON error response.
type apiError struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Error: msg, Code: status})
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write attachment", "filename", filename, "error", err)
	}
}

func (h *Handlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// SpreadsheetFilename names a spreadsheet export of the last hours hours,
// optionally scoped to loc.
func SpreadsheetFilename(hours int, loc *weather.Location) string {
	name := fmt.Sprintf("weather_data_%dh", hours)
	if loc != nil {
		name += "_" + weather.FormatCoord(loc.Lat) + "_" + weather.FormatCoord(loc.Lon)
	}
	return name + ".xlsx"
}

// DocumentFilename names a PDF export for loc.
func DocumentFilename(loc weather.Location) string {
	return "weather_report_" + weather.FormatCoord(loc.Lat) + "_" + weather.FormatCoord(loc.Lon) + ".pdf"
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	type dbHealth struct {
		Driver        string `json:"driver"`
		Status        string `json:"status"`
		SizeBytes     int64  `json:"size_bytes,omitempty"`
		TotalReadings int    `json:"total_readings"`
		Locations     int    `json:"locations"`
		Oldest        string `json:"oldest,omitempty"`
		Newest        string `json:"newest,omitempty"`
	}
	type healthResponse struct {
		Status   string   `json:"status"`
		Version  string   `json:"version,omitempty"`
		Uptime   string   `json:"uptime"`
		Database dbHealth `json:"database"`
	}

	resp := healthResponse{
		Status:  "ok",
		Version: h.Version,
		Uptime:  formatUptime(time.Since(h.StartTime)),
	}

	// Database health (path omitted to avoid exposing filesystem details).
	resp.Database = dbHealth{Driver: h.StorageDriver, Status: "ok"}
	if st, err := h.Store.GetStats(r.Context()); err != nil {
		h.logger().Warn("health: reading store stats", "error", err)
		resp.Database.Status = "error"
	} else {
		resp.Database.TotalReadings = st.TotalReadings
		resp.Database.Locations = st.Locations
		if !st.Oldest.IsZero() {
			resp.Database.Oldest = st.Oldest.UTC().Format(time.RFC3339)
			resp.Database.Newest = st.Newest.UTC().Format(time.RFC3339)
		}
	}
	if h.StorageDriver == "sqlite" && h.StoragePath != "" {
		if info, err := os.Stat(h.StoragePath); err == nil {
			resp.Database.SizeBytes = info.Size()
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// WeatherReport handles GET /weather-report
//
// Fetches the last days days of hourly data for lat/lon from the upstream
// API and stores the hours not seen before.
func (h *Handlers) WeatherReport(w http.ResponseWriter, r *http.Request) {
	p := queryParser{values: r.URL.Query()}
	q := weatherReportQuery{
		Lat:  p.float("lat"),
		Lon:  p.float("lon"),
		Days: p.int("days", ingest.DefaultDays),
	}
	if p.err != nil {
		writeError(w, http.StatusBadRequest, p.err.Error())
		return
	}
	if err := validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	loc := weather.Location{Lat: *q.Lat, Lon: *q.Lon}
	res, err := h.Ingester.IngestDays(r.Context(), loc, q.Days)
	if err != nil {
		if errors.Is(err, ingest.ErrInvalidDays) || errors.Is(err, weather.ErrInvalidLocation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger().Error("ingest failed", "location", loc.String(), "days", q.Days, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to ingest weather data")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"lat":            res.Location.Lat,
		"lon":            res.Location.Lon,
		"start_date":     res.StartDate,
		"end_date":       res.EndDate,
		"fetched_count":  res.Fetched,
		"inserted_count": res.Inserted,
	})
}

// ExportExcel handles GET /export/excel
//
// Returns the last hours hours as a spreadsheet. lat and lon must be given
// together or not at all.
func (h *Handlers) ExportExcel(w http.ResponseWriter, r *http.Request) {
	p := queryParser{values: r.URL.Query()}
	q := excelQuery{
		Hours: p.int("hours", defaultHours),
		Lat:   p.float("lat"),
		Lon:   p.float("lon"),
	}
	if p.err != nil {
		writeError(w, http.StatusBadRequest, p.err.Error())
		return
	}
	if (q.Lat == nil) != (q.Lon == nil) {
		writeError(w, http.StatusBadRequest, "Provide both lat and lon, or neither.")
		return
	}
	if err := validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	var loc *weather.Location
	if q.Lat != nil {
		loc = &weather.Location{Lat: *q.Lat, Lon: *q.Lon}
	}

	readings, err := h.Store.RecentReadings(r.Context(), q.Hours, loc)
	if err != nil {
		h.logger().Error("querying recent readings", "hours", q.Hours, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to query readings")
		return
	}

	body, err := report.WriteXLSX(report.NewTable(readings))
	if err != nil {
		h.logger().Error("building spreadsheet", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build spreadsheet")
		return
	}

	writeAttachment(w, report.XLSXContentType, SpreadsheetFilename(q.Hours, loc), body)
}

// ExportPDF handles GET /export/pdf
//
// Returns a PDF report for lat/lon. start and end are ISO datetimes taken as
// UTC and must be given together; without them the last 48 hours are used.
func (h *Handlers) ExportPDF(w http.ResponseWriter, r *http.Request) {
	p := queryParser{values: r.URL.Query()}
	q := pdfQuery{
		Lat:   p.float("lat"),
		Lon:   p.float("lon"),
		Start: r.URL.Query().Get("start"),
		End:   r.URL.Query().Get("end"),
	}
	if p.err != nil {
		writeError(w, http.StatusBadRequest, p.err.Error())
		return
	}
	if err := validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	if (q.Start == "") != (q.End == "") {
		writeError(w, http.StatusBadRequest, "Provide both start and end, or neither.")
		return
	}

	now := h.now().UTC()
	start, end := now.Add(-pdfDefaultWindow), now
	if q.Start != "" {
		var errStart, errEnd error
		start, errStart = weather.ParseISO(q.Start)
		end, errEnd = weather.ParseISO(q.End)
		if errStart != nil || errEnd != nil {
			writeError(w, http.StatusBadRequest, "Invalid datetime format. Use ISO like 2025-08-27T00:00:00")
			return
		}
	}

	loc := weather.Location{Lat: *q.Lat, Lon: *q.Lon}
	readings, err := h.Store.RangeReadings(r.Context(), loc, start, end)
	if err != nil {
		h.logger().Error("querying reading range", "location", loc.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to query readings")
		return
	}

	body, err := report.RenderPDF(report.Document{Location: loc, Readings: readings, GeneratedAt: now})
	if err != nil {
		h.logger().Error("rendering pdf", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	writeAttachment(w, report.PDFContentType, DocumentFilename(loc), body)
}
