package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/chadmayfield/weatherreportd/internal/weather"
)

// PDFContentType is the MIME type of RenderPDF output.
const PDFContentType = "application/pdf"

// Page format of the document export.
const (
	pageSize = "A4"
	marginMM = 18.0
	fontName = "Helvetica"
)

// Document describes one PDF report.
type Document struct {
	Location    weather.Location
	Readings    []weather.Reading
	GeneratedAt time.Time
}

// RenderPDF lays out the report: title, location, observed period, chart
// and a generation footer. An empty reading list still produces a complete
// document with a placeholder chart.
func RenderPDF(doc Document) ([]byte, error) {
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now()
	}
	generated := doc.GeneratedAt.UTC()

	table := NewTable(doc.Readings)
	chart, err := ChartPNG(table)
	if err != nil {
		return nil, fmt.Errorf("rendering chart: %w", err)
	}
	start, end := table.Span(generated)

	pdf := fpdf.New("P", "mm", pageSize, "")
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(true, marginMM)
	pdf.SetTitle("Weather Report", true)
	pdf.SetCreator("weatherreportd", true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(fontName, "B", 20)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, tr("Weather Report"), "", 1, "L", false, 0, "")
	pdf.Ln(1)

	pdf.SetFont(fontName, "", 10)
	pdf.SetTextColor(0x44, 0x44, 0x44)
	lines := []string{
		fmt.Sprintf("Location: lat %s, lon %s", weather.FormatCoord(doc.Location.Lat), weather.FormatCoord(doc.Location.Lon)),
		fmt.Sprintf("Period (UTC): %s to %s", start.Format(time.DateTime), end.Format(time.DateTime)),
		fmt.Sprintf("Readings: %d", len(table.Rows)),
	}
	for _, l := range lines {
		pdf.CellFormat(0, 5, tr(l), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("chart", opts, bytes.NewReader(chart))
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := pageW - left - right
	if table.Empty() {
		width /= 2
	}
	pdf.ImageOptions("chart", left, pdf.GetY(), width, 0, true, opts, 0, "")
	pdf.Ln(8)

	pdf.SetFont(fontName, "", 9)
	pdf.SetTextColor(0x55, 0x55, 0x55)
	pdf.CellFormat(0, 5, tr("Generated at "+generated.Format(time.DateTime)+" UTC"), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}
