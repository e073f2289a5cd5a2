package report

import (
	"bytes"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 4.5 * vg.Inch

	placeholderWidth  = 4 * vg.Inch
	placeholderHeight = 3 * vg.Inch
)

// ChartPNG renders temperature and humidity against UTC time as a PNG.
// Hours with no value are left out of their series. An empty table renders
// a "No data" placeholder.
func ChartPNG(t *Table) ([]byte, error) {
	if t.Empty() {
		return placeholderPNG()
	}

	p := plot.New()
	p.X.Label.Text = "Time (UTC)"
	p.Y.Label.Text = "Value"
	p.X.Tick.Marker = plot.TimeTicks{Format: "01-02\n15:04", Time: plot.UTCUnixTime}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	series := []struct {
		label string
		value func(Row) *float64
	}{
		{"Temperature (°C)", func(r Row) *float64 { return r.Temperature }},
		{"Humidity (%)", func(r Row) *float64 { return r.Humidity }},
	}

	for i, s := range series {
		xys := make(plotter.XYs, 0, len(t.Rows))
		for _, r := range t.Rows {
			if v := s.value(r); v != nil {
				xys = append(xys, plotter.XY{X: float64(r.Timestamp.Unix()), Y: *v})
			}
		}
		if len(xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("building %s series: %w", s.label, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.label, line)
	}

	return encodePNG(p, chartWidth, chartHeight)
}

func placeholderPNG() ([]byte, error) {
	p := plot.New()
	p.HideAxes()
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: 0.5, Y: 0.5}},
		Labels: []string{"No data"},
	})
	if err != nil {
		return nil, fmt.Errorf("building placeholder: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(labels)

	return encodePNG(p, placeholderWidth, placeholderHeight)
}

func encodePNG(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("creating png canvas: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
