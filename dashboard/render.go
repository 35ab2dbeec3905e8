package dashboard

import (
	"bytes"
	"fmt"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"
	"io"
	"strings"
)

const (
	fontSize    = 18
	marginRight = "10"
	chartHeight = "400px"
)

// PlotID is the DOM id of the container holding chart index.
func PlotID(index int) string {
	return fmt.Sprintf("plot_%d", index)
}

// RenderPage writes the dashboard page: one line chart per channel, in the
// containers plot_0 .. plot_n, followed by the given scripts in order.
func (d *Dashboard) RenderPage(w io.Writer, title string, scripts ...string) error {
	snapshots, err := d.Snapshot()
	if err != nil {
		return errors.Wrap(err, "snapshot")
	}

	page := components.NewPage()
	page.PageTitle = title
	for _, s := range snapshots {
		page.AddCharts(newLineChart(s))
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return errors.Wrap(err, "render page")
	}

	html := buf.String()
	var tags strings.Builder
	for _, src := range scripts {
		fmt.Fprintf(&tags, "<script src=\"%s\"></script>\n", src)
	}
	script := tags.String()
	if idx := strings.LastIndex(html, "</body>"); idx >= 0 {
		html = html[:idx] + script + html[idx:]
	} else {
		html += script
	}

	if _, err := io.WriteString(w, html); err != nil {
		return errors.Wrap(err, "write page")
	}
	return nil
}

func newLineChart(s Snapshot) *charts.Line {
	line := charts.NewLine()

	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: PlotID(s.Index),
			Width:   "100%",
			Height:  chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      s.Chart.Title,
			TitleStyle: &opts.TextStyle{FontSize: fontSize},
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:         s.Chart.XAxis,
			Type:         "value",
			NameLocation: "middle",
			NameGap:      30,
			Scale:        opts.Bool(true),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  s.Chart.YAxis,
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithGridOpts(opts.Grid{
			Right: marginRight,
		}),
	)

	data := make([]opts.LineData, len(s.Points))
	for i, p := range s.Points {
		data[i] = opts.LineData{Value: []float64{p.X, p.Y}}
	}

	line.AddSeries(PlotID(s.Index), data,
		charts.WithLineChartOpts(opts.LineChart{
			ShowSymbol: opts.Bool(false),
		}),
	)

	return line
}
