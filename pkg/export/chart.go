package export

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/docksched/core/stats"
)

// WriteHistoryChart renders the history as a stacked bar chart page of
// arrived and pending appointments per day.
func WriteHistoryChart(w io.Writer, history []stats.DayStats) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Deliveries", Subtitle: "Last 7 days"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Day"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Appointments"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	days := make([]string, len(history))
	arrived := make([]opts.BarData, len(history))
	pending := make([]opts.BarData, len(history))
	for i, d := range history {
		days[i] = d.Date
		arrived[i] = opts.BarData{Value: d.Arrived}
		pending[i] = opts.BarData{Value: d.Pending}
	}
	bar.SetXAxis(days).
		AddSeries("Arrived", arrived, charts.WithBarChartOpts(opts.BarChart{Stack: "total"})).
		AddSeries("Pending", pending, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
	return bar.Render(w)
}
