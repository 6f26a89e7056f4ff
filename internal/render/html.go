package render

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/naka-gawa/star-trend/internal/domain"
	"github.com/naka-gawa/star-trend/internal/usecase"
)

const (
	starColor   = "#ffb900"
	chartWidth  = "95%"
	chartHeight = "300px"
	areaOpacity = 0.4
)

// HTML writes a standalone page with the cumulative star chart and the
// daily increment chart.
func HTML(w io.Writer, v *usecase.View) error {
	page := components.NewPage()
	page.PageTitle = pageTitle(v)
	page.AddCharts(
		starChart("Total Stars", summaryLine(v), v.Cumulative, true),
		starChart("Daily increment", repositoryLine(v), v.Daily, false),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering charts: %w", err)
	}
	return nil
}

func pageTitle(v *usecase.View) string {
	if v.Repository == nil {
		return "Star Trend"
	}
	return v.Repository.FullName() + " - Star Trend"
}

func summaryLine(v *usecase.View) string {
	if v.Stars == nil {
		return "No star statistics"
	}
	return fmt.Sprintf("Total stars %d, avg. %s/day, max increment %d a day",
		v.Stars.TotalStar, v.AverageStarsPerDay, v.Stars.MaxIncrement)
}

func repositoryLine(v *usecase.View) string {
	if v.Repository == nil || v.DaysSinceCreated == nil {
		return ""
	}
	return fmt.Sprintf("%s, created %s (%d days ago)",
		v.Repository.FullName(), v.Repository.CreatedAt.Format(dateLayout), *v.DaysSinceCreated)
}

// starChart plots series against a time axis. filled draws it as an area
// chart and carries the running total over days without stars; otherwise
// those days are plotted as zero.
func starChart(title, subtitle string, series []domain.StarPoint, filled bool) *charts.Line {
	points := fillDays(series, filled)
	data := make([]opts.LineData, len(points))
	for i, p := range points {
		data[i] = opts.LineData{Value: []interface{}{p.Date.UnixMilli(), p.Stars}}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "time"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)

	seriesOpts := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(false)}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: starColor}),
	}
	if filled {
		seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{Color: starColor, Opacity: opts.Float(areaOpacity)}))
	}
	line.AddSeries("stars", data, seriesOpts...)

	return line
}

// fillDays inserts a point for every day missing between two entries of
// series. The inserted value is the previous point's when carry is set, zero
// otherwise.
func fillDays(series []domain.StarPoint, carry bool) []domain.StarPoint {
	if len(series) == 0 {
		return nil
	}
	const day = 24 * time.Hour
	filled := make([]domain.StarPoint, 0, len(series))
	filled = append(filled, series[0])
	for _, p := range series[1:] {
		prev := filled[len(filled)-1]
		var value int
		if carry {
			value = prev.Stars
		}
		for d := prev.Date.Add(day); d.Before(p.Date); d = d.Add(day) {
			filled = append(filled, domain.StarPoint{Date: d, Stars: value})
		}
		filled = append(filled, p)
	}
	return filled
}
