// File: internal/plot/plot.go
// Package plot renders simulation tables as PNG charts.
package plot

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/xkilldash9x/outbreak-cli/internal/epidemic"
	"github.com/xkilldash9x/outbreak-cli/internal/trials"
)

const (
	width  = 1024
	height = 512
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("nothing to plot")

var stateColors = map[epidemic.HealthState]drawing.Color{
	epidemic.Susceptible: chart.ColorBlue,
	epidemic.Infected:    chart.ColorRed,
	epidemic.Recovered:   chart.ColorGreen,
	epidemic.Dead:        chart.ColorBlack,
}

// DailyCounts draws one line per health state across the simulated days.
// Vaccinated individuals never change state and are left out.
func DailyCounts(w io.Writer, rows []epidemic.DailyCounts) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	days := make([]float64, len(rows))
	for i, r := range rows {
		days[i] = float64(r.Day)
	}

	var series []chart.Series
	for _, state := range []epidemic.HealthState{epidemic.Susceptible, epidemic.Infected, epidemic.Recovered, epidemic.Dead} {
		ys := make([]float64, len(rows))
		for i, r := range rows {
			ys[i] = float64(r.Get(state))
		}
		series = append(series, chart.ContinuousSeries{
			Name:    state.String(),
			XValues: days,
			YValues: ys,
			Style:   chart.Style{StrokeColor: stateColors[state], StrokeWidth: 3.0},
		})
	}

	graph := chart.Chart{
		Title:  "Daily health states",
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  "Day",
			Range: &chart.ContinuousRange{Min: days[0], Max: math.Max(days[len(days)-1], days[0]+1)},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "Individuals",
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(1, float64(rows[0].Total()))},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render daily chart: %w", err)
	}
	return nil
}

// summaryMetrics are drawn side by side for every trial, in this order.
var summaryMetrics = []struct {
	color drawing.Color
	value func(trials.Summary) float64
}{
	{chart.ColorBlue, func(s trials.Summary) float64 { return s.MeanInfected }},
	{chart.ColorRed, func(s trials.Summary) float64 { return s.MeanDeaths }},
	{chart.ColorOrange, func(s trials.Summary) float64 { return s.DeathsStdDev }},
}

// Summaries draws a group of bars per trial: mean infected, mean deaths and the
// standard deviation of deaths. Undefined values are drawn as zero.
func Summaries(w io.Writer, summaries []trials.Summary) error {
	if len(summaries) == 0 {
		return ErrNoData
	}

	bars, top := summaryBars(summaries)

	// Narrow the bars so that large trial counts still fit on the canvas.
	barWidth := 40
	if fit := (width - 120) / len(bars); fit < barWidth+10 {
		barWidth = max(2, fit*3/4)
	}

	graph := chart.BarChart{
		Title:      "Per-trial mean infected (blue), mean deaths (red), deaths std dev (orange)",
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: max(1, barWidth/4),
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(1, top*1.1)},
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render summary chart: %w", err)
	}
	return nil
}

// summaryBars lays out one bar per metric per trial, and reports the tallest value.
func summaryBars(summaries []trials.Summary) ([]chart.Value, float64) {
	top := 0.0
	bars := make([]chart.Value, 0, len(summaries)*len(summaryMetrics))
	for _, s := range summaries {
		for j, m := range summaryMetrics {
			v := m.value(s)
			if math.IsNaN(v) {
				v = 0
			}
			top = math.Max(top, v)
			bar := chart.Value{
				Value: v,
				Style: chart.Style{FillColor: m.color, StrokeColor: m.color},
			}
			// One label per group, under its middle bar.
			if j == len(summaryMetrics)/2 {
				bar.Label = strconv.Itoa(s.Trial)
			}
			bars = append(bars, bar)
		}
	}
	return bars, top
}
