package dashboard

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/entity"
	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/funnel"
	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/retention"
	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/revenue"
)

var ErrUnknownChart = errors.New("unknown chart")

const (
	chartWidth  = 900
	chartHeight = 500
	barWidth    = 48
	barSpacing  = 24
)

var (
	colorBlue   = drawing.ColorFromHex("2563eb")
	colorTeal   = drawing.ColorFromHex("0d9488")
	colorPurple = drawing.ColorFromHex("7c3aed")
	colorGreen  = drawing.ColorFromHex("059669")
	colorRed    = drawing.ColorFromHex("dc2626")
	colorAmber  = drawing.ColorFromHex("d97706")
	colorLine   = drawing.ColorFromHex("f59e0b")
	colorGrey   = drawing.ColorFromHex("9ca3af")
)

// renderer is satisfied by every go-chart chart type.
type renderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

var charts = map[string]func(*entity.Snapshot) renderer{
	"customers-country":  customersByCountryChart,
	"customers-industry": customersByIndustryChart,
	"acv-histogram":      acvHistogramChart,
	"acv-deal-type":      acvDealTypeChart,
	"retention":          retentionChart,
	"funnel-stages":      funnelStagesChart,
	"funnel-outcomes":    funnelOutcomesChart,
	"funnel-losses":      funnelLossesChart,
	"funnel-win-rate":    funnelWinRateChart,
}

// RenderChart writes the named chart as PNG.
func RenderChart(w io.Writer, name string, snap *entity.Snapshot) error {
	build, ok := charts[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
	if err := build(snap).Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart %s: %w", name, err)
	}
	return nil
}

func customersByCountryChart(snap *entity.Snapshot) renderer {
	c := revenue.ComputeCustomers(snap.Deals, snap.Companies, snap.Contacts)
	return countBarChart("Customers by Country", c.ByCountry, colorBlue)
}

func customersByIndustryChart(snap *entity.Snapshot) renderer {
	c := revenue.ComputeCustomers(snap.Deals, snap.Companies, snap.Contacts)
	return countBarChart("Customers by Industry", c.ByIndustry, colorTeal)
}

func countBarChart(title string, counts []revenue.Count, color drawing.Color) renderer {
	labels := make([]string, len(counts))
	values := make([]float64, len(counts))
	for i, c := range counts {
		labels[i] = c.Label
		values[i] = float64(c.Value)
	}
	return barChart(title, labels, values, color)
}

func acvHistogramChart(snap *entity.Snapshot) renderer {
	buckets := revenue.ComputeACV(snap.Deals).Histogram
	labels := make([]string, len(buckets))
	values := make([]float64, len(buckets))
	for i, b := range buckets {
		labels[i] = formatEUR(b.Low)
		values[i] = float64(b.Count)
	}
	return barChart("Deal Size Distribution", labels, values, colorBlue)
}

func acvDealTypeChart(snap *entity.Snapshot) renderer {
	byType := revenue.ComputeACV(snap.Deals).ByType
	labels := make([]string, len(byType))
	values := make([]float64, len(byType))
	for i, t := range byType {
		labels[i] = t.DealType
		values[i] = t.Sum
	}
	return barChart("Total Revenue (€) by Deal Type", labels, values, colorPurple)
}

func funnelStagesChart(snap *entity.Snapshot) renderer {
	counts := funnel.Counts(snap.Deals)
	labels := make([]string, len(counts))
	values := make([]float64, len(counts))
	for i, s := range counts {
		labels[i] = fmt.Sprintf("%s (%d%%)", s.Stage, s.PercentOfFirst)
		values[i] = float64(s.Deals)
	}
	return barChart("Deals Entering Each Stage", labels, values, colorBlue)
}

func funnelLossesChart(snap *entity.Snapshot) renderer {
	losses := funnel.ComputeLosses(snap.Deals)
	if losses.Total == 0 {
		return placeholder("Lost Deals by Last Stage")
	}
	labels := make([]string, len(losses.ByStage))
	values := make([]float64, len(losses.ByStage))
	for i, s := range losses.ByStage {
		labels[i] = s.Stage
		values[i] = float64(s.Deals)
	}
	return barChart("Lost Deals by Last Stage", labels, values, colorRed)
}

func funnelOutcomesChart(snap *entity.Snapshot) renderer {
	neg := funnel.ComputeNegotiation(snap.Deals)
	colors := map[funnel.Outcome]drawing.Color{funnel.Won: colorGreen, funnel.Lost: colorRed, funnel.Open: colorAmber}
	var values []chart.Value
	for _, o := range neg.Outcomes {
		if o.Deals == 0 {
			continue
		}
		c := colors[o.Outcome]
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %d", o.Outcome, o.Deals),
			Value: float64(o.Deals),
			Style: chart.Style{FillColor: c, StrokeColor: drawing.ColorWhite},
		})
	}
	if len(values) == 0 {
		return placeholder("Contract Negotiation Outcomes")
	}
	return &chart.PieChart{
		Title:  "Contract Negotiation Outcomes",
		Width:  chartHeight,
		Height: chartHeight,
		Values: values,
	}
}

func retentionChart(snap *entity.Snapshot) renderer {
	cohorts := retention.Cohorts(snap.Events)
	if len(cohorts) == 0 {
		return placeholder("Retention by Cohort")
	}
	// line series need two points
	if len(cohorts) == 1 {
		c := cohorts[0]
		var labels []string
		var values []float64
		for k := 1; k <= retention.MaxOffset; k++ {
			labels = append(labels, fmt.Sprintf("M%d %%", k))
			values = append(values, c.Percent[k])
		}
		return coloredBarChart("Retention by Cohort ("+c.Month.String()+")", labels, values,
			[]drawing.Color{colorBlue, colorPurple, colorGreen})
	}
	xs := make([]float64, len(cohorts))
	ticks := make([]chart.Tick, len(cohorts))
	for i, c := range cohorts {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: c.Month.String()}
	}

	colors := []drawing.Color{colorBlue, colorPurple, colorGreen}
	var series []chart.Series
	for k := 1; k <= retention.MaxOffset; k++ {
		ys := make([]float64, len(cohorts))
		for i, c := range cohorts {
			ys[i] = c.Percent[k]
		}
		color := colors[(k-1)%len(colors)]
		series = append(series, &chart.ContinuousSeries{
			Name:    fmt.Sprintf("M%d %%", k),
			Style:   chart.Style{StrokeColor: color, StrokeWidth: 2, DotColor: color, DotWidth: 4},
			XValues: xs,
			YValues: ys,
		})
	}

	graph := &chart.Chart{
		Title:      "Retention by Cohort",
		Width:      chartWidth,
		Height:     chartHeight,
		Background: padding(),
		XAxis:      indexAxis("Cohort Month", ticks),
		YAxis: chart.YAxis{
			Name:  "Retention %",
			Range: &chart.ContinuousRange{Min: 0, Max: 110},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(graph)}
	return graph
}

// funnelWinRateChart draws closed deals per month with the won share painted
// over them, and the win rate on the secondary axis. A single month is drawn
// as won and lost bars.
func funnelWinRateChart(snap *entity.Snapshot) renderer {
	trend := funnel.WinRateTrend(snap.Deals)
	if len(trend) == 0 {
		return placeholder("Win Rate Trend Over Time")
	}
	if len(trend) == 1 {
		m := trend[0]
		return coloredBarChart(
			fmt.Sprintf("Win Rate Trend Over Time (%s, %s%% won)", m.Month, formatPercent(m.WinRate)),
			[]string{string(funnel.Won), string(funnel.Lost)},
			[]float64{float64(m.Won), float64(m.Lost)},
			[]drawing.Color{colorGreen, colorRed},
		)
	}
	xs := make([]float64, len(trend))
	totals := make([]float64, len(trend))
	won := make([]float64, len(trend))
	rates := make([]float64, len(trend))
	ticks := make([]chart.Tick, len(trend))
	maxTotal := 1.0
	for i, m := range trend {
		xs[i] = float64(i)
		totals[i] = float64(m.Total)
		won[i] = float64(m.Won)
		rates[i] = m.WinRate
		ticks[i] = chart.Tick{Value: float64(i), Label: m.Month}
		maxTotal = math.Max(maxTotal, totals[i])
	}

	graph := &chart.Chart{
		Title:      "Win Rate Trend Over Time",
		Width:      chartWidth,
		Height:     chartHeight,
		Background: padding(),
		XAxis:      indexAxis("Close Month", ticks),
		YAxis: chart.YAxis{
			Name:  "# Deals",
			Range: &chart.ContinuousRange{Min: 0, Max: maxTotal},
		},
		YAxisSecondary: chart.YAxis{
			Name:  "Win Rate %",
			Range: &chart.ContinuousRange{Min: 0, Max: 110},
		},
		Series: []chart.Series{
			&chart.HistogramSeries{
				Name:        "Closed",
				Style:       chart.Style{FillColor: colorGrey, StrokeColor: colorGrey},
				InnerSeries: &chart.ContinuousSeries{XValues: xs, YValues: totals},
			},
			&chart.HistogramSeries{
				Name:        "Won",
				Style:       chart.Style{FillColor: colorGreen, StrokeColor: colorGreen},
				InnerSeries: &chart.ContinuousSeries{XValues: xs, YValues: won},
			},
			&chart.ContinuousSeries{
				Name:    "Win Rate %",
				YAxis:   chart.YAxisSecondary,
				Style:   chart.Style{StrokeColor: colorLine, StrokeWidth: 3, DotColor: colorLine, DotWidth: 4},
				XValues: xs,
				YValues: rates,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(graph)}
	return graph
}

func barChart(title string, labels []string, values []float64, color drawing.Color) renderer {
	return coloredBarChart(title, labels, values, []drawing.Color{color})
}

// coloredBarChart cycles through colors bar by bar.
func coloredBarChart(title string, labels []string, values []float64, colors []drawing.Color) renderer {
	if len(values) == 0 {
		return placeholder(title)
	}
	bars := make([]chart.Value, len(values))
	maxVal := 0.0
	for i, v := range values {
		maxVal = math.Max(maxVal, v)
		color := colors[i%len(colors)]
		bars[i] = chart.Value{
			Label: labels[i],
			Value: v,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		}
	}
	// an all-zero range is rejected by the renderer
	if maxVal <= 0 {
		maxVal = 1
	}
	width := chartWidth
	if w := 2*barSpacing + len(bars)*(barWidth+barSpacing); w > width {
		width = w
	}
	return &chart.BarChart{
		Title:      title,
		Width:      width,
		Height:     chartHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: padding(),
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: maxVal}},
		Bars:       bars,
	}
}

// placeholder is drawn when a chart has nothing to show.
func placeholder(title string) renderer {
	return &chart.BarChart{
		Title:      title + " (" + noData + ")",
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   barWidth,
		Background: padding(),
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		Bars:       []chart.Value{{Label: noData, Value: 0}},
	}
}

func indexAxis(name string, ticks []chart.Tick) chart.XAxis {
	return chart.XAxis{
		Name:  name,
		Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(ticks)) - 0.5},
		Ticks: ticks,
	}
}

func padding() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 50, Left: 16, Right: 16, Bottom: 16}}
}
