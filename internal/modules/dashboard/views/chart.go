package views

import (
	"errors"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"iot-dashboard/internal/modules/dashboard/state"
)

// ErrNoChartData is returned for an empty window; there is nothing to draw.
var ErrNoChartData = errors.New("chart has no data")

const (
	chartWidth  = 960
	chartHeight = 400
	// maxXTicks keeps the time labels readable with a full window.
	maxXTicks = 6
)

var (
	temperatureColor = drawing.ColorFromHex("ff6b6b")
	humidityColor    = drawing.ColorFromHex("4ecdc4")
	lightColor       = drawing.ColorFromHex("ffe66d")
	gridColor        = drawing.ColorFromHex("e5e5e5")
)

// RenderChart draws the window as an SVG line chart. Temperature and humidity
// share the left axis; light gets its own right axis without gridlines.
func RenderChart(w io.Writer, snap state.SeriesSnapshot) error {
	n := len(snap.Labels)
	if n == 0 {
		return ErrNoChartData
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	temperature, humidity, light := snap.Temperature, snap.Humidity, snap.Light
	xMax := float64(n - 1)
	// go-chart needs two x values; a single point is drawn as a flat segment.
	if n == 1 {
		xs = []float64{0, 1}
		temperature = []float64{temperature[0], temperature[0]}
		humidity = []float64{humidity[0], humidity[0]}
		light = []float64{light[0], light[0]}
		xMax = 1
	}

	leftMin, leftMax := paddedRange(temperature, humidity)
	rightMin, rightMax := paddedRange(light)

	ch := chart.Chart{
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  "Time",
			Range: &chart.ContinuousRange{Min: 0, Max: xMax},
			Ticks: labelTicks(snap.Labels, xMax),
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Temperature (°C) / Humidity (%)",
			Range:          &chart.ContinuousRange{Min: leftMin, Max: leftMax},
			GridMajorStyle: chart.Style{StrokeColor: gridColor, StrokeWidth: 1},
		},
		YAxis: chart.YAxis{
			Name:           "Light (Lux)",
			Range:          &chart.ContinuousRange{Min: rightMin, Max: rightMax},
			GridMajorStyle: chart.Style{Hidden: true},
			GridMinorStyle: chart.Style{Hidden: true},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Temperature (°C)",
				YAxis:   chart.YAxisSecondary,
				XValues: xs,
				YValues: temperature,
				Style:   lineStyle(temperatureColor),
			},
			chart.ContinuousSeries{
				Name:    "Humidity (%)",
				YAxis:   chart.YAxisSecondary,
				XValues: xs,
				YValues: humidity,
				Style:   lineStyle(humidityColor),
			},
			chart.ContinuousSeries{
				Name:    "Light (Lux)",
				YAxis:   chart.YAxisPrimary,
				XValues: xs,
				YValues: light,
				Style:   lineStyle(lightColor),
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return ch.Render(chart.SVG, w)
}

func lineStyle(c drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: c,
		StrokeWidth: 2,
		DotColor:    c,
		DotWidth:    3,
	}
}

// labelTicks spreads at most maxXTicks labels evenly over the window,
// always including the newest point. go-chart derives the x range from the
// ticks, so an unlabeled tick is added at xMax when the labels stop short.
func labelTicks(labels []string, xMax float64) []chart.Tick {
	n := len(labels)
	step := 1
	if n > maxXTicks {
		step = int(math.Ceil(float64(n-1) / float64(maxXTicks-1)))
	}
	ticks := make([]chart.Tick, 0, maxXTicks)
	for i := 0; i < n; i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: labels[i]})
	}
	if last := n - 1; ticks[len(ticks)-1].Value != float64(last) {
		ticks = append(ticks, chart.Tick{Value: float64(last), Label: labels[last]})
	}
	if ticks[len(ticks)-1].Value < xMax {
		ticks = append(ticks, chart.Tick{Value: xMax})
	}
	return ticks
}

// paddedRange returns a non-empty range covering every value with 10% headroom.
func paddedRange(series ...[]float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.1, 1)
	}
	return lo - pad, hi + pad
}
