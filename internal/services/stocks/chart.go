package stocks

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/fnoscan/internal/models"
)

// Chart dimensions in pixels.
const (
	DefaultChartWidth = 900
	MinChartWidth     = 300
	MaxChartWidth     = 2000
)

// ErrInsufficientChartData is returned when fewer than two points are available.
var ErrInsufficientChartData = errors.New("insufficient chart data")

// RenderPriceChart renders a PNG line chart of close, EMA20 and EMA50.
// Indicator points that are undefined are skipped.
func RenderPriceChart(title string, points []models.ChartPoint, width int) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d: %w", len(points), ErrInsufficientChartData)
	}
	width = clampWidth(width)

	var closeX, ema20X, ema50X []time.Time
	var closeY, ema20Y, ema50Y []float64
	for _, p := range points {
		d, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			return nil, fmt.Errorf("bad chart date %q: %w", p.Date, err)
		}
		closeX = append(closeX, d)
		closeY = append(closeY, p.Close)
		if p.EMA20 != nil {
			ema20X = append(ema20X, d)
			ema20Y = append(ema20Y, *p.EMA20)
		}
		if p.EMA50 != nil {
			ema50X = append(ema50X, d)
			ema50Y = append(ema50Y, *p.EMA50)
		}
	}

	series := []chart.Series{
		chart.TimeSeries{
			Name: "Close",
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
				StrokeWidth: 2.5,
			},
			XValues: closeX,
			YValues: closeY,
		},
	}
	if len(ema20X) >= 2 {
		series = append(series, chart.TimeSeries{
			Name: "EMA 20",
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("16a34a"), // green-600
				StrokeWidth: 1.5,
			},
			XValues: ema20X,
			YValues: ema20Y,
		})
	}
	if len(ema50X) >= 2 {
		series = append(series, chart.TimeSeries{
			Name: "EMA 50",
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: ema50X,
			YValues: ema50Y,
		})
	}

	graph := chart.Chart{
		Title:  title,
		Width:  width,
		Height: width * 4 / 9,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("02 Jan")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

func clampWidth(w int) int {
	switch {
	case w <= 0:
		return DefaultChartWidth
	case w < MinChartWidth:
		return MinChartWidth
	case w > MaxChartWidth:
		return MaxChartWidth
	default:
		return w
	}
}
