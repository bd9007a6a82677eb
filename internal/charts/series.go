package charts

import (
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
)

// bar is one rectangle in data coordinates.
type bar struct {
	x0, x1 float64
	y0, y1 float64
}

// barSeries draws a set of rectangles with one style. Grouped and stacked
// layouts are expressed through the bar coordinates.
type barSeries struct {
	name  string
	style chart.Style
	bars  []bar
}

var _ chart.Series = barSeries{}

func (s barSeries) GetName() string { return s.name }

// GetYAxis places bars on the left-hand axis.
func (s barSeries) GetYAxis() chart.YAxisType { return chart.YAxisSecondary }

func (s barSeries) GetStyle() chart.Style { return s.style }

func (s barSeries) Validate() error {
	for _, b := range s.bars {
		if math.IsNaN(b.y0) || math.IsNaN(b.y1) || b.x1 <= b.x0 {
			return errInvalidBar
		}
	}

	return nil
}

func (s barSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	style := s.style.InheritFrom(defaults)
	yMin, yMax := yrange.GetMin(), yrange.GetMax()

	for _, b := range s.bars {
		y0 := math.Max(b.y0, yMin)
		y1 := math.Min(b.y1, yMax)

		if y1 <= y0 {
			continue
		}

		box := chart.Box{
			Left:   canvasBox.Left + xrange.Translate(b.x0),
			Right:  canvasBox.Left + xrange.Translate(b.x1),
			Top:    canvasBox.Bottom - yrange.Translate(y1),
			Bottom: canvasBox.Bottom - yrange.Translate(y0),
		}

		chart.Draw.Box(r, box, style)
	}
}

// groupedBars lays out one series per column side by side inside each slot.
// width is the share of a slot covered by the whole group.
func groupedBars(values [][]float64, columns int, width float64) [][]bar {
	out := make([][]bar, columns)
	barWidth := width / float64(columns)

	for col := 0; col < columns; col++ {
		out[col] = make([]bar, 0, len(values))

		for row := range values {
			left := float64(row) - width/2 + float64(col)*barWidth
			out[col] = append(out[col], bar{x0: left, x1: left + barWidth, y1: values[row][col]})
		}
	}

	return out
}

// stackedBars piles the columns of each row on top of each other.
func stackedBars(values [][]float64, columns int, width float64) [][]bar {
	out := make([][]bar, columns)
	for col := range out {
		out[col] = make([]bar, 0, len(values))
	}

	for row := range values {
		base := 0.0
		left := float64(row) - width/2

		for col := 0; col < columns; col++ {
			top := base + values[row][col]
			out[col] = append(out[col], bar{x0: left, x1: left + width, y0: base, y1: top})
			base = top
		}
	}

	return out
}
