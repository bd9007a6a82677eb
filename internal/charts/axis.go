package charts

import (
	"math"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
)

const (
	targetTickCount = 6
	headroom        = 1.05
)

// categoryTicks labels integer slots 0..n-1 and pads the range by half a slot
// on each side so the outer bars are not cut off.
func categoryTicks(labels []string) []chart.Tick {
	ticks := make([]chart.Tick, 0, len(labels)+2)
	ticks = append(ticks, chart.Tick{Value: -0.5})

	for i, label := range labels {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: label})
	}

	return append(ticks, chart.Tick{Value: float64(len(labels)) - 0.5})
}

// countTicks returns evenly spaced integer ticks from bottom up past peak.
func countTicks(bottom, peak float64) []chart.Tick {
	step := niceStep((peak*headroom - bottom) / targetTickCount)
	top := math.Ceil(peak*headroom/step) * step

	if top <= bottom {
		top = bottom + step
	}

	ticks := []chart.Tick{{Value: bottom, Label: formatCount(bottom)}}

	for v := math.Floor(bottom/step)*step + step; v <= top+step/2; v += step {
		ticks = append(ticks, chart.Tick{Value: v, Label: formatCount(v)})
	}

	return ticks
}

// niceStep rounds a raw step to 1, 2 or 5 times a power of ten, never below 1.
func niceStep(raw float64) float64 {
	if raw <= 1 {
		return 1
	}

	magnitude := math.Pow(10, math.Floor(math.Log10(raw)))
	residual := raw / magnitude

	switch {
	case residual <= 1:
		return magnitude
	case residual <= 2:
		return 2 * magnitude
	case residual <= 5:
		return 5 * magnitude
	default:
		return 10 * magnitude
	}
}

// gridLines puts a horizontal line on every tick above the bottom one.
func gridLines(ticks []chart.Tick) []chart.GridLine {
	lines := make([]chart.GridLine, 0, len(ticks))
	for _, t := range ticks[1:] {
		lines = append(lines, chart.GridLine{Value: t.Value})
	}

	return lines
}

func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
