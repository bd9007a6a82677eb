package charts

import (
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	legendMargin       = 8
	legendPadding      = 6
	legendRowGap       = 4
	legendSwatchWidth  = 20
	legendSwatchHeight = 10
	legendSwatchGap    = 6
	legendFontSize     = 8.0
)

type legendEntry struct {
	label string
	fill  drawing.Color
	edge  drawing.Color
}

// legend draws a framed key with a title in the upper right corner of the canvas.
func legend(title string, entries []legendEntry, fonts fontSet) chart.Renderable {
	return func(r chart.Renderer, cb chart.Box, _ chart.Style) {
		textStyle := chart.Style{
			Font:      fonts.regular,
			FontSize:  legendFontSize,
			FontColor: drawing.ColorBlack,
		}

		titleBox := chart.Draw.MeasureText(r, title, textStyle)
		contentWidth := titleBox.Width()
		contentHeight := titleBox.Height()
		rowHeights := make([]int, len(entries))

		for i, e := range entries {
			tb := chart.Draw.MeasureText(r, e.label, textStyle)
			contentWidth = max(contentWidth, legendSwatchWidth+legendSwatchGap+tb.Width())
			rowHeights[i] = max(tb.Height(), legendSwatchHeight)
			contentHeight += legendRowGap + rowHeights[i]
		}

		frame := chart.Box{
			Top:   cb.Top + legendMargin,
			Right: cb.Right - legendMargin,
		}
		frame.Left = frame.Right - contentWidth - 2*legendPadding
		frame.Bottom = frame.Top + contentHeight + 2*legendPadding

		chart.Draw.Box(r, frame, chart.Style{
			FillColor:   drawing.ColorWhite,
			StrokeColor: drawing.ColorFromHex("808080"),
			StrokeWidth: 1,
		})

		y := frame.Top + legendPadding + titleBox.Height()
		chart.Draw.Text(r, title, frame.Left+(frame.Width()-titleBox.Width())/2, y, textStyle)

		left := frame.Left + legendPadding

		for i, e := range entries {
			y += legendRowGap + rowHeights[i]

			chart.Draw.Box(r, chart.Box{
				Left:   left,
				Right:  left + legendSwatchWidth,
				Top:    y - legendSwatchHeight,
				Bottom: y,
			}, chart.Style{FillColor: e.fill, StrokeColor: e.edge, StrokeWidth: 1})

			chart.Draw.Text(r, e.label, left+legendSwatchWidth+legendSwatchGap, y, textStyle)
		}
	}
}
