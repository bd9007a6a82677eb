package charts

import (
	"html"

	chart "github.com/wcharczuk/go-chart/v2"
)

// escapedSVG is an SVG renderer that measures text as written and escapes it
// only when drawing, since the SVG renderer writes text nodes verbatim.
type escapedSVG struct {
	chart.Renderer
}

func newEscapedSVG(width, height int) (chart.Renderer, error) {
	r, err := chart.SVG(width, height)
	if err != nil {
		return nil, err
	}

	return escapedSVG{Renderer: r}, nil
}

func (e escapedSVG) Text(body string, x, y int) {
	e.Renderer.Text(html.EscapeString(body), x, y)
}
