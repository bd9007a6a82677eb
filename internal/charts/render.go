// Package charts draws the dashboard's bar charts with go-chart.
package charts

import (
	"errors"
	"fmt"
	"io"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/lueurxax/ege-dashboard/internal/analytics"
	apperrors "github.com/lueurxax/ege-dashboard/internal/core/errors"
)

// Name identifies one of the dashboard charts.
type Name string

const (
	ChartTypes       Name = "types"
	ChartTotals      Name = "totals"
	ChartAttachments Name = "attachments"
)

// Names lists the charts in page order.
var Names = []Name{ChartTypes, ChartTotals, ChartAttachments}

// Format is an output image format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// Figure geometry: 10x4 inches at 100 DPI.
const (
	figureWidth  = 1000
	figureHeight = 400
	figureDPI    = 100.0

	titleFontSize = 12.0
	axisFontSize  = 9.0
	nameFontSize  = 10.0
	emptyFontSize = 11.0

	typesBarWidth       = 1.0
	totalsBarWidth      = 0.5
	attachmentsBarWidth = 0.6

	yAxisName        = "Кол-во"
	typesLegend      = "Вид вопроса"
	attachmentLegend = "Комментарий"
	emptyMessage     = "Нет данных для выбранных предметов"
)

var titles = map[Name]string{
	ChartTypes:       "Количество вопросов по предмету и типу",
	ChartTotals:      "Количество заданий по каждому предмету",
	ChartAttachments: "Задания по предметам с файлами в комментариях",
}

var (
	colorBackground = drawing.ColorFromHex("#d9d9d9")
	colorTotals     = drawing.ColorFromHex("#cce5cc")
	colorAxis       = drawing.ColorBlack
	colorGrid       = drawing.ColorFromHex("#b0b0b0").WithAlpha(153)
	colorEmptyText  = drawing.ColorFromHex("#4d4d4d")
)

var errInvalidBar = errors.New("bar has invalid geometry")

// ParseName validates a chart name.
func ParseName(s string) (Name, error) {
	for _, n := range Names {
		if string(n) == s {
			return n, nil
		}
	}

	return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownChart, s)
}

// ParseFormat validates an image format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}

	return "image/svg+xml"
}

// Title returns the heading drawn on top of a chart.
func Title(name Name) string {
	return titles[name]
}

// Options tune chart rendering.
type Options struct {
	// YFloor is the lower bound of the question-type chart's y axis. It is
	// applied only when the tallest bar exceeds it; smaller charts start at
	// zero so that no bar falls entirely below the axis.
	YFloor float64
}

// Renderer turns aggregate tables into images.
type Renderer struct {
	fonts  fontSet
	yFloor float64
}

// NewRenderer parses the chart fonts and returns a renderer.
func NewRenderer(opts Options) (*Renderer, error) {
	fonts, err := loadFonts()
	if err != nil {
		return nil, err
	}

	return &Renderer{fonts: fonts, yFloor: opts.YFloor}, nil
}

// Render writes the named chart for agg to w. Tables without rows produce a
// placeholder image rather than an error.
func (r *Renderer) Render(w io.Writer, name Name, format Format, agg analytics.Aggregates) error {
	provider, err := r.provider(format)
	if err != nil {
		return err
	}

	c, err := r.build(name, agg)
	if errors.Is(err, apperrors.ErrNoData) {
		return r.renderEmpty(w, Title(name), provider)
	}

	if err != nil {
		return err
	}

	if err := c.Render(provider, w); err != nil {
		return fmt.Errorf("render %s chart: %w", name, err)
	}

	return nil
}

func (r *Renderer) provider(format Format) (chart.RendererProvider, error) {
	switch format {
	case FormatSVG:
		return newEscapedSVG, nil
	case FormatPNG:
		return chart.PNG, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownFormat, format)
	}
}

func (r *Renderer) build(name Name, agg analytics.Aggregates) (*chart.Chart, error) {
	switch name {
	case ChartTypes:
		return r.typesChart(agg.ByType)
	case ChartTotals:
		return r.totalsChart(agg.Totals)
	case ChartAttachments:
		return r.attachmentsChart(agg.Attachments)
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownChart, name)
	}
}

func (r *Renderer) typesChart(table analytics.PivotTable) (*chart.Chart, error) {
	if table.Empty() {
		return nil, apperrors.ErrNoData
	}

	peak := float64(table.Max())
	bottom := 0.0

	if r.yFloor > 0 && peak > r.yFloor {
		bottom = r.yFloor
	}

	layout := groupedBars(tableValues(table), len(table.Columns), typesBarWidth)
	series := make([]chart.Series, len(table.Columns))
	entries := make([]legendEntry, len(table.Columns))

	for i, column := range table.Columns {
		fill := drawing.ColorFromHex(table.Colors[i])
		series[i] = barSeries{
			name:  column,
			style: chart.Style{FillColor: fill, StrokeColor: drawing.ColorWhite, StrokeWidth: 1},
			bars:  layout[i],
		}
		entries[i] = legendEntry{label: column, fill: fill, edge: drawing.ColorWhite}
	}

	c := r.baseChart(ChartTypes, table.Labels, bottom, peak)
	c.Series = series
	c.Elements = []chart.Renderable{legend(typesLegend, entries, r.fonts)}

	return c, nil
}

func (r *Renderer) totalsChart(totals []analytics.SubjectCount) (*chart.Chart, error) {
	if len(totals) == 0 {
		return nil, apperrors.ErrNoData
	}

	labels := make([]string, len(totals))
	values := make([][]float64, len(totals))
	peak := 0.0

	for i, t := range totals {
		labels[i] = t.Label
		values[i] = []float64{float64(t.Count)}
		peak = max(peak, float64(t.Count))
	}

	c := r.baseChart(ChartTotals, labels, 0, peak)
	c.Series = []chart.Series{barSeries{
		name:  yAxisName,
		style: chart.Style{FillColor: colorTotals, StrokeColor: drawing.ColorBlack, StrokeWidth: 1},
		bars:  groupedBars(values, 1, totalsBarWidth)[0],
	}}

	return c, nil
}

func (r *Renderer) attachmentsChart(table analytics.PivotTable) (*chart.Chart, error) {
	if table.Empty() {
		return nil, apperrors.ErrNoData
	}

	layout := stackedBars(tableValues(table), len(table.Columns), attachmentsBarWidth)
	series := make([]chart.Series, len(table.Columns))
	entries := make([]legendEntry, len(table.Columns))

	for i, column := range table.Columns {
		fill := drawing.ColorFromHex(table.Colors[i])
		series[i] = barSeries{
			name:  column,
			style: chart.Style{FillColor: fill, StrokeColor: fill, StrokeWidth: 1},
			bars:  layout[i],
		}
		entries[i] = legendEntry{label: column, fill: fill, edge: fill}
	}

	c := r.baseChart(ChartAttachments, table.Labels, 0, float64(table.MaxRowTotal()))
	c.Series = series
	c.Elements = []chart.Renderable{legend(attachmentLegend, entries, r.fonts)}

	return c, nil
}

// baseChart sets up the figure shared by all three charts: background, title,
// category x axis and a left count axis with dashed grid lines.
func (r *Renderer) baseChart(name Name, labels []string, bottom, peak float64) *chart.Chart {
	yTicks := countTicks(bottom, peak)
	axisStyle := chart.Style{
		StrokeColor: colorAxis,
		StrokeWidth: 1,
		FontSize:    axisFontSize,
		FontColor:   colorAxis,
	}
	gridStyle := chart.Style{
		StrokeColor:     colorGrid,
		StrokeWidth:     0.8,
		StrokeDashArray: []float64{4, 2},
	}

	return &chart.Chart{
		Title: Title(name),
		TitleStyle: chart.Style{
			Font:      r.fonts.bold,
			FontSize:  titleFontSize,
			FontColor: drawing.ColorBlack,
			Padding:   chart.Box{Top: 14},
		},
		Width:  figureWidth,
		Height: figureHeight,
		DPI:    figureDPI,
		Font:   r.fonts.regular,
		Background: chart.Style{
			FillColor: colorBackground,
			Padding:   chart.Box{Top: 50, Left: 20, Right: 30, Bottom: 10},
		},
		Canvas: chart.Style{
			FillColor:   drawing.ColorWhite,
			StrokeColor: colorAxis,
			StrokeWidth: 1,
		},
		XAxis: chart.XAxis{
			Style:          axisStyle,
			Ticks:          categoryTicks(labels),
			TickPosition:   chart.TickPositionUnderTick,
			GridMajorStyle: chart.Hidden(),
			GridMinorStyle: chart.Hidden(),
		},
		// The primary axis only carries the range; go-chart reads the
		// secondary range from the primary ticks.
		YAxis: chart.YAxis{
			Style: chart.Hidden(),
			Ticks: yTicks,
			Zero:  chart.GridLine{Style: chart.Hidden()},
		},
		YAxisSecondary: chart.YAxis{
			Name:           yAxisName,
			NameStyle:      chart.Style{FontSize: nameFontSize, FontColor: colorAxis},
			Style:          axisStyle,
			Ticks:          yTicks,
			Zero:           chart.GridLine{Style: chart.Hidden()},
			GridLines:      gridLines(yTicks),
			GridMajorStyle: gridStyle,
			GridMinorStyle: gridStyle,
		},
	}
}

// renderEmpty draws the figure frame with a message instead of bars.
func (r *Renderer) renderEmpty(w io.Writer, title string, provider chart.RendererProvider) error {
	out, err := provider(figureWidth, figureHeight)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	out.SetDPI(figureDPI)

	chart.Draw.Box(out, chart.Box{Right: figureWidth, Bottom: figureHeight}, chart.Style{FillColor: colorBackground})

	canvas := chart.Box{Top: 50, Left: 60, Right: figureWidth - 30, Bottom: figureHeight - 40}
	chart.Draw.Box(out, canvas, chart.Style{FillColor: drawing.ColorWhite, StrokeColor: colorAxis, StrokeWidth: 1})

	titleStyle := chart.Style{Font: r.fonts.bold, FontSize: titleFontSize, FontColor: drawing.ColorBlack}
	tb := chart.Draw.MeasureText(out, title, titleStyle)
	chart.Draw.Text(out, title, (figureWidth-tb.Width())/2, 14+tb.Height(), titleStyle)

	msgStyle := chart.Style{Font: r.fonts.regular, FontSize: emptyFontSize, FontColor: colorEmptyText}
	mb := chart.Draw.MeasureText(out, emptyMessage, msgStyle)
	cx, cy := canvas.Center()
	chart.Draw.Text(out, emptyMessage, cx-mb.Width()/2, cy+mb.Height()/2, msgStyle)

	if err := out.Save(w); err != nil {
		return fmt.Errorf("save empty chart: %w", err)
	}

	return nil
}

func tableValues(table analytics.PivotTable) [][]float64 {
	values := make([][]float64, len(table.Counts))

	for i, row := range table.Counts {
		values[i] = make([]float64, len(row))
		for j, n := range row {
			values[i][j] = float64(n)
		}
	}

	return values
}
