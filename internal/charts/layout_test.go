package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountTicks(t *testing.T) {
	tests := []struct {
		name   string
		bottom float64
		peak   float64
		want   []float64
	}{
		{name: "tiny counts", bottom: 0, peak: 2, want: []float64{0, 1, 2, 3}},
		{name: "floored", bottom: 50, peak: 120, want: []float64{50, 60, 80, 100, 120, 140}},
		{name: "hundreds", bottom: 0, peak: 480, want: []float64{0, 100, 200, 300, 400, 500, 600}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticks := countTicks(tt.bottom, tt.peak)

			got := make([]float64, len(ticks))
			for i, tick := range ticks {
				got[i] = tick.Value
			}

			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got[len(got)-1], tt.peak)
		})
	}
}

func TestNiceStep(t *testing.T) {
	assert.Equal(t, 1.0, niceStep(0.3))
	assert.Equal(t, 2.0, niceStep(1.5))
	assert.Equal(t, 5.0, niceStep(4.2))
	assert.Equal(t, 10.0, niceStep(7))
	assert.Equal(t, 20.0, niceStep(12.6))
}

func TestCategoryTicks(t *testing.T) {
	ticks := categoryTicks([]string{"a", "b"})

	require.Len(t, ticks, 4)
	assert.Equal(t, -0.5, ticks[0].Value)
	assert.Empty(t, ticks[0].Label)
	assert.Equal(t, "b", ticks[2].Label)
	assert.Equal(t, 1.5, ticks[3].Value)
}

func TestGroupedBars(t *testing.T) {
	layout := groupedBars([][]float64{{2, 4}, {1, 0}}, 2, 1.0)

	require.Len(t, layout, 2)
	assert.Equal(t, bar{x0: -0.5, x1: 0, y1: 2}, layout[0][0])
	assert.Equal(t, bar{x0: 0, x1: 0.5, y1: 4}, layout[1][0])
	assert.Equal(t, bar{x0: 0.5, x1: 1, y1: 1}, layout[0][1])
}

func TestStackedBars(t *testing.T) {
	layout := stackedBars([][]float64{{1, 3}}, 2, 0.6)

	require.Len(t, layout, 2)
	assert.InDelta(t, -0.3, layout[0][0].x0, 1e-9)
	assert.Equal(t, 0.0, layout[0][0].y0)
	assert.Equal(t, 1.0, layout[0][0].y1)
	assert.Equal(t, 1.0, layout[1][0].y0)
	assert.Equal(t, 4.0, layout[1][0].y1)
}

func TestBarSeries_Validate(t *testing.T) {
	assert.NoError(t, barSeries{bars: []bar{{x0: 0, x1: 1, y1: 2}}}.Validate())
	assert.ErrorIs(t, barSeries{bars: []bar{{x0: 1, x1: 1}}}.Validate(), errInvalidBar)
}
