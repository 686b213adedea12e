package chart

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/cohort-analytics/common"
	"github.com/uyouii/cohort-analytics/model"
	"gonum.org/v1/plot"
)

func saved(t *testing.T, p *plot.Plot, name string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, Save(p, Options{Width: 3, Height: 2}, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestBar(t *testing.T) {
	p, err := Bar([]string{"hypertensive", "non-hypertensive"}, []float64{0.83, 0.79},
		Options{Title: "Risk of showing up", YLabel: "probability"})
	require.NoError(t, err)
	saved(t, p, "risk.png")

	_, err = Bar([]string{"a"}, []float64{1, 2}, Options{})
	assert.ErrorIs(t, err, common.ErrorInvalidValue)

	_, err = Bar([]string{"a"}, []float64{math.Inf(1)}, Options{})
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}

func TestStackedBar(t *testing.T) {
	p, err := StackedBar([]string{"non-hypertensives", "hypertensives"}, []Series{
		{Label: "showed", Values: []float64{70179, 18029}},
		{Label: "no_show", Values: []float64{18547, 3772}},
	}, Options{Title: "Patients per category"})
	require.NoError(t, err)
	saved(t, p, "stacked.svg")

	_, err = StackedBar([]string{"a"}, nil, Options{})
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}

func TestHistogram(t *testing.T) {
	p, err := Histogram([]float64{1, 2, 2, 3, 3, 3, math.NaN(), 40}, 0, Options{XLabel: "age"})
	require.NoError(t, err)
	saved(t, p, "hist.png")

	_, err = Histogram([]float64{math.NaN()}, 10, Options{})
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}

func TestBox(t *testing.T) {
	p, err := Box([]string{"before", "after"}, [][]float64{{1, 2, 3, 400}, {1, 2, 3}}, Options{})
	require.NoError(t, err)
	saved(t, p, "box.png")

	_, err = Box([]string{"before"}, [][]float64{{1}, {2}}, Options{})
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}

func TestDensity(t *testing.T) {
	estimate := &model.DensityEstimate{Column: "enroll", BandWidth: 1, Points: []model.Density{
		{X: 0, Value: 0.1}, {X: 1, Value: 0.4}, {X: 2, Value: 0.1},
	}}
	p, err := Density([]*model.DensityEstimate{estimate}, []string{"enroll"}, Options{})
	require.NoError(t, err)
	saved(t, p, "kde.png")

	_, err = Density([]*model.DensityEstimate{estimate}, nil, Options{})
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}

func TestScatter(t *testing.T) {
	p, err := Scatter([]Points{
		{Label: "Arizona", X: []float64{90, 95, math.NaN()}, Y: []float64{92, 97, 99}},
		{Label: "Ohio", X: []float64{100, 98}, Y: []float64{100, 96}},
	}, Options{XLabel: "overall", YLabel: "mmr"})
	require.NoError(t, err)
	saved(t, p, "scatter.png")

	_, err = Scatter(nil, Options{})
	assert.ErrorIs(t, err, common.ErrorInvalidValue)

	_, err = Scatter([]Points{{X: []float64{1, 2}, Y: []float64{1}}}, Options{})
	assert.ErrorIs(t, err, common.ErrorInvalidValue)

	_, err = Scatter([]Points{{X: []float64{math.NaN()}, Y: []float64{1}}}, Options{})
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}

func TestSaveUnsupportedFormat(t *testing.T) {
	p, err := Bar([]string{"a"}, []float64{1}, Options{})
	require.NoError(t, err)
	err = Save(p, Options{}, filepath.Join(t.TempDir(), "chart.bmp"))
	assert.ErrorIs(t, err, common.ErrorUnsupported)
}
