package chart

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/uyouii/cohort-analytics/common"
	"github.com/uyouii/cohort-analytics/model"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	DefaultWidthInch  = 6.0
	DefaultHeightInch = 4.0
	DefaultBins       = 20
)

type Options struct {
	Title  string
	XLabel string
	YLabel string
	// size in inches, defaults when zero
	Width  float64
	Height float64
}

// Series is one labelled set of values, e.g. one layer of a stacked bar.
type Series struct {
	Label  string
	Values []float64
}

func newPlot(opts Options) *plot.Plot {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	return p
}

func checkValues(name string, values []float64) error {
	if len(values) == 0 {
		return fmt.Errorf("%s has no values: %w", name, common.ErrorInvalidValue)
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s has non-finite value %v: %w", name, v, common.ErrorInvalidValue)
		}
	}
	return nil
}

// Bar draws one bar per label.
func Bar(labels []string, values []float64, opts Options) (*plot.Plot, error) {
	return StackedBar(labels, []Series{{Values: values}}, opts)
}

// StackedBar stacks the series on top of each other, in order, one bar per
// label.
func StackedBar(labels []string, series []Series, opts Options) (*plot.Plot, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no series: %w", common.ErrorInvalidValue)
	}
	p := newPlot(opts)
	width := vg.Points(20)

	var below *plotter.BarChart
	for i, s := range series {
		if err := checkValues("series "+s.Label, s.Values); err != nil {
			return nil, err
		}
		if len(s.Values) != len(labels) {
			return nil, fmt.Errorf("series %q has %d values for %d labels: %w",
				s.Label, len(s.Values), len(labels), common.ErrorInvalidValue)
		}
		bars, err := plotter.NewBarChart(plotter.Values(s.Values), width)
		if err != nil {
			return nil, err
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = vg.Length(0)
		if below != nil {
			bars.StackOn(below)
		}
		p.Add(bars)
		if s.Label != "" {
			p.Legend.Add(s.Label, bars)
		}
		below = bars
	}
	p.Legend.Top = true
	p.NominalX(labels...)
	return p, nil
}

// Histogram bins values, NaN values are skipped.
func Histogram(values []float64, bins int, opts Options) (*plot.Plot, error) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if err := checkValues("histogram", finite); err != nil {
		return nil, err
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	p := newPlot(opts)
	h, err := plotter.NewHist(plotter.Values(finite), bins)
	if err != nil {
		return nil, err
	}
	h.FillColor = plotutil.Color(0)
	p.Add(h)
	return p, nil
}

// Points is one labelled set of x, y pairs.
type Points struct {
	Label string
	X     []float64
	Y     []float64
}

// Scatter draws one glyph series per set, e.g. one per state. Pairs with a
// NaN coordinate are skipped.
func Scatter(sets []Points, opts Options) (*plot.Plot, error) {
	if len(sets) == 0 {
		return nil, fmt.Errorf("no points: %w", common.ErrorInvalidValue)
	}
	p := newPlot(opts)
	for i, set := range sets {
		if len(set.X) != len(set.Y) {
			return nil, fmt.Errorf("points %q have %d x for %d y: %w",
				set.Label, len(set.X), len(set.Y), common.ErrorInvalidValue)
		}
		xys := make(plotter.XYs, 0, len(set.X))
		for j := range set.X {
			if math.IsNaN(set.X[j]) || math.IsNaN(set.Y[j]) {
				continue
			}
			xys = append(xys, plotter.XY{X: set.X[j], Y: set.Y[j]})
		}
		if len(xys) == 0 {
			return nil, fmt.Errorf("points %q have no finite pair: %w", set.Label, common.ErrorInvalidValue)
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("points %q: %v: %w", set.Label, err, common.ErrorInvalidValue)
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = plotutil.Shape(i)
		p.Add(s)
		if set.Label != "" {
			p.Legend.Add(set.Label, s)
		}
	}
	p.Legend.Top = true
	return p, nil
}

// Box draws one box plot per group.
func Box(groups []string, samples [][]float64, opts Options) (*plot.Plot, error) {
	if len(groups) != len(samples) || len(groups) == 0 {
		return nil, fmt.Errorf("%d groups for %d samples: %w", len(groups), len(samples), common.ErrorInvalidValue)
	}
	p := newPlot(opts)
	for i, sample := range samples {
		if err := checkValues("group "+groups[i], sample); err != nil {
			return nil, err
		}
		box, err := plotter.NewBoxPlot(vg.Points(20), float64(i), plotter.Values(sample))
		if err != nil {
			return nil, err
		}
		box.FillColor = plotutil.Color(i)
		p.Add(box)
	}
	p.NominalX(groups...)
	return p, nil
}

// Density draws one line per estimate, e.g. a column before and after
// trimming.
func Density(estimates []*model.DensityEstimate, labels []string, opts Options) (*plot.Plot, error) {
	if len(estimates) == 0 || len(labels) != len(estimates) {
		return nil, fmt.Errorf("%d labels for %d estimates: %w", len(labels), len(estimates), common.ErrorInvalidValue)
	}
	p := newPlot(opts)
	for i, estimate := range estimates {
		if len(estimate.Points) == 0 {
			return nil, fmt.Errorf("estimate %q has no points: %w", labels[i], common.ErrorInvalidValue)
		}
		xys := make(plotter.XYs, len(estimate.Points))
		for j, point := range estimate.Points {
			xys[j] = plotter.XY{X: point.X, Y: point.Value}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(labels[i], line)
	}
	p.Legend.Top = true
	return p, nil
}

var formats = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".svg": true,
	".pdf": true, ".eps": true, ".tif": true, ".tiff": true,
}

// Save writes p to path, the extension picks the image format.
func Save(p *plot.Plot, opts Options, path string) error {
	if !formats[strings.ToLower(filepath.Ext(path))] {
		return fmt.Errorf("chart %s: %w", path, common.ErrorUnsupported)
	}
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = DefaultWidthInch
	}
	if h <= 0 {
		h = DefaultHeightInch
	}
	return p.Save(vg.Length(w)*vg.Inch, vg.Length(h)*vg.Inch, path)
}
