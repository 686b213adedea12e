package kde

import (
	"fmt"
	"math"
	"sort"

	"github.com/uyouii/cohort-analytics/common"
	"github.com/uyouii/cohort-analytics/model"
	"github.com/uyouii/cohort-analytics/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate/quad"
)

// Univariate is a kernel density estimate of one sample.
type Univariate struct {
	// Weights of the sorted Endog values, uniform when nil.
	Weights []float64

	gridSize int

	// An adjustment factor for the bw. Bandwidth becomes bw * adjust.
	bwAdjust float64

	// Defines the length of the grid past the lowest and highest values
	// of x so that the kernel goes to zero. The end points are
	// ``min(x) - cut * bw`` and ``max(x) + cut * bw``.
	cut float64

	// sorted finite sample
	Endog []float64

	density []model.Density
	cdf     []model.Cdf
	grid    []float64
	bw      float64
	fitted  bool
	kernel  *GaussianKernel
}

// NewUnivariate copies the finite values of endog, NaN values and their
// weights are dropped. Zero bwAdjust and cut take the defaults.
func NewUnivariate(endog []float64, weights []float64, bwAdjust float64, cut float64) (*Univariate, error) {
	if len(weights) != 0 && len(weights) != len(endog) {
		return nil, fmt.Errorf("%d weights for %d values: %w", len(weights), len(endog), common.ErrorInvalidValue)
	}
	if bwAdjust < 0 || cut < 0 {
		return nil, fmt.Errorf("negative bandwidth adjust or cut: %w", common.ErrorInvalidValue)
	}
	if bwAdjust == 0 {
		bwAdjust = DefaultBandWidthAdjust
	}
	if cut == 0 {
		cut = DefaultCut
	}

	type point struct{ x, w float64 }
	points := make([]point, 0, len(endog))
	for i, x := range endog {
		if math.IsNaN(x) {
			continue
		}
		w := 1.0
		if len(weights) != 0 {
			w = weights[i]
		}
		points = append(points, point{x, w})
	}
	if len(points) < MinPoints {
		return nil, fmt.Errorf("%d finite value(s): %w", len(points), common.ErrorTooFewObservations)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].x < points[j].x })

	kde := &Univariate{
		gridSize: utils.IntMin(utils.IntMax(len(points), MinGridSize), MaxGridSize),
		bwAdjust: bwAdjust,
		cut:      cut,
		Endog:    make([]float64, len(points)),
	}
	for i, p := range points {
		kde.Endog[i] = p.x
	}
	if len(weights) != 0 {
		kde.Weights = make([]float64, len(points))
		for i, p := range points {
			kde.Weights[i] = p.w
		}
	}
	return kde, nil
}

// Kdensity evaluates the density on an evenly spaced grid and returns it
// with the bandwidth used.
func (kde *Univariate) Kdensity() ([]model.Density, float64, error) {
	if kde.fitted {
		return kde.density, kde.bw, nil
	}

	kernel := NewGaussianKernel()
	bw := NewNormalReferenceBandWidth(kernel).BandWidth(kde.Endog) * kde.bwAdjust
	if bw == 0 || math.IsNaN(bw) {
		return nil, 0, fmt.Errorf("bandwidth %v: %w", bw, common.ErrorZeroVariance)
	}
	kernel.SetH(bw)

	weights := kde.Weights
	if weights == nil {
		weights = utils.Ones(len(kde.Endog))
	}
	q := floats.Sum(weights)
	if q <= 0 {
		return nil, 0, fmt.Errorf("weights sum to %v: %w", q, common.ErrorInvalidValue)
	}

	a := floats.Min(kde.Endog) - kde.cut*bw
	b := floats.Max(kde.Endog) + kde.cut*bw
	grid := linspace(a, b, kde.gridSize)

	res := make([]model.Density, len(grid))
	evaluated := make([]float64, len(kde.Endog))
	for i, x := range grid {
		for j, xj := range kde.Endog {
			evaluated[j] = kernel.Shape((xj - x) / bw)
		}
		res[i] = model.Density{
			X:     x,
			Value: floats.Dot(evaluated, weights) / (q * bw),
		}
	}

	kde.density = res
	kde.bw = bw
	kde.grid = grid
	kde.fitted = true
	kde.kernel = kernel
	kde.kernel.SetWeights(kde.Weights)

	return res, bw, nil
}

// Cdf integrates the density cell by cell over the grid.
func (kde *Univariate) Cdf() ([]model.Cdf, error) {
	if _, _, err := kde.Kdensity(); err != nil {
		return nil, err
	}
	if len(kde.cdf) > 0 {
		return kde.cdf, nil
	}

	f := func(x float64) float64 {
		return kde.kernel.Density(kde.Endog, x)
	}

	res := make([]model.Cdf, 0, len(kde.grid))
	res = append(res, model.Cdf{X: kde.grid[0], Value: 0})
	var cumSum float64
	for i := 1; i < len(kde.grid); i++ {
		cumSum += quad.Fixed(f, kde.grid[i-1], kde.grid[i], CdfQuadPoints, nil, 0)
		res = append(res, model.Cdf{
			X:     kde.grid[i],
			Value: cumSum,
		})
	}

	kde.cdf = res
	return res, nil
}

// Quantile inverts the cdf by linear interpolation between grid points.
func (kde *Univariate) Quantile(p float64) (*model.QuantileValue, error) {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return nil, fmt.Errorf("quantile %v: %w", p, common.ErrorInvalidValue)
	}
	cdf, err := kde.Cdf()
	if err != nil {
		return nil, err
	}

	if p <= cdf[0].Value {
		return &model.QuantileValue{Quantile: p, Value: cdf[0].X}, nil
	}
	for i := 1; i < len(cdf); i++ {
		if cdf[i].Value > p {
			lowerX, lowerP := cdf[i-1].X, cdf[i-1].Value
			upperX, upperP := cdf[i].X, cdf[i].Value
			value := lowerX + (upperX-lowerX)*(p-lowerP)/(upperP-lowerP)
			return &model.QuantileValue{Quantile: p, Value: value}, nil
		}
	}
	return &model.QuantileValue{Quantile: p, Value: cdf[len(cdf)-1].X}, nil
}
