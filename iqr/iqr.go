package iqr

import (
	"fmt"
	"math"
	"sort"

	"github.com/uyouii/cohort-analytics/common"
	"github.com/uyouii/cohort-analytics/model"
	"github.com/uyouii/cohort-analytics/table"
)

// Quantile returns the p quantile of sorted values, interpolating linearly
// between the order statistics around position p*(n-1).
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 || math.IsNaN(p) || p < 0 || p > 1 {
		return math.NaN()
	}
	pos := p * float64(n-1)
	lower := int(math.Floor(pos))
	if lower+1 >= n {
		return sorted[n-1]
	}
	weight := pos - float64(lower)
	return sorted[lower] + weight*(sorted[lower+1]-sorted[lower])
}

// SortedFinite returns a sorted copy of values without NaN.
func SortedFinite(values []float64) []float64 {
	res := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			res = append(res, v)
		}
	}
	sort.Float64s(res)
	return res
}

func Quartiles(values []float64) (model.Quartiles, error) {
	sorted := SortedFinite(values)
	if len(sorted) == 0 {
		return model.Quartiles{}, common.ErrorEmptyInput
	}
	return model.Quartiles{
		Q1:     Quantile(sorted, 0.25),
		Median: Quantile(sorted, 0.5),
		Q3:     Quantile(sorted, 0.75),
	}, nil
}

func validK(k float64) error {
	if k <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return fmt.Errorf("fence multiplier %v: %w", k, common.ErrorInvalidValue)
	}
	return nil
}

// Fences returns [Q1 - k*IQR, Q3 + k*IQR].
func Fences(values []float64, k float64) (model.Fence, error) {
	if err := validK(k); err != nil {
		return model.Fence{}, err
	}
	qs, err := Quartiles(values)
	if err != nil {
		return model.Fence{}, err
	}
	iqr := qs.IQR()
	return model.Fence{
		Quartiles: qs,
		K:         k,
		Lower:     qs.Q1 - k*iqr,
		Upper:     qs.Q3 + k*iqr,
	}, nil
}

// Outliers splits the values outside the k fences into mild ones and
// extreme ones, the latter lying outside the ExtremeFenceFactor*k fences.
func Outliers(values []float64, k float64) (model.Outliers, error) {
	inner, err := Fences(values, k)
	if err != nil {
		return model.Outliers{}, err
	}
	outer, err := Fences(values, k*ExtremeFenceFactor)
	if err != nil {
		return model.Outliers{}, err
	}

	res := model.Outliers{Mild: []float64{}, Extreme: []float64{}}
	for _, v := range SortedFinite(values) {
		switch {
		case !outer.Contains(v):
			res.Extreme = append(res.Extreme, v)
		case !inner.Contains(v):
			res.Mild = append(res.Mild, v)
		}
	}
	return res, nil
}

// Trim returns the rows of t whose column value lies inside the k fences,
// bounds included. Rows with a missing value are dropped. t is not modified.
func Trim(t table.Table, column string, k float64) (table.Table, model.Fence, error) {
	if err := validK(k); err != nil {
		return nil, model.Fence{}, err
	}
	kind, err := t.Kind(column)
	if err != nil {
		return nil, model.Fence{}, err
	}
	if kind != model.Numeric {
		return nil, model.Fence{}, common.ColumnError(common.ErrorColumnType, column)
	}
	values, err := t.Floats(column)
	if err != nil {
		return nil, model.Fence{}, err
	}

	fence, err := Fences(values, k)
	if err != nil {
		return nil, model.Fence{}, common.ColumnError(err, column)
	}

	trimmed := table.Where(t, func(row int) bool {
		return fence.Contains(values[row])
	})
	return trimmed, fence, nil
}
