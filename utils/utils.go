package utils

import "math"

// FormatFloat rounds f to round decimal places, NaN and Inf pass through.
func FormatFloat(f float64, round int32) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	scale := math.Pow(10, float64(round))
	return math.Round(f*scale) / scale
}

func IntMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func IntMin(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Ones returns a slice of n ones.
func Ones(n int) []float64 {
	res := make([]float64, n)
	for i := range res {
		res[i] = 1
	}
	return res
}
