package iqr

const (
	// Tukey fence multiplier
	DefaultFenceMultiplier = 1.5

	// values beyond ExtremeFenceFactor * k are extreme outliers
	ExtremeFenceFactor = 2.0
)
