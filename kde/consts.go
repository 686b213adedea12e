package kde

const (
	// grid extends cut bandwidths past the extreme values
	DefaultCut = 3.0

	DefaultBandWidthAdjust = 1.0

	// the grid holds one point per sample, within these bounds
	MinGridSize = 100
	MaxGridSize = 200
	MinPoints   = 2

	// IQR / 1.349 estimates sigma for normal data
	IQRNormalize = 1.349

	// quadrature points per grid cell when integrating the cdf
	CdfQuadPoints = 50
)
