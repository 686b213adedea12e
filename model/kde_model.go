package model

type Density struct {
	X     float64
	Value float64
}

type Cdf struct {
	X     float64
	Value float64
}

type QuantileValue struct {
	Value    float64 `json:"v,omitempty"`
	Quantile float64 `json:"q,omitempty"`
}

// DensityEstimate is the kernel density of one column.
type DensityEstimate struct {
	Column    string    `json:"column"`
	BandWidth float64   `json:"bandwidth"`
	Points    []Density `json:"points"`
}
