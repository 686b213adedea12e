package model

type Quartiles struct {
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
}

func (q Quartiles) IQR() float64 {
	return q.Q3 - q.Q1
}

// Fence is the closed interval [Lower, Upper] used to trim outliers.
type Fence struct {
	Quartiles
	K     float64 `json:"k"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

func (f Fence) Contains(v float64) bool {
	return v >= f.Lower && v <= f.Upper
}

type Outliers struct {
	Mild    []float64 `json:"mild"`
	Extreme []float64 `json:"extreme"`
}

// Contingency is the 2x2 table of cohort membership against outcome.
type Contingency struct {
	ExposedPresent   int `json:"exposed_present"`
	ExposedAbsent    int `json:"exposed_absent"`
	UnexposedPresent int `json:"unexposed_present"`
	UnexposedAbsent  int `json:"unexposed_absent"`
}

func (c Contingency) Exposed() int {
	return c.ExposedPresent + c.ExposedAbsent
}

func (c Contingency) Unexposed() int {
	return c.UnexposedPresent + c.UnexposedAbsent
}

type RelativeRisk struct {
	Table         Contingency `json:"table"`
	ExposedRisk   float64     `json:"exposed_risk"`
	UnexposedRisk float64     `json:"unexposed_risk"`
	Ratio         float64     `json:"ratio"`
}

type AnovaResult struct {
	Groups       int     `json:"groups"`
	Observations int     `json:"observations"`
	SSBetween    float64 `json:"ss_between"`
	SSWithin     float64 `json:"ss_within"`
	DFBetween    int     `json:"df_between"`
	DFWithin     int     `json:"df_within"`
	F            float64 `json:"f"`
	P            float64 `json:"p"`
	Alpha        float64 `json:"alpha,omitempty"`
	Significant  bool    `json:"significant"`
}

// Summary mirrors a dataframe describe() row.
type Summary struct {
	Column  string  `json:"column"`
	Count   int     `json:"count"`
	Missing int     `json:"missing"`
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
	Min     float64 `json:"min"`
	Q1      float64 `json:"q1"`
	Median  float64 `json:"median"`
	Q3      float64 `json:"q3"`
	Max     float64 `json:"max"`
}
