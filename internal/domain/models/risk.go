package models

// HistogramBin counts terminal prices in [Lower, Upper). The last bin is closed.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// RiskStatistics summarize a terminal price distribution.
type RiskStatistics struct {
	Mean      float64        `json:"mean"`
	Median    float64        `json:"median"`
	P5        float64        `json:"p5"`
	P25       float64        `json:"p25"`
	P50       float64        `json:"p50"`
	P75       float64        `json:"p75"`
	P95       float64        `json:"p95"`
	Min       float64        `json:"min"`
	Max       float64        `json:"max"`
	Histogram []HistogramBin `json:"histogram"`
}

// SimulationResult is the output of one Monte Carlo run.
// Paths holds the retained trials, each Days+1 long with index 0 the start price.
type SimulationResult struct {
	Trials    int            `json:"trials"`
	Days      int            `json:"days"`
	Paths     [][]float64    `json:"paths"`
	Terminals []float64      `json:"-"`
	Stats     RiskStatistics `json:"stats"`
}

// VarResult is the tail loss at one confidence level. Sufficient is false when
// the sample is too small to place a cutoff at that level; VaR and CVaR are then zero.
type VarResult struct {
	ConfidenceLevel float64 `json:"confidenceLevel"`
	VaR             float64 `json:"var"`
	CVaR            float64 `json:"cvar"`
	Sufficient      bool    `json:"sufficient"`
}

// RiskProfile is the headline risk panel computed from a close series.
type RiskProfile struct {
	AnnualizedVolatility float64   `json:"annualizedVolatility"`
	AnnualizedReturn     float64   `json:"annualizedReturn"`
	SharpeRatio          float64   `json:"sharpeRatio"`
	SortinoRatio         float64   `json:"sortinoRatio"`
	MaxDrawdown          float64   `json:"maxDrawdown"`
	Drawdowns            []float64 `json:"drawdowns"`
}
