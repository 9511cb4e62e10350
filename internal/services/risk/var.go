// Package risk computes empirical tail loss and headline risk figures.
package risk

import (
	"math"
	"slices"

	"StockCast/internal/domain/models"
)

// DefaultLevels are the confidence levels reported when none are requested.
var DefaultLevels = []float64{90, 95, 99, 99.5}

// Analyzer is the stateless entry point used by the usecases.
type Analyzer struct{}

// NewAnalyzer returns an Analyzer.
func NewAnalyzer() *Analyzer { return &Analyzer{} }

// Analyze computes VaR and CVaR for each level.
func (a *Analyzer) Analyze(returns []float64, levels []float64) ([]models.VarResult, error) {
	return Analyze(returns, levels)
}

// Profile computes the risk panel for closes.
func (a *Analyzer) Profile(closes []float64) models.RiskProfile {
	return Profile(closes)
}

// Analyze computes historical VaR and CVaR at each confidence level, in percent.
//
// For level c the cutoff index is floor(n * (1 - c/100)) into the ascending
// sorted returns. When the cutoff is 0 no return lies beyond it and the result
// is marked insufficient with zero VaR and CVaR.
func Analyze(returns []float64, levels []float64) ([]models.VarResult, error) {
	for _, c := range levels {
		if !(c > 0 && c < 100) {
			return nil, models.InvalidParam("levels", "confidence level must be in (0, 100), got %v", c)
		}
	}
	if len(returns) == 0 {
		return nil, models.InsufficientData("returns", "empty return series")
	}

	sorted := slices.Clone(returns)
	slices.Sort(sorted)
	n := len(sorted)

	out := make([]models.VarResult, len(levels))
	for i, c := range levels {
		out[i] = models.VarResult{ConfidenceLevel: c}
		idx := int(math.Floor(float64(n) * (1 - c/100)))
		if idx <= 0 {
			continue
		}
		idx = min(idx, n-1)

		var tail float64
		for _, r := range sorted[:idx] {
			tail += math.Abs(r)
		}
		out[i].VaR = math.Abs(sorted[idx]) * 100
		out[i].CVaR = tail / float64(idx) * 100
		out[i].Sufficient = true
	}
	return out, nil
}
