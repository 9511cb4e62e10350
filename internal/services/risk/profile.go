package risk

import (
	"math"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/features"
)

const (
	// RiskFreeRate is the annual rate subtracted in Sharpe and Sortino.
	RiskFreeRate       = 0.04
	TradingDaysPerYear = 252
)

// Profile derives annualized volatility and return, Sharpe, Sortino and the
// drawdown curve from a close series. Undefined ratios are reported as 0.
func Profile(closes []float64) models.RiskProfile {
	var p models.RiskProfile
	returns := features.SimpleReturns(closes)
	mean, sd := features.MeanStdDev(returns)
	annualSD := sd * math.Sqrt(TradingDaysPerYear)
	annualReturn := mean * TradingDaysPerYear

	p.AnnualizedVolatility = annualSD * 100
	p.AnnualizedReturn = annualReturn * 100
	if annualSD > 0 {
		p.SharpeRatio = (annualReturn - RiskFreeRate) / annualSD
	}

	var downSS float64
	var downN int
	for _, r := range returns {
		if r < 0 {
			downSS += r * r
			downN++
		}
	}
	if downN > 0 && downSS > 0 {
		downside := math.Sqrt(downSS/float64(downN)) * math.Sqrt(TradingDaysPerYear)
		p.SortinoRatio = (annualReturn - RiskFreeRate) / downside
	}

	p.Drawdowns, p.MaxDrawdown = drawdowns(closes)
	return p
}

// drawdowns returns the percent decline from the running peak at every point.
func drawdowns(closes []float64) ([]float64, float64) {
	if len(closes) == 0 {
		return nil, 0
	}
	out := make([]float64, len(closes))
	peak := closes[0]
	var maxDD float64
	for i, c := range closes {
		if c > peak {
			peak = c
		}
		if peak <= 0 {
			continue
		}
		out[i] = (peak - c) / peak * 100
		maxDD = max(maxDD, out[i])
	}
	return out, maxDD
}
