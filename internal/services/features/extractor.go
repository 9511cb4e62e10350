package features

import (
	"math"

	"StockCast/internal/domain/models"
)

// SimpleReturns computes r_t = (C_t - C_{t-1}) / C_{t-1}.
// Steps whose previous close is not positive are skipped. Returns nil if insufficient data.
func SimpleReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev <= 0 {
			continue
		}
		out = append(out, (closes[i]-prev)/prev)
	}
	return out
}

// LogReturns computes r_t = ln(C_t / C_{t-1}), emitting 0 where either close is not positive.
func LogReturns(bars []models.HistoricalBar) []float64 {
	if len(bars) < 2 {
		return nil
	}
	out := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		cur := bars[i].Close
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// Volatility is the population standard deviation of simple returns, unannualized.
// Fewer than two closes yields 0.
func Volatility(closes []float64) float64 {
	_, sd := MeanStdDev(SimpleReturns(closes))
	return sd
}

// LinearTrend is the least squares slope of close against its index.
func LinearTrend(closes []float64) float64 {
	n := len(closes)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range closes {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	den := fn*sumXX - sumX*sumX
	if den == 0 {
		return 0
	}
	slope := (fn*sumXY - sumX*sumY) / den
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0
	}
	return slope
}

// MeanStdDev returns the mean and population standard deviation of xs (0, 0 when empty).
func MeanStdDev(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	variance := ss / float64(len(xs))
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

// WindowChange is the fractional change across the last window closes.
func WindowChange(closes []float64, window int) float64 {
	if window < 1 || len(closes) == 0 {
		return 0
	}
	start := len(closes) - window
	if start < 0 {
		start = 0
	}
	first := closes[start]
	if first <= 0 {
		return 0
	}
	return (closes[len(closes)-1] - first) / first
}
