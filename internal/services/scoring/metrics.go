// Package scoring derives accuracy and risk metrics from prediction lists.
// Every ratio is guarded so results are always finite.
package scoring

import (
	"math"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/features"
)

// TradingDaysPerYear annualizes daily figures.
const TradingDaysPerYear = 252

// Calculate computes error metrics over entries with an actual price and
// return based metrics over the full predicted sequence.
func Calculate(preds []models.Prediction) models.Metrics {
	var m models.Metrics

	m.MAE, m.RMSE, m.MAPE, m.R2 = errorMetrics(preds)

	predicted := make([]float64, len(preds))
	for i, p := range preds {
		predicted[i] = p.PredictedPrice
	}
	mean, sd := features.MeanStdDev(features.SimpleReturns(predicted))
	if sd > 0 {
		m.SharpeRatio = mean / sd * math.Sqrt(TradingDaysPerYear)
	}
	m.Volatility = sd * math.Sqrt(TradingDaysPerYear) * 100
	m.MaxDrawdown = MaxDrawdown(predicted)

	return sanitize(m)
}

func errorMetrics(preds []models.Prediction) (mae, rmse, mape, r2 float64) {
	var n, nPct int
	var absSum, sqSum, pctSum, actSum float64
	for _, p := range preds {
		if !p.HasActual() {
			continue
		}
		a := *p.ActualPrice
		d := p.PredictedPrice - a
		n++
		absSum += math.Abs(d)
		sqSum += d * d
		actSum += a
		if a != 0 {
			nPct++
			pctSum += math.Abs(d) / math.Abs(a)
		}
	}
	if n == 0 {
		return 0, 0, 0, 0
	}

	mae = absSum / float64(n)
	rmse = math.Sqrt(sqSum / float64(n))
	if nPct > 0 {
		mape = pctSum / float64(nPct) * 100
	}

	meanAct := actSum / float64(n)
	var ssTot float64
	for _, p := range preds {
		if !p.HasActual() {
			continue
		}
		d := *p.ActualPrice - meanAct
		ssTot += d * d
	}
	if ssTot > 0 {
		r2 = 1 - sqSum/ssTot
	}
	return mae, rmse, mape, r2
}

// MaxDrawdown is the largest (peak - value) / peak over the sequence, in percent.
// Values seen while the running peak is not positive are ignored.
func MaxDrawdown(values []float64) float64 {
	var peak, maxDD float64
	for i, v := range values {
		if i == 0 || v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - v) / peak * 100; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

func sanitize(m models.Metrics) models.Metrics {
	for _, f := range []*float64{&m.MAE, &m.RMSE, &m.MAPE, &m.R2, &m.SharpeRatio, &m.Volatility, &m.MaxDrawdown} {
		if math.IsNaN(*f) || math.IsInf(*f, 0) {
			*f = 0
		}
	}
	return m
}
