package forecast

import "StockCast/internal/domain/models"

// coefficients parameterize the shared recurrence. Every term is a fraction of
// the running price added to the daily change.
type coefficients struct {
	floor float64 // lowest confidence
	decay float64 // confidence lost across the full horizon

	trend       float64 // weight on full-history slope relative to last close
	rawTrend    float64 // weight on full-history slope in price units per bar
	shortWindow int     // bars in the short lookback
	shortTrend  float64 // weight on fractional change across the short lookback

	shockScale  float64 // multiplier on volatility
	shockCenter float64 // subtracted from the uniform draw

	momentum  float64 // weight on own cumulative deviation from last close
	reversion float64 // pull back toward last close

	waveAmp    float64
	wavePeriod float64
}

var table = map[models.ForecastVariant]coefficients{
	models.Momentum: {
		floor: 0.6, decay: 0.4,
		trend:      0.8,
		shockScale: 0.8, shockCenter: 0.48,
		momentum: 0.05,
	},
	models.MeanReversion: {
		floor: 0.65, decay: 0.35,
		shortWindow: 20, shortTrend: 0.015,
		shockScale: 0.7, shockCenter: 0.5,
		reversion: 0.1,
	},
	models.Blended: {
		floor: 0.7, decay: 0.3,
		rawTrend:    0.003,
		shortWindow: 10, shortTrend: 0.01,
		shockScale: 0.6, shockCenter: 0.49,
		waveAmp: 0.002, wavePeriod: 5,
	},
}

// ConfidenceFloor returns the lowest confidence a variant reports.
func ConfidenceFloor(v models.ForecastVariant) float64 {
	return table[v].floor
}
