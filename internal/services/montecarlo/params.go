package montecarlo

import (
	"math"

	"StockCast/internal/domain/models"
)

const (
	MaxSimulations = 5000
	MaxVisible     = 100
	MaxDays        = 2520
	DefaultBins    = 40
	MaxBins        = 1000
)

// ShockModel selects the distribution of the daily shock.
type ShockModel string

const (
	// ShockGaussian draws standard normal shocks.
	ShockGaussian ShockModel = "gaussian"
	// ShockUniform draws uniform shocks on [-1, 1).
	ShockUniform ShockModel = "uniform"
)

// Params describe one simulation request.
type Params struct {
	CurrentPrice    float64
	DailyDrift      float64
	DailyVolatility float64
	Days            int
	Simulations     int
	VisibleCap      int        // full paths retained for display
	Bins            int        // histogram bins, 0 means DefaultBins
	Seed            int64
	Shock           ShockModel // empty means ShockGaussian
}

// Validate rejects out of range parameters. Nothing is clamped.
func (p Params) Validate() error {
	switch {
	case !(p.CurrentPrice > 0) || math.IsInf(p.CurrentPrice, 0):
		return models.InvalidParam("currentPrice", "must be positive and finite, got %v", p.CurrentPrice)
	case math.IsNaN(p.DailyDrift) || math.IsInf(p.DailyDrift, 0):
		return models.InvalidParam("dailyDrift", "must be finite")
	case !(p.DailyVolatility >= 0) || math.IsInf(p.DailyVolatility, 0):
		return models.InvalidParam("dailyVolatility", "must be non-negative and finite, got %v", p.DailyVolatility)
	case p.Days < 0 || p.Days > MaxDays:
		return models.InvalidParam("days", "must be in [0, %d], got %d", MaxDays, p.Days)
	case p.Simulations < 1 || p.Simulations > MaxSimulations:
		return models.InvalidParam("simulations", "must be in [1, %d], got %d", MaxSimulations, p.Simulations)
	case p.VisibleCap < 0 || p.VisibleCap > MaxVisible:
		return models.InvalidParam("visibleCap", "must be in [0, %d], got %d", MaxVisible, p.VisibleCap)
	case p.Bins < 0 || p.Bins > MaxBins:
		return models.InvalidParam("bins", "must be in [0, %d], got %d", MaxBins, p.Bins)
	}
	switch p.Shock {
	case "", ShockGaussian, ShockUniform:
	default:
		return models.InvalidParam("shock", "unknown shock model %q", p.Shock)
	}
	return nil
}

func (p Params) bins() int {
	if p.Bins == 0 {
		return DefaultBins
	}
	return p.Bins
}
