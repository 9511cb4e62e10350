package forecast

import (
	"math"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/features"
	"StockCast/internal/services/rng"
)

// MinPrice is the floor applied to every generated price.
const MinPrice = 0.01

// Generator produces synthetic forward prices. It holds no state; one value may
// serve any number of goroutines as long as each passes its own Source.
type Generator struct{}

// NewGenerator returns a Generator.
func NewGenerator() *Generator { return &Generator{} }

// Generate runs the variant's recurrence from the last close for horizon days.
func (g *Generator) Generate(bars []models.HistoricalBar, variant models.ForecastVariant, horizon int, src rng.Source) ([]models.Prediction, error) {
	return Generate(bars, variant, horizon, src)
}

// Generate runs the variant's recurrence from the last close for horizon days.
func Generate(bars []models.HistoricalBar, variant models.ForecastVariant, horizon int, src rng.Source) ([]models.Prediction, error) {
	co, ok := table[variant]
	if !ok {
		return nil, models.InvalidParam("variant", "unknown variant %q", variant)
	}
	if horizon <= 0 {
		return nil, models.InvalidParam("horizon", "must be positive, got %d", horizon)
	}
	if len(bars) == 0 {
		return nil, models.InsufficientData("bars", "empty history")
	}
	if src == nil {
		return nil, models.InvalidParam("src", "random source is required")
	}

	closes := models.Closes(bars)
	last := closes[len(closes)-1]
	if last <= 0 {
		return nil, models.InvalidParam("bars", "last close must be positive, got %v", last)
	}

	vol := features.Volatility(closes)
	slope := features.LinearTrend(closes)
	drift := co.trend*slope/last + co.rawTrend*slope
	if co.shortWindow > 0 {
		drift += co.shortTrend * features.WindowChange(closes, co.shortWindow)
	}

	out := make([]models.Prediction, horizon)
	date := bars[len(bars)-1].Date
	price := last
	h := float64(horizon)
	for i := 1; i <= horizon; i++ {
		dev := (price - last) / last
		change := drift +
			(src.Float64()-co.shockCenter)*vol*co.shockScale +
			co.momentum*dev -
			co.reversion*dev
		if co.waveAmp != 0 {
			change += co.waveAmp * math.Sin(float64(i)/co.wavePeriod)
		}
		next := price * (1 + change)
		switch {
		case math.IsInf(next, 1):
			// hold the last finite price
		case next < MinPrice || math.IsNaN(next):
			price = MinPrice
		default:
			price = next
		}

		date = date.AddDate(0, 0, 1)
		out[i-1] = models.Prediction{
			Date:           date,
			PredictedPrice: price,
			Confidence:     math.Max(co.floor, 1-float64(i)/h*co.decay),
		}
	}
	return out, nil
}
