package backtest

import (
	"fmt"
	"math"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/rng"
)

// AccuracyTolerance is the relative error under which a prediction counts as accurate.
const AccuracyTolerance = 0.05

// Forecaster is the generator contract the harness replays.
type Forecaster interface {
	Generate(bars []models.HistoricalBar, variant models.ForecastVariant, horizon int, src rng.Source) ([]models.Prediction, error)
}

// Harness splits history into train and test windows and pairs forecasts with actuals.
type Harness struct {
	gen Forecaster
}

// NewHarness builds a Harness around gen.
func NewHarness(gen Forecaster) *Harness {
	return &Harness{gen: gen}
}

// MaxTestDays is the largest test window allowed for a series of length n.
func MaxTestDays(n int) int { return n / 3 }

// Run forecasts testDays from bars[:len-testDays] and attaches the withheld closes.
// testDays outside [1, len/3] is rejected, never clamped.
func (h *Harness) Run(bars []models.HistoricalBar, variant models.ForecastVariant, testDays int, src rng.Source) ([]models.Prediction, error) {
	limit := MaxTestDays(len(bars))
	if testDays < 1 || testDays > limit {
		return nil, models.InvalidParam("testDays", "must be in [1, %d] for %d bars, got %d", limit, len(bars), testDays)
	}

	split := len(bars) - testDays
	train, test := bars[:split], bars[split:]

	preds, err := h.gen.Generate(train, variant, testDays, src)
	if err != nil {
		return nil, fmt.Errorf("backtest %s: %w", variant, err)
	}
	for i := range preds {
		if i < len(test) {
			actual := test[i].Close
			preds[i].ActualPrice = &actual
		}
	}
	return preds, nil
}

// Summarize reports the share of paired predictions within AccuracyTolerance and
// the mean absolute percentage error. Pairs with a zero actual are skipped.
func Summarize(preds []models.Prediction) models.BacktestSummary {
	var s models.BacktestSummary
	var hits int
	var errSum float64
	for _, p := range preds {
		if !p.HasActual() || *p.ActualPrice == 0 {
			continue
		}
		rel := math.Abs(p.PredictedPrice-*p.ActualPrice) / math.Abs(*p.ActualPrice)
		s.Paired++
		errSum += rel
		if rel < AccuracyTolerance {
			hits++
		}
	}
	if s.Paired == 0 {
		return s
	}
	s.Accuracy = float64(hits) / float64(s.Paired) * 100
	s.AvgErrorPercent = errSum / float64(s.Paired) * 100
	return s
}
