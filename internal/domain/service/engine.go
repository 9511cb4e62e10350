package service

import (
	"context"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/montecarlo"
	"StockCast/internal/services/rng"
)

// Forecaster produces a horizon of synthetic prices for one variant.
type Forecaster interface {
	Generate(bars []models.HistoricalBar, variant models.ForecastVariant, horizon int, src rng.Source) ([]models.Prediction, error)
}

// Backtester replays a variant against withheld history.
type Backtester interface {
	Run(bars []models.HistoricalBar, variant models.ForecastVariant, testDays int, src rng.Source) ([]models.Prediction, error)
}

// Simulator runs Monte Carlo terminal price simulations.
type Simulator interface {
	Run(ctx context.Context, p montecarlo.Params, opts ...montecarlo.Option) (*models.SimulationResult, error)
}

// RiskAnalyzer computes tail loss statistics from returns.
type RiskAnalyzer interface {
	Analyze(returns []float64, levels []float64) ([]models.VarResult, error)
	Profile(closes []float64) models.RiskProfile
}
