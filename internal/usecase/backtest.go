package usecase

import (
	"context"

	"StockCast/internal/domain/models"
	domsvc "StockCast/internal/domain/service"
	"StockCast/internal/services/backtest"
	"StockCast/internal/services/rng"
	"StockCast/internal/services/scoring"
)

type BacktestUseCase struct {
	bars *BarsUseCase
	bt   domsvc.Backtester
	runs *RunTracker
}

func NewBacktestUseCase(bars *BarsUseCase, bt domsvc.Backtester, runs *RunTracker) *BacktestUseCase {
	return &BacktestUseCase{bars: bars, bt: bt, runs: runs}
}

type BacktestParams struct {
	Symbol   string
	Period   string
	Variant  models.ForecastVariant
	TestDays int
	Seed     int64
}

type BacktestResult struct {
	RunID       string
	Symbol      string
	Variant     models.ForecastVariant
	Seed        int64
	Source      string
	TestDays    int
	Predictions []models.Prediction
	Metrics     models.Metrics
	Summary     models.BacktestSummary
}

func (uc *BacktestUseCase) Run(ctx context.Context, p BacktestParams) (res *BacktestResult, err error) {
	run := uc.runs.Start(models.OpBacktest, p.Symbol, string(p.Variant), "")
	defer func() { run.Finish(ctx, backtestValues(res), err) }()

	s, err := uc.bars.Load(ctx, p.Symbol, p.Period)
	if err != nil {
		return nil, err
	}
	seed := resolveSeed(p.Seed)
	preds, err := uc.bt.Run(s.Bars, p.Variant, p.TestDays, rng.New(seed))
	if err != nil {
		return nil, err
	}
	return &BacktestResult{
		RunID:       run.ID(),
		Symbol:      s.Symbol,
		Variant:     p.Variant,
		Seed:        seed,
		Source:      s.Source,
		TestDays:    p.TestDays,
		Predictions: preds,
		Metrics:     scoring.Calculate(preds),
		Summary:     backtest.Summarize(preds),
	}, nil
}

func backtestValues(res *BacktestResult) map[string]float64 {
	if res == nil {
		return nil
	}
	return map[string]float64{
		"mae":      res.Metrics.MAE,
		"rmse":     res.Metrics.RMSE,
		"mape":     res.Metrics.MAPE,
		"r2":       res.Metrics.R2,
		"accuracy": res.Summary.Accuracy,
	}
}
