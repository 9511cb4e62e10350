package usecase

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"StockCast/internal/domain/models"
	domsvc "StockCast/internal/domain/service"
	"StockCast/internal/services/backtest"
	"StockCast/internal/services/rng"
	"StockCast/internal/services/scoring"
)

// compareTestDays is the backtest window used to score variants side by side.
const compareTestDays = 30

// ForecastUseCase runs forecasts for one or all variants.
type ForecastUseCase struct {
	bars *BarsUseCase
	gen  domsvc.Forecaster
	bt   domsvc.Backtester
	runs *RunTracker
}

func NewForecastUseCase(bars *BarsUseCase, gen domsvc.Forecaster, bt domsvc.Backtester, runs *RunTracker) *ForecastUseCase {
	return &ForecastUseCase{bars: bars, gen: gen, bt: bt, runs: runs}
}

type ForecastParams struct {
	Symbol  string
	Period  string
	Variant models.ForecastVariant
	Horizon int
	Seed    int64
}

type ForecastResult struct {
	RunID       string
	Symbol      string
	Variant     models.ForecastVariant
	Seed        int64
	Source      string
	LastClose   float64
	Predictions []models.Prediction
}

func (uc *ForecastUseCase) Forecast(ctx context.Context, p ForecastParams) (res *ForecastResult, err error) {
	run := uc.runs.Start(models.OpForecast, p.Symbol, string(p.Variant), "")
	defer func() { run.Finish(ctx, forecastValues(res), err) }()

	s, err := uc.bars.Load(ctx, p.Symbol, p.Period)
	if err != nil {
		return nil, err
	}
	seed := resolveSeed(p.Seed)
	preds, err := uc.gen.Generate(s.Bars, p.Variant, p.Horizon, rng.New(seed))
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", s.Symbol, err)
	}
	return &ForecastResult{
		RunID:       run.ID(),
		Symbol:      s.Symbol,
		Variant:     p.Variant,
		Seed:        seed,
		Source:      s.Source,
		LastClose:   s.Bars[len(s.Bars)-1].Close,
		Predictions: preds,
	}, nil
}

func forecastValues(res *ForecastResult) map[string]float64 {
	if res == nil || len(res.Predictions) == 0 {
		return nil
	}
	last := res.Predictions[len(res.Predictions)-1]
	return map[string]float64{
		"lastClose":       res.LastClose,
		"finalPredicted":  last.PredictedPrice,
		"finalConfidence": last.Confidence,
	}
}

type CompareParams struct {
	Symbol  string
	Period  string
	Horizon int
	Seed    int64
}

// VariantOutcome is one variant's forecast plus its backtest scores. Metrics
// and Summary are nil when the history is too short to backtest.
type VariantOutcome struct {
	Variant     models.ForecastVariant
	Predictions []models.Prediction
	Metrics     *models.Metrics
	Summary     *models.BacktestSummary
}

type CompareResult struct {
	RunID    string
	Symbol   string
	Seed     int64
	Source   string
	Variants []VariantOutcome
}

// Compare runs every variant concurrently. Variant i forecasts from stream 2i
// and backtests from stream 2i+1 of the seed, so each goroutine owns its source
// and the merged result is independent of scheduling.
func (uc *ForecastUseCase) Compare(ctx context.Context, p CompareParams) (res *CompareResult, err error) {
	run := uc.runs.Start(models.OpForecast, p.Symbol, "compare", "")
	defer func() { run.Finish(ctx, compareValues(res), err) }()

	s, err := uc.bars.Load(ctx, p.Symbol, p.Period)
	if err != nil {
		return nil, err
	}
	seed := resolveSeed(p.Seed)
	variants := models.Variants()
	out := make([]VariantOutcome, len(variants))
	testDays := min(compareTestDays, backtest.MaxTestDays(len(s.Bars)))

	g, gctx := errgroup.WithContext(ctx)
	for i, v := range variants {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			preds, err := uc.gen.Generate(s.Bars, v, p.Horizon, rng.Stream(seed, uint64(2*i)))
			if err != nil {
				return fmt.Errorf("forecast %s: %w", v, err)
			}
			out[i] = VariantOutcome{Variant: v, Predictions: preds}
			if testDays < 1 {
				return nil
			}
			bt, err := uc.bt.Run(s.Bars, v, testDays, rng.Stream(seed, uint64(2*i+1)))
			if err != nil {
				if errors.Is(err, models.ErrInvalidParameter) || errors.Is(err, models.ErrInsufficientData) {
					return nil
				}
				return fmt.Errorf("backtest %s: %w", v, err)
			}
			m := scoring.Calculate(bt)
			sum := backtest.Summarize(bt)
			out[i].Metrics, out[i].Summary = &m, &sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &CompareResult{RunID: run.ID(), Symbol: s.Symbol, Seed: seed, Source: s.Source, Variants: out}, nil
}

func compareValues(res *CompareResult) map[string]float64 {
	if res == nil {
		return nil
	}
	vals := make(map[string]float64, len(res.Variants))
	for _, v := range res.Variants {
		if v.Metrics != nil {
			vals[string(v.Variant)+".r2"] = v.Metrics.R2
		}
	}
	return vals
}
