package usecase

import (
	"context"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	domsvc "StockCast/internal/domain/service"
	"StockCast/internal/service/metrics"
	"StockCast/internal/services/features"
	"StockCast/internal/services/montecarlo"
)

// SimulationUseCase calibrates a Monte Carlo run from a symbol's history.
type SimulationUseCase struct {
	bars    *BarsUseCase
	sim     domsvc.Simulator
	runs    *RunTracker
	bins    int
	timeout time.Duration
}

func NewSimulationUseCase(bars *BarsUseCase, sim domsvc.Simulator, runs *RunTracker, bins int, timeout time.Duration) *SimulationUseCase {
	return &SimulationUseCase{bars: bars, sim: sim, runs: runs, bins: bins, timeout: timeout}
}

type SimulateParams struct {
	JobID       string // reused as the run id when set
	Symbol      string
	Period      string
	Days        int
	Simulations int
	Visible     int
	Seed        int64
	Shock       montecarlo.ShockModel
}

type SimulateResult struct {
	RunID           string
	Symbol          string
	Seed            int64
	Source          string
	CurrentPrice    float64
	DailyDrift      float64
	DailyVolatility float64
	Result          *models.SimulationResult
}

// Simulate uses the last close as the start price and the mean and population
// standard deviation of simple daily returns as drift and volatility.
// progress, when non-nil, receives serialized (done, total) updates.
func (uc *SimulationUseCase) Simulate(ctx context.Context, p SimulateParams, progress func(done, total int)) (res *SimulateResult, err error) {
	run := uc.runs.Start(models.OpSimulate, p.Symbol, string(p.Shock), p.JobID)
	defer func() { run.Finish(ctx, simulateValues(res), err) }()

	s, err := uc.bars.Load(ctx, p.Symbol, p.Period)
	if err != nil {
		return nil, err
	}
	closes := models.Closes(s.Bars)
	returns := features.SimpleReturns(closes)
	if len(returns) == 0 {
		return nil, models.InsufficientData("bars", "need at least 2 positive closes, got %d bars", len(closes))
	}
	drift, vol := features.MeanStdDev(returns)
	seed := resolveSeed(p.Seed)

	params := montecarlo.Params{
		CurrentPrice:    closes[len(closes)-1],
		DailyDrift:      drift,
		DailyVolatility: vol,
		Days:            p.Days,
		Simulations:     p.Simulations,
		VisibleCap:      p.Visible,
		Bins:            uc.bins,
		Seed:            seed,
		Shock:           p.Shock,
	}
	var opts []montecarlo.Option
	if progress != nil {
		opts = append(opts, montecarlo.WithProgress(progress))
	}

	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}
	out, err := uc.sim.Run(ctx, params, opts...)
	if err != nil {
		return nil, fmt.Errorf("simulate %s: %w", s.Symbol, err)
	}
	metrics.SimulationTrials.Observe(float64(out.Trials))

	return &SimulateResult{
		RunID:           run.ID(),
		Symbol:          s.Symbol,
		Seed:            seed,
		Source:          s.Source,
		CurrentPrice:    params.CurrentPrice,
		DailyDrift:      drift,
		DailyVolatility: vol,
		Result:          out,
	}, nil
}

func simulateValues(res *SimulateResult) map[string]float64 {
	if res == nil || res.Result == nil {
		return nil
	}
	st := res.Result.Stats
	return map[string]float64{
		"currentPrice": res.CurrentPrice,
		"mean":         st.Mean,
		"median":       st.Median,
		"p5":           st.P5,
		"p95":          st.P95,
	}
}
