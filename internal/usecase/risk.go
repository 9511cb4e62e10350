package usecase

import (
	"context"
	"fmt"
	"strconv"

	"StockCast/internal/domain/models"
	domsvc "StockCast/internal/domain/service"
	"StockCast/internal/services/features"
)

type RiskUseCase struct {
	bars     *BarsUseCase
	analyzer domsvc.RiskAnalyzer
	runs     *RunTracker
	levels   []float64
}

// NewRiskUseCase uses defaultLevels whenever a request names none.
func NewRiskUseCase(bars *BarsUseCase, analyzer domsvc.RiskAnalyzer, runs *RunTracker, defaultLevels []float64) *RiskUseCase {
	return &RiskUseCase{bars: bars, analyzer: analyzer, runs: runs, levels: defaultLevels}
}

type VaRResult struct {
	RunID   string
	Symbol  string
	Source  string
	Returns int
	Results []models.VarResult
}

// VaR evaluates historical VaR and CVaR of simple daily returns at each level.
func (uc *RiskUseCase) VaR(ctx context.Context, symbol, period string, levels []float64) (res *VaRResult, err error) {
	run := uc.runs.Start(models.OpVaR, symbol, "", "")
	defer func() { run.Finish(ctx, varValues(res), err) }()

	if len(levels) == 0 {
		levels = uc.levels
	}
	s, err := uc.bars.Load(ctx, symbol, period)
	if err != nil {
		return nil, err
	}
	returns := features.SimpleReturns(models.Closes(s.Bars))
	results, err := uc.analyzer.Analyze(returns, levels)
	if err != nil {
		return nil, fmt.Errorf("var %s: %w", s.Symbol, err)
	}
	return &VaRResult{RunID: run.ID(), Symbol: s.Symbol, Source: s.Source, Returns: len(returns), Results: results}, nil
}

func varValues(res *VaRResult) map[string]float64 {
	if res == nil {
		return nil
	}
	vals := make(map[string]float64, 2*len(res.Results))
	for _, r := range res.Results {
		if !r.Sufficient {
			continue
		}
		lvl := strconv.FormatFloat(r.ConfidenceLevel, 'f', -1, 64)
		vals["var"+lvl] = r.VaR
		vals["cvar"+lvl] = r.CVaR
	}
	return vals
}

type ProfileResult struct {
	RunID   string
	Symbol  string
	Source  string
	Profile models.RiskProfile
}

// Profile annualizes the return distribution of the close series.
func (uc *RiskUseCase) Profile(ctx context.Context, symbol, period string) (res *ProfileResult, err error) {
	run := uc.runs.Start(models.OpRisk, symbol, "", "")
	defer func() {
		var vals map[string]float64
		if res != nil {
			vals = map[string]float64{
				"volatility":  res.Profile.AnnualizedVolatility,
				"sharpe":      res.Profile.SharpeRatio,
				"maxDrawdown": res.Profile.MaxDrawdown,
			}
		}
		run.Finish(ctx, vals, err)
	}()

	s, err := uc.bars.Load(ctx, symbol, period)
	if err != nil {
		return nil, err
	}
	closes := models.Closes(s.Bars)
	if len(closes) < 2 {
		return nil, models.InsufficientData("bars", "need at least 2 closes, got %d", len(closes))
	}
	return &ProfileResult{RunID: run.ID(), Symbol: s.Symbol, Source: s.Source, Profile: uc.analyzer.Profile(closes)}, nil
}
