package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/montecarlo"
)

func TestForecastUseCase_Forecast(t *testing.T) {
	f := newFixture(sampleBars(120))
	ctx := context.Background()
	p := ForecastParams{Symbol: "AAPL", Period: "1y", Variant: models.Momentum, Horizon: 10, Seed: 42}

	a, err := f.forecast.Forecast(ctx, p)
	require.NoError(t, err)
	b, err := f.forecast.Forecast(ctx, p)
	require.NoError(t, err)

	require.Len(t, a.Predictions, 10)
	assert.Equal(t, a.Predictions, b.Predictions)
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, int64(42), a.Seed)

	ev := f.events.last()
	assert.Equal(t, b.RunID, ev.RunID)
	assert.Equal(t, models.OpForecast, ev.Op)
	assert.Equal(t, "lstm", ev.Variant)
	assert.Contains(t, ev.Values, "finalPredicted")
	assert.Equal(t, []string{"forecast/lstm", "forecast/lstm"}, f.metrics.runs)
}

func TestForecastUseCase_ForecastDrawsSeed(t *testing.T) {
	f := newFixture(sampleBars(30))
	res, err := f.forecast.Forecast(context.Background(), ForecastParams{Symbol: "AAPL", Variant: models.Blended, Horizon: 5})
	require.NoError(t, err)
	assert.NotZero(t, res.Seed)
}

func TestForecastUseCase_InvalidHorizon(t *testing.T) {
	f := newFixture(sampleBars(30))
	_, err := f.forecast.Forecast(context.Background(), ForecastParams{Symbol: "AAPL", Variant: models.Momentum, Horizon: 0, Seed: 1})
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
	assert.Equal(t, []string{"forecast/invalid_parameter"}, f.metrics.errors)
	assert.NotEmpty(t, f.events.last().Error)
}

func TestForecastUseCase_Compare(t *testing.T) {
	f := newFixture(sampleBars(252))
	ctx := context.Background()
	p := CompareParams{Symbol: "AAPL", Period: "1y", Horizon: 15, Seed: 7}

	a, err := f.forecast.Compare(ctx, p)
	require.NoError(t, err)
	b, err := f.forecast.Compare(ctx, p)
	require.NoError(t, err)

	require.Len(t, a.Variants, 3)
	for i, v := range models.Variants() {
		assert.Equal(t, v, a.Variants[i].Variant)
		assert.Len(t, a.Variants[i].Predictions, 15)
		require.NotNil(t, a.Variants[i].Metrics)
		require.NotNil(t, a.Variants[i].Summary)
		assert.Equal(t, 30, a.Variants[i].Summary.Paired)
		assert.Equal(t, a.Variants[i].Predictions, b.Variants[i].Predictions)
		assert.Equal(t, *a.Variants[i].Metrics, *b.Variants[i].Metrics)
	}
}

func TestForecastUseCase_CompareShortHistory(t *testing.T) {
	f := newFixture(sampleBars(2))
	res, err := f.forecast.Compare(context.Background(), CompareParams{Symbol: "AAPL", Horizon: 3, Seed: 7})
	require.NoError(t, err)
	for _, v := range res.Variants {
		assert.Len(t, v.Predictions, 3)
		assert.Nil(t, v.Metrics)
	}
}

func TestBacktestUseCase_Run(t *testing.T) {
	f := newFixture(sampleBars(90))
	ctx := context.Background()

	res, err := f.backtest.Run(ctx, BacktestParams{Symbol: "AAPL", Variant: models.MeanReversion, TestDays: 30, Seed: 3})
	require.NoError(t, err)
	require.Len(t, res.Predictions, 30)
	for _, p := range res.Predictions {
		assert.True(t, p.HasActual())
	}
	assert.Equal(t, 30, res.Summary.Paired)
	assert.Greater(t, res.Metrics.MAE, 0.0)

	_, err = f.backtest.Run(ctx, BacktestParams{Symbol: "AAPL", Variant: models.MeanReversion, TestDays: 31, Seed: 3})
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
	assert.Equal(t, []string{"backtest/invalid_parameter"}, f.metrics.errors)
}

func TestSimulationUseCase_Simulate(t *testing.T) {
	f := newFixture(sampleBars(120))
	ctx := context.Background()
	p := SimulateParams{JobID: "job-1", Symbol: "AAPL", Days: 20, Simulations: 600, Visible: 10, Seed: 99}

	var calls, lastDone int
	a, err := f.simulate.Simulate(ctx, p, func(done, total int) {
		calls++
		assert.Greater(t, done, lastDone)
		assert.Equal(t, 600, total)
		lastDone = done
	})
	require.NoError(t, err)
	assert.Equal(t, "job-1", a.RunID)
	assert.Positive(t, calls)
	assert.Equal(t, 600, lastDone)
	assert.Equal(t, 600, a.Result.Trials)
	assert.Len(t, a.Result.Paths, 10)
	assert.Equal(t, a.CurrentPrice, a.Result.Paths[0][0])
	assert.Positive(t, a.DailyVolatility)

	b, err := f.simulate.Simulate(ctx, p, nil)
	require.NoError(t, err)
	assert.Equal(t, a.Result.Stats, b.Result.Stats)
	assert.Equal(t, "job-1", f.events.last().RunID)
}

func TestSimulationUseCase_InsufficientHistory(t *testing.T) {
	f := newFixture(sampleBars(1))
	_, err := f.simulate.Simulate(context.Background(), SimulateParams{Symbol: "AAPL", Days: 5, Simulations: 10}, nil)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestSimulationUseCase_RejectsBadShock(t *testing.T) {
	f := newFixture(sampleBars(30))
	_, err := f.simulate.Simulate(context.Background(), SimulateParams{Symbol: "AAPL", Days: 5, Simulations: 10, Shock: montecarlo.ShockModel("cauchy")}, nil)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
}

func TestRiskUseCase_VaR(t *testing.T) {
	f := newFixture(sampleBars(253))
	res, err := f.risk.VaR(context.Background(), "AAPL", "1y", nil)
	require.NoError(t, err)
	assert.Equal(t, 252, res.Returns)
	require.Len(t, res.Results, 4)
	for _, r := range res.Results {
		assert.True(t, r.Sufficient)
		assert.GreaterOrEqual(t, r.CVaR, 0.0)
	}

	res, err = f.risk.VaR(context.Background(), "AAPL", "1y", []float64{99.9})
	require.NoError(t, err)
	assert.False(t, res.Results[0].Sufficient) // floor(252 * 0.001) == 0

	_, err = f.risk.VaR(context.Background(), "AAPL", "1y", []float64{100})
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
}

func TestRiskUseCase_Profile(t *testing.T) {
	f := newFixture(sampleBars(100))
	res, err := f.risk.Profile(context.Background(), "AAPL", "1y")
	require.NoError(t, err)
	assert.Len(t, res.Profile.Drawdowns, 100)
	assert.Positive(t, res.Profile.AnnualizedVolatility)

	f = newFixture(sampleBars(1))
	_, err = f.risk.Profile(context.Background(), "AAPL", "1y")
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestRunEvents_CarryNormalizedSymbol(t *testing.T) {
	f := newFixture(sampleBars(253))
	ctx := context.Background()

	ops := map[string]func() error{
		"forecast": func() error {
			_, err := f.forecast.Forecast(ctx, ForecastParams{Symbol: " aapl", Variant: models.Momentum, Horizon: 5, Seed: 1})
			return err
		},
		"compare": func() error {
			_, err := f.forecast.Compare(ctx, CompareParams{Symbol: "aapl", Horizon: 5, Seed: 1})
			return err
		},
		"backtest": func() error {
			_, err := f.backtest.Run(ctx, BacktestParams{Symbol: "aapl", Variant: models.Blended, TestDays: 20, Seed: 1})
			return err
		},
		"simulate": func() error {
			_, err := f.simulate.Simulate(ctx, SimulateParams{Symbol: "aapl ", Days: 5, Simulations: 50, Seed: 1}, nil)
			return err
		},
		"var": func() error {
			_, err := f.risk.VaR(ctx, "aapl", "1y", nil)
			return err
		},
		"profile": func() error {
			_, err := f.risk.Profile(ctx, "aapl", "1y")
			return err
		},
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, op())
			assert.Equal(t, "AAPL", f.events.last().Symbol)
		})
	}

	_, err := f.forecast.Forecast(ctx, ForecastParams{Symbol: "msft", Variant: models.Momentum, Horizon: 0, Seed: 1})
	require.Error(t, err)
	ev := f.events.last()
	assert.Equal(t, "MSFT", ev.Symbol)
	assert.NotEmpty(t, ev.Error)
}
