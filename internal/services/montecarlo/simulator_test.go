package montecarlo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockCast/internal/domain/models"
)

func baseParams() Params {
	return Params{
		CurrentPrice:    100,
		DailyDrift:      0,
		DailyVolatility: 0.01,
		Days:            30,
		Simulations:     2000,
		VisibleCap:      100,
		Seed:            42,
	}
}

func TestRun_ZeroDays(t *testing.T) {
	p := baseParams()
	p.Days = 0
	p.DailyDrift = 0.05
	p.DailyVolatility = 0.5
	res, err := Run(context.Background(), p)
	require.NoError(t, err)

	require.Len(t, res.Terminals, p.Simulations)
	for _, v := range res.Terminals {
		assert.Equal(t, 100.0, v)
	}
	require.Len(t, res.Paths, 100)
	assert.Equal(t, []float64{100}, res.Paths[0])
	assert.Equal(t, 100.0, res.Stats.Mean)
	assert.Equal(t, p.Simulations, res.Stats.Histogram[0].Count)
}

func TestRun_MeanNearStart(t *testing.T) {
	for _, shock := range []ShockModel{ShockGaussian, ShockUniform} {
		p := baseParams()
		p.Shock = shock
		res, err := Run(context.Background(), p)
		require.NoError(t, err)
		assert.InEpsilon(t, 100.0, res.Stats.Mean, 0.05, "%s", shock)
	}
}

func TestRun_OrderingAndFloor(t *testing.T) {
	p := baseParams()
	p.DailyVolatility = 0.9
	p.DailyDrift = -0.05
	p.Days = 60
	p.Shock = ShockUniform
	res, err := Run(context.Background(), p)
	require.NoError(t, err)

	for _, v := range res.Terminals {
		assert.GreaterOrEqual(t, v, 0.0)
	}
	for _, path := range res.Paths {
		require.Len(t, path, p.Days+1)
		assert.Equal(t, 100.0, path[0])
		for _, v := range path {
			assert.GreaterOrEqual(t, v, 0.0)
		}
	}
	s := res.Stats
	assert.LessOrEqual(t, s.P5, s.P25)
	assert.LessOrEqual(t, s.P25, s.Median)
	assert.LessOrEqual(t, s.Median, s.P75)
	assert.LessOrEqual(t, s.P75, s.P95)
}

func TestRun_PathsMatchTerminals(t *testing.T) {
	p := baseParams()
	p.Simulations = 50
	p.VisibleCap = 100
	res, err := Run(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, res.Paths, 50)
	for i, path := range res.Paths {
		assert.Equal(t, res.Terminals[i], path[p.Days])
	}
}

func TestRun_IndependentOfWorkers(t *testing.T) {
	p := baseParams()
	one, err := Run(context.Background(), p, WithWorkers(1), WithChunkSize(64))
	require.NoError(t, err)
	many, err := Run(context.Background(), p, WithWorkers(8), WithChunkSize(64))
	require.NoError(t, err)
	assert.Equal(t, one.Terminals, many.Terminals)
	assert.Equal(t, one.Stats, many.Stats)

	other := p
	other.Seed = 43
	diff, err := Run(context.Background(), other, WithChunkSize(64))
	require.NoError(t, err)
	assert.NotEqual(t, one.Terminals, diff.Terminals)
}

func TestRun_Progress(t *testing.T) {
	p := baseParams()
	var calls []int
	_, err := NewSimulator(WithWorkers(4)).Run(context.Background(), p, WithChunkSize(100), WithProgress(func(done, total int) {
		assert.Equal(t, p.Simulations, total)
		calls = append(calls, done)
	}))
	require.NoError(t, err)
	require.Len(t, calls, 20)
	assert.IsIncreasing(t, calls)
	assert.Equal(t, p.Simulations, calls[len(calls)-1])
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, baseParams())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Params)
	}{
		{"zero price", func(p *Params) { p.CurrentPrice = 0 }},
		{"negative vol", func(p *Params) { p.DailyVolatility = -0.1 }},
		{"negative days", func(p *Params) { p.Days = -1 }},
		{"zero sims", func(p *Params) { p.Simulations = 0 }},
		{"too many sims", func(p *Params) { p.Simulations = MaxSimulations + 1 }},
		{"visible over cap", func(p *Params) { p.VisibleCap = MaxVisible + 1 }},
		{"negative bins", func(p *Params) { p.Bins = -1 }},
		{"bad shock", func(p *Params) { p.Shock = "cauchy" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseParams()
			tt.edit(&p)
			_, err := Run(context.Background(), p)
			assert.ErrorIs(t, err, models.ErrInvalidParameter)
		})
	}
}

func TestRun_OverflowIsRejected(t *testing.T) {
	p := Params{
		CurrentPrice:    100,
		DailyDrift:      1e200,
		DailyVolatility: 1e201,
		Days:            3,
		Simulations:     200,
		Shock:           ShockUniform,
	}
	require.NoError(t, p.Validate())

	res, err := Run(context.Background(), p)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
}
