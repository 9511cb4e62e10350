package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/rng"
)

var start = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func series(closes ...float64) []models.HistoricalBar {
	bars := make([]models.HistoricalBar, len(closes))
	for i, c := range closes {
		bars[i] = models.HistoricalBar{Date: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return bars
}

func linear(n int, base, step float64) []models.HistoricalBar {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = base + step*float64(i)
	}
	return series(closes...)
}

func noisy(n int, seed int64) []models.HistoricalBar {
	src := rng.New(seed)
	closes := make([]float64, n)
	p := 100.0
	for i := range closes {
		p *= 1 + 0.02*src.NormFloat64()
		closes[i] = p
	}
	return series(closes...)
}

func TestGenerate_Shape(t *testing.T) {
	bars := noisy(120, 1)
	for _, v := range models.Variants() {
		for _, h := range []int{1, 7, 30, 90} {
			preds, err := Generate(bars, v, h, rng.New(99))
			require.NoError(t, err)
			require.Len(t, preds, h, "%s h=%d", v, h)

			floor := ConfidenceFloor(v)
			prevDate := bars[len(bars)-1].Date
			prevConf := 1.0
			for i, p := range preds {
				assert.Equal(t, prevDate.AddDate(0, 0, 1), p.Date, "%s day %d", v, i+1)
				assert.LessOrEqual(t, p.Confidence, prevConf)
				assert.GreaterOrEqual(t, p.Confidence, floor)
				assert.LessOrEqual(t, p.Confidence, 1.0)
				assert.Greater(t, p.PredictedPrice, 0.0)
				assert.Nil(t, p.ActualPrice)
				prevDate, prevConf = p.Date, p.Confidence
			}
			assert.InDelta(t, floor, preds[h-1].Confidence, 1e-12)
		}
	}
}

func TestGenerate_ConstantSeries(t *testing.T) {
	bars := series(make100s(252)...)

	for _, v := range []models.ForecastVariant{models.Momentum, models.MeanReversion} {
		preds, err := Generate(bars, v, 84, rng.New(5))
		require.NoError(t, err)
		for _, p := range preds {
			assert.Equal(t, 100.0, p.PredictedPrice, "%s", v)
		}
	}

	preds, err := Generate(bars, models.Blended, 84, rng.New(5))
	require.NoError(t, err)
	for _, p := range preds {
		assert.InEpsilon(t, 100.0, p.PredictedPrice, 0.03)
	}
}

func make100s(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100
	}
	return out
}

func TestGenerate_Deterministic(t *testing.T) {
	bars := noisy(60, 3)
	for _, v := range models.Variants() {
		a, err := Generate(bars, v, 20, rng.New(11))
		require.NoError(t, err)
		b, err := Generate(bars, v, 20, rng.New(11))
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestGenerate_CrashStaysPositive(t *testing.T) {
	bars := linear(100, 1000, -9.9)
	for _, v := range models.Variants() {
		preds, err := Generate(bars, v, 120, rng.New(2))
		require.NoError(t, err)
		for _, p := range preds {
			assert.GreaterOrEqual(t, p.PredictedPrice, MinPrice)
		}
	}
}

func TestGenerate_FollowsTrend(t *testing.T) {
	bars := linear(90, 100, 1)
	for _, v := range []models.ForecastVariant{models.Momentum, models.Blended} {
		preds, err := Generate(bars, v, 10, &rng.Fixed{Values: []float64{0.5}})
		require.NoError(t, err)
		assert.Greater(t, preds[9].PredictedPrice, 189.0, "%s", v)
	}
}

func TestGenerate_Errors(t *testing.T) {
	bars := linear(10, 100, 1)
	tests := []struct {
		name    string
		bars    []models.HistoricalBar
		variant models.ForecastVariant
		horizon int
		src     rng.Source
		want    error
	}{
		{"zero horizon", bars, models.Momentum, 0, rng.New(1), models.ErrInvalidParameter},
		{"negative horizon", bars, models.Blended, -3, rng.New(1), models.ErrInvalidParameter},
		{"unknown variant", bars, models.ForecastVariant("arima"), 5, rng.New(1), models.ErrInvalidParameter},
		{"empty history", nil, models.MeanReversion, 5, rng.New(1), models.ErrInsufficientData},
		{"nil source", bars, models.Momentum, 5, nil, models.ErrInvalidParameter},
		{"zero last close", series(10, 0), models.Momentum, 5, rng.New(1), models.ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator().Generate(tt.bars, tt.variant, tt.horizon, tt.src)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGenerate_SingleBar(t *testing.T) {
	preds, err := Generate(series(50), models.MeanReversion, 3, rng.New(1))
	require.NoError(t, err)
	for _, p := range preds {
		assert.Equal(t, 50.0, p.PredictedPrice)
	}
}

func TestGenerate_MomentumWeightIsFixed(t *testing.T) {
	bars := linear(90, 100, 1)
	last := 189.0
	drift := 0.8 / last

	// a draw at the shock centre removes the random term
	preds, err := Generate(bars, models.Momentum, 30, &rng.Fixed{Values: []float64{0.48}})
	require.NoError(t, err)

	prev := last
	for i, p := range preds {
		dev := (prev - last) / last
		want := prev * (1 + drift + 0.05*dev)
		assert.InEpsilon(t, want, p.PredictedPrice, 1e-9, "day %d", i+1)
		prev = p.PredictedPrice
	}
}

func TestGenerate_BlendedUsesRawSlope(t *testing.T) {
	bars := linear(90, 100, 1)
	preds, err := Generate(bars, models.Blended, 1, &rng.Fixed{Values: []float64{0.49}})
	require.NoError(t, err)

	want := 189 * (1 + 0.003 + 0.01*(9.0/180) + 0.002*math.Sin(0.2))
	assert.InEpsilon(t, want, preds[0].PredictedPrice, 1e-9)
}

func TestGenerate_OverflowStaysFinite(t *testing.T) {
	preds, err := Generate(series(1, 1e300), models.Blended, 5, rng.New(1))
	require.NoError(t, err)
	for _, p := range preds {
		assert.False(t, math.IsInf(p.PredictedPrice, 0) || math.IsNaN(p.PredictedPrice))
		assert.Equal(t, 1e300, p.PredictedPrice)
	}
}
