package risk

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockCast/internal/domain/models"
)

// stratifiedNormal draws one normal quantile per equal-probability stratum and
// shuffles, so the empirical percentiles sit close to the theoretical ones.
func stratifiedNormal(n int, sigma float64, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		u := (float64(i) + 0.01 + 0.98*r.Float64()) / float64(n)
		out[i] = math.Sqrt2 * math.Erfinv(2*u-1) * sigma
	}
	r.Shuffle(n, func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func TestAnalyze_NormalTail(t *testing.T) {
	const sigma = 0.02
	returns := stratifiedNormal(1000, sigma, 2024)
	res, err := Analyze(returns, []float64{99})
	require.NoError(t, err)
	require.Len(t, res, 1)

	// first percentile of N(0, sigma) is -2.3263 sigma
	want := 2.3263 * sigma * 100
	assert.True(t, res[0].Sufficient)
	assert.InEpsilon(t, want, res[0].VaR, 0.10)
	assert.GreaterOrEqual(t, res[0].CVaR, res[0].VaR)
}

func TestAnalyze_Monotonic(t *testing.T) {
	returns := stratifiedNormal(1000, 0.015, 7)
	res, err := NewAnalyzer().Analyze(returns, DefaultLevels)
	require.NoError(t, err)
	require.Len(t, res, len(DefaultLevels))

	for i, r := range res {
		assert.Equal(t, DefaultLevels[i], r.ConfidenceLevel)
		assert.True(t, r.Sufficient)
		assert.GreaterOrEqual(t, r.CVaR, r.VaR)
		if i > 0 {
			assert.GreaterOrEqual(t, r.VaR, res[i-1].VaR)
		}
	}
}

func TestAnalyze_KnownSample(t *testing.T) {
	returns := []float64{0.06, -0.01, 0.02, -0.05, 0.03, -0.005, 0.04, -0.03, 0.05, 0.01}
	res, err := Analyze(returns, []float64{70})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res[0].VaR, 1e-9)
	assert.InDelta(t, 3.0, res[0].CVaR, 1e-9)
	// input untouched
	assert.Equal(t, 0.06, returns[0])
}

func TestAnalyze_InsufficientSample(t *testing.T) {
	returns := stratifiedNormal(50, 0.01, 1)
	res, err := Analyze(returns, []float64{95, 99.5})
	require.NoError(t, err)

	assert.True(t, res[0].Sufficient)
	assert.Equal(t, models.VarResult{ConfidenceLevel: 99.5}, res[1])
}

func TestAnalyze_Errors(t *testing.T) {
	for _, lvl := range []float64{0, 100, -5, 150, math.NaN()} {
		_, err := Analyze([]float64{0.01, -0.02}, []float64{95, lvl})
		assert.ErrorIs(t, err, models.ErrInvalidParameter, "level=%v", lvl)
	}
	_, err := Analyze(nil, DefaultLevels)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}
