package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
)

func TestBarsUseCase_CachesProviderResult(t *testing.T) {
	f := newFixture(sampleBars(60))
	ctx := context.Background()

	s, err := f.bars.Load(ctx, " aapl ", "")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", s.Symbol)
	assert.Equal(t, domrepo.Period1y, s.Period)
	assert.Equal(t, SourceProvider, s.Source)
	assert.Len(t, s.Bars, 60)

	s, err = f.bars.Load(ctx, "AAPL", "1y")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, s.Source)
	assert.Equal(t, 1, f.provider.calls)

	archived, _ := f.archive.LoadBars(ctx, "AAPL", domrepo.Period1y)
	assert.Len(t, archived, 60)
}

func TestBarsUseCase_ArchiveFallback(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	require.NoError(t, f.archive.StoreBars(ctx, "MSFT", domrepo.Period6mo, sampleBars(10)))
	f.provider.err = errUpstream

	s, err := f.bars.Load(ctx, "msft", "6mo")
	require.NoError(t, err)
	assert.Equal(t, SourceArchive, s.Source)
	assert.Len(t, s.Bars, 10)

	_, err = f.bars.Load(ctx, "IBM", "6mo")
	assert.ErrorIs(t, err, errUpstream)
}

func TestBarsUseCase_NotFoundIsNotMasked(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	require.NoError(t, f.archive.StoreBars(ctx, "ZZZZ", domrepo.Period1y, sampleBars(10)))
	f.provider.err = fmt.Errorf("%w: ZZZZ", models.ErrSymbolNotFound)

	_, err := f.bars.Load(ctx, "ZZZZ", "1y")
	assert.ErrorIs(t, err, models.ErrSymbolNotFound)
}

func TestBarsUseCase_RejectsBadInput(t *testing.T) {
	f := newFixture(sampleBars(10))
	_, err := f.bars.Load(context.Background(), "  ", "1y")
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	_, err = f.bars.Load(context.Background(), "AAPL", "10y")
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
	assert.Zero(t, f.provider.calls)
}

func TestBarsUseCase_History(t *testing.T) {
	f := newFixture(sampleBars(60))
	h, err := f.bars.History(context.Background(), "AAPL", "1y")
	require.NoError(t, err)
	assert.Len(t, h.Indicators.SMA20, 41)
	assert.Len(t, h.Indicators.SMA50, 11)
	assert.Len(t, h.Indicators.EMA12, 60)
	assert.Len(t, h.Indicators.RSI14, 46)
}
