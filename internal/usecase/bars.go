package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/services/features"
	"StockCast/pkg/cache"
	"StockCast/pkg/logger"
	"StockCast/pkg/util"
)

// Bar sources reported with each series.
const (
	SourceCache    = "cache"
	SourceProvider = "provider"
	SourceArchive  = "archive"
)

// BarsUseCase resolves a bar series from cache, the provider, and finally
// the archive when the provider is unavailable.
type BarsUseCase struct {
	provider domrepo.BarProvider
	cache    cache.Service
	archive  domrepo.BarArchive // optional
	ttl      time.Duration
	log      *logger.Logger
}

func NewBarsUseCase(provider domrepo.BarProvider, c cache.Service, archive domrepo.BarArchive, ttl time.Duration, log *logger.Logger) *BarsUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &BarsUseCase{provider: provider, cache: c, archive: archive, ttl: ttl, log: log}
}

type Series struct {
	Symbol string
	Period domrepo.Period
	Source string
	Bars   []models.HistoricalBar
}

// Load returns the bar series for symbol. Symbols are normalised to upper case.
func (uc *BarsUseCase) Load(ctx context.Context, symbol, period string) (*Series, error) {
	sym := util.NormalizeSymbol(symbol)
	if sym == "" {
		return nil, models.InvalidParam("symbol", "required")
	}
	p := domrepo.Period(period)
	if period == "" {
		p = domrepo.DefaultPeriod()
	}
	if !domrepo.IsValidPeriod(p) {
		return nil, models.InvalidParam("period", "unsupported period %q", period)
	}
	key := cache.Key("bars", sym, string(p))

	if uc.cache != nil {
		bars, err := cache.GetJSON[[]models.HistoricalBar](ctx, uc.cache, key)
		if err == nil && len(bars) > 0 {
			return &Series{Symbol: sym, Period: p, Source: SourceCache, Bars: bars}, nil
		}
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			uc.log.Warn("bar cache read failed", logger.String("key", key), logger.Error(err))
		}
	}

	bars, err := uc.provider.GetBars(ctx, sym, p)
	if err == nil {
		uc.remember(ctx, key, sym, p, bars)
		return &Series{Symbol: sym, Period: p, Source: SourceProvider, Bars: bars}, nil
	}
	if errors.Is(err, models.ErrSymbolNotFound) || uc.archive == nil || ctx.Err() != nil {
		return nil, err
	}

	archived, aerr := uc.archive.LoadBars(ctx, sym, p)
	if aerr != nil || len(archived) == 0 {
		if aerr != nil {
			uc.log.Error("bar archive fallback failed", logger.String("symbol", sym), logger.Error(aerr))
		}
		return nil, fmt.Errorf("load bars %s: %w", sym, err)
	}
	uc.log.Warn("provider unavailable, serving archived bars",
		logger.String("symbol", sym),
		logger.Int("bars", len(archived)),
		logger.Error(err),
	)
	return &Series{Symbol: sym, Period: p, Source: SourceArchive, Bars: archived}, nil
}

func (uc *BarsUseCase) remember(ctx context.Context, key, sym string, p domrepo.Period, bars []models.HistoricalBar) {
	if uc.cache != nil {
		if err := cache.SetJSON(ctx, uc.cache, key, bars, uc.ttl); err != nil {
			uc.log.Warn("bar cache write failed", logger.String("key", key), logger.Error(err))
		}
	}
	if uc.archive != nil {
		if err := uc.archive.StoreBars(ctx, sym, p, bars); err != nil {
			uc.log.Warn("bar archive write failed", logger.String("symbol", sym), logger.Error(err))
		}
	}
}

// Indicators are the chart overlays served next to a series. Entries before
// an indicator has enough history are omitted from the front.
type Indicators struct {
	SMA20 []float64 `json:"sma20"`
	SMA50 []float64 `json:"sma50"`
	EMA12 []float64 `json:"ema12"`
	EMA26 []float64 `json:"ema26"`
	RSI14 []float64 `json:"rsi14"`
}

// History is a series plus its indicators.
type History struct {
	*Series
	Indicators Indicators
}

func (uc *BarsUseCase) History(ctx context.Context, symbol, period string) (*History, error) {
	s, err := uc.Load(ctx, symbol, period)
	if err != nil {
		return nil, err
	}
	closes := models.Closes(s.Bars)
	return &History{
		Series: s,
		Indicators: Indicators{
			SMA20: features.SMA(closes, 20),
			SMA50: features.SMA(closes, 50),
			EMA12: features.EMA(closes, 12),
			EMA26: features.EMA(closes, 26),
			RSI14: features.RSI(closes, 14),
		},
	}, nil
}
