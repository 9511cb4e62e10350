package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/services/backtest"
	"StockCast/internal/services/forecast"
	"StockCast/internal/services/montecarlo"
	"StockCast/internal/services/risk"
	"StockCast/pkg/cache"
)

var errUpstream = errors.New("upstream unavailable")

type stubProvider struct {
	mu    sync.Mutex
	bars  []models.HistoricalBar
	err   error
	calls int
}

func (p *stubProvider) GetBars(_ context.Context, _ string, _ domrepo.Period) ([]models.HistoricalBar, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.bars, nil
}

type memArchive struct {
	mu   sync.Mutex
	data map[string][]models.HistoricalBar
}

func newMemArchive() *memArchive { return &memArchive{data: map[string][]models.HistoricalBar{}} }

func (a *memArchive) Init(context.Context) error { return nil }

func (a *memArchive) StoreBars(_ context.Context, symbol string, period domrepo.Period, bars []models.HistoricalBar) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.data[symbol+"/"+string(period)] = bars
	return nil
}

func (a *memArchive) LoadBars(_ context.Context, symbol string, period domrepo.Period) ([]models.HistoricalBar, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.data[symbol+"/"+string(period)], nil
}

func (a *memArchive) Health(context.Context) error { return nil }
func (a *memArchive) Close() error                 { return nil }

type recordingEvents struct {
	mu     sync.Mutex
	events []models.RunEvent
}

func (r *recordingEvents) PublishRun(_ context.Context, ev *models.RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *ev)
	return nil
}

func (r *recordingEvents) Close() error { return nil }

func (r *recordingEvents) last() models.RunEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type recordingMetrics struct {
	mu     sync.Mutex
	runs   []string
	errors []string
}

func (m *recordingMetrics) RecordRun(op, variant string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, op+"/"+variant)
}

func (m *recordingMetrics) RecordError(op, kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, op+"/"+kind)
}

func (m *recordingMetrics) RecordLatency(string, float64)  {}
func (m *recordingMetrics) RecordCacheLookup(string, bool) {}

// sampleBars is a gently rising daily series with a small oscillation.
func sampleBars(n int) []models.HistoricalBar {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]models.HistoricalBar, n)
	for i := range n {
		c := 100 + 0.3*float64(i) + 2*math.Sin(float64(i)/3)
		out[i] = models.HistoricalBar{Date: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1e6}
	}
	return out
}

type fixture struct {
	provider *stubProvider
	archive  *memArchive
	events   *recordingEvents
	metrics  *recordingMetrics
	bars     *BarsUseCase
	runs     *RunTracker
	forecast *ForecastUseCase
	backtest *BacktestUseCase
	simulate *SimulationUseCase
	risk     *RiskUseCase
}

func newFixture(bars []models.HistoricalBar) *fixture {
	f := &fixture{
		provider: &stubProvider{bars: bars},
		archive:  newMemArchive(),
		events:   &recordingEvents{},
		metrics:  &recordingMetrics{},
	}
	f.bars = NewBarsUseCase(f.provider, cache.NewLayeredCache(cache.NewMemoryCache(), nil, nil), f.archive, time.Minute, nil)
	f.runs = NewRunTracker(f.events, f.metrics, nil)
	gen := forecast.NewGenerator()
	harness := backtest.NewHarness(gen)
	f.forecast = NewForecastUseCase(f.bars, gen, harness, f.runs)
	f.backtest = NewBacktestUseCase(f.bars, harness, f.runs)
	f.simulate = NewSimulationUseCase(f.bars, montecarlo.NewSimulator(montecarlo.WithWorkers(2)), f.runs, 0, time.Minute)
	f.risk = NewRiskUseCase(f.bars, risk.NewAnalyzer(), f.runs, risk.DefaultLevels)
	return f
}
