package montecarlo

import (
	"context"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/rng"
)

// DefaultChunkSize is the number of trials sharing one random stream.
const DefaultChunkSize = 256

type config struct {
	workers   int
	chunkSize int
	progress  func(done, total int)
}

// Option configures a simulation run.
type Option func(*config)

// WithWorkers bounds the number of goroutines. Values below 1 use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithChunkSize sets trials per random stream. Results depend on it, not on workers.
func WithChunkSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// WithProgress registers fn to be told how many trials have finished.
// Calls are serialized and done is strictly increasing.
func WithProgress(fn func(done, total int)) Option {
	return func(c *config) { c.progress = fn }
}

// Simulator carries default options for repeated runs.
type Simulator struct {
	defaults []Option
}

// NewSimulator returns a Simulator applying opts before per-call options.
func NewSimulator(opts ...Option) *Simulator {
	return &Simulator{defaults: opts}
}

// Run executes a simulation with the simulator's defaults.
func (s *Simulator) Run(ctx context.Context, p Params, opts ...Option) (*models.SimulationResult, error) {
	all := make([]Option, 0, len(s.defaults)+len(opts))
	all = append(all, s.defaults...)
	all = append(all, opts...)
	return Run(ctx, p, all...)
}

// Run simulates p.Simulations independent price paths over p.Days days.
//
// Trials are grouped in chunks, each drawing from rng.Stream(p.Seed, chunk),
// so the output for a given seed and chunk size does not depend on scheduling.
// Cancelling ctx aborts the run and returns ctx's error.
func Run(ctx context.Context, p Params, opts ...Option) (*models.SimulationResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cfg := config{workers: runtime.GOMAXPROCS(0), chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	n := p.Simulations
	visible := min(p.VisibleCap, n)
	width := p.Days + 1
	backing := make([]float64, visible*width)
	paths := make([][]float64, visible)
	for i := range paths {
		paths[i] = backing[i*width : (i+1)*width : (i+1)*width]
	}
	terminals := make([]float64, n)

	var (
		mu   sync.Mutex
		done int
	)
	report := func(k int) {
		if cfg.progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done += k
		cfg.progress(done, n)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for lo, chunk := 0, uint64(0); lo < n; lo, chunk = lo+cfg.chunkSize, chunk+1 {
		hi := min(lo+cfg.chunkSize, n)
		g.Go(func() error {
			src := rng.Stream(p.Seed, chunk)
			for t := lo; t < hi; t++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				var path []float64
				if t < visible {
					path = paths[t]
				}
				price, ok := trial(p, src, path)
				if !ok {
					return models.InvalidParam("dailyVolatility",
						"price path overflows with drift %v and volatility %v", p.DailyDrift, p.DailyVolatility)
				}
				terminals[t] = price
			}
			report(hi - lo)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.SimulationResult{
		Trials:    n,
		Days:      p.Days,
		Paths:     paths,
		Terminals: terminals,
		Stats:     Statistics(terminals, p.bins()),
	}, nil
}

// trial walks one path and returns its terminal price. path, when non-nil,
// receives every price including the start. ok is false once the price leaves
// the finite range.
func trial(p Params, src rng.Source, path []float64) (price float64, ok bool) {
	price = p.CurrentPrice
	if path != nil {
		path[0] = price
	}
	for d := 1; d <= p.Days; d++ {
		price *= 1 + p.DailyDrift + p.DailyVolatility*shock(p.Shock, src)
		if math.IsInf(price, 0) || math.IsNaN(price) {
			return 0, false
		}
		if price < 0 {
			price = 0
		}
		if path != nil {
			path[d] = price
		}
	}
	return price, true
}

func shock(m ShockModel, src rng.Source) float64 {
	if m == ShockUniform {
		return (src.Float64() - 0.5) * 2
	}
	return src.NormFloat64()
}
