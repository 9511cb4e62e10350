package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/pkg/logger"
	"StockCast/pkg/util"
)

// RunTracker stamps engine runs with an id, records metrics and publishes
// a RunEvent once the run finishes.
type RunTracker struct {
	events  domrepo.EventPublisher
	metrics domrepo.Metrics
	log     *logger.Logger
	now     func() time.Time
}

func NewRunTracker(events domrepo.EventPublisher, metrics domrepo.Metrics, log *logger.Logger) *RunTracker {
	if log == nil {
		log = logger.Nop()
	}
	return &RunTracker{events: events, metrics: metrics, log: log, now: time.Now}
}

// Run is one tracked engine invocation.
type Run struct {
	t       *RunTracker
	id      string
	op      string
	symbol  string
	variant string
	start   time.Time
}

// Start opens a run under the normalized symbol. An empty id gets a fresh UUID.
func (t *RunTracker) Start(op, symbol, variant, id string) *Run {
	if id == "" {
		id = uuid.NewString()
	}
	return &Run{t: t, id: id, op: op, symbol: util.NormalizeSymbol(symbol), variant: variant, start: t.now()}
}

func (r *Run) ID() string { return r.id }

// Finish records the outcome. Publishing failures are logged, never returned.
func (r *Run) Finish(ctx context.Context, values map[string]float64, err error) {
	t := r.t
	if t.metrics != nil {
		t.metrics.RecordLatency(r.op, t.now().Sub(r.start).Seconds())
		if err != nil {
			t.metrics.RecordError(r.op, ErrorKind(err))
		} else {
			t.metrics.RecordRun(r.op, r.variant)
		}
	}
	if t.events == nil {
		return
	}

	ev := &models.RunEvent{
		RunID:     r.id,
		Op:        r.op,
		Symbol:    r.symbol,
		Variant:   r.variant,
		Values:    values,
		CreatedAt: t.now().UTC(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	// The request may already be cancelled; the event still goes out.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if perr := t.events.PublishRun(pubCtx, ev); perr != nil {
		t.log.Warn("publish run event failed",
			logger.String("run_id", r.id),
			logger.String("op", r.op),
			logger.Error(perr),
		)
	}
}

// ErrorKind classifies err for metrics labels.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, models.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, models.ErrSymbolNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}

// resolveSeed keeps an explicit seed and draws a fresh one for zero.
func resolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}
