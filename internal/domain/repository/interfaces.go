package repository

import (
	"context"

	"StockCast/internal/domain/models"
)

// BarProvider supplies a chronologically ordered, de-duplicated bar series.
type BarProvider interface {
	GetBars(ctx context.Context, symbol string, period Period) ([]models.HistoricalBar, error)
}

// BarArchive persists fetched bars so they can be served when the provider fails.
type BarArchive interface {
	Init(ctx context.Context) error
	StoreBars(ctx context.Context, symbol string, period Period, bars []models.HistoricalBar) error
	LoadBars(ctx context.Context, symbol string, period Period) ([]models.HistoricalBar, error)
	Health(ctx context.Context) error
	Close() error
}

// EventPublisher emits run events to downstream consumers.
type EventPublisher interface {
	PublishRun(ctx context.Context, ev *models.RunEvent) error
	Close() error
}

// Metrics records engine level observations.
type Metrics interface {
	RecordRun(op, variant string)
	RecordError(op, kind string)
	RecordLatency(op string, seconds float64)
	RecordCacheLookup(layer string, hit bool)
}
