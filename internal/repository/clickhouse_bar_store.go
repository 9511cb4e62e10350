package repository

import (
	"context"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	pkgch "StockCast/pkg/clickhouse"
	applogger "StockCast/pkg/logger"
)

// CHBarStore archives provider bars in ClickHouse. Rows are keyed by
// (symbol, period, date); re-storing a series replaces it on merge.
type CHBarStore struct {
	ch    *pkgch.Client
	table string
	l     *applogger.Logger
}

var _ domrepo.BarArchive = (*CHBarStore)(nil)

func NewCHBarStore(ch *pkgch.Client, table string, l *applogger.Logger) *CHBarStore {
	if table == "" {
		table = "bars"
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &CHBarStore{ch: ch, table: table, l: l}
}

func (s *CHBarStore) Init(ctx context.Context) error {
	ddl := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            symbol     LowCardinality(String),
            period     LowCardinality(String),
            date       Date,
            open       Float64,
            high       Float64,
            low        Float64,
            close      Float64,
            volume     Float64,
            updated_at DateTime DEFAULT now()
        ) ENGINE = ReplacingMergeTree(updated_at)
        ORDER BY (symbol, period, date)
    `, s.table)
	return s.ch.InitSchema(ctx, ddl)
}

func (s *CHBarStore) StoreBars(ctx context.Context, symbol string, period domrepo.Period, bars []models.HistoricalBar) error {
	if len(bars) == 0 {
		return nil
	}
	start := time.Now()

	tx, err := s.ch.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (symbol, period, date, open, high, low, close, volume)", s.table))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, string(period), b.Date, b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append bar: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		s.l.Error("clickhouse store_bars commit error",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return fmt.Errorf("commit batch: %w", err)
	}

	s.l.Debug("clickhouse store_bars ok",
		applogger.String("symbol", symbol),
		applogger.String("period", string(period)),
		applogger.Int("rows", len(bars)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

func (s *CHBarStore) LoadBars(ctx context.Context, symbol string, period domrepo.Period) ([]models.HistoricalBar, error) {
	q := fmt.Sprintf(`
        SELECT date, open, high, low, close, volume
        FROM %s FINAL
        WHERE symbol = ? AND period = ?
        ORDER BY date ASC
    `, s.table)
	rows, err := s.ch.DB().QueryContext(ctx, q, symbol, string(period))
	if err != nil {
		s.l.Error("clickhouse load_bars query error",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("load bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.HistoricalBar, 0, 256)
	for rows.Next() {
		var b models.HistoricalBar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Date = b.Date.UTC()
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHBarStore) Health(ctx context.Context) error { return s.ch.Health(ctx) }

func (s *CHBarStore) Close() error { return s.ch.Close() }
