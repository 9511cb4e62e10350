package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"StockCast/internal/domain/models"
	drepo "StockCast/internal/domain/repository"
	"StockCast/internal/service/metrics"
	"StockCast/internal/service/ratelimit"
	pkghttp "StockCast/pkg/http"
	"StockCast/pkg/logger"
	"StockCast/pkg/util"
)

const source = "yahoo"

// Config configures the chart client.
type Config struct {
	BaseURL    string
	UserAgent  string
	RatePerSec float64
}

// Client implements BarProvider over the Yahoo Finance chart v8 endpoint.
type Client struct {
	cfg     Config
	http    *pkghttp.Client
	limiter *ratelimit.Limiter
	log     *logger.Logger
}

var _ drepo.BarProvider = (*Client)(nil)

func New(cfg Config, hc *pkghttp.Client, limiter *ratelimit.Limiter, log *logger.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if log == nil {
		log = logger.Nop()
	}
	return &Client{cfg: cfg, http: hc, limiter: limiter, log: log}
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// GetBars fetches the daily (weekly beyond a year) history for symbol.
func (c *Client) GetBars(ctx context.Context, symbol string, period drepo.Period) ([]models.HistoricalBar, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, source, max(1, c.cfg.RatePerSec), c.cfg.RatePerSec); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	var resp chartResponse
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		URL:     c.cfg.BaseURL + "/v8/finance/chart/" + url.PathEscape(symbol),
		Headers: map[string]string{"User-Agent": c.cfg.UserAgent, "Accept": "application/json"},
		Query:   url.Values{"range": {string(period)}, "interval": {period.Interval()}},
	}, &resp)
	metrics.ProviderLatency.WithLabelValues(source).Observe(time.Since(start).Seconds())

	if err != nil {
		var se *pkghttp.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", models.ErrSymbolNotFound, symbol)
		}
		metrics.ProviderErrors.WithLabelValues(source).Inc()
		c.log.Error("yahoo fetch failed", logger.String("symbol", symbol), logger.String("period", string(period)), logger.Error(err))
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil || len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrSymbolNotFound, symbol)
	}

	bars := toBars(resp.Chart.Result[0])
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s has no priced bars", models.ErrSymbolNotFound, symbol)
	}
	c.log.Debug("yahoo bars fetched",
		logger.String("symbol", symbol),
		logger.Int("bars", len(bars)),
		logger.Duration("duration_ms", time.Since(start)),
	)
	return bars, nil
}

// toBars zips the column arrays, drops rows without a positive close and
// returns one bar per day in ascending order. Later rows win on duplicate days.
func toBars(r chartResult) []models.HistoricalBar {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	q := r.Indicators.Quote[0]
	at := func(col []*float64, i int) float64 {
		if i < len(col) && col[i] != nil {
			return *col[i]
		}
		return 0
	}

	out := make([]models.HistoricalBar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		b := models.HistoricalBar{
			Date:   util.UnixDay(ts),
			Open:   at(q.Open, i),
			High:   at(q.High, i),
			Low:    at(q.Low, i),
			Close:  at(q.Close, i),
			Volume: at(q.Volume, i),
		}
		if b.Close > 0 {
			out = append(out, b)
		}
	}

	slices.SortStableFunc(out, func(a, b models.HistoricalBar) int { return a.Date.Compare(b.Date) })
	deduped := out[:0]
	for _, b := range out {
		if n := len(deduped); n > 0 && deduped[n-1].Date.Equal(b.Date) {
			deduped[n-1] = b
			continue
		}
		deduped = append(deduped, b)
	}
	return slices.Clip(deduped)
}

