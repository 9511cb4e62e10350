package api

import (
	"math"

	"github.com/shopspring/decimal"

	"StockCast/internal/domain/models"
	"StockCast/internal/usecase"
)

// Prices are rounded to cents and ratios to 4 places on the way out only;
// the engine keeps full precision.
const (
	pricePlaces = 2
	ratioPlaces = 4
)

func round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

func roundAll(xs []float64, places int32) []float64 {
	if xs == nil {
		return nil
	}
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = round(x, places)
	}
	return out
}

const dateLayout = "2006-01-02"

type BarDTO struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

type BarsResponse struct {
	Symbol     string             `json:"symbol"`
	Period     string             `json:"period"`
	Interval   string             `json:"interval"`
	Source     string             `json:"source"`
	Count      int                `json:"count"`
	Bars       []BarDTO           `json:"bars"`
	Indicators usecase.Indicators `json:"indicators"`
}

func toBarsResponse(h *usecase.History) BarsResponse {
	bars := make([]BarDTO, len(h.Bars))
	for i, b := range h.Bars {
		bars[i] = BarDTO{
			Date:   b.Date.Format(dateLayout),
			Open:   round(b.Open, pricePlaces),
			High:   round(b.High, pricePlaces),
			Low:    round(b.Low, pricePlaces),
			Close:  round(b.Close, pricePlaces),
			Volume: b.Volume,
		}
	}
	ind := h.Indicators
	return BarsResponse{
		Symbol:   h.Symbol,
		Period:   string(h.Period),
		Interval: h.Period.Interval(),
		Source:   h.Source,
		Count:    len(bars),
		Bars:     bars,
		Indicators: usecase.Indicators{
			SMA20: roundAll(ind.SMA20, pricePlaces),
			SMA50: roundAll(ind.SMA50, pricePlaces),
			EMA12: roundAll(ind.EMA12, pricePlaces),
			EMA26: roundAll(ind.EMA26, pricePlaces),
			RSI14: roundAll(ind.RSI14, ratioPlaces),
		},
	}
}

type PredictionDTO struct {
	Date           string   `json:"date"`
	PredictedPrice float64  `json:"predictedPrice"`
	ActualPrice    *float64 `json:"actualPrice,omitempty"`
	Confidence     float64  `json:"confidence"`
}

func toPredictions(preds []models.Prediction) []PredictionDTO {
	out := make([]PredictionDTO, len(preds))
	for i, p := range preds {
		out[i] = PredictionDTO{
			Date:           p.Date.Format(dateLayout),
			PredictedPrice: round(p.PredictedPrice, pricePlaces),
			Confidence:     round(p.Confidence, ratioPlaces),
		}
		if p.ActualPrice != nil {
			a := round(*p.ActualPrice, pricePlaces)
			out[i].ActualPrice = &a
		}
	}
	return out
}

func roundMetrics(m models.Metrics) models.Metrics {
	return models.Metrics{
		MAE:         round(m.MAE, ratioPlaces),
		RMSE:        round(m.RMSE, ratioPlaces),
		MAPE:        round(m.MAPE, ratioPlaces),
		R2:          round(m.R2, ratioPlaces),
		SharpeRatio: round(m.SharpeRatio, ratioPlaces),
		Volatility:  round(m.Volatility, ratioPlaces),
		MaxDrawdown: round(m.MaxDrawdown, ratioPlaces),
	}
}

func roundSummary(s models.BacktestSummary) models.BacktestSummary {
	return models.BacktestSummary{
		Paired:          s.Paired,
		Accuracy:        round(s.Accuracy, ratioPlaces),
		AvgErrorPercent: round(s.AvgErrorPercent, ratioPlaces),
	}
}

type ForecastResponse struct {
	RunID       string          `json:"runId"`
	Symbol      string          `json:"symbol"`
	Variant     string          `json:"variant"`
	ModelName   string          `json:"modelName"`
	Seed        int64           `json:"seed"`
	Source      string          `json:"source"`
	LastClose   float64         `json:"lastClose"`
	Predictions []PredictionDTO `json:"predictions"`
}

func toForecastResponse(r *usecase.ForecastResult) ForecastResponse {
	return ForecastResponse{
		RunID:       r.RunID,
		Symbol:      r.Symbol,
		Variant:     string(r.Variant),
		ModelName:   r.Variant.Name(),
		Seed:        r.Seed,
		Source:      r.Source,
		LastClose:   round(r.LastClose, pricePlaces),
		Predictions: toPredictions(r.Predictions),
	}
}

type VariantDTO struct {
	Variant     string                  `json:"variant"`
	ModelName   string                  `json:"modelName"`
	Predictions []PredictionDTO         `json:"predictions"`
	Metrics     *models.Metrics         `json:"metrics,omitempty"`
	Summary     *models.BacktestSummary `json:"summary,omitempty"`
}

type CompareResponse struct {
	RunID  string       `json:"runId"`
	Symbol string       `json:"symbol"`
	Seed   int64        `json:"seed"`
	Source string       `json:"source"`
	Models []VariantDTO `json:"models"`
}

func toCompareResponse(r *usecase.CompareResult) CompareResponse {
	out := CompareResponse{RunID: r.RunID, Symbol: r.Symbol, Seed: r.Seed, Source: r.Source}
	for _, v := range r.Variants {
		dto := VariantDTO{Variant: string(v.Variant), ModelName: v.Variant.Name(), Predictions: toPredictions(v.Predictions)}
		if v.Metrics != nil {
			m := roundMetrics(*v.Metrics)
			dto.Metrics = &m
		}
		if v.Summary != nil {
			s := roundSummary(*v.Summary)
			dto.Summary = &s
		}
		out.Models = append(out.Models, dto)
	}
	return out
}

type BacktestResponse struct {
	RunID       string                 `json:"runId"`
	Symbol      string                 `json:"symbol"`
	Variant     string                 `json:"variant"`
	Seed        int64                  `json:"seed"`
	Source      string                 `json:"source"`
	TestDays    int                    `json:"testDays"`
	Predictions []PredictionDTO        `json:"predictions"`
	Metrics     models.Metrics         `json:"metrics"`
	Summary     models.BacktestSummary `json:"summary"`
}

func toBacktestResponse(r *usecase.BacktestResult) BacktestResponse {
	return BacktestResponse{
		RunID:       r.RunID,
		Symbol:      r.Symbol,
		Variant:     string(r.Variant),
		Seed:        r.Seed,
		Source:      r.Source,
		TestDays:    r.TestDays,
		Predictions: toPredictions(r.Predictions),
		Metrics:     roundMetrics(r.Metrics),
		Summary:     roundSummary(r.Summary),
	}
}

type SimulateResponse struct {
	RunID           string                `json:"runId"`
	Symbol          string                `json:"symbol"`
	Seed            int64                 `json:"seed"`
	Source          string                `json:"source"`
	CurrentPrice    float64               `json:"currentPrice"`
	DailyDrift      float64               `json:"dailyDrift"`
	DailyVolatility float64               `json:"dailyVolatility"`
	Trials          int                   `json:"trials"`
	Days            int                   `json:"days"`
	Paths           [][]float64           `json:"paths"`
	Stats           models.RiskStatistics `json:"stats"`
}

func toSimulateResponse(r *usecase.SimulateResult) SimulateResponse {
	res := r.Result
	paths := make([][]float64, len(res.Paths))
	for i, p := range res.Paths {
		paths[i] = roundAll(p, pricePlaces)
	}
	st := res.Stats
	hist := make([]models.HistogramBin, len(st.Histogram))
	for i, b := range st.Histogram {
		hist[i] = models.HistogramBin{Lower: round(b.Lower, pricePlaces), Upper: round(b.Upper, pricePlaces), Count: b.Count}
	}
	return SimulateResponse{
		RunID:           r.RunID,
		Symbol:          r.Symbol,
		Seed:            r.Seed,
		Source:          r.Source,
		CurrentPrice:    round(r.CurrentPrice, pricePlaces),
		DailyDrift:      round(r.DailyDrift, 6),
		DailyVolatility: round(r.DailyVolatility, 6),
		Trials:          res.Trials,
		Days:            res.Days,
		Paths:           paths,
		Stats: models.RiskStatistics{
			Mean:      round(st.Mean, pricePlaces),
			Median:    round(st.Median, pricePlaces),
			P5:        round(st.P5, pricePlaces),
			P25:       round(st.P25, pricePlaces),
			P50:       round(st.P50, pricePlaces),
			P75:       round(st.P75, pricePlaces),
			P95:       round(st.P95, pricePlaces),
			Min:       round(st.Min, pricePlaces),
			Max:       round(st.Max, pricePlaces),
			Histogram: hist,
		},
	}
}

type VarResponse struct {
	RunID   string             `json:"runId"`
	Symbol  string             `json:"symbol"`
	Source  string             `json:"source"`
	Returns int                `json:"returns"`
	Results []models.VarResult `json:"results"`
}

func toVarResponse(r *usecase.VaRResult) VarResponse {
	results := make([]models.VarResult, len(r.Results))
	for i, v := range r.Results {
		results[i] = models.VarResult{
			ConfidenceLevel: v.ConfidenceLevel,
			VaR:             round(v.VaR, ratioPlaces),
			CVaR:            round(v.CVaR, ratioPlaces),
			Sufficient:      v.Sufficient,
		}
	}
	return VarResponse{RunID: r.RunID, Symbol: r.Symbol, Source: r.Source, Returns: r.Returns, Results: results}
}

type RiskResponse struct {
	RunID  string `json:"runId"`
	Symbol string `json:"symbol"`
	Source string `json:"source"`
	models.RiskProfile
}

func toRiskResponse(r *usecase.ProfileResult) RiskResponse {
	p := r.Profile
	return RiskResponse{
		RunID:  r.RunID,
		Symbol: r.Symbol,
		Source: r.Source,
		RiskProfile: models.RiskProfile{
			AnnualizedVolatility: round(p.AnnualizedVolatility, ratioPlaces),
			AnnualizedReturn:     round(p.AnnualizedReturn, ratioPlaces),
			SharpeRatio:          round(p.SharpeRatio, ratioPlaces),
			SortinoRatio:         round(p.SortinoRatio, ratioPlaces),
			MaxDrawdown:          round(p.MaxDrawdown, ratioPlaces),
			Drawdowns:            roundAll(p.Drawdowns, ratioPlaces),
		},
	}
}
