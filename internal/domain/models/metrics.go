package models

// Metrics are accuracy and risk figures derived from a prediction list.
type Metrics struct {
	MAE         float64 `json:"mae"`
	RMSE        float64 `json:"rmse"`
	MAPE        float64 `json:"mape"`
	R2          float64 `json:"r2"`
	SharpeRatio float64 `json:"sharpeRatio"`
	Volatility  float64 `json:"volatility"`
	MaxDrawdown float64 `json:"maxDrawdown"`
}

// BacktestSummary condenses the paired part of a backtest.
type BacktestSummary struct {
	Paired          int     `json:"paired"`
	Accuracy        float64 `json:"accuracy"`        // % of pairs within tolerance
	AvgErrorPercent float64 `json:"avgErrorPercent"` // mean |pred-actual|/actual * 100
}
