package models

import "time"

// Engine operation names used in events, metrics and logs.
const (
	OpForecast = "forecast"
	OpBacktest = "backtest"
	OpSimulate = "simulate"
	OpVaR      = "var"
	OpRisk     = "risk"
)

// RunEvent is published after every engine run.
type RunEvent struct {
	RunID     string             `json:"runId"`
	Op        string             `json:"op"`
	Symbol    string             `json:"symbol"`
	Variant   string             `json:"variant,omitempty"`
	Values    map[string]float64 `json:"values,omitempty"`
	Error     string             `json:"error,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

// SimulationJob asks a worker to run a Monte Carlo simulation asynchronously.
type SimulationJob struct {
	JobID       string `json:"jobId"`
	Symbol      string `json:"symbol"`
	Period      string `json:"period"`
	Days        *int   `json:"days"` // nil means the default horizon; 0 is a valid request
	Simulations int    `json:"simulations"`
	Visible     int    `json:"visible"`
	Seed        int64  `json:"seed"`
	Shock       string `json:"shock"`
}
