package models

import "time"

// HistoricalBar is one OHLCV record. Series are expected sorted ascending by
// date without duplicates; the engine never re-sorts.
type HistoricalBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Closes extracts the close column.
func Closes(bars []HistoricalBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
