package models

import "time"

// Prediction is one forecast day. ActualPrice is only set by backtests.
type Prediction struct {
	Date           time.Time `json:"date"`
	PredictedPrice float64   `json:"predictedPrice"`
	ActualPrice    *float64  `json:"actualPrice,omitempty"`
	Confidence     float64   `json:"confidence"`
}

// HasActual reports whether the prediction is paired with an observed close.
func (p Prediction) HasActual() bool { return p.ActualPrice != nil }

// ForecastVariant selects a recurrence. Values double as the public model labels.
type ForecastVariant string

const (
	Momentum      ForecastVariant = "lstm"
	MeanReversion ForecastVariant = "gru"
	Blended       ForecastVariant = "transformer"
)

// Variants lists every supported variant in display order.
func Variants() []ForecastVariant {
	return []ForecastVariant{Momentum, MeanReversion, Blended}
}

// IsValid returns true if v is a known variant.
func (v ForecastVariant) IsValid() bool {
	switch v {
	case Momentum, MeanReversion, Blended:
		return true
	default:
		return false
	}
}

// Name is the human readable label.
func (v ForecastVariant) Name() string {
	switch v {
	case Momentum:
		return "LSTM (momentum)"
	case MeanReversion:
		return "GRU (mean reversion)"
	case Blended:
		return "Transformer (blended)"
	default:
		return string(v)
	}
}
