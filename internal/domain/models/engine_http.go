package models

// Requests for engine HTTP endpoints. Defined in domain for consistency and reuse.

type BarsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Period string `query:"period" json:"period" default:"1y" validate:"oneof=1mo 3mo 6mo 1y 2y 5y"`
}

type ForecastRequest struct {
	Symbol  string `query:"symbol" json:"symbol" validate:"required"`
	Period  string `query:"period" json:"period" default:"1y" validate:"oneof=1mo 3mo 6mo 1y 2y 5y"`
	Variant string `query:"variant" json:"variant" default:"lstm" validate:"oneof=lstm gru transformer"`
	Horizon int    `query:"horizon" json:"horizon" default:"30" validate:"gte=1,lte=365"`
	Seed    int64  `query:"seed" json:"seed"`
}

type CompareRequest struct {
	Symbol  string `query:"symbol" json:"symbol" validate:"required"`
	Period  string `query:"period" json:"period" default:"1y" validate:"oneof=1mo 3mo 6mo 1y 2y 5y"`
	Horizon int    `query:"horizon" json:"horizon" default:"30" validate:"gte=1,lte=365"`
	Seed    int64  `query:"seed" json:"seed"`
}

// TestDays is bounded by a third of the history; the harness enforces that.
type BacktestRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	Period   string `query:"period" json:"period" default:"1y" validate:"oneof=1mo 3mo 6mo 1y 2y 5y"`
	Variant  string `query:"variant" json:"variant" default:"lstm" validate:"oneof=lstm gru transformer"`
	TestDays int    `query:"testDays" json:"testDays" default:"30" validate:"gte=1"`
	Seed     int64  `query:"seed" json:"seed"`
}

type SimulateRequest struct {
	Symbol      string `query:"symbol" json:"symbol" validate:"required"`
	Period      string `query:"period" json:"period" default:"1y" validate:"oneof=1mo 3mo 6mo 1y 2y 5y"`
	Days        int    `query:"days" json:"days" default:"30" validate:"gte=0,lte=2520"`
	Simulations int    `query:"simulations" json:"simulations" default:"1000" validate:"gte=1,lte=5000"`
	Visible     int    `query:"visible" json:"visible" default:"100" validate:"gte=0,lte=100"`
	Seed        int64  `query:"seed" json:"seed"`
	Shock       string `query:"shock" json:"shock" default:"gaussian" validate:"oneof=gaussian uniform"`
}

// Levels is a comma separated list such as "95,99"; empty means the configured defaults.
type VarRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Period string `query:"period" json:"period" default:"1y" validate:"oneof=1mo 3mo 6mo 1y 2y 5y"`
	Levels string `query:"levels" json:"levels"`
}

type RiskRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Period string `query:"period" json:"period" default:"1y" validate:"oneof=1mo 3mo 6mo 1y 2y 5y"`
}
