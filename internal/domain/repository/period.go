package repository

// Period is the lookback window requested from a bar provider.
type Period string

const (
	Period1mo Period = "1mo"
	Period3mo Period = "3mo"
	Period6mo Period = "6mo"
	Period1y  Period = "1y"
	Period2y  Period = "2y"
	Period5y  Period = "5y"
)

// IsValidPeriod returns true if p is a supported lookback.
func IsValidPeriod(p Period) bool {
	switch p {
	case Period1mo, Period3mo, Period6mo, Period1y, Period2y, Period5y:
		return true
	default:
		return false
	}
}

// DefaultPeriod returns the default lookback.
func DefaultPeriod() Period { return Period1y }

// NormalizePeriod converts raw string to a valid period (or default).
func NormalizePeriod(s string) Period {
	if s == "" {
		return DefaultPeriod()
	}
	p := Period(s)
	if IsValidPeriod(p) {
		return p
	}
	return DefaultPeriod()
}

// Interval is the bar resolution used for the period: daily up to a year, weekly beyond.
func (p Period) Interval() string {
	switch p {
	case Period2y, Period5y:
		return "1wk"
	default:
		return "1d"
	}
}
