package features

// Indicator series only cover indices where the window is complete, so no value is NaN.

// SMA returns the simple moving average for every full window (len = n-period+1).
func SMA(closes []float64, period int) []float64 {
	if period < 1 || len(closes) < period {
		return nil
	}
	out := make([]float64, 0, len(closes)-period+1)
	var sum float64
	for i, c := range closes {
		sum += c
		if i >= period {
			sum -= closes[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}

// EMA seeds with the first close and smooths with 2/(period+1).
func EMA(closes []float64, period int) []float64 {
	if period < 1 || len(closes) == 0 {
		return nil
	}
	k := 2 / float64(period+1)
	out := make([]float64, len(closes))
	out[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		out[i] = (closes[i]-out[i-1])*k + out[i-1]
	}
	return out
}

// RSI uses simple averages of gains and losses over period changes (len = n-period).
// A window without losses reads 100, a flat window reads 50.
func RSI(closes []float64, period int) []float64 {
	if period < 1 || len(closes) <= period {
		return nil
	}
	out := make([]float64, 0, len(closes)-period)
	for i := period; i < len(closes); i++ {
		var gains, losses float64
		for j := i - period + 1; j <= i; j++ {
			ch := closes[j] - closes[j-1]
			if ch > 0 {
				gains += ch
			} else {
				losses -= ch
			}
		}
		switch {
		case losses == 0 && gains == 0:
			out = append(out, 50)
		case losses == 0:
			out = append(out, 100)
		default:
			rs := gains / losses
			out = append(out, 100-100/(1+rs))
		}
	}
	return out
}
