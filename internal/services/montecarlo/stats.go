package montecarlo

import (
	"math"
	"slices"

	"StockCast/internal/domain/models"
)

// Statistics summarizes terminal prices: mean, median, percentiles and an
// equal width histogram over [min, max] whose last bin includes max.
func Statistics(terminals []float64, bins int) models.RiskStatistics {
	n := len(terminals)
	if n == 0 {
		return models.RiskStatistics{}
	}
	if bins < 1 {
		bins = DefaultBins
	}
	sorted := slices.Clone(terminals)
	slices.Sort(sorted)

	// incremental mean; a plain sum can overflow for large prices
	var mean float64
	for i, v := range sorted {
		mean += (v - mean) / float64(i+1)
	}

	return models.RiskStatistics{
		Mean:      mean,
		Median:    sorted[n/2],
		P5:        Percentile(sorted, 0.05),
		P25:       Percentile(sorted, 0.25),
		P50:       Percentile(sorted, 0.50),
		P75:       Percentile(sorted, 0.75),
		P95:       Percentile(sorted, 0.95),
		Min:       sorted[0],
		Max:       sorted[n-1],
		Histogram: Histogram(sorted, bins),
	}
}

// Percentile reads sorted[floor(n*p)], clamped to the last element.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Floor(float64(n) * p))
	idx = max(0, min(idx, n-1))
	return sorted[idx]
}

// Histogram buckets sorted values into bins equal slices of [min, max].
// A degenerate or non-finite range puts every value in the first bin.
func Histogram(sorted []float64, bins int) []models.HistogramBin {
	if len(sorted) == 0 || bins < 1 {
		return nil
	}
	lo, hi := sorted[0], sorted[len(sorted)-1]
	width := (hi - lo) / float64(bins)
	if math.IsInf(width, 0) || math.IsNaN(width) {
		width = 0
	}

	out := make([]models.HistogramBin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, v := range sorted {
		idx := 0
		if width > 0 {
			if f := (v - lo) / width; !math.IsNaN(f) {
				idx = max(0, min(int(f), bins-1))
			}
		}
		out[idx].Count++
	}
	return out
}
