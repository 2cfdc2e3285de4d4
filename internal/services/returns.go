package services

import (
	"fmt"
	"math"
	"time"

	"stockdash/internal/models"
)

// Returns derives the percentage log-return series from a price series:
// value[i] = 100 * ln(1 + (p[i]-p[i-1])/p[i-1]). The first observation has
// no prior price and is dropped rather than kept as a sentinel.
func Returns(prices models.TimeSeries) (models.TimeSeries, error) {
	if prices.Kind != models.KindPrice {
		return models.TimeSeries{}, fmt.Errorf("returns: expected %s series, got %s", models.KindPrice, prices.Kind)
	}
	if prices.Len() < 2 {
		return models.TimeSeries{Kind: models.KindReturn}, nil
	}

	n := prices.Len()
	dates := make([]time.Time, 0, n-1)
	values := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		prev := prices.Values[i-1]
		if prev == 0 {
			return models.TimeSeries{}, fmt.Errorf("zero price at %s: %w",
				prices.Dates[i-1].Format(models.DateLayout), models.ErrNumericFault)
		}
		ratio := prices.Values[i] / prev
		if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
			return models.TimeSeries{}, fmt.Errorf("undefined log-return at %s: %w",
				prices.Dates[i].Format(models.DateLayout), models.ErrNumericFault)
		}
		dates = append(dates, prices.Dates[i])
		values = append(values, 100*math.Log(ratio))
	}

	return models.NewTimeSeries(models.KindReturn, dates, values)
}

// RollingMean computes the mean of the last `window` observations. The
// second return value is false when the series is shorter than the window:
// the statistic is unavailable, not zero.
func RollingMean(series models.TimeSeries, window int) (float64, bool) {
	if window < 1 || series.Len() < window {
		return 0, false
	}
	return mean(series.Values[series.Len()-window:]), true
}

// RollingStd computes the sample standard deviation of the last `window`
// observations, with the same unavailability rule as RollingMean. A single
// observation has no sample deviation, so windows below 2 are unavailable.
func RollingStd(series models.TimeSeries, window int) (float64, bool) {
	if window < 2 || series.Len() < window {
		return 0, false
	}
	return stddev(series.Values[series.Len()-window:]), true
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sumSquares float64
	for _, v := range values {
		diff := v - m
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)-1))
}
