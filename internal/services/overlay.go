package services

import (
	"fmt"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"

	"stockdash/internal/models"
)

// Overlay is a moving-average line for the price chart, aligned to the tail
// of the series it was computed from.
type Overlay struct {
	Name   string      `json:"name"`
	Period int         `json:"period"`
	Dates  []time.Time `json:"dates"`
	Values []float64   `json:"values"`
}

// MovingAverages computes simple and exponential moving-average overlays for
// the given periods. Periods longer than the series are skipped.
func MovingAverages(prices models.TimeSeries, periods []int) []Overlay {
	overlays := make([]Overlay, 0, 2*len(periods))
	for _, period := range periods {
		if period <= 0 || period > prices.Len() {
			continue
		}

		sma := trend.NewSmaWithPeriod[float64](period)
		overlays = append(overlays, makeOverlay(prices, "SMA", period,
			helper.ChanToSlice(sma.Compute(helper.SliceToChan(prices.Values)))))

		ema := trend.NewEmaWithPeriod[float64](period)
		overlays = append(overlays, makeOverlay(prices, "EMA", period,
			helper.ChanToSlice(ema.Compute(helper.SliceToChan(prices.Values)))))
	}
	return overlays
}

// makeOverlay aligns indicator output, which is shorter than its input by the
// indicator's warm-up, to the tail dates of the source series.
func makeOverlay(prices models.TimeSeries, kind string, period int, values []float64) Overlay {
	dates := make([]time.Time, len(values))
	copy(dates, prices.Dates[len(prices.Dates)-len(values):])

	return Overlay{
		Name:   fmt.Sprintf("%s%d", kind, period),
		Period: period,
		Dates:  dates,
		Values: values,
	}
}
