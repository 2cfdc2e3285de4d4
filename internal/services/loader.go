// Package services holds the time-series pipeline: series loading, the
// return/risk transform, moving-average overlays, and the forecast engine.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"stockdash/internal/cache"
	"stockdash/internal/logging"
	"stockdash/internal/marketdata"
	"stockdash/internal/models"
	"stockdash/internal/telemetry"
)

// HistoryProvider supplies raw daily price history for a ticker.
type HistoryProvider interface {
	FetchPriceHistory(ctx context.Context, symbol string) ([]marketdata.PricePoint, error)
}

// SeriesLoader turns raw provider data into a canonical price series:
// business-day frequency, strictly increasing dates, gaps forward-filled.
type SeriesLoader struct {
	provider HistoryProvider
	cache    cache.HistoryCache
	logger   *logrus.Entry
}

// NewSeriesLoader creates a loader. historyCache may be nil to disable
// caching.
func NewSeriesLoader(provider HistoryProvider, historyCache cache.HistoryCache, logger *logrus.Logger) *SeriesLoader {
	return &SeriesLoader{
		provider: provider,
		cache:    historyCache,
		logger:   logging.WithComponent(logger, "series_loader"),
	}
}

// Load fetches and normalizes the price series for a ticker. An unknown
// ticker or an empty provider response is a DataUnavailable error; callers
// treat it as "no result yet", not a fault.
func (l *SeriesLoader) Load(ctx context.Context, symbol string) (models.TimeSeries, error) {
	ctx, span := telemetry.StartSpan(ctx, "SeriesLoader.Load")
	var err error
	defer func() { telemetry.FinishSpan(span, err) }()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		err = fmt.Errorf("no ticker selected: %w", models.ErrInvalidSelection)
		return models.TimeSeries{}, err
	}

	if l.cache != nil {
		if series, ok := l.cache.Get(ctx, symbol); ok {
			logging.WithSymbol(l.logger, symbol).Debug("price history served from cache")
			return series, nil
		}
	}

	raw, fetchErr := l.provider.FetchPriceHistory(ctx, symbol)
	if fetchErr != nil {
		err = fetchErr
		return models.TimeSeries{}, err
	}

	series, normErr := normalizeHistory(raw)
	if normErr != nil {
		err = fmt.Errorf("normalize %s: %w", symbol, normErr)
		return models.TimeSeries{}, err
	}

	if l.cache != nil {
		l.cache.Set(ctx, symbol, series)
	}

	logging.WithSymbol(l.logger, symbol).WithField("observations", series.Len()).
		Debug("price history loaded")
	return series, nil
}

// normalizeHistory reindexes raw observations onto a strict business-day
// calendar spanning the first to the last observed price, forward-filling
// days with no usable observation. Weekend rows and leading null prices are
// dropped; a series with no observed price at all is DataUnavailable.
func normalizeHistory(points []marketdata.PricePoint) (models.TimeSeries, error) {
	observed := make(map[time.Time]float64, len(points))
	var first, last time.Time

	for _, p := range points {
		if p.Close == nil || *p.Close <= 0 {
			continue
		}
		day := models.Day(p.Date)
		if !models.IsBusinessDay(day) {
			continue
		}
		observed[day] = *p.Close
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if last.IsZero() || day.After(last) {
			last = day
		}
	}

	if len(observed) == 0 {
		return models.TimeSeries{}, models.ErrDataUnavailable
	}

	days := models.BusinessDays(first, last)
	values := make([]float64, len(days))
	prev := observed[first]
	for i, day := range days {
		if v, ok := observed[day]; ok {
			prev = v
		}
		values[i] = prev
	}

	return models.NewTimeSeries(models.KindPrice, days, values)
}
