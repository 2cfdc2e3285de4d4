package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sartorproj/goarima/arima"
	"github.com/sartorproj/goarima/timeseries"
	"github.com/sirupsen/logrus"

	"stockdash/internal/config"
	"stockdash/internal/logging"
	"stockdash/internal/models"
	"stockdash/internal/telemetry"
)

// ForecastEngine fits a low-order ARIMA model to a series and projects it
// forward over the next business days. The engine owns order selection, the
// identity escape hatch, horizon dates and stitching; the estimation itself
// is delegated to goarima.
//
// The differencing order is not a caller knob: it follows the SeriesKind of
// the input (d=1 for price and log-price levels, d=0 for returns). Feeding
// the engine a log-price series and exponentiating the whole result is how
// price-level forecasts are produced.
type ForecastEngine struct {
	minObservations int
	maxHorizon      int
	logger          *logrus.Entry
}

// NewForecastEngine creates an engine with limits from configuration.
func NewForecastEngine(cfg config.AnalyticsConfig, logger *logrus.Logger) *ForecastEngine {
	minObs := cfg.MinObservations
	if minObs <= 0 {
		minObs = 30
	}
	maxHorizon := cfg.MaxHorizon
	if maxHorizon <= 0 || maxHorizon > 7 {
		maxHorizon = 7
	}
	return &ForecastEngine{
		minObservations: minObs,
		maxHorizon:      maxHorizon,
		logger:          logging.WithComponent(logger, "forecast_engine"),
	}
}

// Forecast fits the selected model and returns the historical series with
// `horizon` projected business days appended. With ModelNone or a zero
// horizon no fit is attempted and the input passes through unchanged.
// Estimation is deterministic: the same (series, model, horizon) triple
// always produces the same result.
func (e *ForecastEngine) Forecast(ctx context.Context, series models.TimeSeries, spec models.ModelSpec, horizon int) (models.ForecastResult, error) {
	_, span := telemetry.StartSpan(ctx, "ForecastEngine.Forecast")
	var err error
	defer func() { telemetry.FinishSpan(span, err) }()

	if horizon < 0 || horizon > e.maxHorizon {
		err = fmt.Errorf("horizon %d outside 0..%d: %w", horizon, e.maxHorizon, models.ErrInvalidSelection)
		return models.ForecastResult{}, err
	}

	if spec == models.ModelNone || horizon == 0 {
		return models.ForecastResult{Series: series.Copy(), Model: spec, Horizon: 0}, nil
	}

	if series.Len() < e.minObservations {
		err = fmt.Errorf("%d observations, need %d: %w", series.Len(), e.minObservations, models.ErrInsufficientData)
		return models.ForecastResult{}, err
	}

	p, q := spec.Orders()
	d := series.Kind.DifferencingOrder()

	input, tsErr := timeseries.NewWithTimestamps(series.Dates, series.Values)
	if tsErr != nil {
		err = fmt.Errorf("build model input: %w", tsErr)
		return models.ForecastResult{}, err
	}

	model := arima.New(p, d, q)
	if fitErr := model.Fit(input); fitErr != nil {
		err = fmt.Errorf("ARIMA(%d,%d,%d) fit: %v: %w", p, d, q, fitErr, models.ErrFitFailed)
		return models.ForecastResult{}, err
	}

	predictions, predErr := model.Predict(horizon)
	if predErr != nil {
		err = fmt.Errorf("ARIMA(%d,%d,%d) forecast: %v: %w", p, d, q, predErr, models.ErrFitFailed)
		return models.ForecastResult{}, err
	}
	if len(predictions) != horizon {
		err = fmt.Errorf("expected %d forecast steps, got %d: %w", horizon, len(predictions), models.ErrFitFailed)
		return models.ForecastResult{}, err
	}
	for _, v := range predictions {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			err = fmt.Errorf("degenerate forecast value: %w", models.ErrFitFailed)
			return models.ForecastResult{}, err
		}
	}

	stitched := series.Copy()
	lastDate, _ := series.Last()
	stitched.Dates = append(stitched.Dates, forecastDates(lastDate, horizon)...)
	stitched.Values = append(stitched.Values, predictions...)

	e.logger.WithFields(logrus.Fields{
		"model":   string(spec),
		"order":   fmt.Sprintf("(%d,%d,%d)", p, d, q),
		"horizon": horizon,
		"kind":    string(series.Kind),
	}).Debug("forecast produced")

	return models.ForecastResult{Series: stitched, Model: spec, Horizon: horizon}, nil
}

// forecastDates is kept separate for testability: the next n business days
// strictly after `after`.
func forecastDates(after time.Time, n int) []time.Time {
	dates := make([]time.Time, 0, n)
	next := after
	for i := 0; i < n; i++ {
		next = models.NextBusinessDay(next)
		dates = append(dates, next)
	}
	return dates
}
