package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdash/internal/config"
	"stockdash/internal/logging"
	"stockdash/internal/marketdata"
	"stockdash/internal/models"
	"stockdash/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubHistoryProvider struct {
	points []marketdata.PricePoint
	err    error
}

func (s *stubHistoryProvider) FetchPriceHistory(_ context.Context, _ string) ([]marketdata.PricePoint, error) {
	return s.points, s.err
}

// businessDayPoints builds daily observations on consecutive business days
// starting Tue 2024-01-02.
func businessDayPoints(values []float64) []marketdata.PricePoint {
	points := make([]marketdata.PricePoint, len(values))
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range values {
		v := values[i]
		points[i] = marketdata.PricePoint{Date: day, Close: &v}
		day = models.NextBusinessDay(day)
	}
	return points
}

func quietLogger() *logrus.Logger {
	return logging.New("panic", "test")
}

func newChartsHandler(provider services.HistoryProvider, cfg config.AnalyticsConfig) *ChartsHandler {
	logger := quietLogger()
	loader := services.NewSeriesLoader(provider, nil, logger)
	engine := services.NewForecastEngine(cfg, logger)
	return NewChartsHandler(loader, engine, cfg, logger)
}

func testAnalyticsConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		RollingWindow:   30,
		MinObservations: 30,
		MaxHorizon:      7,
		OverlayPeriods:  []int{3},
	}
}

func performRequest(handler gin.HandlerFunc, target string) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/endpoint", handler)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestGetPriceChart(t *testing.T) {
	provider := &stubHistoryProvider{points: businessDayPoints([]float64{100, 102, 101.505})}
	handler := newChartsHandler(provider, testAnalyticsConfig())

	w := performRequest(handler.GetPriceChart, "/endpoint?symbol=AAPL&quantity=2")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "AAPL", body["symbol"])
	assert.InDelta(t, 101.51, body["current_price"].(float64), 1e-9) // rounded at the boundary
	assert.InDelta(t, 203.01, body["total_cost"].(float64), 1e-9)

	points := body["points"].([]any)
	require.Len(t, points, 3)
	first := points[0].(map[string]any)
	assert.Equal(t, "2024-01-02", first["date"])
	assert.InDelta(t, 100.0, first["value"].(float64), 1e-9) // full precision in points

	overlays := body["overlays"].([]any)
	require.Len(t, overlays, 2)
	overlay := overlays[0].(map[string]any)
	assert.Equal(t, "SMA3", overlay["name"])
	require.Len(t, overlay["points"].([]any), 1)
	assert.Equal(t, "EMA3", overlays[1].(map[string]any)["name"])
}

func TestGetPriceChart_NoSelection(t *testing.T) {
	handler := newChartsHandler(&stubHistoryProvider{}, testAnalyticsConfig())

	w := performRequest(handler.GetPriceChart, "/endpoint")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no_selection", decodeBody(t, w)["status"])
}

func TestGetPriceChart_NoTotalCostWithoutQuantity(t *testing.T) {
	provider := &stubHistoryProvider{points: businessDayPoints([]float64{100, 102})}
	handler := newChartsHandler(provider, testAnalyticsConfig())

	w := performRequest(handler.GetPriceChart, "/endpoint?symbol=AAPL")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decodeBody(t, w), "total_cost")
}

func TestGetPriceChart_InvalidQuantity(t *testing.T) {
	handler := newChartsHandler(&stubHistoryProvider{}, testAnalyticsConfig())

	for _, q := range []string{"abc", "-1"} {
		w := performRequest(handler.GetPriceChart, "/endpoint?symbol=AAPL&quantity="+q)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestGetPriceChart_DataUnavailable(t *testing.T) {
	provider := &stubHistoryProvider{err: fmt.Errorf("ticker UNKNOWN: %w", models.ErrDataUnavailable)}
	handler := newChartsHandler(provider, testAnalyticsConfig())

	w := performRequest(handler.GetPriceChart, "/endpoint?symbol=UNKNOWN")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "no_data", decodeBody(t, w)["status"])
}

func TestGetReturnsChart(t *testing.T) {
	provider := &stubHistoryProvider{points: businessDayPoints([]float64{100, 102, 101, 103})}
	handler := newChartsHandler(provider, testAnalyticsConfig())

	w := performRequest(handler.GetReturnsChart, "/endpoint?symbol=AAPL&window=3")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	points := body["points"].([]any)
	require.Len(t, points, 3) // one fewer than the price series

	first := points[0].(map[string]any)
	assert.Equal(t, "2024-01-03", first["date"])
	assert.InDelta(t, 100*math.Log(102.0/100.0), first["value"].(float64), 1e-9)

	assert.Equal(t, float64(3), body["window"])
	assert.NotNil(t, body["mean"])
	assert.NotNil(t, body["stddev"])
}

func TestGetReturnsChart_WindowLongerThanSeries(t *testing.T) {
	provider := &stubHistoryProvider{points: businessDayPoints([]float64{100, 102, 101})}
	handler := newChartsHandler(provider, testAnalyticsConfig())

	w := performRequest(handler.GetReturnsChart, "/endpoint?symbol=AAPL&window=30")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Nil(t, body["mean"])
	assert.Nil(t, body["stddev"])
}

func TestGetReturnsChart_InvalidWindow(t *testing.T) {
	handler := newChartsHandler(&stubHistoryProvider{}, testAnalyticsConfig())

	w := performRequest(handler.GetReturnsChart, "/endpoint?symbol=AAPL&window=0")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func forecastFixture(t *testing.T, n int) []marketdata.PricePoint {
	t.Helper()
	values := make([]float64, n)
	for i := range values {
		values[i] = 100 + 0.2*float64(i) + 1.5*math.Sin(float64(i)*0.4)
	}
	return businessDayPoints(values)
}

func TestGetForecastChart_ModelNone(t *testing.T) {
	provider := &stubHistoryProvider{points: forecastFixture(t, 40)}
	handler := newChartsHandler(provider, testAnalyticsConfig())

	w := performRequest(handler.GetForecastChart, "/endpoint?symbol=AAPL")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "none", body["model"])
	assert.Equal(t, float64(0), body["horizon"])
	assert.Equal(t, float64(40), body["forecast_start"])
	assert.Len(t, body["points"].([]any), 40)
}

func TestGetForecastChart_ExtendsHistory(t *testing.T) {
	provider := &stubHistoryProvider{points: forecastFixture(t, 40)}
	handler := newChartsHandler(provider, testAnalyticsConfig())

	w := performRequest(handler.GetForecastChart, "/endpoint?symbol=AAPL&model=ar&horizon=3")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "AR", body["model"]) // model names are canonicalized
	assert.Equal(t, float64(3), body["horizon"])
	assert.Equal(t, float64(40), body["forecast_start"])

	points := body["points"].([]any)
	require.Len(t, points, 43)
	for _, p := range points {
		v := p.(map[string]any)["value"].(float64)
		assert.False(t, math.IsNaN(v))
		assert.Greater(t, v, 0.0) // back in price levels, not logs
	}
}

func TestGetForecastChart_UnknownModel(t *testing.T) {
	provider := &stubHistoryProvider{points: forecastFixture(t, 40)}
	handler := newChartsHandler(provider, testAnalyticsConfig())

	w := performRequest(handler.GetForecastChart, "/endpoint?symbol=AAPL&model=lstm&horizon=3")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetForecastChart_InsufficientHistory(t *testing.T) {
	provider := &stubHistoryProvider{points: forecastFixture(t, 10)}
	handler := newChartsHandler(provider, testAnalyticsConfig())

	w := performRequest(handler.GetForecastChart, "/endpoint?symbol=AAPL&model=arma&horizon=3")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetForecastChart_HorizonOutOfRange(t *testing.T) {
	provider := &stubHistoryProvider{points: forecastFixture(t, 40)}
	handler := newChartsHandler(provider, testAnalyticsConfig())

	w := performRequest(handler.GetForecastChart, "/endpoint?symbol=AAPL&model=ar&horizon=9")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(handler.GetForecastChart, "/endpoint?symbol=AAPL&model=ar&horizon=x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
