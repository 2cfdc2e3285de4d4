// Package handlers implements the HTTP handlers behind /api/v1.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"stockdash/internal/config"
	"stockdash/internal/logging"
	"stockdash/internal/models"
	"stockdash/internal/services"
)

// ChartsHandler serves the price, returns and forecast chart endpoints.
type ChartsHandler struct {
	loader *services.SeriesLoader
	engine *services.ForecastEngine
	cfg    config.AnalyticsConfig
	logger *logrus.Entry
}

// NewChartsHandler creates the chart handler.
func NewChartsHandler(loader *services.SeriesLoader, engine *services.ForecastEngine, cfg config.AnalyticsConfig, logger *logrus.Logger) *ChartsHandler {
	return &ChartsHandler{
		loader: loader,
		engine: engine,
		cfg:    cfg,
		logger: logging.WithComponent(logger, "charts_handler"),
	}
}

// OverlayResponse is a moving-average line for the price chart.
type OverlayResponse struct {
	Name   string       `json:"name"`
	Period int          `json:"period"`
	Points []ChartPoint `json:"points"`
}

// PriceChartResponse is the price chart payload.
type PriceChartResponse struct {
	Symbol       string            `json:"symbol"`
	Points       []ChartPoint      `json:"points"`
	CurrentPrice float64           `json:"current_price"`
	TotalCost    *float64          `json:"total_cost,omitempty"`
	Overlays     []OverlayResponse `json:"overlays,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

// GetPriceChart returns the historical price series for a ticker plus the
// current price and, when a purchase quantity is given, its total cost.
func (h *ChartsHandler) GetPriceChart(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		respondNoSelection(c)
		return
	}

	quantity, err := strconv.Atoi(c.DefaultQuery("quantity", "0"))
	if err != nil || quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quantity parameter"})
		return
	}

	series, err := h.loader.Load(c.Request.Context(), symbol)
	if err != nil {
		respondPipelineError(c, h.logger, err)
		return
	}

	_, last := series.Last()
	response := PriceChartResponse{
		Symbol:       symbol,
		Points:       chartPoints(series),
		CurrentPrice: round2(last),
		Timestamp:    nowUTC(),
	}
	if quantity > 0 {
		cost := round2(last * float64(quantity))
		response.TotalCost = &cost
	}
	for _, overlay := range services.MovingAverages(series, h.cfg.OverlayPeriods) {
		points := make([]ChartPoint, len(overlay.Values))
		for i := range overlay.Values {
			points[i] = ChartPoint{
				Date:  overlay.Dates[i].Format(models.DateLayout),
				Value: overlay.Values[i],
			}
		}
		response.Overlays = append(response.Overlays, OverlayResponse{
			Name:   overlay.Name,
			Period: overlay.Period,
			Points: points,
		})
	}

	c.JSON(http.StatusOK, response)
}

// ReturnsChartResponse is the log-return chart payload. Mean and StdDev are
// null when the series is shorter than the requested window.
type ReturnsChartResponse struct {
	Symbol    string       `json:"symbol"`
	Points    []ChartPoint `json:"points"`
	Window    int          `json:"window"`
	Mean      *float64     `json:"mean"`
	StdDev    *float64     `json:"stddev"`
	Timestamp time.Time    `json:"timestamp"`
}

// GetReturnsChart returns the percentage log-return series with trailing
// mean/volatility statistics over a user-chosen window.
func (h *ChartsHandler) GetReturnsChart(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		respondNoSelection(c)
		return
	}

	window, err := strconv.Atoi(c.DefaultQuery("window", strconv.Itoa(h.cfg.RollingWindow)))
	if err != nil || window < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window parameter"})
		return
	}

	prices, err := h.loader.Load(c.Request.Context(), symbol)
	if err != nil {
		respondPipelineError(c, h.logger, err)
		return
	}

	returns, err := services.Returns(prices)
	if err != nil {
		respondPipelineError(c, h.logger, err)
		return
	}

	meanVal, meanOK := services.RollingMean(returns, window)
	stdVal, stdOK := services.RollingStd(returns, window)

	c.JSON(http.StatusOK, ReturnsChartResponse{
		Symbol:    symbol,
		Points:    chartPoints(returns),
		Window:    window,
		Mean:      round2Ptr(meanVal, meanOK),
		StdDev:    round2Ptr(stdVal, stdOK),
		Timestamp: nowUTC(),
	})
}

// ForecastChartResponse is the forecast chart payload. Points up to
// ForecastStart are historical; the suffix is the projection and is meant to
// be rendered distinctly.
type ForecastChartResponse struct {
	Symbol        string       `json:"symbol"`
	Model         string       `json:"model"`
	Horizon       int          `json:"horizon"`
	Points        []ChartPoint `json:"points"`
	ForecastStart int          `json:"forecast_start"`
	Timestamp     time.Time    `json:"timestamp"`
}

// GetForecastChart returns recent history extended with up to 7 forecast
// business days. Price-level forecasts run on log-prices internally and the
// whole stitched series is exponentiated back, so both segments share units.
func (h *ChartsHandler) GetForecastChart(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		respondNoSelection(c)
		return
	}

	spec, err := models.ParseModelSpec(c.DefaultQuery("model", "none"))
	if err != nil {
		respondPipelineError(c, h.logger, err)
		return
	}

	horizon, err := strconv.Atoi(c.DefaultQuery("horizon", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid horizon parameter"})
		return
	}

	prices, err := h.loader.Load(c.Request.Context(), symbol)
	if err != nil {
		respondPipelineError(c, h.logger, err)
		return
	}

	if spec == models.ModelNone || horizon == 0 {
		c.JSON(http.StatusOK, ForecastChartResponse{
			Symbol:        symbol,
			Model:         string(models.ModelNone),
			Horizon:       0,
			Points:        chartPoints(prices),
			ForecastStart: prices.Len(),
			Timestamp:     nowUTC(),
		})
		return
	}

	logPrices, err := prices.Log()
	if err != nil {
		respondPipelineError(c, h.logger, err)
		return
	}

	result, err := h.engine.Forecast(c.Request.Context(), logPrices, spec, horizon)
	if err != nil {
		respondPipelineError(c, h.logger, err)
		return
	}

	priced, err := result.Series.Exp()
	if err != nil {
		respondPipelineError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, ForecastChartResponse{
		Symbol:        symbol,
		Model:         string(spec),
		Horizon:       result.Horizon,
		Points:        chartPoints(priced),
		ForecastStart: result.ForecastStart(),
		Timestamp:     nowUTC(),
	})
}
