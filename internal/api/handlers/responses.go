package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"stockdash/internal/models"
)

// ChartPoint is one (date, value) pair in chart-ready form. Values are kept
// at full precision; only scalar summaries are rounded.
type ChartPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

func chartPoints(series models.TimeSeries) []ChartPoint {
	points := make([]ChartPoint, series.Len())
	for i := range points {
		points[i] = ChartPoint{
			Date:  series.Dates[i].Format(models.DateLayout),
			Value: series.Values[i],
		}
	}
	return points
}

// round2 rounds a presentation scalar to 2 decimal places. Internal
// computation stays at full precision; rounding happens only here, at the
// boundary.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func round2Ptr(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	rounded := round2(v)
	return &rounded
}

// respondNoSelection answers requests that carry nothing actionable yet.
// It is a no-op for the UI, not an error dialog.
func respondNoSelection(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "no_selection"})
}

// respondPipelineError maps pipeline error kinds onto HTTP statuses. Every
// kind is recoverable: the response answers this request and nothing else.
func respondPipelineError(c *gin.Context, logger *logrus.Entry, err error) {
	switch {
	case errors.Is(err, models.ErrDataUnavailable):
		c.JSON(http.StatusNotFound, gin.H{"status": "no_data", "error": err.Error()})
	case errors.Is(err, models.ErrInvalidSelection):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInsufficientData),
		errors.Is(err, models.ErrFitFailed),
		errors.Is(err, models.ErrNumericFault):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
