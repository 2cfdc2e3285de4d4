package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"stockdash/internal/logging"
	"stockdash/internal/models"
)

// ListingProvider supplies the day's most-active ticker listing.
type ListingProvider interface {
	FetchMostActive(ctx context.Context) ([]models.TickerListing, error)
}

// TickersHandler serves the most-active ticker listing backing the UI's
// dropdown.
type TickersHandler struct {
	provider ListingProvider
	logger   *logrus.Entry
}

// NewTickersHandler creates the ticker listing handler.
func NewTickersHandler(provider ListingProvider, logger *logrus.Logger) *TickersHandler {
	return &TickersHandler{
		provider: provider,
		logger:   logging.WithComponent(logger, "tickers_handler"),
	}
}

// TickersResponse is the most-active listing payload.
type TickersResponse struct {
	Tickers   []models.TickerListing `json:"tickers"`
	Count     int                    `json:"count"`
	Timestamp time.Time              `json:"timestamp"`
}

// GetMostActive returns up to 10 of the day's most-active tickers. The
// listing is best-effort: provider failures degrade to an empty list, never
// an error response.
func (h *TickersHandler) GetMostActive(c *gin.Context) {
	listings, err := h.provider.FetchMostActive(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Warn("most-active listing unavailable")
		listings = nil
	}
	if listings == nil {
		listings = []models.TickerListing{}
	}

	c.JSON(http.StatusOK, TickersResponse{
		Tickers:   listings,
		Count:     len(listings),
		Timestamp: nowUTC(),
	})
}
