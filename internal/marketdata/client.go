// Package marketdata fetches daily price history and the most-active ticker
// listing from the market-data provider's JSON endpoints.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stockdash/internal/config"
	"stockdash/internal/models"
)

// Client is the HTTP client for the market-data provider.
type Client struct {
	HTTPClient  *http.Client
	baseURL     string
	screenerURL string
	histRange   string
}

// NewClient creates a market-data client from configuration.
func NewClient(cfg *config.MarketDataConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	histRange := cfg.Range
	if histRange == "" {
		histRange = "2y"
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		screenerURL: cfg.ScreenerURL,
		histRange:   histRange,
	}
}

// FetchPriceHistory retrieves the daily adjusted-close history for a ticker.
// Entries with no reported price come back with a nil Close; the caller
// (series loader) owns gap policy. An unknown symbol or an empty response is
// a DataUnavailable error.
func (c *Client) FetchPriceHistory(ctx context.Context, symbol string) ([]PricePoint, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, fmt.Errorf("empty symbol: %w", models.ErrInvalidSelection)
	}

	path := fmt.Sprintf("/v8/finance/chart/%s?range=%s&interval=1d",
		url.PathEscape(symbol), url.QueryEscape(c.histRange))

	var response chartResponse
	if err := c.makeRequest(ctx, c.baseURL+path, &response); err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", symbol, err)
	}

	if response.Chart.Error != nil {
		return nil, fmt.Errorf("provider error for %s (%s): %w",
			symbol, response.Chart.Error.Code, models.ErrDataUnavailable)
	}
	if len(response.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart result for %s: %w", symbol, models.ErrDataUnavailable)
	}

	result := response.Chart.Result[0]
	if len(result.Timestamp) == 0 {
		return nil, fmt.Errorf("empty history for %s: %w", symbol, models.ErrDataUnavailable)
	}

	closes := c.pickCloses(result)
	points := make([]PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		point := PricePoint{Date: models.Day(time.Unix(ts, 0).UTC())}
		if i < len(closes) {
			point.Close = closes[i]
		}
		points = append(points, point)
	}
	return points, nil
}

// pickCloses prefers the adjusted close column and falls back to the raw
// close when the provider omits it.
func (c *Client) pickCloses(result chartResult) []*float64 {
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) == len(result.Timestamp) {
		return result.Indicators.AdjClose[0].AdjClose
	}
	if len(result.Indicators.Quote) > 0 {
		return result.Indicators.Quote[0].Close
	}
	return nil
}

// FetchMostActive retrieves up to 10 of the day's most-active tickers. The
// listing is best-effort: callers should tolerate an empty result.
func (c *Client) FetchMostActive(ctx context.Context) ([]models.TickerListing, error) {
	if c.screenerURL == "" {
		return nil, nil
	}

	endpoint := c.screenerURL + "?scrIds=most_actives&count=10"

	var response screenerResponse
	if err := c.makeRequest(ctx, endpoint, &response); err != nil {
		return nil, fmt.Errorf("fetch most active: %w", err)
	}

	if response.Finance.Error != nil || len(response.Finance.Result) == 0 {
		return nil, fmt.Errorf("screener returned nothing: %w", models.ErrDataUnavailable)
	}

	quotes := response.Finance.Result[0].Quotes
	listings := make([]models.TickerListing, 0, 10)
	for _, q := range quotes {
		if len(listings) == 10 {
			break
		}
		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		if q.Symbol == "" {
			continue
		}
		listings = append(listings, models.TickerListing{Name: name, Symbol: q.Symbol})
	}
	return listings, nil
}

// makeRequest performs a GET against the provider and decodes the JSON body
// into result.
func (c *Client) makeRequest(ctx context.Context, url string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "stockdash/1.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w: %w", err, models.ErrDataUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("provider returned 404: %w", models.ErrDataUnavailable)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("provider error (%d): %s: %w", resp.StatusCode, string(body), models.ErrDataUnavailable)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
