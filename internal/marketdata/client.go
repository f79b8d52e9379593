package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adhish9899/stat-arb/internal/config"
	"github.com/adhish9899/stat-arb/internal/models"
)

// Client is a thin wrapper around the Alpaca market data REST API,
// used when no local CSV store is configured.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	dataURL    string
}

// NewClient creates a new market data client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		dataURL: cfg.AlpacaDataURL,
	}
}

// bar is the wire format of one aggregated bar
type bar struct {
	Timestamp time.Time       `json:"t"`
	Open      decimal.Decimal `json:"o"`
	High      decimal.Decimal `json:"h"`
	Low       decimal.Decimal `json:"l"`
	Close     decimal.Decimal `json:"c"`
	Volume    int64           `json:"v"`
}

// IntradayCloses implements Provider
func (c *Client) IntradayCloses(ctx context.Context, symbol string) ([]models.PricePoint, error) {
	return c.getBarCloses(ctx, symbol, "1Min")
}

// DailyCloses implements Provider
func (c *Client) DailyCloses(ctx context.Context, symbol string) ([]models.PricePoint, error) {
	return c.getBarCloses(ctx, symbol, "1Day")
}

// getBarCloses fetches all bars for a symbol at the given timeframe,
// following pagination tokens until the feed is exhausted.
func (c *Client) getBarCloses(ctx context.Context, symbol, timeframe string) ([]models.PricePoint, error) {
	var series []models.PricePoint
	pageToken := ""

	for {
		params := url.Values{}
		params.Set("symbols", symbol)
		params.Set("timeframe", timeframe)
		params.Set("limit", "10000")
		if pageToken != "" {
			params.Set("page_token", pageToken)
		}

		reqURL := fmt.Sprintf("%s/v2/stocks/bars?%s", c.dataURL, params.Encode())
		resp, err := c.doRequest(ctx, "GET", reqURL)
		if err != nil {
			return nil, err
		}

		var result struct {
			Bars          map[string][]bar `json:"bars"`
			NextPageToken *string          `json:"next_page_token"`
		}
		if err := parseResponse(resp, &result); err != nil {
			return nil, err
		}

		for _, b := range result.Bars[symbol] {
			series = append(series, models.PricePoint{Timestamp: b.Timestamp, Price: b.Close})
		}

		if result.NextPageToken == nil || *result.NextPageToken == "" {
			break
		}
		pageToken = *result.NextPageToken
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("no %s bars returned for %s", timeframe, symbol)
	}

	return series, nil
}

// doRequest performs an HTTP request with auth headers
func (c *Client) doRequest(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("APCA-API-KEY-ID", c.cfg.AlpacaKeyID)
	req.Header.Set("APCA-API-SECRET-KEY", c.cfg.AlpacaSecretKey)
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}

// parseResponse reads and unmarshals the response
func parseResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(target)
}
