// Package price queries the CoinGecko API for spot prices, exchange tickers and market history.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	apperrors "github.com/Proton-105/pricerelay-bot/internal/errors"
	"github.com/Proton-105/pricerelay-bot/pkg/config"
	"github.com/Proton-105/pricerelay-bot/pkg/metrics"
)

const (
	providerName = "coingecko"
	apiKeyHeader = "x-cg-demo-api-key"
)

// Ticker is one venue quote converted into the quote currency.
type Ticker struct {
	Venue          string
	ConvertedPrice float64
}

// Point is one sample of a market history series.
type Point struct {
	Time  time.Time
	Price float64
}

// Client is a read-only CoinGecko client. Every call goes to the network.
type Client struct {
	http    *resty.Client
	quote   string
	breaker *apperrors.CircuitBreaker
	log     *slog.Logger
}

// NewClient builds a client for the provider described by cfg.
func NewClient(cfg config.ProviderConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}

	quote := strings.ToLower(strings.TrimSpace(cfg.QuoteCurrency))
	if quote == "" {
		quote = "usd"
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		httpClient.SetHeader(apiKeyHeader, cfg.APIKey)
	}

	log = log.With(slog.String("component", "price_client"))
	breaker := apperrors.NewCircuitBreakerWithOptions(apperrors.BreakerOptions{
		OnStateChange: func(from, to apperrors.State) {
			log.Warn("price provider circuit changed",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &Client{
		http:    httpClient,
		quote:   quote,
		breaker: breaker,
		log:     log,
	}
}

// QuoteCurrency reports the currency prices are converted into.
func (c *Client) QuoteCurrency() string {
	return c.quote
}

// SpotPrice returns the current price of assetID.
func (c *Client) SpotPrice(ctx context.Context, assetID string) (float64, error) {
	var body map[string]map[string]float64
	err := c.get(ctx, "simple_price", assetID, "/simple/price", func(r *resty.Request) {
		r.SetQueryParam("ids", assetID).SetQueryParam("vs_currencies", c.quote)
	}, &body)
	if err != nil {
		return 0, err
	}

	quotes, ok := body[assetID]
	if !ok {
		return 0, apperrors.NewNotFoundError(assetID)
	}
	value, ok := quotes[c.quote]
	if !ok {
		return 0, apperrors.NewNotFoundError(assetID)
	}

	return value, nil
}

type coinResponse struct {
	Tickers []struct {
		Market struct {
			Name string `json:"name"`
		} `json:"market"`
		ConvertedLast map[string]float64 `json:"converted_last"`
	} `json:"tickers"`
}

// Tickers returns per-venue prices for assetID in provider order.
func (c *Client) Tickers(ctx context.Context, assetID string) ([]Ticker, error) {
	var body coinResponse
	err := c.get(ctx, "coin", assetID, "/coins/{id}", func(r *resty.Request) {
		r.SetPathParam("id", assetID).
			SetQueryParams(map[string]string{
				"localization":   "false",
				"tickers":        "true",
				"market_data":    "false",
				"community_data": "false",
				"developer_data": "false",
			})
	}, &body)
	if err != nil {
		return nil, err
	}

	tickers := make([]Ticker, 0, len(body.Tickers))
	for _, t := range body.Tickers {
		tickers = append(tickers, Ticker{
			Venue:          t.Market.Name,
			ConvertedPrice: t.ConvertedLast[c.quote],
		})
	}

	return tickers, nil
}

type marketChartResponse struct {
	Prices [][]float64 `json:"prices"`
}

// MarketHistory returns the maximum-range price series for assetID.
func (c *Client) MarketHistory(ctx context.Context, assetID string) ([]Point, error) {
	var body marketChartResponse
	err := c.get(ctx, "market_chart", assetID, "/coins/{id}/market_chart", func(r *resty.Request) {
		r.SetPathParam("id", assetID).
			SetQueryParam("vs_currency", c.quote).
			SetQueryParam("days", "max")
	}, &body)
	if err != nil {
		return nil, err
	}

	points := make([]Point, 0, len(body.Prices))
	for _, sample := range body.Prices {
		if len(sample) < 2 {
			continue
		}
		points = append(points, Point{
			Time:  time.UnixMilli(int64(sample[0])).UTC(),
			Price: sample[1],
		})
	}

	return points, nil
}

// HealthCheck pings the provider.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.get(ctx, "ping", "", "/ping", nil, nil)
}

func (c *Client) get(ctx context.Context, endpoint, assetID, path string, build func(*resty.Request), out any) error {
	start := time.Now()
	var resp *resty.Response

	err := c.breaker.Call(func() error {
		req := c.http.R().SetContext(ctx)
		if build != nil {
			build(req)
		}

		var err error
		resp, err = req.Get(path)
		if err != nil {
			return err
		}
		// an unknown asset is a healthy answer
		if resp.StatusCode() == http.StatusNotFound {
			return nil
		}
		if resp.IsError() {
			return fmt.Errorf("unexpected status %d", resp.StatusCode())
		}
		return nil
	})

	status := "error"
	if resp != nil {
		status = strconv.Itoa(resp.StatusCode())
	}
	metrics.RecordProviderRequest(endpoint, status, time.Since(start))

	if err != nil {
		c.log.WarnContext(ctx, "price provider request failed",
			slog.String("endpoint", endpoint),
			slog.String("asset", assetID),
			slog.Any("error", err),
		)
		return apperrors.NewNetworkError(providerName, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return apperrors.NewNotFoundError(assetID)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return apperrors.NewNetworkError(providerName, fmt.Errorf("decode %s: %w", endpoint, err))
	}

	return nil
}
