package marketdata

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"

	"github.com/rndosd/finclass/src/config"
	"github.com/rndosd/finclass/src/models"
)

type MarketDataClientI interface {
	GetQuotes(ctx context.Context, symbols []string) ([]models.PriceSnapshot, error)
	GetChart(ctx context.Context, symbol string, days int) ([]models.PricePoint, error)
	SetEndpoints(quoteURL, chartURL string)
}

// MarketDataClient fetches quotes and chart series from the configured
// price proxy. Transient failures are retried with fibonacci backoff
// before the refresh cycle gives up.
type MarketDataClient struct {
	http     *resty.Client
	mu       sync.RWMutex
	quoteURL string
	chartURL string
}

func NewClient(cfg *config.Config) *MarketDataClient {
	client := resty.New().
		SetTimeout(15 * time.Second).
		SetHeader("Accept", "application/json")
	return &MarketDataClient{
		http:     client,
		quoteURL: cfg.Market.QuoteProxyURL,
		chartURL: cfg.Market.ChartProxyURL,
	}
}

// SetEndpoints applies proxy URLs from the global settings document,
// overriding the static config.
func (c *MarketDataClient) SetEndpoints(quoteURL, chartURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if quoteURL != "" {
		c.quoteURL = quoteURL
	}
	if chartURL != "" {
		c.chartURL = chartURL
	}
}

func (c *MarketDataClient) endpoints() (string, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.quoteURL, c.chartURL
}

func (c *MarketDataClient) GetQuotes(ctx context.Context, symbols []string) ([]models.PriceSnapshot, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	quoteURL, _ := c.endpoints()
	if quoteURL == "" {
		return nil, fmt.Errorf("quote proxy URL is not configured")
	}

	var envelope quoteEnvelope
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("symbols", strings.Join(symbols, ",")).
			SetResult(&envelope).
			Get(quoteURL)
		if err != nil {
			return retry.RetryableError(err)
		}
		if resp.IsError() {
			if resp.StatusCode() >= 500 {
				return retry.RetryableError(fmt.Errorf("quote proxy returned %d", resp.StatusCode()))
			}
			return fmt.Errorf("quote proxy returned %d", resp.StatusCode())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	snapshots := make([]models.PriceSnapshot, 0, len(envelope.Quotes))
	for _, q := range envelope.Quotes {
		source := q.Source
		if source == "" {
			source = "proxy"
		}
		snapshots = append(snapshots, models.PriceSnapshot{
			Symbol:        q.Symbol,
			Name:          q.ShortName,
			CurrentPrice:  decimal.NewFromFloat(q.RegularMarketPrice),
			PreviousClose: decimal.NewFromFloat(q.PreviousClose),
			Source:        source,
			FetchedAt:     now,
		})
	}
	return snapshots, nil
}

func (c *MarketDataClient) GetChart(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	_, chartURL := c.endpoints()
	if chartURL == "" {
		return nil, fmt.Errorf("chart proxy URL is not configured")
	}
	if days <= 0 {
		days = 30
	}

	var envelope chartEnvelope
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("symbol", symbol).
			SetQueryParam("days", fmt.Sprintf("%d", days)).
			SetResult(&envelope).
			Get(chartURL)
		if err != nil {
			return retry.RetryableError(err)
		}
		if resp.IsError() {
			if resp.StatusCode() >= 500 {
				return retry.RetryableError(fmt.Errorf("chart proxy returned %d", resp.StatusCode()))
			}
			return fmt.Errorf("chart proxy returned %d", resp.StatusCode())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	points := make([]models.PricePoint, 0, len(envelope.Points))
	for _, p := range envelope.Points {
		points = append(points, models.PricePoint{
			Symbol: symbol,
			Ts:     time.Unix(p.Timestamp, 0).UTC(),
			Close:  decimal.NewFromFloat(p.Close),
		})
	}
	return points, nil
}
