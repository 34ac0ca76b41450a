package controllers

import (
	"context"
	"time"

	"github.com/rndosd/finclass/src/models"
	"github.com/rndosd/finclass/src/repositories"
	"github.com/rndosd/finclass/src/schemas"
	"github.com/rndosd/finclass/src/services"
	"github.com/rndosd/finclass/src/utils"
)

type PricesControllerI interface {
	GetQuotes(ctx context.Context) ([]schemas.QuoteResponse, error)
	GetChart(ctx context.Context, symbol string, days int) (*schemas.ChartResponse, error)
}

// snapshotCache is the subset of the redis handler the read side needs.
type snapshotCache interface {
	Get(key string, result interface{}) error
}

// PricesController serves quotes from redis when the worker has warmed it,
// falling back to the snapshot table. A short in-process cache keeps a
// classroom full of dashboards from hammering either.
type PricesController struct {
	prices   repositories.PriceRepository
	cache    snapshotCache
	memCache *utils.Cache[[]schemas.QuoteResponse]
}

func NewPricesController(prices repositories.PriceRepository, cache snapshotCache) *PricesController {
	return &PricesController{
		prices:   prices,
		cache:    cache,
		memCache: utils.NewCache[[]schemas.QuoteResponse](),
	}
}

func (c *PricesController) GetQuotes(ctx context.Context) ([]schemas.QuoteResponse, error) {
	if quotes, ok := c.memCache.Get(); ok {
		return quotes, nil
	}

	snapshots, err := c.loadSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	quotes := make([]schemas.QuoteResponse, 0, len(snapshots))
	for _, s := range snapshots {
		quotes = append(quotes, schemas.QuoteResponse{
			Symbol:        s.Symbol,
			Name:          s.Name,
			Price:         s.CurrentPrice,
			PreviousClose: s.PreviousClose,
			Change:        s.CurrentPrice.Sub(s.PreviousClose),
			Source:        s.Source,
			FetchedAt:     s.FetchedAt,
		})
	}
	c.memCache.Set(quotes, 30*time.Second)
	return quotes, nil
}

func (c *PricesController) loadSnapshots(ctx context.Context) ([]models.PriceSnapshot, error) {
	if c.cache != nil {
		var cached []models.PriceSnapshot
		if err := c.cache.Get(services.QuotesCacheKey, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}
	return c.prices.ListSnapshots(ctx)
}

func (c *PricesController) GetChart(ctx context.Context, symbol string, days int) (*schemas.ChartResponse, error) {
	if days <= 0 {
		days = 30
	} else if days > 365 {
		days = 365
	}
	from := time.Now().UTC().AddDate(0, 0, -days)
	points, err := c.prices.GetHistory(ctx, symbol, from)
	if err != nil {
		return nil, err
	}
	chart := &schemas.ChartResponse{Symbol: symbol, Points: []schemas.ChartPoint{}}
	for _, p := range points {
		chart.Points = append(chart.Points, schemas.ChartPoint{Ts: p.Ts, Close: p.Close})
	}
	return chart, nil
}
