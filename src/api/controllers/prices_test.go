package controllers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rndosd/finclass/src/api/controllers"
	"github.com/rndosd/finclass/src/models"
	"github.com/rndosd/finclass/src/services"
)

type fakeSnapshotCache struct {
	snapshots []models.PriceSnapshot
	gets      int
}

func (c *fakeSnapshotCache) Get(key string, result interface{}) error {
	c.gets++
	if key != services.QuotesCacheKey || len(c.snapshots) == 0 {
		return errors.New("cache miss")
	}
	out, ok := result.(*[]models.PriceSnapshot)
	if !ok {
		return errors.New("unexpected result type")
	}
	*out = append([]models.PriceSnapshot{}, c.snapshots...)
	return nil
}

func TestPricesControllerGetQuotes(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("serves from redis when warm", func(t *testing.T) {
		cache := &fakeSnapshotCache{snapshots: []models.PriceSnapshot{
			{Symbol: "AAPL", Name: "Apple Inc.", CurrentPrice: dec("12"), PreviousClose: dec("11.5"), Source: "proxy", FetchedAt: now},
		}}
		controller := controllers.NewPricesController(newFakePriceRepo(), cache)

		quotes, err := controller.GetQuotes(ctx)
		require.NoError(t, err)
		require.Len(t, quotes, 1)
		assert.Equal(t, "AAPL", quotes[0].Symbol)
		assert.Equal(t, "0.5", quotes[0].Change.String())

		// Second call is served by the in-process cache.
		_, err = controller.GetQuotes(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, cache.gets)
	})

	t.Run("falls back to the snapshot table on a cold cache", func(t *testing.T) {
		prices := newFakePriceRepo()
		require.NoError(t, prices.UpsertSnapshot(ctx, &models.PriceSnapshot{
			Symbol: "TSLA", CurrentPrice: dec("200"), PreviousClose: dec("210"), FetchedAt: now,
		}, nil))
		controller := controllers.NewPricesController(prices, &fakeSnapshotCache{})

		quotes, err := controller.GetQuotes(ctx)
		require.NoError(t, err)
		require.Len(t, quotes, 1)
		assert.Equal(t, "TSLA", quotes[0].Symbol)
		assert.Equal(t, "-10", quotes[0].Change.String())
	})

	t.Run("works without redis at all", func(t *testing.T) {
		controller := controllers.NewPricesController(newFakePriceRepo(), nil)
		quotes, err := controller.GetQuotes(ctx)
		require.NoError(t, err)
		assert.Empty(t, quotes)
	})
}

func TestPricesControllerGetChart(t *testing.T) {
	ctx := context.Background()
	prices := newFakePriceRepo()
	now := time.Now().UTC().Truncate(time.Hour)

	require.NoError(t, prices.AppendHistory(ctx, &models.PricePoint{
		Symbol: "AAPL", Ts: now.AddDate(0, 0, -2), Close: dec("11"),
	}, nil))
	require.NoError(t, prices.AppendHistory(ctx, &models.PricePoint{
		Symbol: "AAPL", Ts: now, Close: dec("12"),
	}, nil))
	require.NoError(t, prices.AppendHistory(ctx, &models.PricePoint{
		Symbol: "AAPL", Ts: now.AddDate(0, 0, -100), Close: dec("8"),
	}, nil))
	require.NoError(t, prices.AppendHistory(ctx, &models.PricePoint{
		Symbol: "AAPL", Ts: now.AddDate(0, 0, -400), Close: dec("6"),
	}, nil))

	controller := controllers.NewPricesController(prices, nil)

	t.Run("window defaults to thirty days", func(t *testing.T) {
		chart, err := controller.GetChart(ctx, "AAPL", 0)
		require.NoError(t, err)
		assert.Equal(t, "AAPL", chart.Symbol)
		assert.Len(t, chart.Points, 2)
	})

	t.Run("wider window includes older points", func(t *testing.T) {
		chart, err := controller.GetChart(ctx, "AAPL", 365)
		require.NoError(t, err)
		assert.Len(t, chart.Points, 3)
	})

	t.Run("over-range window clamps to a year", func(t *testing.T) {
		chart, err := controller.GetChart(ctx, "AAPL", 1000)
		require.NoError(t, err)
		assert.Len(t, chart.Points, 3)
	})

	t.Run("unknown symbol yields an empty chart", func(t *testing.T) {
		chart, err := controller.GetChart(ctx, "NOPE", 30)
		require.NoError(t, err)
		assert.Empty(t, chart.Points)
	})
}
