package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rndosd/finclass/src/clients/marketdata"
	"github.com/rndosd/finclass/src/models"
	"github.com/rndosd/finclass/src/repositories"
	"github.com/rndosd/finclass/src/utils"
	"github.com/rndosd/finclass/src/ws"
)

// QuotesCacheKey is where the freshest snapshot list lives in redis.
const QuotesCacheKey = "market:quotes"

// quoteCache is the subset of the redis handler the sync service needs.
type quoteCache interface {
	Set(key string, value interface{}, expiration time.Duration) error
}

type PriceSyncServiceI interface {
	RefreshPrices(ctx context.Context) error
}

// PriceSyncService is the out-of-band price feed refresher: it pulls quotes
// for the configured watch list plus every currently held symbol, persists
// snapshots and history rows, warms the cache and notifies subscribers.
// Nothing else in the system ever writes prices.
type PriceSyncService struct {
	client     marketdata.MarketDataClientI
	prices     repositories.PriceRepository
	portfolios repositories.PortfolioRepository
	settings   repositories.SettingsRepository
	cache      quoteCache
	hub        ws.Broadcaster
	watchlist  []string

	mu         sync.Mutex
	backfilled map[string]bool
}

func NewPriceSyncService(
	client marketdata.MarketDataClientI,
	prices repositories.PriceRepository,
	portfolios repositories.PortfolioRepository,
	settings repositories.SettingsRepository,
	cache quoteCache,
	hub ws.Broadcaster,
	watchlist []string,
) *PriceSyncService {
	return &PriceSyncService{
		client:     client,
		prices:     prices,
		portfolios: portfolios,
		settings:   settings,
		cache:      cache,
		hub:        hub,
		watchlist:  watchlist,
		backfilled: make(map[string]bool),
	}
}

func (s *PriceSyncService) RefreshPrices(ctx context.Context) error {
	logger := utils.LoggerFromContext(ctx)

	// Proxy URLs saved by an admin win over static config.
	if global, err := s.settings.GetGlobalSettings(ctx); err == nil {
		s.client.SetEndpoints(global.QuoteProxyURL, global.ChartProxyURL)
	} else {
		logger.WithError(err).Warn("could not load global settings, using configured proxy")
	}

	symbols, err := s.symbolsToRefresh(ctx)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		logger.Info("no symbols to refresh")
		return nil
	}

	snapshots, err := s.client.GetQuotes(ctx, symbols)
	if err != nil {
		return err
	}

	for i := range snapshots {
		snap := &snapshots[i]
		if err := s.prices.UpsertSnapshot(ctx, snap, nil); err != nil {
			return err
		}
		point := snapshotPoint(snap)
		if err := s.prices.AppendHistory(ctx, point, nil); err != nil {
			return err
		}
	}

	s.backfillHistory(ctx, snapshots)

	if s.cache != nil {
		if err := s.cache.Set(QuotesCacheKey, snapshots, 10*time.Minute); err != nil {
			logger.WithError(err).Warn("failed to warm quote cache")
		}
	}
	if s.hub != nil {
		s.hub.Broadcast("prices_updated", map[string]interface{}{
			"count":     len(snapshots),
			"refreshed": time.Now().UTC(),
		})
	}

	logger.WithField("symbols", len(snapshots)).Info("price snapshots refreshed")
	return nil
}

// backfillHistory seeds a year of chart points for symbols this process has
// not refreshed before, so a fresh deployment serves full charts instead of
// waiting for refresh cycles to accumulate points. The history table ignores
// duplicate (symbol, ts) rows, so re-running after a restart is harmless. A
// failed backfill is retried on the next cycle and never fails the refresh.
func (s *PriceSyncService) backfillHistory(ctx context.Context, snapshots []models.PriceSnapshot) {
	logger := utils.LoggerFromContext(ctx)

	for i := range snapshots {
		symbol := snapshots[i].Symbol

		s.mu.Lock()
		done := s.backfilled[symbol]
		s.mu.Unlock()
		if done {
			continue
		}

		points, err := s.client.GetChart(ctx, symbol, 365)
		if err != nil {
			logger.WithError(err).WithField("symbol", symbol).Warn("chart backfill failed")
			continue
		}

		wrote := true
		for j := range points {
			if err := s.prices.AppendHistory(ctx, &points[j], nil); err != nil {
				logger.WithError(err).WithField("symbol", symbol).Warn("chart backfill write failed")
				wrote = false
				break
			}
		}
		if wrote {
			s.mu.Lock()
			s.backfilled[symbol] = true
			s.mu.Unlock()
		}
	}
}

func (s *PriceSyncService) symbolsToRefresh(ctx context.Context) ([]string, error) {
	held, err := s.portfolios.DistinctSymbols(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(s.watchlist)+len(held))
	var symbols []string
	for _, sym := range append(append([]string{}, s.watchlist...), held...) {
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols, nil
}

// snapshotPoint turns a snapshot into an hourly history point; the
// repository ignores duplicates within the same hour.
func snapshotPoint(snap *models.PriceSnapshot) *models.PricePoint {
	return &models.PricePoint{
		Symbol: snap.Symbol,
		Ts:     snap.FetchedAt.Truncate(time.Hour),
		Close:  snap.CurrentPrice,
	}
}
