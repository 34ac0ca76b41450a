package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rndosd/finclass/src/clients/marketdata"
	"github.com/rndosd/finclass/src/config"
	"github.com/rndosd/finclass/src/database"
	"github.com/rndosd/finclass/src/repositories"
	"github.com/rndosd/finclass/src/services"
	redis_utils "github.com/rndosd/finclass/src/utils/redis"
	"github.com/rndosd/finclass/src/ws"
)

type Handler struct {
	Sync services.PriceSyncServiceI
	Hub  *ws.Hub
}

func NewHandler(cfg *config.Config, hub *ws.Hub) (*Handler, error) {
	db, err := database.SetupDB(cfg)
	if err != nil {
		return nil, err
	}

	var cache *redis_utils.RedisHandler
	if cfg.Databases.Redis.Host != "" {
		cache, err = redis_utils.NewRedisHandler(cfg)
		if err != nil {
			return nil, err
		}
	}

	priceRepo := repositories.NewPriceRepository(db)
	portfolioRepo := repositories.NewPortfolioRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)
	client := marketdata.NewClient(cfg)

	var sync *services.PriceSyncService
	if cache != nil {
		sync = services.NewPriceSyncService(client, priceRepo, portfolioRepo, settingsRepo, cache, hub, cfg.Market.Symbols)
	} else {
		sync = services.NewPriceSyncService(client, priceRepo, portfolioRepo, settingsRepo, nil, hub, cfg.Market.Symbols)
	}
	return &Handler{Sync: sync, Hub: hub}, nil
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}
