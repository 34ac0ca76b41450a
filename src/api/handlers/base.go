package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rndosd/finclass/src/api/controllers"
	"github.com/rndosd/finclass/src/config"
	"github.com/rndosd/finclass/src/database"
	"github.com/rndosd/finclass/src/repositories"
	"github.com/rndosd/finclass/src/utils"
	redis_utils "github.com/rndosd/finclass/src/utils/redis"
	"github.com/rndosd/finclass/src/ws"
)

type Handler struct {
	Trades    controllers.TradesControllerI
	Portfolio controllers.PortfolioControllerI
	Settings  controllers.SettingsControllerI
	Students  controllers.StudentsControllerI
	Prices    controllers.PricesControllerI
	Hub       *ws.Hub
}

func NewHandler(cfg *config.Config, hub *ws.Hub) (*Handler, error) {
	db, err := database.SetupDB(cfg)
	if err != nil {
		return nil, err
	}

	// Quote reads degrade to the snapshot table when redis is unavailable.
	var cache *redis_utils.RedisHandler
	if cfg.Databases.Redis.Host != "" {
		cache, err = redis_utils.NewRedisHandler(cfg)
		if err != nil {
			return nil, err
		}
	}

	txRunner := database.NewTxRunner(db)
	studentRepo := repositories.NewStudentRepository(db)
	portfolioRepo := repositories.NewPortfolioRepository(db)
	tradeRepo := repositories.NewTradeRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)
	priceRepo := repositories.NewPriceRepository(db)

	handler := &Handler{
		Trades:    controllers.NewTradesController(txRunner, studentRepo, portfolioRepo, tradeRepo, settingsRepo, hub),
		Portfolio: controllers.NewPortfolioController(portfolioRepo, tradeRepo, priceRepo, settingsRepo),
		Settings:  controllers.NewSettingsController(settingsRepo, hub),
		Students:  controllers.NewStudentsController(txRunner, studentRepo),
		Hub:       hub,
	}
	if cache != nil {
		handler.Prices = controllers.NewPricesController(priceRepo, cache)
	} else {
		handler.Prices = controllers.NewPricesController(priceRepo, nil)
	}
	return handler, nil
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

func (h *Handler) HandleErrors(w http.ResponseWriter, err error, status ...int) {
	var httpErr *utils.HTTPError
	if errors.Is(err, context.DeadlineExceeded) {
		h.respond(w, nil, map[string]string{"error": "Request timed out"}, http.StatusGatewayTimeout)
	} else if errors.As(err, &httpErr) {
		h.respond(w, nil, map[string]string{"error": httpErr.Message}, httpErr.Code)
	} else if len(status) > 0 {
		h.respond(w, nil, map[string]string{"error": err.Error()}, status[0])
	} else if err != nil {
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusInternalServerError)
	} else {
		h.respond(w, nil, map[string]string{"error": "Unhandled error"}, http.StatusInternalServerError)
	}
}
