package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/rndosd/finclass/src/api"
	"github.com/rndosd/finclass/src/config"
	"github.com/rndosd/finclass/src/scheduler"
	"github.com/rndosd/finclass/src/utils"
	"github.com/rndosd/finclass/src/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./settings")
	if err != nil {
		log.Println(err, "Error while loading config")
		return
	}
	errC, err := run(cfg)
	if err != nil {
		log.Println(err, "Couldn't run")
		return
	}

	if err := <-errC; err != nil {
		log.Println(err, "Error while running")
	}
}

func run(cfg *config.Config) (<-chan error, error) {
	errC := make(chan error, 1)
	logger := utils.NewLogger(cfg.Service.LogLevel)

	var httpServer *http.Server
	if cfg.Service.Type == config.API {
		server, err := api.NewServer(cfg, logger)
		if err != nil {
			return nil, err
		}
		httpServer = api.NewHTTPServer(server)
	} else {
		server, err := worker.NewServer(cfg, logger)
		if err != nil {
			return nil, err
		}
		httpServer = worker.NewHTTPServer(server)

		// The worker owns the price feed: refresh on schedule, plus once
		// at startup so the API never serves an empty market.
		refresh := func() {
			ctx := utils.WithLogger(context.Background(), logger)
			if err := server.Handler.Sync.RefreshPrices(ctx); err != nil {
				logger.WithError(err).Error("price refresh failed")
			}
		}
		go refresh()
		if _, err := scheduler.NewScheduledTask("price-refresh", cfg.Market.RefreshCron, logger, refresh); err != nil {
			return nil, err
		}
	}

	go func() {
		logger.WithField("port", cfg.Service.Port).WithField("type", cfg.Service.Type).Info("starting server")

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("an error raised while setting up server")
			errC <- err
		}
	}()
	return errC, nil
}
