package worker

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	apihandlers "github.com/rndosd/finclass/src/api/handlers"
	"github.com/rndosd/finclass/src/config"
	handlers "github.com/rndosd/finclass/src/worker/handlers"
	"github.com/rndosd/finclass/src/ws"
)

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler
	cfg     *config.Config
}

func NewServer(cfg *config.Config, logger *logrus.Logger) (*Server, error) {
	hub := ws.NewHub(logger)
	go hub.Run()

	handler, err := handlers.NewHandler(cfg, hub)
	if err != nil {
		return nil, err
	}

	server := &Server{
		Router:  chi.NewRouter(),
		Handler: handler,
		cfg:     cfg,
	}
	server.InitRoutes()
	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Get("/alive", apihandlers.Healthcheck)
	s.Router.Get("/ws", s.Handler.Hub.ServeWS)
	s.Router.Route("/api/prices", func(r chi.Router) {
		r.Post("/refresh", s.Handler.RefreshPrices)
	})
}

func NewHTTPServer(server *Server) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + server.cfg.Service.Port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		Handler:      server,
	}
	return httpServer
}
