package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/rndosd/finclass/src/api/handlers"
	"github.com/rndosd/finclass/src/auth"
	"github.com/rndosd/finclass/src/config"
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
	server.InitRoutes(logger)
	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes(logger *logrus.Logger) {
	tokenAuth := s.TokenAuth()

	s.Router.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler)
	s.Router.Use(LoggerMiddleware(logger))

	s.Router.Get("/alive", handlers.Healthcheck)
	s.Router.Get("/ws", s.Handler.WS)

	s.Router.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator)
		r.Use(ClaimsMiddleware)

		r.Route("/api/market", func(r chi.Router) {
			r.Get("/quotes", s.Handler.GetQuotes)
			r.Get("/chart/{symbol}", s.Handler.GetChart)
		})

		r.Route("/api/trades", func(r chi.Router) {
			r.Post("/buy", s.Handler.Buy)
			r.Post("/sell", s.Handler.Sell)
			r.Post("/exchange", s.Handler.Exchange)
			r.Get("/history", s.Handler.GetTradeHistory)
		})

		r.Route("/api/portfolio", func(r chi.Router) {
			r.Get("/", s.Handler.GetPortfolio)
			r.Get("/{studentId}", s.Handler.GetStudentPortfolio)
		})

		r.Route("/api/settings", func(r chi.Router) {
			r.Get("/", s.Handler.GetMarketSettings)
			r.Put("/", s.Handler.UpdateMarketSettings)
			r.Get("/global", s.Handler.GetGlobalSettings)
			r.Put("/global", s.Handler.UpdateGlobalSettings)
		})

		r.Route("/api/students", func(r chi.Router) {
			r.Get("/me", s.Handler.GetMe)
			r.Get("/", s.Handler.ListStudents)
			r.Post("/", s.Handler.CreateStudent)
			r.Post("/{studentId}/credit", s.Handler.AdjustCredit)
			r.Post("/{studentId}/reward", s.Handler.PayReward)
		})
	})
}

func (s *Server) TokenAuth() *jwtauth.JWTAuth {
	return auth.NewTokenAuth(s.cfg.Auth.JWTSecret)
}

func NewHTTPServer(server *Server) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + server.cfg.Service.Port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Handler:      server,
	}
	return httpServer
}
