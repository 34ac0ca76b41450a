package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rndosd/finclass/src/utils"
)

func (h *Handler) GetQuotes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	quotes, err := h.Prices.GetQuotes(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, quotes, http.StatusOK)
}

func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		h.HandleErrors(w, utils.BadRequest("missing symbol URL parameter"))
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	chart, err := h.Prices.GetChart(ctx, symbol, days)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, chart, http.StatusOK)
}
