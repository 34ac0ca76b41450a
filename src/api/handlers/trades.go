package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rndosd/finclass/src/auth"
	"github.com/rndosd/finclass/src/schemas"
	"github.com/rndosd/finclass/src/utils"
)

func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || !claims.Can(auth.CapTrade) {
		h.HandleErrors(w, utils.Forbidden("trading is not permitted for this account"))
		return
	}

	var req schemas.TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("malformed trade request"))
		return
	}

	result := h.Trades.Buy(ctx, claims, &req)
	h.respond(w, r, result, http.StatusOK)
}

func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || !claims.Can(auth.CapTrade) {
		h.HandleErrors(w, utils.Forbidden("trading is not permitted for this account"))
		return
	}

	var req schemas.TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("malformed trade request"))
		return
	}

	result := h.Trades.Sell(ctx, claims, &req)
	h.respond(w, r, result, http.StatusOK)
}

func (h *Handler) Exchange(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || !claims.Can(auth.CapTrade) {
		h.HandleErrors(w, utils.Forbidden("trading is not permitted for this account"))
		return
	}

	var req schemas.ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("malformed exchange request"))
		return
	}

	result := h.Trades.Exchange(ctx, claims, &req)
	h.respond(w, r, result, http.StatusOK)
}

func (h *Handler) GetTradeHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		h.HandleErrors(w, utils.Unauthorized("missing credentials"))
		return
	}

	// Teachers can inspect any student's history; students only their own.
	studentID := claims.UserID
	if requested := r.URL.Query().Get("studentId"); requested != "" && requested != claims.UserID {
		if !claims.Can(auth.CapManageRoster) {
			h.HandleErrors(w, utils.Forbidden("cannot view another student's history"))
			return
		}
		studentID = requested
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	history, err := h.Portfolio.GetTradeHistory(ctx, studentID, limit, offset)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, history, http.StatusOK)
}
