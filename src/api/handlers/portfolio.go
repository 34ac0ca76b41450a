package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rndosd/finclass/src/auth"
	"github.com/rndosd/finclass/src/utils"
)

func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		h.HandleErrors(w, utils.Unauthorized("missing credentials"))
		return
	}

	summary, err := h.Portfolio.GetSummary(ctx, claims.UserID, claims.ClassID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, summary, http.StatusOK)
}

func (h *Handler) GetStudentPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || !claims.Can(auth.CapManageRoster) {
		h.HandleErrors(w, utils.Forbidden("roster access required"))
		return
	}

	studentID := chi.URLParam(r, "studentId")
	if studentID == "" {
		h.HandleErrors(w, utils.BadRequest("missing studentId URL parameter"))
		return
	}

	summary, err := h.Portfolio.GetSummary(ctx, studentID, claims.ClassID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, summary, http.StatusOK)
}
