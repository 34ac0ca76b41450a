package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rndosd/finclass/src/auth"
	"github.com/rndosd/finclass/src/schemas"
	"github.com/rndosd/finclass/src/utils"
)

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		h.HandleErrors(w, utils.Unauthorized("missing credentials"))
		return
	}

	student, err := h.Students.Get(ctx, claims.UserID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, student, http.StatusOK)
}

func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || !claims.Can(auth.CapManageRoster) {
		h.HandleErrors(w, utils.Forbidden("roster access required"))
		return
	}

	students, err := h.Students.List(ctx, claims.ClassID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, students, http.StatusOK)
}

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || !claims.Can(auth.CapManageRoster) {
		h.HandleErrors(w, utils.Forbidden("roster access required"))
		return
	}

	var req schemas.CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("malformed student request"))
		return
	}

	student, err := h.Students.Create(ctx, claims.ClassID, &req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, student, http.StatusCreated)
}

func (h *Handler) AdjustCredit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || !claims.Can(auth.CapManageRoster) {
		h.HandleErrors(w, utils.Forbidden("roster access required"))
		return
	}

	studentID := chi.URLParam(r, "studentId")
	var req schemas.CreditAdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("malformed credit adjustment"))
		return
	}

	if err := h.Students.AdjustCredit(ctx, studentID, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, map[string]bool{"ok": true}, http.StatusOK)
}

func (h *Handler) PayReward(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || !claims.Can(auth.CapManageRoster) {
		h.HandleErrors(w, utils.Forbidden("roster access required"))
		return
	}

	studentID := chi.URLParam(r, "studentId")
	var req schemas.RewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("malformed reward request"))
		return
	}

	if err := h.Students.PayReward(ctx, studentID, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, map[string]bool{"ok": true}, http.StatusOK)
}
