package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rndosd/finclass/src/auth"
	"github.com/rndosd/finclass/src/schemas"
	"github.com/rndosd/finclass/src/utils"
)

func (h *Handler) GetMarketSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		h.HandleErrors(w, utils.Unauthorized("missing credentials"))
		return
	}

	settings, err := h.Settings.GetClassSettings(ctx, claims.ClassID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, settings, http.StatusOK)
}

func (h *Handler) UpdateMarketSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || !claims.Can(auth.CapManageSettings) {
		h.HandleErrors(w, utils.Forbidden("settings can only be changed by a teacher"))
		return
	}

	var patch schemas.MarketSettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.HandleErrors(w, utils.BadRequest("malformed settings patch"))
		return
	}

	updated, err := h.Settings.UpdateClassSettings(ctx, claims.ClassID, patch)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, updated, http.StatusOK)
}

func (h *Handler) GetGlobalSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || !claims.Can(auth.CapManageGlobal) {
		h.HandleErrors(w, utils.Forbidden("global settings require admin access"))
		return
	}

	settings, err := h.Settings.GetGlobalSettings(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, settings, http.StatusOK)
}

func (h *Handler) UpdateGlobalSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || !claims.Can(auth.CapManageGlobal) {
		h.HandleErrors(w, utils.Forbidden("global settings require admin access"))
		return
	}

	var patch schemas.GlobalSettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.HandleErrors(w, utils.BadRequest("malformed settings patch"))
		return
	}

	updated, err := h.Settings.UpdateGlobalSettings(ctx, patch)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, updated, http.StatusOK)
}
