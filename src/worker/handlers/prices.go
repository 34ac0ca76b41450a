package handlers

import (
	"context"
	"net/http"
	"time"
)

// RefreshPrices runs one refresh cycle on demand, outside the cron
// schedule. Admins use it after changing proxy URLs.
func (h *Handler) RefreshPrices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	if err := h.Sync.RefreshPrices(ctx); err != nil {
		h.respond(w, r, map[string]string{"error": err.Error()}, http.StatusBadGateway)
		return
	}
	h.respond(w, r, map[string]bool{"ok": true}, http.StatusOK)
}
