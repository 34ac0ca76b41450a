package handlers

import (
	"net/http"
)

// WS upgrades the connection and subscribes the client to pushed
// settings/price/trade events.
func (h *Handler) WS(w http.ResponseWriter, r *http.Request) {
	h.Hub.ServeWS(w, r)
}
