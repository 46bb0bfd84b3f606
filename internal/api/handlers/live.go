package handlers

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/hustlex/admin-gateway/internal/live"
)

type LiveHandler struct {
	channel live.Channel
}

func NewLiveHandler(ch live.Channel) *LiveHandler {
	return &LiveHandler{channel: ch}
}

// Status tells the dashboard whether live updates exist, so it can fall back
// to polling instead of waiting for pushes.
func (h *LiveHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h.channel == nil || !h.channel.Supported() {
		sendError(w, r, "not_implemented", live.ErrNotImplemented.Error(), http.StatusNotImplemented)
		return
	}
	render.JSON(w, r, map[string]bool{"supported": true})
}
