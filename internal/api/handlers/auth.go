package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/hustlex/admin-gateway/internal/auth"
	"github.com/hustlex/admin-gateway/internal/logger"
	"github.com/hustlex/admin-gateway/internal/session"
	"github.com/hustlex/admin-gateway/middleware"
)

type AuthHandler struct {
	gw       *auth.Gateway
	sessions middleware.StoreResolver
}

func NewAuthHandler(gw *auth.Gateway, sessions middleware.StoreResolver) *AuthHandler {
	return &AuthHandler{gw: gw, sessions: sessions}
}

// Login exchanges credentials and, on success, binds the stored payload to a
// fresh session id so a pre-login cookie is never promoted.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := render.DecodeJSON(r.Body, &creds); err != nil {
		sendError(w, r, "invalid_request", "invalid JSON body", http.StatusBadRequest)
		return
	}
	creds.Email = strings.TrimSpace(creds.Email)
	if err := creds.Validate(); err != nil {
		var ve *auth.ValidationError
		if errors.As(err, &ve) {
			sendError(w, r, "validation_failed", ve.Error(), http.StatusBadRequest)
			return
		}
		sendError(w, r, "validation_failed", err.Error(), http.StatusBadRequest)
		return
	}

	ctx := auth.WithClientIP(r.Context(), clientIP(r))
	sid := uuid.NewString()
	fresh := session.NewManager(h.sessions(sid))
	defer fresh.Close()

	res := h.gw.Login(ctx, fresh, creds)
	if !res.Success {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, res)
		return
	}

	if prev := middleware.GetSession(ctx); prev != nil {
		if err := prev.Clear(ctx); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("failed to clear pre-login session")
		}
	}
	middleware.SetSessionCookie(w, r, sid)
	render.JSON(w, r, res)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	res := h.gw.Logout(r.Context(), middleware.GetSession(r.Context()))
	middleware.ExpireSessionCookie(w, r)
	render.JSON(w, r, res)
}

func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.gw.Check(r.Context(), middleware.GetSession(r.Context())))
}

func (h *AuthHandler) Permissions(w http.ResponseWriter, r *http.Request) {
	var resp struct {
		Role *string `json:"role"`
	}
	if role, ok := h.gw.Permissions(r.Context(), middleware.GetSession(r.Context())); ok {
		resp.Role = &role
	}
	render.JSON(w, r, resp)
}

func (h *AuthHandler) Identity(w http.ResponseWriter, r *http.Request) {
	var resp struct {
		User json.RawMessage `json:"user"`
	}
	resp.User = h.gw.Identity(r.Context(), middleware.GetSession(r.Context()))
	if resp.User == nil {
		resp.User = json.RawMessage("null")
	}
	render.JSON(w, r, resp)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
