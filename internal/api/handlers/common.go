package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/hustlex/admin-gateway/internal/auth"
	"github.com/hustlex/admin-gateway/internal/domain"
	"github.com/hustlex/admin-gateway/internal/downstream"
	"github.com/hustlex/admin-gateway/internal/graph"
	"github.com/hustlex/admin-gateway/internal/logger"
	"github.com/hustlex/admin-gateway/middleware"
)

func sendError(w http.ResponseWriter, r *http.Request, code string, message string, status int) {
	resp := domain.APIError{}
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.RequestID = middleware.GetRequestID(r.Context())

	render.Status(r, status)
	render.JSON(w, r, resp)
}

// handleDataError answers a failed data call. Unauthorized errors end the
// session and send the caller to the login page; everything else is mapped
// to a status and passed through.
func handleDataError(w http.ResponseWriter, r *http.Request, gw *auth.Gateway, err error) {
	out := gw.OnError(r.Context(), middleware.GetSession(r.Context()), err)
	if out.Logout {
		middleware.ExpireSessionCookie(w, r)
		middleware.WriteLoginRedirect(w, r, "unauthorized", "session expired")
		return
	}
	err = out.Err

	var (
		gerr *graph.Error
		se   *downstream.StatusError
	)
	switch {
	case errors.Is(err, graph.ErrUnknownResource):
		sendError(w, r, "unknown_resource", err.Error(), http.StatusNotFound)
	case errors.Is(err, graph.ErrInvalidFilter):
		sendError(w, r, "invalid_filter", err.Error(), http.StatusBadRequest)
	case errors.Is(err, downstream.ErrNotFound):
		sendError(w, r, "not_found", "record not found", http.StatusNotFound)
	case errors.As(err, &gerr):
		sendError(w, r, "graphql_error", gerr.Message(), http.StatusUnprocessableEntity)
	case errors.As(err, &se):
		sendError(w, r, se.Code, se.Message, se.StatusCode)
	case errors.Is(err, downstream.ErrTimeout):
		sendError(w, r, "upstream_timeout", "graph service timed out", http.StatusGatewayTimeout)
	case errors.Is(err, downstream.ErrUnavailable):
		sendError(w, r, "upstream_unavailable", "graph service unreachable", http.StatusBadGateway)
	default:
		logger.Ctx(r.Context()).Error().Err(err).Msg("data request failed")
		sendError(w, r, "internal_error", "data request failed", http.StatusInternalServerError)
	}
}
