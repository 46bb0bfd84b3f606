package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"

	"github.com/hustlex/admin-gateway/internal/auth"
	"github.com/hustlex/admin-gateway/internal/downstream"
	"github.com/hustlex/admin-gateway/internal/graph"
	"github.com/hustlex/admin-gateway/internal/logger"
	"github.com/hustlex/admin-gateway/middleware"
)

const maxInspectBytes = 10 << 20

type credsKey struct{}

// GraphQL forwards raw GraphQL requests from the dashboard to the graph
// service. Browser cookies and credentials are stripped; the gateway's own
// credentials are attached instead. An unauthorized answer ends the session.
type GraphQL struct {
	rp      *httputil.ReverseProxy
	authz   graph.Authorizer
	gateway *auth.Gateway
}

// New builds the proxy for the GraphQL endpoint, e.g.
// "http://hasura:8080/v1/graphql". Every request is sent to that exact path.
func New(endpoint string, authz graph.Authorizer, gateway *auth.Gateway) (*GraphQL, error) {
	target, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}

	p := &GraphQL{authz: authz, gateway: gateway}

	rp := httputil.NewSingleHostReverseProxy(target)
	originalDirector := rp.Director

	rp.Director = func(req *http.Request) {
		originalDirector(req)

		req.Host = target.Host
		req.URL.Path = target.Path
		req.URL.RawPath = ""

		req.Header.Del("Cookie")
		req.Header.Del("Authorization")
		// the transport then negotiates gzip itself and hands inspect plain bytes
		req.Header.Del("Accept-Encoding")
		for k := range req.Header {
			if strings.HasPrefix(strings.ToLower(k), "x-hasura-") {
				req.Header.Del(k)
			}
		}
		if creds, ok := req.Context().Value(credsKey{}).(http.Header); ok {
			for k, vs := range creds {
				for _, v := range vs {
					req.Header.Add(k, v)
				}
			}
		}

		if reqID := middleware.GetRequestID(req.Context()); reqID != "" {
			req.Header.Set(middleware.HeaderXRequestID, reqID)
		}
	}

	rp.Transport = &middleware.TracingTransport{}
	rp.ModifyResponse = p.inspect

	rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		reqID := middleware.GetRequestID(r.Context())

		logger.Log.Error().
			Err(err).
			Str("target", target.Redacted()).
			Str("request_id", reqID).
			Msg("upstream_proxy_error")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"code":"upstream_unavailable","message":"graph service unreachable","request_id":"` + reqID + `"}}`))
	}

	p.rp = rp
	return p, nil
}

func (p *GraphQL) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.GetSession(ctx)

	creds := http.Header{}
	if err := p.authz.Authorize(ctx, sess, creds); err != nil {
		out := p.gateway.OnError(ctx, sess, err)
		if out.Logout {
			middleware.ExpireSessionCookie(w, r)
			middleware.WriteLoginRedirect(w, r, "unauthorized", "session expired")
			return
		}
		logger.Ctx(ctx).Error().Err(err).Msg("graph credentials unavailable")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":"session_unavailable","message":"session store unavailable"}}`))
		return
	}

	p.rp.ServeHTTP(w, r.WithContext(context.WithValue(ctx, credsKey{}, creds)))
}

// inspect runs OnError for a 401 or an invalid-jwt error body, so the session
// is dropped and the browser cookie expired before the answer is relayed.
// Bodies above maxInspectBytes are relayed whole without the body check.
func (p *GraphQL) inspect(resp *http.Response) error {
	unauthorized := resp.StatusCode == http.StatusUnauthorized
	if !unauthorized && strings.Contains(resp.Header.Get("Content-Type"), "json") {
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxInspectBytes+1))
		if err != nil {
			_ = resp.Body.Close()
			return err
		}
		if len(body) > maxInspectBytes {
			resp.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(body), resp.Body), Closer: resp.Body}
			return nil
		}
		_ = resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(body))
		resp.ContentLength = int64(len(body))
		resp.Header.Set("Content-Length", strconv.Itoa(len(body)))
		unauthorized = hasInvalidJWT(body)
	}
	if !unauthorized {
		return nil
	}

	ctx := resp.Request.Context()
	p.gateway.OnError(ctx, middleware.GetSession(ctx), downstream.ErrUnauthorized)
	resp.Header.Add("Set-Cookie", middleware.ExpiredSessionCookie(resp.Request.TLS != nil).String())
	return nil
}

// replayBody puts the already-read prefix back in front of the upstream body.
type replayBody struct {
	io.Reader
	io.Closer
}

func hasInvalidJWT(body []byte) bool {
	var env struct {
		Errors []graph.ErrorEntry `json:"errors"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return false
	}
	for _, e := range env.Errors {
		if e.Extensions.Code == "invalid-jwt" {
			return true
		}
	}
	return false
}
