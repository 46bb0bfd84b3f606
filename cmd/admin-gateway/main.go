package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	zlog "github.com/rs/zerolog/log"

	"github.com/hustlex/admin-gateway/internal/api"
	"github.com/hustlex/admin-gateway/internal/api/handlers"
	"github.com/hustlex/admin-gateway/internal/audit"
	"github.com/hustlex/admin-gateway/internal/auth"
	"github.com/hustlex/admin-gateway/internal/config"
	"github.com/hustlex/admin-gateway/internal/downstream"
	"github.com/hustlex/admin-gateway/internal/graph"
	"github.com/hustlex/admin-gateway/internal/live"
	"github.com/hustlex/admin-gateway/internal/logger"
	"github.com/hustlex/admin-gateway/internal/proxy"
	"github.com/hustlex/admin-gateway/internal/session"
	"github.com/hustlex/admin-gateway/internal/tracing"
	"github.com/hustlex/admin-gateway/middleware"
)

func main() {
	runtimePath := flag.String("runtime-config", os.Getenv("RUNTIME_CONFIG"), "optional YAML file whose values override the environment")
	flag.Parse()

	cfg, err := config.Load(*runtimePath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init()
	if cfg.AdminSecretDefaulted {
		zlog.Warn().Msg("HASURA_ADMIN_SECRET not set, using the built-in fallback secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.Init(ctx, tracing.Config{
		ServiceName:  tracing.ServiceName,
		Environment:  cfg.Env,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Enabled:      cfg.TracingEnabled,
		SampleRatio:  cfg.TraceSampleRatio,
	})
	if err != nil {
		zlog.Fatal().Err(err).Msg("tracing init failed")
	}

	httpClient := downstream.NewClient(downstream.ClientConfig{
		ReadTimeout:  cfg.DownstreamReadTimeout,
		WriteTimeout: cfg.DownstreamWriteTimeout,
	})
	gateway := auth.NewGateway(httpClient, cfg.APIURL, audit.New(logger.Log))
	authz := graph.NewAuthorizer(cfg.GraphAuthMode, cfg.AdminSecret)
	gql := graph.NewClient(httpClient, cfg.GraphQLURL, authz)

	gqlProxy, err := proxy.New(cfg.GraphQLURL, authz, gateway)
	if err != nil {
		zlog.Fatal().Err(err).Msg("invalid GRAPHQL_URL")
	}

	checkers := []handlers.ReadinessChecker{
		handlers.NewHTTPReadinessChecker("auth_api", strings.TrimRight(cfg.APIURL, "/")+"/health", httpClient),
		handlers.CheckFunc{CheckName: "graph", Fn: gql.Healthz},
	}

	var (
		sessions    api.Scoper
		redisClient *session.RedisClient
		limiterRdb  redis.Scripter
	)
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		redisClient = session.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisClient.Ping(ctx); err != nil {
			zlog.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis not reachable yet")
		}
		sessions = session.NewRedisStore(redisClient, cfg.SessionTTL)
		limiterRdb = redisClient.Client()
		checkers = append(checkers, handlers.CheckFunc{CheckName: "redis", Fn: redisClient.Ping})
	default:
		sessions = session.NewMemoryStore(cfg.SessionTTL)
	}

	router := api.NewRouter(api.Deps{
		Gateway:    gateway,
		Data:       gql,
		GraphProxy: gqlProxy,
		Live:       live.Unsupported{URL: cfg.WSURL},
		Sessions:   api.ScopedResolver(sessions),
		Readiness:  checkers,
		Tracing:    tp.Enabled(),
		RateLimit:  middleware.RateLimit(limiterRdb, cfg.RateLimit, cfg.RateLimitWindow),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		zlog.Info().
			Str("addr", srv.Addr).
			Str("api_url", cfg.APIURL).
			Str("graphql_url", cfg.GraphQLURL).
			Str("graph_auth", cfg.GraphAuthMode).
			Str("session_backend", cfg.SessionBackend).
			Msg("admin gateway starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	zlog.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("server shutdown")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("tracing shutdown")
	}
}
