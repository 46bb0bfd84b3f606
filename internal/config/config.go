package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL      = "http://localhost:8081"
	DefaultGraphQLURL  = "http://localhost:8080/v1/graphql"
	DefaultWSURL       = "ws://localhost:8080/v1/graphql"
	DefaultAdminSecret = "hustlex_hasura_admin_secret"

	GraphAuthAdminSecret  = "admin_secret"
	GraphAuthSessionToken = "session_token"

	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type Config struct {
	Env  string
	Port string

	// Upstreams
	APIURL      string
	GraphQLURL  string
	WSURL       string
	AdminSecret string

	// GraphAuthMode selects how the gateway authenticates to the graph service.
	GraphAuthMode string

	// Session storage
	SessionBackend string
	SessionDir     string
	SessionTTL     time.Duration
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	DownstreamReadTimeout  time.Duration
	DownstreamWriteTimeout time.Duration

	// Data requests allowed per session per window; 0 disables.
	RateLimit       int
	RateLimitWindow time.Duration

	TracingEnabled bool
	OTLPEndpoint   string

	// Share of new traces sampled, in (0, 1].
	TraceSampleRatio float64

	// Set when the admin secret came from the built-in fallback.
	AdminSecretDefaulted bool
}

// runtimeFile mirrors the values a deployment can inject at runtime without
// rebuilding. Anything set here wins over the process environment.
type runtimeFile struct {
	APIURL      string `yaml:"api_url"`
	GraphQLURL  string `yaml:"graphql_url"`
	WSURL       string `yaml:"ws_url"`
	AdminSecret string `yaml:"hasura_admin_secret"`
}

// Load reads .env (if present), the process environment and, when runtimePath is
// non-empty, the runtime YAML file.
func Load(runtimePath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:            getEnv("APP_ENV", "dev"),
		Port:           getEnv("HTTP_PORT", "8082"),
		APIURL:         getEnv("API_URL", DefaultAPIURL),
		GraphQLURL:     getEnv("GRAPHQL_URL", DefaultGraphQLURL),
		WSURL:          getEnv("WS_URL", DefaultWSURL),
		AdminSecret:    os.Getenv("HASURA_ADMIN_SECRET"),
		GraphAuthMode:  getEnv("GRAPH_AUTH_MODE", GraphAuthAdminSecret),
		SessionBackend: getEnv("SESSION_BACKEND", ""),
		SessionDir:     getEnv("SESSION_DIR", defaultSessionDir()),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 0); err != nil {
		return nil, err
	}
	if cfg.DownstreamReadTimeout, err = getDuration("DOWNSTREAM_READ_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.DownstreamWriteTimeout, err = getDuration("DOWNSTREAM_WRITE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = getInt("RATE_LIMIT", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = getDuration("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if cfg.TracingEnabled, err = getBool("TRACING_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.TraceSampleRatio, err = getFloat("TRACING_SAMPLE_RATIO", 1); err != nil {
		return nil, err
	}

	if runtimePath != "" {
		if err := cfg.applyRuntimeFile(runtimePath); err != nil {
			return nil, err
		}
	}

	if cfg.AdminSecret == "" {
		cfg.AdminSecret = DefaultAdminSecret
		cfg.AdminSecretDefaulted = true
	}

	if cfg.SessionBackend == "" {
		cfg.SessionBackend = SessionBackendMemory
		if cfg.RedisAddr != "" {
			cfg.SessionBackend = SessionBackendRedis
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyRuntimeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read runtime config %s: %w", path, err)
	}

	var rf runtimeFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return fmt.Errorf("parse runtime config %s: %w", path, err)
	}

	if v := strings.TrimSpace(rf.APIURL); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(rf.GraphQLURL); v != "" {
		c.GraphQLURL = v
	}
	if v := strings.TrimSpace(rf.WSURL); v != "" {
		c.WSURL = v
	}
	if v := strings.TrimSpace(rf.AdminSecret); v != "" {
		c.AdminSecret = v
	}
	return nil
}

func (c *Config) validate() error {
	switch c.GraphAuthMode {
	case GraphAuthAdminSecret, GraphAuthSessionToken:
	default:
		return fmt.Errorf("invalid GRAPH_AUTH_MODE: %q", c.GraphAuthMode)
	}

	switch c.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("SESSION_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("invalid SESSION_BACKEND: %q", c.SessionBackend)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("RATE_LIMIT must not be negative")
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("SESSION_TTL must not be negative")
	}
	if c.TraceSampleRatio <= 0 || c.TraceSampleRatio > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATIO must be in (0, 1], got %v", c.TraceSampleRatio)
	}
	return nil
}

// HTTPAddress returns the listen address for the gateway.
func (c *Config) HTTPAddress() string {
	return ":" + c.Port
}

func defaultSessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hxadmin"
	}
	return filepath.Join(home, ".hxadmin")
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q: %w", key, v, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float for %s: %q: %w", key, v, err)
	}
	return f, nil
}

func getBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid bool for %s: %q: %w", key, v, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}
