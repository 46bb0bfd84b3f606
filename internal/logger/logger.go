package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/hustlex/admin-gateway/middleware"
)

var Log = zerolog.Nop()

// Options name the binary in every line and pick the level used when
// LOG_LEVEL is unset or unreadable.
type Options struct {
	Service      string
	DefaultLevel zerolog.Level
}

// Gateway is the server's setup: info and above on stdout.
var Gateway = Options{Service: "admin-gateway", DefaultLevel: zerolog.InfoLevel}

// CLI keeps the terminal quiet: hxadmin logs warnings and errors to stderr.
var CLI = Options{Service: "hxadmin", DefaultLevel: zerolog.WarnLevel}

func Init() {
	InitWithWriter(os.Stdout, Gateway)
}

// InitWithWriter configures the global logger from LOG_LEVEL and LOG_FORMAT
// ("json" or "console").
func InitWithWriter(w io.Writer, opts Options) {
	raw := os.Getenv("LOG_LEVEL")
	level, err := zerolog.ParseLevel(raw)
	if raw == "" || err != nil {
		level = opts.DefaultLevel
	}

	var l zerolog.Logger
	if os.Getenv("LOG_FORMAT") == "json" {
		l = zerolog.New(w)
	} else {
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    !isTerminal(w),
		})
	}
	l = l.With().Timestamp().Str("service", opts.Service).Logger().Level(level)

	Log = l
	zlog.Logger = l

	if raw != "" && err != nil {
		Log.Warn().Str("log_level", raw).Stringer("using", level).Msg("unknown LOG_LEVEL")
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// Ctx returns the logger with the request id and bound session id attached
// when ctx carries them.
func Ctx(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &Log
	}
	reqID := middleware.GetRequestID(ctx)
	sid := middleware.GetSessionID(ctx)
	if reqID == "" && sid == "" {
		return &Log
	}
	c := Log.With()
	if reqID != "" {
		c = c.Str("request_id", reqID)
	}
	if sid != "" {
		c = c.Str("session", shortID(sid))
	}
	l := c.Logger()
	return &l
}

// shortID keeps enough of a session id to correlate lines without writing a
// usable cookie value to the log.
func shortID(sid string) string {
	if len(sid) > 8 {
		return sid[:8]
	}
	return sid
}
