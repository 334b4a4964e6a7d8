// Package logger holds the process-wide zerolog logger.
//
// main calls Init once; components take a child from Component and receive
// it through their constructors. Tests use zerolog.Nop() directly and never
// touch the singleton.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger behaviour at initialisation time.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Anything else is info.
	Level string
	// Pretty switches from JSON lines to coloured console output.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service is stamped on every entry as "service" when set.
	Service string
}

var state struct {
	mu     sync.Mutex
	ready  bool
	logger zerolog.Logger
}

// Init builds the singleton. Only the first call after start (or after Reset)
// takes effect; later calls return the existing logger.
func Init(opts Options) zerolog.Logger {
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.ready {
		return state.logger
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	lvl := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(lvl)

	ctx := zerolog.New(writer(opts)).Level(lvl).With().Timestamp().Caller()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}

	state.logger = ctx.Logger()
	state.ready = true
	return state.logger
}

func writer(opts Options) io.Writer {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return out
}

// Get returns the singleton. It panics before Init.
func Get() zerolog.Logger {
	state.mu.Lock()
	defer state.mu.Unlock()
	if !state.ready {
		panic("logger: Get() called before Init()")
	}
	return state.logger
}

// Component returns a child of the singleton tagged with component=name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset drops the singleton so the next Init rebuilds it. Tests only.
func Reset() {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.ready = false
	state.logger = zerolog.Logger{}
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
