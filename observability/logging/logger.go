// Package logging provides the structured, pretty-printed logger used
// across the node: a slog.Handler that tags every line with the
// emitting component and colorizes level and attributes for a human
// reading a terminal.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Component names used as log source tags.
const (
	CompNode       = "node"
	CompConsensus  = "consensus"
	CompForkChoice = "forkchoice"
	CompValidator  = "validator"
	CompStorage    = "storage"
	CompMetrics    = "metrics"
)

const (
	reset  = "\033[0m"
	dim    = "\033[2m"
	red    = "\033[31m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	green  = "\033[32m"
)

var (
	defaultLogger *slog.Logger
	once          sync.Once
)

// Init sets up the global logger with the given minimum level.
func Init(level slog.Level) {
	once.Do(func() {
		handler := &prettyHandler{out: os.Stdout, level: level}
		defaultLogger = slog.New(handler)
		slog.SetDefault(defaultLogger)
	})
}

// NewComponentLogger returns a logger tagged with a component name,
// initializing the global logger at info level if it hasn't been yet.
func NewComponentLogger(component string) *slog.Logger {
	if defaultLogger == nil {
		Init(slog.LevelInfo)
	}
	return defaultLogger.With(slog.String("comp", component))
}

// ShortHash returns the first 8 hex characters of a 32-byte root, for
// compact log lines.
func ShortHash(h [32]byte) string {
	return fmt.Sprintf("%x", h[:4])
}

// prettyHandler is a slog.Handler producing colored, aligned output:
//
//	2026-02-13 14:23:45.123 INF [forkchoice] message  key=value
type prettyHandler struct {
	out   io.Writer
	level slog.Level
	attrs []slog.Attr
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	timestamp := r.Time.Format("2006-01-02 15:04:05.000")

	var levelStr, levelColor string
	switch {
	case r.Level >= slog.LevelError:
		levelStr, levelColor = "ERR", red
	case r.Level >= slog.LevelWarn:
		levelStr, levelColor = "WRN", yellow
	case r.Level >= slog.LevelInfo:
		levelStr, levelColor = "INF", green
	default:
		levelStr, levelColor = "DBG", dim
	}

	comp := ""
	var filtered []slog.Attr
	for _, a := range h.attrs {
		if a.Key == "comp" {
			comp = a.Value.String()
		} else {
			filtered = append(filtered, a)
		}
	}

	compTag := ""
	if comp != "" {
		compTag = fmt.Sprintf(" %s[%s]%s", cyan, comp, reset)
	}

	attrStr := ""
	for _, a := range filtered {
		attrStr += fmt.Sprintf("  %s%s=%s%s", dim, a.Key, a.Value.String(), reset)
	}
	r.Attrs(func(a slog.Attr) bool {
		attrStr += fmt.Sprintf("  %s%s=%s%s", dim, a.Key, a.Value.String(), reset)
		return true
	})

	_, err := fmt.Fprintf(h.out, "%s%s%s %s%-3s%s%s %s%s\n",
		dim, timestamp, reset,
		levelColor, levelStr, reset,
		compTag,
		r.Message,
		attrStr,
	)
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &prettyHandler{out: h.out, level: h.level, attrs: newAttrs}
}

func (h *prettyHandler) WithGroup(_ string) slog.Handler {
	return h
}
