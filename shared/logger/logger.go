// Package logger holds the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var Log *slog.Logger

// level is shared by every handler built here; SetLevel changes it in place.
var level = new(slog.LevelVar)

func init() {
	Initialize("info", false)
}

// Initialize writes to stdout, as text or JSON.
func Initialize(lvl string, useJSON bool) {
	InitializeWithWriter(os.Stdout, lvl, useJSON)
}

func InitializeWithWriter(w io.Writer, lvl string, useJSON bool) {
	SetLevel(lvl)
	opts := &slog.HandlerOptions{Level: level, AddSource: true}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if useJSON {
		h = slog.NewJSONHandler(w, opts)
	}
	Log = slog.New(h)
	slog.SetDefault(Log)
}

// SetLevel accepts debug, info, warn(ing) and error. Anything else means info.
func SetLevel(lvl string) {
	lvl = strings.ToLower(strings.TrimSpace(lvl))
	if lvl == "warning" {
		lvl = "warn"
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(lvl)); err != nil {
		l = slog.LevelInfo
	}
	level.Set(l)
}

// Component returns a child logger tagged with the component name.
func Component(name string) *slog.Logger {
	return Log.With("component", name)
}
