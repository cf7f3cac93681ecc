package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var level = new(slog.LevelVar)

// Configure installs a text handler on the default slog logger with the
// given level name (DEBUG, INFO, WARN, ERROR). Unknown names mean INFO.
func Configure(name string) {
	ConfigureWriter(os.Stdout, name)
}

func ConfigureWriter(w io.Writer, name string) {
	SetLevel(ParseLevel(name))
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func SetLevel(l slog.Level) {
	level.Set(l)
}
