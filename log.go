package fbxview

import (
	"log/slog"
	"os"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// SetLogger replaces the package logger. A nil logger is ignored.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// Logger returns the package logger.
func Logger() *slog.Logger {
	return logger
}

func parseLevel(s string) slog.Level {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lv
}
