package sds011dash

import (
	"fmt"
	"io"
	"log/slog"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// orDiscard allows passing nil logger to constructors
func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}

func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

/*
NewLogger writes everything from FileLevel up to rotated log file, and from
ConsoleLevel up to console. verbose lowers console to debug
*/
func NewLogger(cfg LogConfig, verbose bool, console io.Writer) (*slog.Logger, io.Closer, error) {
	fileLevel, err := ParseLevel(cfg.FileLevel)
	if err != nil {
		return nil, nil, err
	}
	consoleLevel, err := ParseLevel(cfg.ConsoleLevel)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		consoleLevel = slog.LevelDebug
	}

	rotated := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
	handler := slogmulti.Fanout(
		slog.NewTextHandler(rotated, &slog.HandlerOptions{Level: fileLevel}),
		slog.NewTextHandler(console, &slog.HandlerOptions{Level: consoleLevel}),
	)
	return slog.New(handler).With("module", "photo-dash-sds011"), rotated, nil
}
