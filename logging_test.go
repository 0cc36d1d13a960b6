package sds011dash

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerSplitsLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	var console bytes.Buffer
	logger, closer, err := NewLogger(LogConfig{File: path, MaxSizeMB: 1, MaxBackups: 1, FileLevel: "debug", ConsoleLevel: "warn"}, false, &console)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("debug line")
	logger.Warn("warn line")
	closer.Close()

	if strings.Contains(console.String(), "debug line") || !strings.Contains(console.String(), "warn line") {
		t.Errorf("console got %q", console.String())
	}
	file, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(file), "debug line") || !strings.Contains(string(file), "warn line") {
		t.Errorf("file got %q", file)
	}
}

func TestNewLoggerVerbose(t *testing.T) {
	var console bytes.Buffer
	logger, closer, err := NewLogger(LogConfig{File: filepath.Join(t.TempDir(), "v.log"), FileLevel: "error", ConsoleLevel: "error"}, true, &console)
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()
	logger.Debug("shown")
	if !strings.Contains(console.String(), "shown") {
		t.Errorf("verbose did not lower console level: %q", console.String())
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"debug", "INFO", "warn", "error"} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("%v: %v", s, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Errorf("invalid level accepted")
	}
}
