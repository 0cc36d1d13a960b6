package sds011dash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadLegacyJSONConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{"endpoint": "http://dash.local:5000", "device": "/dev/ttyUSB0", "seconds_per_cycle": "60"}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SecondsPerCycle != 60 {
		t.Errorf("seconds_per_cycle string not coerced, got %v", cfg.SecondsPerCycle)
	}
	if cfg.DisconnectInQuietHours {
		t.Errorf("disconnect_in_quiet_hours default must be false")
	}
	if *cfg.SecondsBetweenReports != DEFAULTCHANNELPAUSE {
		t.Errorf("seconds_between_reports default %v", *cfg.SecondsBetweenReports)
	}
	if cfg.Log.File != DEFAULTLOGFILE || cfg.Log.MaxBackups != 5 || cfg.Log.ConsoleLevel != "warn" {
		t.Errorf("log defaults %#v", cfg.Log)
	}

	settings := cfg.PollSettings()
	if settings.Interval != time.Minute || settings.ChannelPause != 10*time.Second || settings.Humidity != nil {
		t.Errorf("poll settings %#v", settings)
	}
}

func TestParseYAMLConfig(t *testing.T) {
	data := `
endpoint: https://dash.example.com
device: /dev/ttyAMA0
seconds_per_cycle: 300
disconnect_in_quiet_hours: true
seconds_between_reports: 0
humidity_percent: 65.5
status:
  addr: ":9100"
log:
  console_level: info
`
	cfg, err := ParseConfig([]byte(data))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if !cfg.DisconnectInQuietHours || cfg.Status.Addr != ":9100" || *cfg.HumidityPercent != 65.5 {
		t.Errorf("config %#v", cfg)
	}
	if *cfg.SecondsBetweenReports != 0 {
		t.Errorf("explicit zero pause overridden by default")
	}
	if cfg.Log.ConsoleLevel != "info" || cfg.Log.FileLevel != "debug" {
		t.Errorf("log levels %#v", cfg.Log)
	}
}

func TestConfigErrors(t *testing.T) {
	testCases := map[string]string{
		"missing endpoint": `{"device": "/dev/ttyUSB0", "seconds_per_cycle": 60}`,
		"bad endpoint":     `{"endpoint": "dash", "device": "/dev/ttyUSB0", "seconds_per_cycle": 60}`,
		"missing device":   `{"endpoint": "http://dash", "seconds_per_cycle": 60}`,
		"missing cycle":    `{"endpoint": "http://dash", "device": "/dev/ttyUSB0"}`,
		"word cycle":       `{"endpoint": "http://dash", "device": "/dev/ttyUSB0", "seconds_per_cycle": "sixty"}`,
		"negative pause":   `{"endpoint": "http://dash", "device": "/dev/ttyUSB0", "seconds_per_cycle": 60, "seconds_between_reports": -1}`,
		"humidity":         `{"endpoint": "http://dash", "device": "/dev/ttyUSB0", "seconds_per_cycle": 60, "humidity_percent": 120}`,
		"log level":        `{"endpoint": "http://dash", "device": "/dev/ttyUSB0", "seconds_per_cycle": 60, "log": {"file_level": "loud"}}`,
		"not json":         `{"endpoint": `,
	}
	for name, data := range testCases {
		if _, err := ParseConfig([]byte(data)); err == nil {
			t.Errorf("%v: expected error", name)
		}
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil || !strings.Contains(err.Error(), "missing.json") {
		t.Errorf("missing file error %v", err)
	}
}

func TestSimulateConfigDoesNotNeedDevice(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"endpoint": "http://dash", "seconds_per_cycle": 5, "simulate": true}`))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Sim == nil || cfg.Sim.Id != DefaultSensorModel().Id {
		t.Errorf("default sensor model not applied %#v", cfg.Sim)
	}
}

func TestOverrideBeforeValidation(t *testing.T) {
	data := []byte(`{"endpoint": "http://dash", "seconds_per_cycle": 5}`)
	if _, err := ParseConfig(data); err == nil {
		t.Fatalf("device must be required")
	}
	cfg, err := ParseConfig(data, func(c *Config) { c.Simulate = true })
	if err != nil {
		t.Fatalf("simulate override: %v", err)
	}
	if !cfg.Simulate || cfg.Sim == nil {
		t.Errorf("override not applied %#v", cfg)
	}
}
