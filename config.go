package sds011dash

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

/*
Config is loaded from yaml. Old config.json works too, json is yaml
*/
type Config struct {
	Endpoint               string       `yaml:"endpoint"`
	Device                 string       `yaml:"device"`
	SecondsPerCycle        Seconds      `yaml:"seconds_per_cycle"`
	DisconnectInQuietHours bool         `yaml:"disconnect_in_quiet_hours"`
	SecondsBetweenReports  *Seconds     `yaml:"seconds_between_reports"`
	RequestTimeoutSeconds  Seconds      `yaml:"request_timeout_seconds"`
	HumidityPercent        *float64     `yaml:"humidity_percent"`
	Log                    LogConfig    `yaml:"log"`
	Status                 StatusConfig `yaml:"status"`
	Simulate               bool         `yaml:"simulate"`
	Sim                    *SensorModel `yaml:"sim"`
}

type LogConfig struct {
	File         string `yaml:"file"`
	MaxSizeMB    int    `yaml:"max_size_mb"`
	MaxBackups   int    `yaml:"max_backups"`
	FileLevel    string `yaml:"file_level"`
	ConsoleLevel string `yaml:"console_level"`
}

type StatusConfig struct {
	Addr string `yaml:"addr"` //Empty disables status server
}

// Seconds accepts integer or numeric string, "60" is coerced
type Seconds int

func (s *Seconds) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %v: seconds must be a number", value.Line)
	}
	n, err := strconv.Atoi(strings.TrimSpace(value.Value))
	if err != nil {
		return fmt.Errorf("line %v: seconds %q is not an integer", value.Line, value.Value)
	}
	*s = Seconds(n)
	return nil
}

func (s Seconds) Duration() time.Duration {
	return time.Duration(s) * time.Second
}

const (
	DEFAULTLOGFILE        = "photo-dash-sds011.log"
	DEFAULTCHANNELPAUSE   = 10
	DEFAULTREQUESTTIMEOUT = 5
)

// Override is applied after file is read, before defaults and validation. For command line flags
type Override func(*Config)

func LoadConfig(path string, overrides ...Override) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config %v: %w", path, err)
	}
	return ParseConfig(raw, overrides...)
}

func ParseConfig(raw []byte, overrides ...Override) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config is malformed: %w", err)
	}
	for _, o := range overrides {
		o(&cfg)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.SecondsBetweenReports == nil {
		pause := Seconds(DEFAULTCHANNELPAUSE)
		c.SecondsBetweenReports = &pause
	}
	if c.RequestTimeoutSeconds == 0 {
		c.RequestTimeoutSeconds = DEFAULTREQUESTTIMEOUT
	}
	if c.Log.File == "" {
		c.Log.File = DEFAULTLOGFILE
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 1
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
	if c.Log.FileLevel == "" {
		c.Log.FileLevel = "debug"
	}
	if c.Log.ConsoleLevel == "" {
		c.Log.ConsoleLevel = "warn"
	}
	if c.Simulate && c.Sim == nil {
		model := DefaultSensorModel()
		c.Sim = &model
	}
}

func (c *Config) validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if !strings.HasPrefix(c.Endpoint, "http://") && !strings.HasPrefix(c.Endpoint, "https://") {
		return fmt.Errorf("endpoint %q must be http or https url", c.Endpoint)
	}
	if c.Device == "" && !c.Simulate {
		return fmt.Errorf("device is required")
	}
	if c.SecondsPerCycle <= 0 {
		return fmt.Errorf("seconds_per_cycle is required and must be positive")
	}
	if *c.SecondsBetweenReports < 0 {
		return fmt.Errorf("seconds_between_reports must not be negative")
	}
	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("request_timeout_seconds must not be negative")
	}
	if c.HumidityPercent != nil && (*c.HumidityPercent < 0 || 100 < *c.HumidityPercent) {
		return fmt.Errorf("humidity_percent %v not in 0-100", *c.HumidityPercent)
	}
	for _, lvl := range []string{c.Log.FileLevel, c.Log.ConsoleLevel} {
		if _, err := ParseLevel(lvl); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) PollSettings() PollSettings {
	return PollSettings{
		Interval:               c.SecondsPerCycle.Duration(),
		ChannelPause:           c.SecondsBetweenReports.Duration(),
		DisconnectInQuietHours: c.DisconnectInQuietHours,
		Humidity:               c.HumidityPercent,
	}
}
