// Package config loads application configuration from a YAML file,
// environment variables, and .env files, in ascending precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix namespaces the environment variables read by viper, e.g.
// MAILRECON_LOG_LEVEL.
const envPrefix = "MAILRECON"

// Config is the full application configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Detector DetectorConfig `mapstructure:"detector"`
	Store    StoreConfig    `mapstructure:"store"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DetectorConfig tunes duplicate detection.
type DetectorConfig struct {
	FuzzyWindow      time.Duration `mapstructure:"fuzzy_window"`
	SubjectThreshold float64       `mapstructure:"subject_threshold"`
	BodyThreshold    float64       `mapstructure:"body_threshold"`
	MailboxOwner     string        `mapstructure:"mailbox_owner"`
}

// StoreConfig selects the sync-state backend.
type StoreConfig struct {
	// Driver is "memory" or "sqlite".
	Driver string `mapstructure:"driver"`
	// Path is the database file, used by the sqlite driver.
	Path string `mapstructure:"path"`
}

// MonitorConfig tunes the in-memory event log.
type MonitorConfig struct {
	LogCapacity int `mapstructure:"log_capacity"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Detector: DetectorConfig{
			FuzzyWindow:      5 * time.Minute,
			SubjectThreshold: 0.85,
			BodyThreshold:    0.70,
		},
		Store: StoreConfig{
			Driver: "memory",
			Path:   "mailrecon.db",
		},
		Monitor: MonitorConfig{
			LogCapacity: 1024,
		},
	}
}

// Load reads configuration. A .env file in the working directory is
// loaded first when present, then the named YAML config file (optional
// when path is empty), then MAILRECON_* environment variables override
// both.
func Load(path string) (Config, error) {
	// Missing .env is not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Default()
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("detector.fuzzy_window", cfg.Detector.FuzzyWindow)
	v.SetDefault("detector.subject_threshold", cfg.Detector.SubjectThreshold)
	v.SetDefault("detector.body_threshold", cfg.Detector.BodyThreshold)
	v.SetDefault("detector.mailbox_owner", cfg.Detector.MailboxOwner)
	v.SetDefault("store.driver", cfg.Store.Driver)
	v.SetDefault("store.path", cfg.Store.Path)
	v.SetDefault("monitor.log_capacity", cfg.Monitor.LogCapacity)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(path); statErr == nil {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
			return Config{}, fmt.Errorf("config file %s not found", path)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Driver {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.Detector.SubjectThreshold < 0 || c.Detector.SubjectThreshold > 1 {
		return fmt.Errorf("subject threshold %v out of range [0,1]", c.Detector.SubjectThreshold)
	}
	if c.Detector.BodyThreshold < 0 || c.Detector.BodyThreshold > 1 {
		return fmt.Errorf("body threshold %v out of range [0,1]", c.Detector.BodyThreshold)
	}
	if c.Detector.FuzzyWindow < 0 {
		return fmt.Errorf("fuzzy window must not be negative")
	}
	return nil
}
