package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

const (
	KeyLogLevel       = "log.level"
	KeyLogFormat      = "log.format"
	KeySeedFile       = "seed.file"
	KeyJournalEnabled = "journal.enabled"
	KeyMetricsBackend = "metrics.backend"
	KeyLoadUsers      = "load.users"
	KeyLoadRounds     = "load.rounds"

	EnvPrefix = "LIBRARY"

	MetricsBackendNone       = "none"
	MetricsBackendOTel       = "otel"
	MetricsBackendPrometheus = "prometheus"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// ErrInvalidConfig is returned when a setting is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all settings of the simulation.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Seed    SeedConfig    `mapstructure:"seed"`
	Journal JournalConfig `mapstructure:"journal"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Load    LoadConfig    `mapstructure:"load"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SeedConfig struct {
	File string `mapstructure:"file"` // empty means DefaultSeed
}

type JournalConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type MetricsConfig struct {
	Backend string `mapstructure:"backend"`
}

// LoadConfig configures the load command: Users simulated users run Rounds borrow/return attempts each.
type LoadConfig struct {
	Users  int `mapstructure:"users"`
	Rounds int `mapstructure:"rounds"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, LogFormatText)
	v.SetDefault(KeySeedFile, "")
	v.SetDefault(KeyJournalEnabled, true)
	v.SetDefault(KeyMetricsBackend, MetricsBackendNone)
	v.SetDefault(KeyLoadUsers, 8)
	v.SetDefault(KeyLoadRounds, 100)
}

// Load reads the settings into a validated Config. configFile may be empty.
// Flags bound to v with BindPFlag take precedence over everything else.
func Load(v *viper.Viper, configFile string) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks all settings and reports every violation.
func (c Config) Validate() error {
	var errs []error

	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains([]string{LogFormatText, LogFormatJSON}, c.Log.Format) {
		errs = append(errs, fmt.Errorf("%w: log.format must be text or json, got %q", ErrInvalidConfig, c.Log.Format))
	}
	if !slices.Contains([]string{MetricsBackendNone, MetricsBackendOTel, MetricsBackendPrometheus}, c.Metrics.Backend) {
		errs = append(errs, fmt.Errorf("%w: metrics.backend must be none, otel or prometheus, got %q", ErrInvalidConfig, c.Metrics.Backend))
	}
	if c.Load.Users <= 0 {
		errs = append(errs, fmt.Errorf("%w: load.users must be positive, got %d", ErrInvalidConfig, c.Load.Users))
	}
	if c.Load.Rounds <= 0 {
		errs = append(errs, fmt.Errorf("%w: load.rounds must be positive, got %d", ErrInvalidConfig, c.Load.Rounds))
	}

	return errors.Join(errs...)
}

// SlogLevel returns the configured level. Config.Validate guarantees it parses.
func (c Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}

	return level, nil
}
