package config

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"skyview/manager"
)

const envPrefix = "SKYVIEW"

type Geocoding struct {
	URL          string `mapstructure:"url"`
	Language     string `mapstructure:"language"`
	SuggestLimit int    `mapstructure:"suggest_limit"`
}

type Forecast struct {
	URL  string `mapstructure:"url"`
	Days int    `mapstructure:"days"`
}

type Geolocation struct {
	URL     string        `mapstructure:"url"`
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
	MaxAge  time.Duration `mapstructure:"max_age"`
}

type Suggest struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Geocoding   Geocoding   `mapstructure:"geocoding"`
	Forecast    Forecast    `mapstructure:"forecast"`
	Geolocation Geolocation `mapstructure:"geolocation"`
	Suggest     Suggest     `mapstructure:"suggest"`
	Units       string      `mapstructure:"units"`
	Log         Log         `mapstructure:"log"`
}

// Load reads the yaml defaults, merges the optional file at path on top and
// applies SKYVIEW_* environment overrides (a .env file is honoured).
func Load(defaults []byte, path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, fmt.Errorf("read defaults: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Geocoding.URL == "" {
		return errors.New("geocoding.url is required")
	}
	if c.Forecast.URL == "" {
		return errors.New("forecast.url is required")
	}
	if c.Forecast.Days <= 0 {
		return fmt.Errorf("forecast.days must be positive, got %d", c.Forecast.Days)
	}
	if c.Geolocation.Timeout < 0 || c.Geolocation.MaxAge < 0 || c.Suggest.Debounce < 0 {
		return errors.New("durations must not be negative")
	}
	if _, err := manager.ParseUnitSystem(c.Units); err != nil {
		return err
	}
	return nil
}

// UnitSystem returns the configured default unit system.
func (c Config) UnitSystem() manager.UnitSystem {
	unit, _ := manager.ParseUnitSystem(c.Units)
	return unit
}

// LocateOptions returns the device location options with high accuracy on.
func (c Config) LocateOptions() manager.LocateOptions {
	return manager.LocateOptions{
		HighAccuracy: true,
		Timeout:      c.Geolocation.Timeout,
		MaxAge:       c.Geolocation.MaxAge,
	}
}

// NewLogger builds a development logger writing to stderr at level.
func NewLogger(level string) (*zap.SugaredLogger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
