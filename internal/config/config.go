// Package config resolves apm configuration from three layers:
// built-in defaults, an optional YAML file, and APM_* environment variables.
// Command-line flags are bound on top by the cmd package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/corey/apm/internal/domain/rate"
	"github.com/corey/apm/internal/ports"
	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix (APM_TELEMETRY_TICK_PERIOD_MS, ...).
const EnvPrefix = "APM"

// MinRenderInterval is the fastest cadence at which the overlay may poll.
const MinRenderInterval = 500 * time.Millisecond

// Capture source names.
const (
	SourceAuto      = "auto"
	SourceEvdev     = "evdev"
	SourceX11       = "x11"
	SourceSynthetic = "synthetic"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete application configuration.
type Config struct {
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	Capture   CaptureConfig   `mapstructure:"capture" yaml:"capture"`
	Synthetic SyntheticConfig `mapstructure:"synthetic" yaml:"synthetic"`
	Render    RenderConfig    `mapstructure:"render" yaml:"render"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`

	// Source is the config file that was read, or "defaults".
	Source string `mapstructure:"-" yaml:"-"`
}

// TelemetryConfig holds the rate engine constants.
type TelemetryConfig struct {
	TickPeriodMS     int    `mapstructure:"tick_period_ms" yaml:"tick_period_ms"`
	ShortWindowTicks uint64 `mapstructure:"short_window_ticks" yaml:"short_window_ticks"`
	LongWindowTicks  uint64 `mapstructure:"long_window_ticks" yaml:"long_window_ticks"`
	ShutdownKey      string `mapstructure:"shutdown_key" yaml:"shutdown_key"`
}

// CaptureConfig selects and tunes the input capture backend.
type CaptureConfig struct {
	Source         string `mapstructure:"source" yaml:"source"`
	DevicesDir     string `mapstructure:"devices_dir" yaml:"devices_dir"`
	PollIntervalMS int    `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
	Buffer         int    `mapstructure:"buffer" yaml:"buffer"`
}

// SyntheticConfig drives the metronome source.
type SyntheticConfig struct {
	RatePerMinute int `mapstructure:"rate_per_minute" yaml:"rate_per_minute"`
	StopAfter     int `mapstructure:"stop_after" yaml:"stop_after"`
}

// RenderConfig controls the terminal overlay.
type RenderConfig struct {
	IntervalMS int    `mapstructure:"interval_ms" yaml:"interval_ms"`
	Color      string `mapstructure:"color" yaml:"color"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SetDefaults registers every key with its default value. Keys must be
// registered for APM_* environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	def := rate.DefaultConfig()

	v.SetDefault("telemetry.tick_period_ms", int(def.TickPeriod/time.Millisecond))
	v.SetDefault("telemetry.short_window_ticks", def.ShortWindowTicks)
	v.SetDefault("telemetry.long_window_ticks", def.LongWindowTicks)
	v.SetDefault("telemetry.shutdown_key", def.ShutdownKey.String())

	v.SetDefault("capture.source", SourceAuto)
	v.SetDefault("capture.devices_dir", "/dev/input")
	v.SetDefault("capture.poll_interval_ms", 10)
	v.SetDefault("capture.buffer", 0)

	v.SetDefault("synthetic.rate_per_minute", 120)
	v.SetDefault("synthetic.stop_after", 0)

	v.SetDefault("render.interval_ms", int(MinRenderInterval/time.Millisecond))
	v.SetDefault("render.color", "auto")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load resolves configuration into v. path is an explicit config file; when
// empty, config.yaml is searched in the user config dir and the working
// directory, and a missing file is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "apm"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	source := "defaults"
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		source = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Source = source

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := c.RateConfig(); err != nil {
		return err
	}

	switch c.Capture.Source {
	case SourceAuto, SourceEvdev, SourceX11, SourceSynthetic:
	default:
		return fmt.Errorf("%w: capture.source %q (want auto, evdev, x11 or synthetic)", ErrInvalid, c.Capture.Source)
	}
	if c.Capture.PollIntervalMS <= 0 {
		return fmt.Errorf("%w: capture.poll_interval_ms must be positive", ErrInvalid)
	}
	if c.Capture.Buffer < 0 {
		return fmt.Errorf("%w: capture.buffer must not be negative", ErrInvalid)
	}
	if c.Synthetic.RatePerMinute <= 0 {
		return fmt.Errorf("%w: synthetic.rate_per_minute must be positive", ErrInvalid)
	}
	if c.Synthetic.StopAfter < 0 {
		return fmt.Errorf("%w: synthetic.stop_after must not be negative", ErrInvalid)
	}
	if c.RenderInterval() < MinRenderInterval {
		return fmt.Errorf("%w: render.interval_ms must be at least %d", ErrInvalid, MinRenderInterval/time.Millisecond)
	}
	switch c.Render.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("%w: render.color %q (want auto, always or never)", ErrInvalid, c.Render.Color)
	}
	return nil
}

// RateConfig converts the telemetry section into engine configuration.
func (c Config) RateConfig() (rate.Config, error) {
	key, err := ports.ParseKey(c.Telemetry.ShutdownKey)
	if err != nil {
		return rate.Config{}, fmt.Errorf("%w: telemetry.shutdown_key: %v", ErrInvalid, err)
	}
	rc := rate.Config{
		TickPeriod:       time.Duration(c.Telemetry.TickPeriodMS) * time.Millisecond,
		ShortWindowTicks: c.Telemetry.ShortWindowTicks,
		LongWindowTicks:  c.Telemetry.LongWindowTicks,
		ShutdownKey:      key,
	}
	if err := rc.Validate(); err != nil {
		return rate.Config{}, fmt.Errorf("%w: telemetry: %v", ErrInvalid, err)
	}
	return rc, nil
}

// PollInterval returns the X11 polling cadence.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Capture.PollIntervalMS) * time.Millisecond
}

// RenderInterval returns the overlay polling cadence.
func (c Config) RenderInterval() time.Duration {
	return time.Duration(c.Render.IntervalMS) * time.Millisecond
}
