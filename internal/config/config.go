package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"buyorder-alerts/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Server    ServerConfig    `mapstructure:"server"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Capture   CaptureConfig   `mapstructure:"capture"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Sources   []SourceSeed    `mapstructure:"sources"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig covers the management HTTP listener.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// SchedulerConfig governs polling cadence.
type SchedulerConfig struct {
	CycleInterval time.Duration `mapstructure:"cycle_interval"`
	SourceDelay   time.Duration `mapstructure:"source_delay"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
}

// CaptureConfig tunes the headless-browser payload capture.
type CaptureConfig struct {
	Headless    bool          `mapstructure:"headless"`
	PageTimeout time.Duration `mapstructure:"page_timeout"`
	SettleDelay time.Duration `mapstructure:"settle_delay"`
}

// AlertingConfig defines webhook routing and the per-source cooldown.
type AlertingConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	WebhookURL string        `mapstructure:"webhook_url"`
	Cooldown   time.Duration `mapstructure:"cooldown"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// SourceSeed describes a source registered at startup.
type SourceSeed struct {
	Name    string `mapstructure:"name"`
	URL     string `mapstructure:"url"`
	Faction string `mapstructure:"faction"`
	Enabled *bool  `mapstructure:"enabled"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BUYWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "buywatch")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "15s")

	v.SetDefault("scheduler.cycle_interval", "60s")
	v.SetDefault("scheduler.source_delay", "800ms")
	v.SetDefault("scheduler.startup_delay", "8s")

	v.SetDefault("capture.headless", true)
	v.SetDefault("capture.page_timeout", "60s")
	v.SetDefault("capture.settle_delay", "4500ms")

	v.SetDefault("alerting.enabled", true)
	v.SetDefault("alerting.cooldown", "90s")
	v.SetDefault("alerting.timeout", "10s")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Scheduler.CycleInterval <= 0 {
		return fmt.Errorf("scheduler.cycle_interval must be greater than zero")
	}
	if c.Scheduler.SourceDelay < 0 {
		return fmt.Errorf("scheduler.source_delay cannot be negative")
	}
	if c.Capture.SettleDelay < 0 {
		return fmt.Errorf("capture.settle_delay cannot be negative")
	}
	if c.Alerting.Cooldown < 0 {
		return fmt.Errorf("alerting.cooldown cannot be negative")
	}
	for i, seed := range c.Sources {
		if strings.TrimSpace(seed.Name) == "" || strings.TrimSpace(seed.URL) == "" {
			return fmt.Errorf("sources[%d]: name and url are required", i)
		}
	}
	return nil
}
