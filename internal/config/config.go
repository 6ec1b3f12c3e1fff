// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config captures all harvester configuration knobs loaded via Viper.
type Config struct {
	Source  string        `mapstructure:"source"`
	Workers int           `mapstructure:"workers"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Harvest HarvestConfig `mapstructure:"harvest"`
	Sink    SinkConfig    `mapstructure:"sink"`
	Store   StoreConfig   `mapstructure:"store"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// HTTPConfig configures the page fetcher.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// HarvestConfig governs discovery and the worker pool.
type HarvestConfig struct {
	MaxPages        int  `mapstructure:"max_pages"`
	DelayMinSeconds int  `mapstructure:"delay_min_seconds"`
	DelayMaxSeconds int  `mapstructure:"delay_max_seconds"`
	Headless        bool `mapstructure:"headless"`
}

// SinkConfig selects where a run's records go.
type SinkConfig struct {
	Kind   string `mapstructure:"kind"`
	Path   string `mapstructure:"path"`
	Append bool   `mapstructure:"append"`
}

// StoreConfig controls access to the document store.
type StoreConfig struct {
	DSN        string `mapstructure:"dsn"`
	QuotaBytes int64  `mapstructure:"quota_bytes"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from flags, disk and environment, in that
// precedence order. flags may be nil when no command-line surface is
// involved.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HARVESTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnv(v)
	bindFlags(v, flags)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("workers", 3)
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.user_agent", "alpentrace-harvester/0.1")
	v.SetDefault("harvest.max_pages", 100)
	v.SetDefault("harvest.delay_min_seconds", 5)
	v.SetDefault("harvest.delay_max_seconds", 15)
	v.SetDefault("harvest.headless", false)
	v.SetDefault("sink.kind", "file")
	v.SetDefault("sink.path", "data")
	v.SetDefault("sink.append", true)
	v.SetDefault("store.quota_bytes", 512<<20)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("logging.development", true)
}

// bindEnv registers every key with viper so HARVESTER_* variables
// reach Unmarshal even for keys without a default. AutomaticEnv alone
// only resolves keys viper already knows about.
func bindEnv(v *viper.Viper) {
	keys := []string{
		"source",
		"workers",
		"http.timeout_seconds",
		"http.user_agent",
		"harvest.max_pages",
		"harvest.delay_min_seconds",
		"harvest.delay_max_seconds",
		"harvest.headless",
		"sink.kind",
		"sink.path",
		"sink.append",
		"store.dsn",
		"store.quota_bytes",
		"metrics.enabled",
		"metrics.addr",
		"logging.development",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"source":  "source",
	"workers": "workers",
	"sink":    "sink.kind",
	"append":  "sink.append",
}

// bindFlags wires known command-line flags into their config keys.
// Unchanged flags do not shadow file or environment values.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	if flags == nil {
		return
	}
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

// Validate enforces required values and reasonable limits. Everything
// it rejects is fatal before any network activity starts.
func (c Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("source is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Harvest.MaxPages <= 0 {
		return fmt.Errorf("harvest.max_pages must be > 0")
	}
	if c.Harvest.DelayMinSeconds < 0 || c.Harvest.DelayMaxSeconds < c.Harvest.DelayMinSeconds {
		return fmt.Errorf("harvest delay bounds must satisfy 0 <= min <= max")
	}
	switch c.Sink.Kind {
	case "file":
		if c.Sink.Path == "" {
			return fmt.Errorf("sink.path is required for the file sink")
		}
	case "store":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the store sink")
		}
	default:
		return fmt.Errorf("unknown sink.kind %q", c.Sink.Kind)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr must be set when metrics are enabled")
	}
	return nil
}

// HTTPTimeout converts the fetch timeout to a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// DelayBounds converts the polite delay bounds to durations.
func (c Config) DelayBounds() (time.Duration, time.Duration) {
	return time.Duration(c.Harvest.DelayMinSeconds) * time.Second,
		time.Duration(c.Harvest.DelayMaxSeconds) * time.Second
}
