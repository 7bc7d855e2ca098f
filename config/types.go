package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/slatebar/slate/logging"
)

// Config is the top-level slate.yml / slate.toml structure shared by the
// three daemons and the client tooling.
type Config struct {
	Version string `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty" jsonschema:"description=Configuration version (e.g. '1.0')"`

	// RuntimeDir overrides where sockets and lock files are created.
	RuntimeDir string `json:"runtime_dir,omitempty" yaml:"runtime_dir,omitempty" toml:"runtime_dir,omitempty" jsonschema:"description=Directory for daemon sockets and lock files"`

	// Sockets overrides individual daemon socket paths, keyed by daemon name
	// ("time", "display", "metrics").
	Sockets map[string]string `json:"sockets,omitempty" yaml:"sockets,omitempty" toml:"sockets,omitempty" jsonschema:"description=Per-daemon unix socket path overrides"`

	Display *DisplayConfig `json:"display,omitempty" yaml:"display,omitempty" toml:"display,omitempty" jsonschema:"description=Settings for the display (window/workspace) daemon"`
	Metrics *MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty" toml:"metrics,omitempty" jsonschema:"description=Settings for the combined metrics daemon"`

	Logging logging.Config `json:"logging,omitempty" yaml:"logging,omitempty" toml:"logging,omitempty" jsonschema:"description=Logging configuration shared by all daemons"`

	// Extensions captures all other top-level keys for extensibility.
	Extensions map[string]interface{} `json:"-" yaml:",inline" toml:"-" jsonschema:"-"`
}

// DisplayConfig holds the display daemon's sampling knobs.
type DisplayConfig struct {
	// PollIntervalMS is the compositor sampling cadence in milliseconds.
	PollIntervalMS int `json:"poll_interval_ms,omitempty" yaml:"poll_interval_ms,omitempty" toml:"poll_interval_ms,omitempty" jsonschema:"description=Compositor state poll interval in milliseconds (default 100)"`
	// IPCTimeoutMS bounds a single compositor IPC round-trip.
	IPCTimeoutMS int `json:"ipc_timeout_ms,omitempty" yaml:"ipc_timeout_ms,omitempty" toml:"ipc_timeout_ms,omitempty" jsonschema:"description=Compositor IPC receive timeout in milliseconds (default 500)"`
}

// PollInterval returns the compositor sampling cadence as a duration.
func (d *DisplayConfig) PollInterval() time.Duration {
	return time.Duration(d.PollIntervalMS) * time.Millisecond
}

// IPCTimeout returns the IPC round-trip bound as a duration.
func (d *DisplayConfig) IPCTimeout() time.Duration {
	return time.Duration(d.IPCTimeoutMS) * time.Millisecond
}

// MetricsConfig holds the combined metrics daemon's sampling knobs.
type MetricsConfig struct {
	// BatteryRefreshSeconds rate-limits expensive battery re-reads.
	BatteryRefreshSeconds int `json:"battery_refresh_seconds,omitempty" yaml:"battery_refresh_seconds,omitempty" toml:"battery_refresh_seconds,omitempty" jsonschema:"description=Minimum seconds between battery re-reads (default 30)"`
	// PowerSupplyRoot is the kernel power-supply class directory.
	PowerSupplyRoot string `json:"power_supply_root,omitempty" yaml:"power_supply_root,omitempty" toml:"power_supply_root,omitempty" jsonschema:"description=Kernel power supply sysfs root (default /sys/class/power_supply)"`
	// BacklightRoot is the kernel backlight class directory.
	BacklightRoot string `json:"backlight_root,omitempty" yaml:"backlight_root,omitempty" toml:"backlight_root,omitempty" jsonschema:"description=Kernel backlight sysfs root (default /sys/class/backlight)"`
	// BatteryPatterns selects power-supply device names, docker-ignore style:
	// later patterns override earlier ones and a leading ! excludes.
	BatteryPatterns []string `json:"battery_patterns,omitempty" yaml:"battery_patterns,omitempty" toml:"battery_patterns,omitempty" jsonschema:"description=Device name patterns selecting the battery (default BAT*)"`
}

// BatteryRefresh returns the battery rate-limit window as a duration.
func (m *MetricsConfig) BatteryRefresh() time.Duration {
	return time.Duration(m.BatteryRefreshSeconds) * time.Second
}

// SetDefaults fills in default values for unset fields.
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.Display == nil {
		c.Display = &DisplayConfig{}
	}
	if c.Display.PollIntervalMS <= 0 {
		c.Display.PollIntervalMS = 100
	}
	if c.Display.IPCTimeoutMS <= 0 {
		c.Display.IPCTimeoutMS = 500
	}
	if c.Metrics == nil {
		c.Metrics = &MetricsConfig{}
	}
	if c.Metrics.BatteryRefreshSeconds <= 0 {
		c.Metrics.BatteryRefreshSeconds = 30
	}
	if c.Metrics.PowerSupplyRoot == "" {
		c.Metrics.PowerSupplyRoot = "/sys/class/power_supply"
	}
	if c.Metrics.BacklightRoot == "" {
		c.Metrics.BacklightRoot = "/sys/class/backlight"
	}
	if len(c.Metrics.BatteryPatterns) == 0 {
		c.Metrics.BatteryPatterns = []string{"BAT*"}
	}
}

// Validate performs semantic validation beyond the JSON schema.
func (c *Config) Validate() error {
	for name := range c.Sockets {
		switch name {
		case "time", "display", "metrics":
		default:
			return fmt.Errorf("unknown daemon name in sockets: %q", name)
		}
	}
	return nil
}

// UnmarshalYAML captures known fields and collects every other top-level key
// into Extensions.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type rawConfig struct {
		Version    string                 `json:"version,omitempty" yaml:"version,omitempty"`
		RuntimeDir string                 `json:"runtime_dir,omitempty" yaml:"runtime_dir,omitempty"`
		Sockets    map[string]string      `json:"sockets,omitempty" yaml:"sockets,omitempty"`
		Display    *DisplayConfig         `json:"display,omitempty" yaml:"display,omitempty"`
		Metrics    *MetricsConfig         `json:"metrics,omitempty" yaml:"metrics,omitempty"`
		Logging    logging.Config         `json:"logging,omitempty" yaml:"logging,omitempty"`
		Extensions map[string]interface{} `yaml:",inline"`
	}

	var raw rawConfig
	if err := node.Decode(&raw); err != nil {
		return err
	}

	c.Version = raw.Version
	c.RuntimeDir = raw.RuntimeDir
	c.Sockets = raw.Sockets
	c.Display = raw.Display
	c.Metrics = raw.Metrics
	c.Logging = raw.Logging
	c.Extensions = raw.Extensions
	return nil
}

// UnmarshalExtension decodes an extension section into the provided target
// struct. The target must be a pointer. Unknown keys are not an error; the
// target simply stays zero-valued.
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
