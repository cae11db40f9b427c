// Package config loads the server's startup configuration from a YAML
// file: bind addresses and ports for the five network endpoints, the
// device profile table, and the optional mDNS advertisement settings.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/airpixel-go/pixeld/internal/registry"
)

// Duration decodes a YAML scalar as a time.Duration using
// time.ParseDuration's syntax ("3s", "500ms"), since yaml.v3 has no
// native duration type.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the decoded value as a time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MDNSConfig controls optional service advertisement.
type MDNSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Instance string `yaml:"instance"`
}

// DeviceConfig is one entry of the device profile table.
type DeviceConfig struct {
	DeviceID        string `yaml:"device_id"`
	CommandTemplate string `yaml:"command_template"`
}

// Config is the complete startup configuration, per §6.9.
type Config struct {
	Address               string         `yaml:"address"`
	Port                  int            `yaml:"port"`
	UDPPort               int            `yaml:"udp_port"`
	SubscriptionPort      int            `yaml:"subscription_port"`
	MonitorKeepalivePort  int            `yaml:"monitor_keepalive_port"`
	UnixSocket            string         `yaml:"unix_socket"`
	DeviceTimeout         Duration       `yaml:"device_timeout"`
	SubscriptionTimeout   Duration       `yaml:"subscription_timeout"`
	MDNS                  MDNSConfig     `yaml:"mdns"`
	Devices               []DeviceConfig `yaml:"devices"`
}

// defaults mirror §5's "Timeouts" (3s for both) when a key is omitted.
const defaultTimeout = 3 * time.Second

// Load reads and parses the YAML configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.DeviceTimeout == 0 {
		cfg.DeviceTimeout = Duration(defaultTimeout)
	}
	if cfg.SubscriptionTimeout == 0 {
		cfg.SubscriptionTimeout = Duration(defaultTimeout)
	}

	return cfg, nil
}

// Profiles converts the configured device table into registry.DeviceProfile
// values.
func (c Config) Profiles() []registry.DeviceProfile {
	profiles := make([]registry.DeviceProfile, len(c.Devices))
	for i, d := range c.Devices {
		profiles[i] = registry.DeviceProfile{DeviceID: d.DeviceID, CommandTemplate: d.CommandTemplate}
	}
	return profiles
}
