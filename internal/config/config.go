// Package config loads the eventpage configuration file.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/Its-donkey/eventpage/internal/ui/countdown"
	"github.com/Its-donkey/eventpage/logging"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = "eventpage.yml"

// EnvPrefix marks environment overrides. A double underscore separates
// nested keys: EVENTPAGE_SERVER__LISTEN sets server.listen.
const EnvPrefix = "EVENTPAGE_"

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	// Slices decode element-wise over the existing value, so a shorter list
	// from the file would keep trailing default steps.
	if k.Exists("event.steps") {
		cfg.Event.Steps = nil
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Listen) == "" {
		return fmt.Errorf("%w: server.listen is required", ErrInvalidConfig)
	}
	if _, _, err := net.SplitHostPort(c.Server.Listen); err != nil {
		return fmt.Errorf("%w: server.listen %q: %v", ErrInvalidConfig, c.Server.Listen, err)
	}
	if c.Server.Assets == "" {
		return fmt.Errorf("%w: server.assets is required", ErrInvalidConfig)
	}
	rl := c.Server.RateLimit
	if rl.RPS < 0 || rl.Burst < 0 || rl.MaxClients < 0 {
		return fmt.Errorf("%w: server.rate_limit values must be non-negative", ErrInvalidConfig)
	}
	if rl.RPS > 0 && rl.Burst == 0 {
		return fmt.Errorf("%w: server.rate_limit.burst must be set when rps is", ErrInvalidConfig)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	if c.Event.Ends != "" {
		if _, ok := countdown.ParseEnd(c.Event.Ends); !ok {
			return fmt.Errorf("%w: event.ends %q is not a recognised time", ErrInvalidConfig, c.Event.Ends)
		}
	}
	if len(c.Event.Steps) > 4 {
		return fmt.Errorf("%w: event.steps allows at most 4 entries, got %d", ErrInvalidConfig, len(c.Event.Steps))
	}
	for i, s := range c.Event.Steps {
		if strings.TrimSpace(s.Title) == "" {
			return fmt.Errorf("%w: event.steps[%d].title is required", ErrInvalidConfig, i)
		}
	}
	return nil
}

// EndTime returns the configured end instant, or the countdown fallback.
func (e EventConfig) EndTime() time.Time {
	if t, ok := countdown.ParseEnd(e.Ends); ok {
		return t
	}
	return countdown.DefaultEnd
}

// LogLevel returns the parsed log level, INFO when unset or invalid.
func (l LogConfig) LogLevel() logging.Level {
	level, err := logging.ParseLevel(l.Level)
	if err != nil {
		return logging.INFO
	}
	return level
}
