package internal

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple" // logging backend
	"gopkg.in/yaml.v2"
)

// Config holds the settings of a VM.
type Config struct {
	// DefaultEncoding is the name of the encoding of new strings.
	DefaultEncoding string `yaml:"default_encoding" toml:"default_encoding"`
	// IntCacheLow and IntCacheHigh bound the range of preallocated Integer
	// objects, inclusive.
	IntCacheLow  int64 `yaml:"int_cache_low" toml:"int_cache_low"`
	IntCacheHigh int64 `yaml:"int_cache_high" toml:"int_cache_high"`
	// LogVerbosity is passed to commonlog. 0 leaves logging unconfigured.
	LogVerbosity int `yaml:"log_verbosity" toml:"log_verbosity"`
	// LogFile is the log destination. Empty means standard error.
	LogFile string `yaml:"log_file" toml:"log_file"`
	// SpawnShell runs single-argument spawn commands.
	SpawnShell string `yaml:"spawn_shell" toml:"spawn_shell"`
}

// DefaultConfig returns the configuration used by NewVM.
func DefaultConfig() Config {
	return Config{
		DefaultEncoding: "UTF-8",
		IntCacheLow:     -5,
		IntCacheHigh:    255,
		SpawnShell:      "/bin/sh",
	}
}

// LoadConfig reads a configuration file. The format is chosen by extension:
// .yaml and .yml are YAML, .toml is TOML. Settings absent from the file keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("couldn't read config: %w", err)
	}
	var format string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	case ".toml":
		format = "toml"
	default:
		return Config{}, fmt.Errorf("unknown config format for %s", path)
	}
	cfg, err := ParseConfig(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("couldn't load %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes configuration data in the given format, "yaml" or
// "toml".
func ParseConfig(data []byte, format string) (Config, error) {
	cfg := DefaultConfig()
	switch format {
	case "yaml":
		if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
			return Config{}, err
		}
	case "toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
		if err != nil {
			return Config{}, err
		}
		if un := md.Undecoded(); len(un) != 0 {
			return Config{}, fmt.Errorf("unknown config key %s", un[0])
		}
	default:
		return Config{}, fmt.Errorf("unknown config format %q", format)
	}
	return cfg, cfg.Validate()
}

// Validate checks that the configuration's settings are usable.
func (c Config) Validate() error {
	if _, ok := LookupEncoding(c.DefaultEncoding); !ok {
		return fmt.Errorf("unknown encoding %q", c.DefaultEncoding)
	}
	if c.IntCacheLow > c.IntCacheHigh {
		return fmt.Errorf("int_cache_low %d exceeds int_cache_high %d", c.IntCacheLow, c.IntCacheHigh)
	}
	if c.IntCacheHigh-c.IntCacheLow > 1<<16 {
		return fmt.Errorf("integer cache of %d entries is too large", c.IntCacheHigh-c.IntCacheLow+1)
	}
	return nil
}

// normalize replaces invalid settings with defaults.
func (c Config) normalize() Config {
	d := DefaultConfig()
	if _, ok := LookupEncoding(c.DefaultEncoding); !ok {
		c.DefaultEncoding = d.DefaultEncoding
	}
	if c.IntCacheLow > c.IntCacheHigh || c.IntCacheHigh-c.IntCacheLow > 1<<16 {
		c.IntCacheLow, c.IntCacheHigh = d.IntCacheLow, d.IntCacheHigh
	}
	if c.SpawnShell == "" {
		c.SpawnShell = d.SpawnShell
	}
	return c
}

var logOnce sync.Once

// ConfigureLogging sets up commonlog from the configuration. Only the first
// call with a nonzero verbosity has any effect.
func ConfigureLogging(cfg Config) {
	if cfg.LogVerbosity == 0 {
		return
	}
	logOnce.Do(func() {
		var path *string
		if cfg.LogFile != "" {
			path = &cfg.LogFile
		}
		commonlog.Configure(cfg.LogVerbosity, path)
	})
}
