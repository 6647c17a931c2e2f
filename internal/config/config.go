// Package config loads nvtree settings: embedded defaults merged with an
// optional user file in YAML or TOML.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

// EnvConfigPath names the environment variable that points at a config file.
const EnvConfigPath = "NVTREE_CONFIG"

// ErrUnsupportedFormat is returned for config files that are neither YAML nor
// TOML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// DefaultConfigYAML returns a copy of the embedded defaults.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default returns the embedded defaults.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(embeddedDefaultConfig, cfg); err != nil {
		return nil, fmt.Errorf("decode embedded default config: %w", err)
	}
	if cfg.Keys == nil {
		cfg.Keys = map[string]string{}
	}
	return cfg, nil
}

// Load returns the defaults with the file at path merged over them. An empty
// path yields the defaults.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(data, filepath.Ext(path), cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode merges data into cfg. ext selects the format: ".yaml", ".yml" or
// ".toml". Keys absent from data keep their current values.
func Decode(data []byte, ext string, cfg *Config) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes to io.EOF and means no overrides.
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode yaml: %w", err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("decode toml: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if cfg.Keys == nil {
		cfg.Keys = map[string]string{}
	}
	return nil
}

// Validate reports settings no component can work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Remote.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("remote.queue_size must be positive, got %d", c.Remote.QueueSize))
	}
	if c.Remote.ConnectTimeout <= 0 {
		errs = append(errs, fmt.Errorf("remote.connect_timeout must be positive, got %s", c.Remote.ConnectTimeout))
	}
	if c.Panel.Width < 8 {
		errs = append(errs, fmt.Errorf("panel.width must be at least 8, got %d", c.Panel.Width))
	}
	return errors.Join(errs...)
}

// Resolve picks the config file to load: explicit, then $NVTREE_CONFIG, then
// the XDG location, then ~/.config. Only the explicit path is returned without
// checking that it exists. An empty result means defaults only.
func Resolve(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, p := range SearchPaths() {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

// SearchPaths lists the implicit config locations in priority order.
func SearchPaths() []string {
	var paths []string
	if env := os.Getenv(EnvConfigPath); env != "" {
		paths = append(paths, env)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "nvtree", "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "nvtree", "config.yaml"))
	}
	return paths
}

// ServerAddress returns remote.address, falling back to $NVIM and then
// $NVIM_LISTEN_ADDRESS.
func (c *Config) ServerAddress() string {
	if c.Remote.Address != "" {
		return c.Remote.Address
	}
	if v := os.Getenv("NVIM"); v != "" {
		return v
	}
	return os.Getenv("NVIM_LISTEN_ADDRESS")
}

// YAML renders the config.
func (c *Config) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
