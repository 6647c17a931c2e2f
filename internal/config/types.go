package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full nvtree configuration.
type Config struct {
	Remote  RemoteConfig      `yaml:"remote" toml:"remote"`
	Panel   PanelConfig       `yaml:"panel" toml:"panel"`
	Keys    map[string]string `yaml:"keys" toml:"keys"`
	Theme   ThemeConfig       `yaml:"theme" toml:"theme"`
	Logging LoggingConfig     `yaml:"logging" toml:"logging"`
}

// RemoteConfig locates and tunes the Neovim connection.
type RemoteConfig struct {
	Address        string   `yaml:"address" toml:"address"`
	InstallShim    bool     `yaml:"install_shim" toml:"install_shim"`
	QueueSize      int      `yaml:"queue_size" toml:"queue_size"`
	ConnectTimeout Duration `yaml:"connect_timeout" toml:"connect_timeout"`
}

type PanelConfig struct {
	ShowHidden  bool `yaml:"show_hidden" toml:"show_hidden"`
	StartHidden bool `yaml:"start_hidden" toml:"start_hidden"`
	Watch       bool `yaml:"watch" toml:"watch"`
	Width       int  `yaml:"width" toml:"width"`
}

// ThemeConfig holds lipgloss color tokens: ANSI numbers or hex.
type ThemeConfig struct {
	Directory     string `yaml:"directory" toml:"directory"`
	File          string `yaml:"file" toml:"file"`
	SelectedFG    string `yaml:"selected_fg" toml:"selected_fg"`
	SelectedBG    string `yaml:"selected_bg" toml:"selected_bg"`
	Border        string `yaml:"border" toml:"border"`
	BorderFocused string `yaml:"border_focused" toml:"border_focused"`
	Title         string `yaml:"title" toml:"title"`
	Muted         string `yaml:"muted" toml:"muted"`
}

type LoggingConfig struct {
	Level      int8   `yaml:"level" toml:"level"`
	File       string `yaml:"file" toml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" toml:"max_age_days"`
}

// Duration is a time.Duration written as text ("5s", "250ms").
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (any, error) { return d.String(), nil }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}
