package cmd

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/oakwood-commons/nvtree/internal/config"
	"github.com/oakwood-commons/nvtree/internal/keymap"
	"github.com/oakwood-commons/nvtree/pkg/logger"
	"github.com/oakwood-commons/nvtree/pkg/settings"
)

// loadEffectiveConfig loads the config file picked by config.Resolve and
// folds the command-line overrides over it. It also returns the path it
// loaded, empty for defaults only.
func loadEffectiveConfig(flags *pflag.FlagSet) (*config.Config, string, error) {
	path := config.Resolve(configFile)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, fmt.Errorf("load config: %w", err)
	}
	applyFlagOverrides(flags, cfg)
	return cfg, path, nil
}

// applyFlagOverrides copies explicitly set flags into cfg. Unset flags leave
// the file and default values alone.
func applyFlagOverrides(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("server") {
		cfg.Remote.Address = serverAddress
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = logFile
	}
	if flags.Changed("debug") && debug {
		cfg.Logging.Level = -1
	}
	if flags.Changed("hidden") {
		cfg.Panel.ShowHidden = showHidden
	}
	if flags.Changed("no-watch") {
		cfg.Panel.Watch = !noWatch
	}
	if flags.Changed("no-shim") {
		cfg.Remote.InstallShim = !noShim
	}
}

// keyTable returns the default bindings with the config overrides applied.
// The table is usable even when some overrides fail to parse.
func keyTable(cfg *config.Config) (*keymap.Table, error) {
	t := keymap.Defaults()
	return t, t.Apply(cfg.Keys)
}

func loggerOptions(cfg *config.Config, stderr bool) logger.Options {
	return logger.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Stderr:     stderr && cfg.Logging.File == "",
	}
}

func runSettings(cfg *config.Config, path string) *settings.Run {
	s := settings.NewCliParams()
	s.ConfigPath = path
	s.ServerAddress = cfg.ServerAddress()
	s.NoColor = noColor
	return s
}
