package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/nvtree/internal/app"
	"github.com/oakwood-commons/nvtree/internal/config"
	"github.com/oakwood-commons/nvtree/internal/fstree"
	"github.com/oakwood-commons/nvtree/internal/nvimrpc"
	"github.com/oakwood-commons/nvtree/internal/panel"
	"github.com/oakwood-commons/nvtree/pkg/logger"
	"github.com/oakwood-commons/nvtree/pkg/settings"
)

var errNotTerminal = errors.New("stdout is not a terminal")

var (
	serverAddress string
	configFile    string
	debug         bool
	logFile       string
	showHidden    bool
	noWatch       bool
	noColor       bool
	noShim        bool

	// activeConfig is the merged config of the running command.
	activeConfig *config.Config

	stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

	// runProgram runs the TUI; tests replace it.
	runProgram = func(ctx context.Context, m tea.Model) error {
		_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
		return err
	}
)

func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)",
		settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}

var rootCmd = &cobra.Command{
	Use:   "nvtree [dir]",
	Short: "A file tree panel for a running Neovim",
	Long: `nvtree shows a directory tree next to a running Neovim and keeps both on
the same working directory. Opening a file in the tree opens it in the editor.

The editor is found through --server, remote.address, $NVIM or
$NVIM_LISTEN_ADDRESS, in that order.`,
	Example:       "\n  nvtree\n  nvtree --server /tmp/nvim.sock ~/src\n  NVIM=127.0.0.1:6666 nvtree --hidden",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, path, err := loadEffectiveConfig(cmd.Flags())
		if err != nil {
			return err
		}
		activeConfig = cfg

		// The TUI owns the terminal, so only subcommands log to stderr.
		lgr := logger.Get(loggerOptions(cfg, cmd != cmd.Root()))
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())
		ctx := logger.WithLogger(cmd.Context(), lgr)
		ctx = settings.IntoContext(ctx, runSettings(cfg, path))
		cmd.SetContext(ctx)
		if path != "" {
			lgr.V(1).Info("loaded config", "path", path)
		}
		return nil
	},
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !stdoutIsTerminal() {
		return errNotTerminal
	}
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg := activeConfig
	run := settings.FromContextOrDefault(ctx)
	lgr := *logger.FromContext(ctx)

	var root string
	if len(args) == 1 {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		if !fstree.IsDirectory(abs) {
			return fmt.Errorf("%s: not a directory", args[0])
		}
		root = abs
	}

	keys, err := keyTable(cfg)
	if err != nil {
		lgr.Error(err, "ignoring invalid key overrides")
	}

	client := nvimrpc.New(nvimrpc.Options{
		Address:        run.ServerAddress,
		InstallShim:    cfg.Remote.InstallShim,
		QueueSize:      cfg.Remote.QueueSize,
		ConnectTimeout: cfg.Remote.ConnectTimeout.Std(),
	}, lgr)
	defer func() {
		if err := client.Close(); err != nil {
			lgr.Error(err, "close editor connection")
		}
	}()

	var watcher *fstree.Watcher
	if cfg.Panel.Watch {
		w, err := fstree.NewWatcher(lgr)
		if err != nil {
			lgr.Error(err, "filesystem watch disabled")
		} else {
			watcher = w
			defer func() { _ = w.Close() }()
		}
	}

	var conn app.Connector
	if run.ServerAddress != "" {
		conn = client
	}

	theme := app.NewTheme(cfg.Theme, run.NoColor)
	model := app.New(app.Options{
		Context:   ctx,
		Connector: conn,
		Panel: panel.Options{
			Root:    root,
			Remote:  client,
			Tree:    fstree.New(fstree.Options{ShowHidden: cfg.Panel.ShowHidden, Styles: theme.Tree}),
			Watcher: watcher,
			Keys:    keys,
			Logger:  lgr,
			Hidden:  cfg.Panel.StartHidden,
		},
		PanelWidth: cfg.Panel.Width,
		Theme:      theme,
		Logger:     lgr,
	})

	if err := runProgram(ctx, model); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func init() { //nolint:gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "path to a YAML or TOML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file, rotated by size")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable color output")
	rootCmd.Flags().StringVar(&serverAddress, "server", "", "Neovim server address (socket path or host:port)")
	rootCmd.Flags().BoolVar(&showHidden, "hidden", false, "show dot-files")
	rootCmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not refresh the tree on filesystem changes")
	rootCmd.Flags().BoolVar(&noShim, "no-shim", false, "do not install the editor-side commands on connect")

	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(versionCmd, configCmd, keysCmd)
	configCmd.AddCommand(configGetCmd, configPathCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
