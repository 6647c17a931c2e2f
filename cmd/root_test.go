package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/nvtree/internal/app"
	"github.com/oakwood-commons/nvtree/internal/config"
)

func resetRootCmdState(t *testing.T) {
	t.Helper()
	serverAddress, configFile, logFile = "", "", ""
	debug, showHidden, noWatch, noColor, noShim = false, false, false, false, false
	activeConfig = nil

	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.Flags().VisitAll(reset)
	rootCmd.PersistentFlags().VisitAll(reset)
	rootCmd.SetArgs(nil)
}

// runCLI executes the root command isolated from the user's config and
// editor environment.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetRootCmdState(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv("NVIM", "")
	t.Setenv("NVIM_LISTEN_ADDRESS", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "nvtree v0.0.0-nightly"), out)
}

func TestConfigGet(t *testing.T) {
	path := writeConfig(t, "config.yaml", "panel:\n  width: 50\n")
	out, err := runCLI(t, "config", "get", "--config-file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "width: 50")
	assert.Contains(t, out, "connect_timeout: 5s")
}

func TestConfigGetFlagOverrides(t *testing.T) {
	out, err := runCLI(t, "config", "get", "--log-file", "/tmp/nvtree.log", "--debug")
	require.NoError(t, err)
	assert.Contains(t, out, "file: /tmp/nvtree.log")
	assert.Contains(t, out, "level: -1")
}

func TestConfigGetInvalidFile(t *testing.T) {
	path := writeConfig(t, "config.yaml", "panel:\n  colour: red\n")
	_, err := runCLI(t, "config", "get", "--config-file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestConfigPath(t *testing.T) {
	out, err := runCLI(t, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join("nvtree", "config.yaml"))
	assert.Contains(t, out, "using defaults")
}

func TestKeys(t *testing.T) {
	path := writeConfig(t, "config.toml", "[keys]\nGoToParent = \"Ctrl+Alt+U\"\nBogus = \"X\"\n")
	out, err := runCLI(t, "keys", "--no-color", "--config-file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ACTION")
	assert.Contains(t, out, "GoToParent")
	assert.Contains(t, out, "Ctrl+Alt+U")
	assert.Contains(t, out, "SwitchFocus")
	assert.Contains(t, out, "Tab")
}

func TestApplyFlagOverrides(t *testing.T) {
	resetRootCmdState(t)
	flags := rootCmd.Flags()
	require.NoError(t, flags.Parse([]string{"--server", "/tmp/s.sock", "--hidden", "--no-watch", "--no-shim"}))

	cfg, err := config.Default()
	require.NoError(t, err)
	applyFlagOverrides(flags, cfg)
	assert.Equal(t, "/tmp/s.sock", cfg.Remote.Address)
	assert.True(t, cfg.Panel.ShowHidden)
	assert.False(t, cfg.Panel.Watch)
	assert.False(t, cfg.Remote.InstallShim)
	assert.Equal(t, int8(0), cfg.Logging.Level, "unset flags keep config values")

	resetRootCmdState(t)
	cfg, err = config.Default()
	require.NoError(t, err)
	cfg.Panel.ShowHidden = true
	applyFlagOverrides(rootCmd.Flags(), cfg)
	assert.True(t, cfg.Panel.ShowHidden)
}

func TestRootRequiresTerminal(t *testing.T) {
	orig := stdoutIsTerminal
	stdoutIsTerminal = func() bool { return false }
	t.Cleanup(func() { stdoutIsTerminal = orig })

	_, err := runCLI(t)
	require.ErrorIs(t, err, errNotTerminal)
}

func TestRootStartsTUI(t *testing.T) {
	origTerm, origRun := stdoutIsTerminal, runProgram
	stdoutIsTerminal = func() bool { return true }
	var got tea.Model
	runProgram = func(_ context.Context, m tea.Model) error {
		got = m
		return nil
	}
	t.Cleanup(func() { stdoutIsTerminal, runProgram = origTerm, origRun })

	dir := t.TempDir()
	// The panel changes the process directory; t.Chdir restores it.
	t.Chdir(dir)
	_, err := runCLI(t, "--no-watch", "--no-color", dir)
	require.NoError(t, err)

	m, ok := got.(*app.Model)
	require.True(t, ok)
	assert.Equal(t, dir, m.Panel().Dir())
	assert.Equal(t, "no editor address", m.Status())
}

func TestRootRejectsFileArgument(t *testing.T) {
	origTerm := stdoutIsTerminal
	stdoutIsTerminal = func() bool { return true }
	t.Cleanup(func() { stdoutIsTerminal = origTerm })

	file := writeConfig(t, "plain.txt", "x")
	_, err := runCLI(t, file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestRenderKeyTablePlain(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	keys, err := keyTable(cfg)
	require.NoError(t, err)

	out := renderKeyTable(keys, true)
	assert.Contains(t, out, "OpenEntry")
	assert.Contains(t, out, "Enter")
	assert.NotContains(t, out, "\x1b[")
}
