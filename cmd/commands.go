package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/nvtree/internal/config"
	"github.com/oakwood-commons/nvtree/internal/keymap"
	"github.com/oakwood-commons/nvtree/pkg/logger"
	"github.com/oakwood-commons/nvtree/pkg/settings"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print nvtree version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
		return err
	},
}

// configCmd groups configuration subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect nvtree configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the merged configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := activeConfig.YAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "List the config file locations and the one in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		used := settings.FromContextOrDefault(cmd.Context()).ConfigPath
		w := cmd.OutOrStdout()
		if configFile != "" {
			fmt.Fprintf(w, "* %s\n", configFile)
		}
		for _, p := range config.SearchPaths() {
			mark := " "
			if p == used {
				mark = "*"
			}
			fmt.Fprintf(w, "%s %s\n", mark, p)
		}
		if used == "" {
			fmt.Fprintln(w, "(no config file found, using defaults)")
		}
		return nil
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Print the effective key bindings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		keys, err := keyTable(activeConfig)
		if err != nil {
			logger.FromContext(cmd.Context()).Error(err, "ignoring invalid key overrides")
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), renderKeyTable(keys, settings.FromContextOrDefault(cmd.Context()).NoColor))
		return err
	},
}

func renderKeyTable(keys *keymap.Table, plain bool) string {
	t := table.New().Headers("ACTION", "CHORD", "DESCRIPTION")
	for _, a := range keymap.Actions() {
		t.Row(a.String(), keys.Chord(a).String(), a.Help())
	}
	if plain {
		return t.Border(lipgloss.ASCIIBorder()).String()
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return t.Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("238"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).String()
}
