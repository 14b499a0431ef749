package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/vaultkit/internal/config"
	"github.com/aidanlsb/vaultkit/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the vaultkit config file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFilePath()
		if isJSONOutput() {
			outputSuccess(cmd.OutOrStdout(), map[string]string{"path": path}, nil)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		path := configFilePath()

		created, err := config.CreateDefault(path)
		if err != nil {
			return fail(cmd, err)
		}

		if isJSONOutput() {
			outputSuccess(out, map[string]interface{}{"path": path, "created": created}, nil)
			return nil
		}
		if !created {
			fmt.Fprintln(out, ui.Line(ui.MarkNotice, "Config already exists at %s", ui.FilePath(path)))
			return nil
		}
		fmt.Fprintln(out, ui.Line(ui.MarkDone, "Created config at %s", ui.FilePath(path)))
		return nil
	},
}

// configFilePath is --config when set, the default location otherwise.
func configFilePath() string {
	if configPath != "" {
		return absPath(configPath)
	}
	return config.DefaultPath()
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
