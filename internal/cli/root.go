// Package cli implements the command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/aidanlsb/vaultkit/internal/config"
	"github.com/aidanlsb/vaultkit/internal/logger"
	"github.com/aidanlsb/vaultkit/internal/ui"
	"github.com/aidanlsb/vaultkit/internal/vault"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Walk flags shared by the vault commands
	directory   string
	excludeFlag []string

	// Resolved values
	resolvedConfigPath string
	cfg                *config.Config
	diag               *logger.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vk",
	Short: "vaultkit - tools for an Obsidian vault",
	Long: `vaultkit works on a folder of markdown notes with YAML front matter.

It adds tags to notes in bulk, lists the tags in use, mirrors Person
notes into an Airtable table and encrypts files with Fernet keys.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := log.WarnLevel
		if verbose {
			level = log.DebugLevel
		}
		diag = logger.NewWithLevel(cmd.ErrOrStderr(), level)

		// Skip config loading for commands that don't need it
		switch cmd.Name() {
		case "completion", "help", "version":
			return nil
		}
		if cmd.Parent() != nil && (cmd.Parent().Name() == "completion" || cmd.Parent().Name() == "config") {
			return nil
		}

		var err error
		cfg, resolvedConfigPath, err = loadConfig()
		if err != nil {
			return handleError(cmd, ErrConfigInvalid, err, "Fix the file or run 'vk config path' to find it")
		}
		ui.ConfigureTheme(cfg.UI.Accent)
		ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	var reported *reportedError
	if err != nil && !errors.As(err, &reported) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), ui.Error(err.Error()))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log diagnostics to stderr")
}

// loadConfig reads --config when given, the default location otherwise.
func loadConfig() (*config.Config, string, error) {
	if configPath != "" {
		c, err := config.LoadFrom(configPath)
		if err == nil {
			diag.ConfigLoaded(configPath, true)
		}
		return c, configPath, err
	}

	path := config.DefaultPath()
	c, err := config.Load()
	if err != nil {
		return nil, path, err
	}
	_, statErr := os.Stat(path)
	diag.ConfigLoaded(path, statErr == nil)
	return c, path, nil
}

// getConfig returns the loaded config, or the defaults before loading.
func getConfig() *config.Config {
	if cfg == nil {
		return config.Default()
	}
	return cfg
}

// addWalkFlags registers --directory and --exclude on cmd.
func addWalkFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&directory, "directory", "d", "", "Vault directory to walk (required)")
	cmd.Flags().StringSliceVar(&excludeFlag, "exclude", nil, "Doublestar pattern to skip, relative to the directory (repeatable)")
	_ = cmd.MarkFlagRequired("directory")
}

// walkOptions combines config and flag exclude patterns.
func walkOptions() vault.Options {
	exclude := append([]string{config.StateDirPattern}, getConfig().Exclude...)
	exclude = append(exclude, excludeFlag...)
	return vault.Options{Exclude: exclude}
}
