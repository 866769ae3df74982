// Package cli implements the command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/coursedates/internal/config"
	"github.com/aidanlsb/coursedates/internal/ui"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Resolved values
	resolvedConfigPath string
	cfg                *config.Config
)

// rootCmd represents the base command. Given an archive it runs the update.
var rootCmd = &cobra.Command{
	Use:   "coursedates <archive>",
	Short: "Shift the dates in an exported course to a new school year",
	Long: `coursedates rewrites DateReplace directives in an exported course
container (IMSCC or zip) so every date lines up with a new start date.

Authors mark a date in HTML like this:

  <span class="DateReplace(NN MM D, 3)">Thursday August 22</span>

Day 3 is counted from the start date, and the text between '>' and '<' is
replaced with the rendered date. The input archive is never modified; the
result is written next to it as <name>_updated.<ext> unless --output is set.`,
	Example: `  coursedates --start 08/19/2024 biology.imscc
  coursedates -s 2024-08-19 -i 1 -o fall.imscc biology.imscc
  coursedates --start 08/19/2024 --dry-run --report report.yaml biology.imscc`,
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "completion", "help", "version":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "config" {
			return nil
		}

		var err error
		cfg, resolvedConfigPath, err = loadGlobalConfigWithPath()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "Fix the config file or pass --config with another path")
		}
		ui.ConfigureTheme(cfg.UI.Accent)
		return nil
	},
	RunE: runUpdate,
}

// Execute runs the CLI. Interrupts cancel the run in progress.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		if jsonOutput {
			outputError(ErrInvalidInput, err.Error(), nil, "")
		} else {
			fmt.Fprintln(os.Stderr, ui.Error(err.Error()))
		}
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log every directive as it is resolved")

	registerUpdateFlags(rootCmd)
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	if cfg == nil {
		return &config.Config{}
	}
	return cfg
}

func loadGlobalConfigWithPath() (*config.Config, string, error) {
	resolvedPath := config.ResolveConfigPath(configPath)

	var loadedCfg *config.Config
	var err error
	if strings.TrimSpace(configPath) != "" {
		loadedCfg, err = config.LoadFrom(configPath)
	} else {
		loadedCfg, err = config.Load()
	}
	if err != nil {
		return nil, "", err
	}
	if loadedCfg == nil {
		loadedCfg = &config.Config{}
	}

	return loadedCfg, resolvedPath, nil
}
