package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/coursedates/internal/config"
	"github.com/aidanlsb/coursedates/internal/dates"
	"github.com/aidanlsb/coursedates/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the coursedates config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a commented config file if none exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.CreateDefault(config.ResolveConfigPath(configPath))
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"path": path}, nil)
			return nil
		}
		fmt.Println(ui.Success("Config at " + ui.FilePath(path)))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ResolveConfigPath(configPath)
		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"path": path}, nil)
			return nil
		}
		fmt.Println(path)
		return nil
	},
}

// settableKeys are the config keys "config set" accepts.
var settableKeys = []string{"start_date", "start_index", "archiver", "workers", "output_suffix", "work_dir", "ui.accent"}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long:  "Set a config value. Supported keys: " + strings.Join(settableKeys, ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ResolveConfigPath(configPath)
		c, err := loadForEdit(path)
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		if err := applyConfigValue(c, args[0], args[1]); err != nil {
			return handleError(ErrInvalidInput, err, "Supported keys: "+strings.Join(settableKeys, ", "))
		}
		if err := c.Validate(); err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		if err := config.SaveTo(path, c); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"path": path, "key": args[0], "value": args[1]}, nil)
			return nil
		}
		fmt.Println(ui.Successf("Set %s in %s", args[0], ui.FilePath(path)))
		return nil
	},
}

func loadForEdit(path string) (*config.Config, error) {
	c, err := config.LoadFrom(path)
	if err == nil {
		return c, nil
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return &config.Config{}, nil
	}
	return nil, err
}

func applyConfigValue(c *config.Config, key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "start_date":
		if _, err := dates.ParseStartDate(value); err != nil {
			return err
		}
		c.StartDate = value
	case "start_index":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("start_index must be an integer: %w", err)
		}
		c.StartIndex = &n
	case "workers":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("workers must be an integer: %w", err)
		}
		c.Workers = n
	case "archiver":
		c.Archiver = value
	case "output_suffix":
		c.OutputSuffix = value
	case "work_dir":
		c.WorkDir = value
	case "ui.accent":
		c.UI.Accent = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
