package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/nexus-go/internal/config"
	"github.com/diogo/nexus-go/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify nexus CLI configuration settings.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		render.RenderTitle("Configuration")

		fmt.Printf("Config file: %s\n\n", cfgMgr.GetConfigFile())
		for _, key := range config.Keys {
			value, err := cfg.Get(key)
			if err != nil {
				return err
			}
			fmt.Printf("%-17s %s\n", key+":", value)
		}

		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := args[1]

		if err := cfg.Set(key, value); err != nil {
			return err
		}

		if err := cfgMgr.Save(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		stored, _ := cfg.Get(key)
		render.RenderSuccess(fmt.Sprintf("Set %s = %s", key, stored))
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset configuration to defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		*cfg = *config.Defaults(cfgMgr.GetConfigDir())

		if err := cfgMgr.Save(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		render.RenderSuccess("Configuration reset to defaults")
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(cfgMgr.GetConfigFile())
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		return ui.RunInteractiveConfig(cfg, cfgMgr)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
}
