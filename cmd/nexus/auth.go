package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/diogo/nexus-go/internal/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the API key",
	Long:  `Store, inspect and remove the Gemini API key used by nexus.`,
}

var authSetKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Save an API key",
	Long: `Save a Gemini API key to the key file.

Without an argument the key is read from a masked prompt.

Example:
  nexus auth set-key AIza...`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Gemini API key").
						EchoMode(huh.EchoModePassword).
						Value(&key).
						Validate(func(s string) error {
							if strings.TrimSpace(s) == "" {
								return fmt.Errorf("key is required")
							}
							return nil
						}),
				),
			)
			if err := form.Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return err
			}
		}

		if err := auth.SaveKeyFile(key, cfg.KeyFile); err != nil {
			return fmt.Errorf("failed to save key: %w", err)
		}

		render.RenderSuccess(fmt.Sprintf("Saved API key to %s", cfg.KeyFile))
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check authentication status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cred, err := auth.Resolve(flagAPIKey, cfg.KeyFile)
		if err != nil {
			if errors.Is(err, auth.ErrNoAPIKey) {
				render.RenderWarning("Not authenticated")
				render.RenderInfo(fmt.Sprintf("Key file not found: %s", cfg.KeyFile))
				render.RenderInfo("Run 'nexus auth set-key' or set GEMINI_API_KEY")
				return nil
			}
			return err
		}

		render.RenderSuccess("Authenticated")
		fmt.Printf("Key:    %s\n", auth.Mask(cred.Key))
		fmt.Printf("Source: %s (%s)\n", cred.Source, cred.Origin)
		return nil
	},
}

var authClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the saved API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := auth.ClearKeyFile(cfg.KeyFile)
		if err != nil {
			return err
		}
		if !removed {
			render.RenderInfo("No key to clear")
			return nil
		}

		render.RenderSuccess("API key cleared")
		return nil
	},
}

var authPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show key file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(cfg.KeyFile)
		return nil
	},
}

func init() {
	authCmd.AddCommand(authSetKeyCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authClearCmd)
	authCmd.AddCommand(authPathCmd)
}
