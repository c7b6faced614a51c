package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/nexus-go/internal/ui"
	"github.com/diogo/nexus-go/pkg/models"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the display theme",
	RunE:  runThemeShow,
}

var themeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current theme",
	RunE:  runThemeShow,
}

var themeSetCmd = &cobra.Command{
	Use:       "set <light|dark>",
	Short:     "Set the theme",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(models.ThemeLight), string(models.ThemeDark)},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer s.Close()

		theme := models.Theme(args[0])
		if err := s.app.SetTheme(theme); err != nil {
			return err
		}
		setTheme(theme)
		render.RenderSuccess(fmt.Sprintf("Theme set to %s", theme))
		return nil
	},
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between light and dark",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer s.Close()

		theme, err := s.app.ToggleTheme()
		if err != nil {
			return err
		}
		setTheme(theme)
		render.RenderSuccess(fmt.Sprintf("Theme set to %s", theme))
		return nil
	},
}

func runThemeShow(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer s.Close()

	theme := s.app.State().Theme
	if theme == "" {
		fmt.Printf("%s (detected)\n", ui.ResolveTheme(""))
		return nil
	}
	fmt.Println(theme)
	return nil
}

func init() {
	themeCmd.AddCommand(themeShowCmd)
	themeCmd.AddCommand(themeSetCmd)
	themeCmd.AddCommand(themeToggleCmd)
}
