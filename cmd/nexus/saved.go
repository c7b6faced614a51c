package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogo/nexus-go/internal/history"
	"github.com/diogo/nexus-go/pkg/models"
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage saved searches",
	RunE:  runSavedList,
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved searches",
	RunE:  runSavedList,
}

var savedAddCmd = &cobra.Command{
	Use:   "add <query>",
	Short: "Save a query without running it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer s.Close()

		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return fmt.Errorf("query is empty")
		}

		st := s.app.State()
		saved := history.PrependSaved(st.Saved, models.SavedSearch{
			Query:     query,
			Mode:      st.Mode,
			Timestamp: time.Now(),
		})
		if err := s.store.SaveSaved(saved); err != nil {
			return err
		}
		render.RenderSuccess(fmt.Sprintf("Saved %q (%s)", query, st.Mode))
		return nil
	},
}

var savedRunCmd = &cobra.Command{
	Use:   "run <index>",
	Short: "Run a saved search with its mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		s, err := openSession(ctx, true)
		if err != nil {
			return err
		}
		defer s.Close()

		saved := s.app.State().Saved
		idx, err := parseIndex(args[0], len(saved))
		if err != nil {
			return err
		}

		entry := saved[idx]
		if err := s.app.SetMode(entry.Mode); err != nil {
			return err
		}
		_, err = search(ctx, s.app, entry.Query, nil)
		return err
	},
}

var savedClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear saved searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.app.ClearSaved(); err != nil {
			return fmt.Errorf("failed to clear saved searches: %w", err)
		}
		render.RenderSuccess("Saved searches cleared")
		return nil
	},
}

func runSavedList(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer s.Close()

	render.RenderTitle("Saved Searches")
	render.RenderSaved(s.app.State().Saved)
	return nil
}

func init() {
	savedCmd.AddCommand(savedListCmd)
	savedCmd.AddCommand(savedAddCmd)
	savedCmd.AddCommand(savedRunCmd)
	savedCmd.AddCommand(savedClearCmd)
}
