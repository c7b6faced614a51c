package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/diogo/nexus-go/internal/history"
)

var (
	historyCount int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View query history",
	Long:  `View, search and re-run your recent queries.`,
	RunE:  runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent queries",
	RunE:  runHistoryList,
}

var historySearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer s.Close()

		entries := history.Search(s.app.State().History, args[0])
		if len(entries) == 0 {
			render.RenderInfo("No matching entries found")
			return nil
		}

		render.RenderTitle(fmt.Sprintf("Search Results: %d matches", len(entries)))
		render.RenderHistory(entries)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <index>",
	Short: "Show details of a history entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer s.Close()

		entries := s.app.State().History
		idx, err := parseIndex(args[0], len(entries))
		if err != nil {
			return err
		}

		entry := entries[idx]
		render.RenderTitle("History Entry")
		fmt.Printf("Timestamp: %s\n", entry.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Query:     %s\n", entry.Query)
		fmt.Printf("Mode:      %s\n", entry.Mode)
		return nil
	},
}

var historyRunCmd = &cobra.Command{
	Use:   "run <index>",
	Short: "Re-run a history entry with its mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		s, err := openSession(ctx, true)
		if err != nil {
			return err
		}
		defer s.Close()

		entries := s.app.State().History
		idx, err := parseIndex(args[0], len(entries))
		if err != nil {
			return err
		}

		entry := entries[idx]
		if entry.Query == history.VisualInquiryLabel {
			return fmt.Errorf("image searches cannot be re-run")
		}
		if err := s.app.SetMode(entry.Mode); err != nil {
			return err
		}
		_, err = search(ctx, s.app, entry.Query, nil)
		return err
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all history",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.app.ClearHistory(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		render.RenderSuccess("History cleared")
		return nil
	},
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer s.Close()

	entries := s.app.State().History
	if historyCount > 0 && historyCount < len(entries) {
		entries = entries[:historyCount]
	}

	if len(entries) == 0 {
		render.RenderInfo("No history entries")
		return nil
	}

	render.RenderTitle("Recent Queries")
	render.RenderHistory(entries)
	return nil
}

// parseIndex converts a 1-based index argument to a slice index.
func parseIndex(arg string, n int) (int, error) {
	idx, err := strconv.Atoi(arg)
	if err != nil || idx < 1 {
		return 0, fmt.Errorf("invalid index: %s", arg)
	}
	if idx > n {
		return 0, fmt.Errorf("index out of range: %d (max: %d)", idx, n)
	}
	return idx - 1, nil
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyRunCmd)
	historyCmd.AddCommand(historyClearCmd)

	historyCmd.Flags().IntVarP(&historyCount, "count", "n", history.MaxEntries, "Number of entries to show")
	historyListCmd.Flags().IntVarP(&historyCount, "count", "n", history.MaxEntries, "Number of entries to show")
}
