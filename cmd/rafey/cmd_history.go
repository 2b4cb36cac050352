package main

import (
	"errors"
	"fmt"
	"slices"

	"rafeyshell/internal/config"
	"rafeyshell/internal/history"
	"rafeyshell/internal/prompt"
	"rafeyshell/internal/shell"

	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd prints persisted history
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent conversation history",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadUserConfig(paths.Config())
	if err != nil {
		if !errors.Is(err, config.ErrNotConfigured) {
			return err
		}
		cfg = config.DefaultUserConfig()
	}

	backend, err := openHistory(cfg)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer backend.Close()

	entries, err := backend.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	store := history.NewStore(entries...)

	out := cmd.OutOrStdout()
	recent := slices.Collect(store.Recent(historyLimit))
	if len(recent) == 0 {
		fmt.Fprintln(out, "No conversation history yet.")
		return nil
	}

	for i, e := range recent {
		fmt.Fprintf(out, "%d. [%s] Q: %s\n", i+1, e.Timestamp.Local().Format("2006-01-02 15:04"), e.Query)
		fmt.Fprintf(out, "   A: %s\n\n", prompt.Truncate(e.Response, shell.HistoryPreviewLimit))
	}
	return nil
}
