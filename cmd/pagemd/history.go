package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagemd/pagemd/internal/config"
	"github.com/pagemd/pagemd/internal/database"
)

// NewHistoryCmd creates the history command.
// This command lists conversion runs recorded in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [source]",
		Short: "Show past conversion runs",
		Long: `History lists conversion runs recorded in the local database.

Each convert run stores its source, page counts, token usage, and the full
run result. Without arguments the most recent runs across all sources are
shown; pass a source to filter, or --id to inspect one run in full.

Examples:
  # Show the most recent runs
  pagemd history

  # Show all runs for one document
  pagemd history report.pdf

  # Show the full stored result for run 5
  pagemd history --id 5

  # Emit history as JSON
  pagemd history --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs to list (0 for all)")
	cmd.Flags().Int64P("id", "i", 0,
		"Show the full stored result for a single run by ID")
	cmd.Flags().BoolP("json", "j", false,
		"Output history in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	runID, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// --id shows one run in full
	if runID > 0 {
		return showRun(ctx, db, runID)
	}

	var runs []database.RunMetadata
	if len(args) == 1 {
		runs, err = db.ListRunsBySource(ctx, args[0])
	} else {
		runs, err = db.ListRuns(ctx, limit)
	}
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(runs)
	}

	return printRunList(runs)
}

// showRun prints the full stored result for one run.
func showRun(ctx context.Context, db *database.HistoryDB, id int64) error {
	run, err := db.GetRunByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load run %d: %w", id, err)
	}
	if run == nil {
		return fmt.Errorf("no run with ID %d (use 'pagemd history' to list runs)", id)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(run)
}

// printRunList prints run metadata as an aligned table.
func printRunList(runs []database.RunMetadata) error {
	if len(runs) == 0 {
		fmt.Println("No conversion runs recorded yet.")
		fmt.Println("\nUse 'pagemd convert <file>' to convert a document.")
		return nil
	}

	fmt.Printf("Conversion history (%d runs):\n\n", len(runs))
	fmt.Printf("  %-6s  %-19s  %-7s  %-12s  %-10s  %s\n",
		"ID", "Completed", "Pages", "Tokens", "Elapsed", "Source")
	fmt.Println("  " + strings.Repeat("-", 80))

	for _, meta := range runs {
		pages := fmt.Sprintf("%d", meta.PagesTotal)
		if meta.PagesSkipped > 0 {
			pages = fmt.Sprintf("%d(-%d)", meta.PagesTotal, meta.PagesSkipped)
		}

		fmt.Printf("  %-6d  %-19s  %-7s  %-12d  %-10s  %s\n",
			meta.ID,
			meta.CompletedAt.Format("2006-01-02 15:04:05"),
			pages,
			meta.InputTokens+meta.OutputTokens,
			meta.Elapsed.Round(time.Millisecond),
			meta.Source,
		)
	}

	fmt.Println("\nUse 'pagemd history --id <ID>' to see a run's full result.")
	return nil
}
