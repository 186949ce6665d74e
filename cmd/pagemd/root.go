// Package main provides the entry point for the pagemd CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for pagemd.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagemd",
		Short: "Convert PDF documents to Markdown with a vision model",
		Long: `pagemd converts PDF documents into Markdown documents.

Each page is rendered to an image and transcribed by a vision-capable
language model (OpenAI-compatible endpoints or Gemini). Pages are processed
concurrently by default; format-maintenance mode processes them serially so
each page sees the previous page's output as formatting context.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewConvertCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
