// Package cmd implements the notion-to-audio CLI using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Persistent flag variables.
var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
)

// stdinIsTerminal decides whether a bare invocation opens the menu.
var stdinIsTerminal = func() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

var rootCmd = &cobra.Command{
	Use:   "notion-to-audio",
	Short: "notion-to-audio: export a Notion database and turn it into spoken audio",
	Long: `notion-to-audio exports every page of a Notion database to text, PDF,
Markdown, or JSON, rewrites the text exports into conversational
transcripts with Gemini, and synthesizes the transcripts into WAV audio.

Usage:
  notion-to-audio extract --format txt
  notion-to-audio transcript
  notion-to-audio audio
  notion-to-audio full

Run without a command on a terminal to use the interactive menu.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !stdinIsTerminal() {
			return cmd.Help()
		}
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		return runMenu(cmd.Context(), cmd.InOrStdin(), a)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a TOML config file (default ./notion-to-audio.toml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format: console or json")
}

// Execute runs the root command. An interrupt cancels in-flight work.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
