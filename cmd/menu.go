package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// menuActions are the stage runners the interactive menu dispatches to.
type menuActions struct {
	extract    func(ctx context.Context, format string) error
	transcript func(ctx context.Context) error
	audio      func(ctx context.Context) error
	full       func(ctx context.Context) error
	logger     *slog.Logger
}

func actionsFor(a *app) menuActions {
	numbered := a.cfg.Extract.Numbered
	return menuActions{
		extract: func(ctx context.Context, format string) error {
			_, err := a.extract(ctx, format, numbered)
			return err
		},
		transcript: func(ctx context.Context) error {
			_, err := a.transcript(ctx)
			return err
		},
		audio: func(ctx context.Context) error {
			_, err := a.audio(ctx)
			return err
		},
		full:   func(ctx context.Context) error { return a.full(ctx, numbered) },
		logger: a.logger,
	}
}

func runMenu(ctx context.Context, in io.Reader, a *app) error {
	return menuLoop(ctx, bufio.NewScanner(in), a.out, actionsFor(a))
}

type menuOption struct {
	key, label string
}

var mainMenu = []menuOption{
	{"1", "Extract content from Notion"},
	{"2", "Generate transcripts from source files"},
	{"3", "Create audio from transcripts"},
	{"4", "Run the complete workflow"},
}

var extractMenu = []menuOption{
	{"1", "Export Notion to PDF"},
	{"2", "Export Notion to Text"},
	{"3", "Return to main menu"},
}

// errQuit unwinds from a submenu when the user quits.
var errQuit = errors.New("quit")

// menuLoop reads choices until q or end of input. Stage failures are
// logged and the menu keeps running.
func menuLoop(ctx context.Context, in *bufio.Scanner, out io.Writer, actions menuActions) error {
	fmt.Fprintln(out, "\n"+strings.Repeat("=", 60))
	fmt.Fprintln(out, center("NOTION CONTENT EXTRACTOR AND PROCESSOR", 60))
	fmt.Fprintln(out, strings.Repeat("=", 60))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		printMenu(out, mainMenu)
		choice, ok := prompt(in, out)
		if !ok {
			return nil
		}
		var err error
		switch choice {
		case "1":
			err = extractSubmenu(ctx, in, out, actions)
		case "2":
			err = actions.transcript(ctx)
		case "3":
			err = actions.audio(ctx)
		case "4":
			err = actions.full(ctx)
		case "q":
			fmt.Fprintln(out, "\nExiting. Goodbye!")
			return nil
		default:
			fmt.Fprintln(out, "\nInvalid option. Please try again.")
			continue
		}
		if errors.Is(err, errQuit) {
			return nil
		}
		report(out, actions.logger, err)
	}
}

func extractSubmenu(ctx context.Context, in *bufio.Scanner, out io.Writer, actions menuActions) error {
	for {
		fmt.Fprintln(out, "\n--- Notion Extraction Options ---")
		printMenu(out, extractMenu)
		choice, ok := prompt(in, out)
		if !ok {
			return errQuit
		}
		switch choice {
		case "1":
			report(out, actions.logger, actions.extract(ctx, "pdf"))
		case "2":
			report(out, actions.logger, actions.extract(ctx, "txt"))
		case "3", "b":
			return nil
		case "q":
			return errQuit
		default:
			fmt.Fprintln(out, "\nInvalid option. Please try again.")
		}
	}
}

func report(out io.Writer, logger *slog.Logger, err error) {
	if err == nil {
		return
	}
	if logger != nil {
		logger.Error("stage failed", "error", err)
	}
	fmt.Fprintf(out, "✗ %v\n", err)
}

func printMenu(out io.Writer, options []menuOption) {
	fmt.Fprintln(out, "\nPlease select an option:")
	for _, o := range options {
		fmt.Fprintf(out, "%s. %s\n", o.key, o.label)
	}
	fmt.Fprintln(out, "q. Quit")
}

func prompt(in *bufio.Scanner, out io.Writer) (string, bool) {
	fmt.Fprint(out, "\nEnter your choice: ")
	if !in.Scan() {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(in.Text())), true
}

func center(s string, width int) string {
	pad := width - len([]rune(s))
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
