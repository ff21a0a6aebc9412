// Package cmd implements the CLI command structure for taskpad.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nibzard/taskpad/internal/config"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the taskpad CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskpad", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// No arguments or a leading flag means the TUI.
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "add":
		return addCommand(ctx, cfg, remainingArgs)
	case "edit":
		return editCommand(ctx, cfg, remainingArgs)
	case "done", "toggle":
		return doneCommand(ctx, cfg, remainingArgs)
	case "rm", "remove":
		return rmCommand(ctx, cfg, remainingArgs)
	case "ls", "list":
		return lsCommand(ctx, cfg, remainingArgs)
	case "export":
		return exportCommand(ctx, cfg, remainingArgs)
	case "config":
		return configCommand(cws, remainingArgs)
	case "init-config":
		return initConfigCommand(cfg, remainingArgs)
	case "tail":
		return tailCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return doctorCommand(ctx, cws, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("taskpad version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "taskpad - a small persistent task list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskpad [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                          Launch the terminal UI (default command)")
	fmt.Fprintln(w, "  add <title> [description]    Add a task")
	fmt.Fprintln(w, "  edit <id> <title> [desc]     Change a task's title and description")
	fmt.Fprintln(w, "  done <id>                    Mark a task as complete or incomplete")
	fmt.Fprintln(w, "  rm <id>                      Delete a task")
	fmt.Fprintln(w, "  ls                           List tasks")
	fmt.Fprintln(w, "  export                       Export tasks as json, yaml or pdf")
	fmt.Fprintln(w, "  config                       Show the effective configuration")
	fmt.Fprintln(w, "  init-config                  Print or write an example taskpad.toml")
	fmt.Fprintln(w, "  tail                         Tail the latest session log")
	fmt.Fprintln(w, "  doctor                       Check storage, hook and log directory")
	fmt.Fprintln(w, "  version                      Show version information")
	fmt.Fprintln(w, "  help                         Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options (use with 'ls' command):")
	fmt.Fprintln(w, "  -view string")
	fmt.Fprintln(w, "        pending or completed (default from config)")
	fmt.Fprintln(w, "  -search string")
	fmt.Fprintln(w, "        Only tasks whose title or description contains the term")
	fmt.Fprintln(w, "  -json")
	fmt.Fprintln(w, "        Print tasks as JSON")
	fmt.Fprintln(w, "  -v    Show descriptions and dates")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export Options (use with 'export' command):")
	fmt.Fprintln(w, "  -format string")
	fmt.Fprintln(w, "        json, yaml or pdf (default: from -o extension, else json)")
	fmt.Fprintln(w, "  -o string")
	fmt.Fprintln(w, "        Output file (default stdout)")
	fmt.Fprintln(w, "  -view string, -search string")
	fmt.Fprintln(w, "        Same as ls")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tail Options (use with 'tail' command):")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
}
