package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/nibzard/taskpad/internal/config"
	"github.com/nibzard/taskpad/internal/export"
	"github.com/nibzard/taskpad/internal/tasklist"
	"github.com/nibzard/taskpad/internal/todo"
	"github.com/nibzard/taskpad/internal/ui"
	"github.com/nibzard/taskpad/internal/utils"
)

// tuiCommand launches the TUI.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskpad tui", flag.ContinueOnError)
	noAltScreen := fs.Bool("inline", false, "Render inline instead of taking over the terminal")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if !ui.IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY (try 'taskpad ls')")
	}

	a, err := openApp(ctx, cfg, logFileOnly)
	if err != nil {
		return err
	}
	defer a.Close()

	runErr := ui.RunTUI(ctx, a.ctrl, ui.WithAltScreen(!*noAltScreen))
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return errors.Join(runErr, a.flush(context.WithoutCancel(ctx)))
}

// addCommand adds a task from the command line.
func addCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("usage: taskpad add <title> [description]")
	}
	title := args[0]
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title cannot be empty")
	}
	description := ""
	if len(args) == 2 {
		description = args[1]
	}

	a, err := openApp(ctx, cfg, logSession)
	if err != nil {
		return err
	}
	defer a.Close()

	t, _ := a.ctrl.Add(ctx, title, description)
	if err := a.flush(ctx); err != nil {
		return err
	}
	fmt.Printf("Added %d: %s\n", t.ID, t.Title)
	return nil
}

// editCommand replaces a task's title and, when given, its description.
func editCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("usage: taskpad edit <id> <title> [description]")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	title := args[1]
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title cannot be empty")
	}

	a, err := openApp(ctx, cfg, logSession)
	if err != nil {
		return err
	}
	defer a.Close()

	target, found := a.ctrl.Get(id)
	if !found {
		return fmt.Errorf("task %d not found", id)
	}
	description := target.Description
	if len(args) == 3 {
		description = args[2]
	}

	t, _ := a.ctrl.Update(ctx, target, title, description)
	if err := a.flush(ctx); err != nil {
		return err
	}
	fmt.Printf("Updated %d: %s\n", t.ID, t.Title)
	return nil
}

// doneCommand toggles a task's completion flag.
func doneCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: taskpad done <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(ctx, cfg, logSession)
	if err != nil {
		return err
	}
	defer a.Close()

	t, found := a.ctrl.ToggleComplete(ctx, id)
	if !found {
		return fmt.Errorf("task %d not found", id)
	}
	if err := a.flush(ctx); err != nil {
		return err
	}
	if t.Completed {
		fmt.Printf("Completed %d: %s\n", t.ID, t.Title)
	} else {
		fmt.Printf("Reopened %d: %s\n", t.ID, t.Title)
	}
	return nil
}

// rmCommand deletes a task.
func rmCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: taskpad rm <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(ctx, cfg, logSession)
	if err != nil {
		return err
	}
	defer a.Close()

	t, found := a.ctrl.Get(id)
	if !found || !a.ctrl.Remove(ctx, id) {
		return fmt.Errorf("task %d not found", id)
	}
	if err := a.flush(ctx); err != nil {
		return err
	}
	fmt.Printf("Deleted %d: %s\n", t.ID, t.Title)
	return nil
}

// listFlags are the filters shared by ls and export.
type listFlags struct {
	view   string
	search string
}

func (lf *listFlags) bind(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&lf.view, "view", cfg.DefaultView, "pending or completed")
	fs.StringVar(&lf.search, "search", "", "Only tasks whose title or description contains the term")
}

// collect returns the filtered tasks and the heading for the view.
func (lf *listFlags) collect(ctrl *tasklist.Controller) ([]todo.Task, string, error) {
	view, err := tasklist.ParseView(lf.view)
	if err != nil {
		return nil, "", err
	}
	return slices.Collect(ctrl.FilteredView(lf.search, view)), viewTitle(view), nil
}

// lsCommand lists tasks in one view.
func lsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskpad ls", flag.ContinueOnError)
	var lf listFlags
	lf.bind(fs, cfg)
	asJSON := fs.Bool("json", false, "Print tasks as JSON")
	verbose := fs.Bool("v", false, "Show descriptions and dates")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	a, err := openApp(ctx, cfg, logConsole)
	if err != nil {
		return err
	}
	defer a.Close()

	tasks, heading, err := lf.collect(a.ctrl)
	if err != nil {
		return err
	}
	if *asJSON {
		return export.Write(os.Stdout, export.FormatJSON, heading, tasks)
	}

	fmt.Printf("%s (%d):\n", heading, len(tasks))
	if len(tasks) == 0 {
		fmt.Println("  No tasks found.")
		return nil
	}
	for _, t := range tasks {
		printTask(t, *verbose)
	}
	return nil
}

// exportCommand writes the tasks of one view to a file or stdout.
func exportCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskpad export", flag.ContinueOnError)
	var lf listFlags
	lf.bind(fs, cfg)
	formatName := fs.String("format", "", "json, yaml or pdf")
	output := fs.String("o", "", "Output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	format, err := resolveFormat(*formatName, *output)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, cfg, logConsole)
	if err != nil {
		return err
	}
	defer a.Close()

	tasks, heading, err := lf.collect(a.ctrl)
	if err != nil {
		return err
	}

	if *output == "" {
		return export.Write(os.Stdout, format, heading, tasks)
	}

	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := export.Write(f, format, heading, tasks); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing export file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Exported %d task(s) to %s\n", len(tasks), *output)
	return nil
}

// resolveFormat picks the export format from the flag, then the output
// file extension, then JSON.
func resolveFormat(name, output string) (export.Format, error) {
	if name != "" {
		return export.ParseFormat(name)
	}
	if ext := strings.TrimPrefix(filepath.Ext(output), "."); ext != "" {
		if f, err := export.ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	return export.FormatJSON, nil
}

// parseID accepts a numeric id or a full "todo:<id>" key.
func parseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, todo.KeyPrefix) {
		id, err := todo.ParseKey(s)
		if err != nil {
			return 0, fmt.Errorf("invalid task id %q: %w", s, err)
		}
		return id, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

func viewTitle(v tasklist.View) string {
	if v == tasklist.ViewCompleted {
		return "Completed"
	}
	return "Todos"
}

// printTask prints a single task.
func printTask(t todo.Task, verbose bool) {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	fmt.Printf("  %s %d  %s\n", box, t.ID, utils.Truncate(t.Title, 72))

	if verbose {
		if t.Description != "" {
			fmt.Printf("      Description: %s\n", t.Description)
		}
		fmt.Printf("      Date: %s\n", t.DateCreated)
	}
}
