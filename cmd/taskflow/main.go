package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/dori/taskflow/internal/app"
	"github.com/dori/taskflow/internal/config"
	"github.com/dori/taskflow/internal/model"
	"github.com/dori/taskflow/internal/taskview"
	"github.com/dori/taskflow/internal/ui"
	"github.com/dori/taskflow/internal/ui/components"
)

var (
	version = "0.1.0"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) > 0 {
		switch args[0] {
		case "add":
			return runAdd(args[1:], out)
		case "list", "ls":
			return runList(args[1:], out)
		case "serve":
			return runServe(args[1:])
		case "version":
			fmt.Fprintf(out, "taskflow v%s\n", version)
			return nil
		case "help", "-h", "--help":
			printHelp(out)
			return nil
		case "tui":
			args = args[1:]
		}
	}
	return runTUI(args)
}

// commonFlags are accepted by every subcommand
type commonFlags struct {
	configPath string
	store      string
	dbPath     string
	remoteURL  string
	seedFile   string
}

func (c *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&c.configPath, "config", "c", "", "config file (default: $"+config.EnvConfig+" or <data dir>/config.yaml)")
	fs.StringVar(&c.store, "store", "", "task store: memory, sqlite or remote")
	fs.StringVar(&c.dbPath, "db", "", "SQLite database path (sqlite store)")
	fs.StringVar(&c.remoteURL, "remote", "", "server base URL (remote store)")
	fs.StringVar(&c.seedFile, "seed", "", "JSONC seed fixture (memory store)")
}

// load reads the config file and applies flag overrides on top
func (c *commonFlags) load() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.store != "" {
		cfg.Store = config.StoreKind(strings.ToLower(c.store))
	}
	if c.dbPath != "" {
		cfg.DBPath = c.dbPath
	}
	if c.remoteURL != "" {
		cfg.RemoteURL = c.remoteURL
		if c.store == "" {
			cfg.Store = config.StoreRemote
		}
	}
	if c.seedFile != "" {
		cfg.SeedFile = c.seedFile
	}
	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runTUI(args []string) error {
	var common commonFlags
	var themeName string
	fs := pflag.NewFlagSet("taskflow", pflag.ContinueOnError)
	common.register(fs)
	fs.StringVarP(&themeName, "theme", "t", "", "theme (nord, dracula, gruvbox, catppuccin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	if themeName != "" {
		cfg.Theme = themeName
	}

	application, err := app.New(cfg, app.LogToFile)
	if err != nil {
		return err
	}
	defer application.Close()

	p := tea.NewProgram(
		ui.NewRootModel(application),
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}

func runAdd(args []string, out io.Writer) error {
	var common commonFlags
	fs := pflag.NewFlagSet("taskflow add", pflag.ContinueOnError)
	common.register(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: taskflow add [flags] <task>")
		fmt.Fprintln(os.Stderr, `Example: taskflow add "Buy groceries @shopping !high due:tomorrow"`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing task text")
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}

	application, err := app.New(cfg, app.LogToStderr)
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	categories, err := application.Store.Categories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	today := model.Today()
	task, err := parseQuickAdd(strings.Join(fs.Args(), " "), categories, today)
	if err != nil {
		return err
	}

	created, err := application.Store.Create(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	fmt.Fprintf(out, "Created: %s\n", created.Title)
	fmt.Fprintf(out, "Category: %s\n", created.Category)
	if created.DueDate != nil {
		fmt.Fprintf(out, "Due: %s\n", components.DueLabel(*created.DueDate, today))
	}
	if created.Priority != model.PriorityMedium {
		fmt.Fprintf(out, "Priority: %s\n", created.Priority)
	}
	if cfg.Store == config.StoreMemory {
		fmt.Fprintln(os.Stderr, "note: the memory store does not persist; use --store sqlite")
	}
	return nil
}

func runList(args []string, out io.Writer) error {
	var common commonFlags
	var filterName, category, search string
	fs := pflag.NewFlagSet("taskflow list", pflag.ContinueOnError)
	common.register(fs)
	fs.StringVarP(&filterName, "filter", "f", "all", "all, today, upcoming, overdue, completed or pending")
	fs.StringVar(&category, "category", "", "only tasks in this category")
	fs.StringVarP(&search, "search", "s", "", "case-insensitive text search")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter, ok := model.ParseFilter(filterName)
	if !ok {
		return fmt.Errorf("unknown filter %q", filterName)
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}

	application, err := app.New(cfg, app.LogToStderr)
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tasks, err := application.Store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	today := model.Today()
	view := taskview.Derive(tasks, taskview.State{Filter: filter, Category: category, Search: search}, today)
	printTasks(out, view, today)
	return nil
}

func printTasks(out io.Writer, view taskview.Result, today model.Date) {
	if len(view.Tasks) == 0 {
		fmt.Fprintln(out, "No tasks found")
		return
	}
	for _, t := range view.Tasks {
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}
		due := ""
		if t.DueDate != nil {
			due = components.DueLabel(*t.DueDate, today)
			if t.IsOverdue(today) {
				due = "overdue: " + due
			}
		}
		fmt.Fprintf(out, "%s %-40s %-10s %-6s %s\n", check, t.Title, t.Category, t.Priority, due)
	}
	fmt.Fprintf(out, "\n%d of %d done (%.0f%%)\n", view.Completed, view.Total, view.Progress)
}

func printHelp(out io.Writer) {
	help := `taskflow - a task manager for the terminal

Usage:
  taskflow [tui] [flags]      Start the TUI
  taskflow add <task>         Quick add a task
  taskflow list [flags]       Print tasks
  taskflow serve [flags]      Serve the REST API
  taskflow version            Show version
  taskflow help               Show this help

Common flags:
  -c, --config <file>   Config file (default: $TASKFLOW_CONFIG or <data dir>/config.yaml)
      --store <kind>    memory, sqlite or remote
      --db <path>       SQLite database path
      --remote <url>    Server base URL for the remote store
      --seed <file>     JSONC seed fixture for the memory store

Quick Add Syntax:
  taskflow add "Buy groceries"
  taskflow add "Review PR @work !high due:tomorrow"

  Category:  @name         (e.g., @work, @personal, @shopping, @health)
  Priority:  !low !medium !high
  Due date:  due:tomorrow due:friday due:2024-01-15

Keybindings:
  Navigation:   ↑/↓ or j/k    Move cursor
                g/G           Go to top/bottom
                space         Toggle selection
                V             Select all visible

  Actions:      a             Add new task
                enter         Edit task
                tab           Toggle done
                d             Delete (with confirm)
                p             Cycle priority

  Filters:      1-6 or f/F    Status filter
                c/C           Category
                /             Search
                ?             Help
                q             Quit`

	fmt.Fprintln(out, help)
}
