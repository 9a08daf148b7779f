// Package commands implements the interactive client's command set.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"chessdb/internal/client/api"
	"chessdb/internal/client/display"
	"chessdb/internal/client/session"
)

// ErrExit is returned by Execute when the user asks to leave.
var ErrExit = errors.New("exit")

const DefaultWaitTimeout = 5 * time.Second

// Shell is the state commands operate on.
type Shell struct {
	Session     *session.Session
	Client      *api.Client
	Out         io.Writer
	Level       *slog.LevelVar
	WaitTimeout time.Duration
}

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Handler     func(context.Context, *Shell, []string) error
}

// Registry manages command registration and execution
type Registry struct {
	shell    *Shell
	commands map[string]*Command
}

func NewRegistry(shell *Shell) *Registry {
	if shell.WaitTimeout <= 0 {
		shell.WaitTimeout = DefaultWaitTimeout
	}
	r := &Registry{
		shell:    shell,
		commands: make(map[string]*Command),
	}

	r.registerSearchCommands()
	r.registerReplayCommands()
	r.registerDebugCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Handler:     r.helpHandler,
	})

	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Description: "Exit the client",
		Usage:       "exit",
		Handler:     exitHandler,
	})

	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
}

// Lookup finds a command by name or short name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names returns every full command name, sorted.
func (r *Registry) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, cmd := range r.commands {
		if !seen[cmd.Name] {
			seen[cmd.Name] = true
			names = append(names, cmd.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Execute runs one input line. A trailing "-v" enables debug logging for
// that command. Arrived query results are applied first. Command errors are
// printed; only ErrExit is returned.
func (r *Registry) Execute(ctx context.Context, input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	if parts[len(parts)-1] == "-v" && r.shell.Level != nil {
		parts = parts[:len(parts)-1]
		prev := r.shell.Level.Level()
		r.shell.Level.Set(slog.LevelDebug)
		defer r.shell.Level.Set(prev)
	}
	if len(parts) == 0 {
		return nil
	}

	r.shell.Session.Drain()

	cmdName := parts[0]
	args := parts[1:]

	cmd, exists := r.commands[cmdName]
	if !exists {
		fmt.Fprintf(r.shell.Out, "%sUnknown command: %s%s\n", display.Red, cmdName, display.Reset)
		fmt.Fprintf(r.shell.Out, "Type 'help' for available commands\n")
		return nil
	}

	if err := cmd.Handler(ctx, r.shell, args); err != nil {
		if errors.Is(err, ErrExit) {
			return ErrExit
		}
		display.Error(r.shell.Out, err)
	}
	return nil
}

func (r *Registry) helpHandler(_ context.Context, sh *Shell, args []string) error {
	out := sh.Out
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Fprintf(out, "\n%s%s%s - %s\n", display.Cyan, cmd.Name, display.Reset, cmd.Description)
		if cmd.ShortName != "" {
			fmt.Fprintf(out, "Short form: %s%s%s\n", display.Cyan, cmd.ShortName, display.Reset)
		}
		fmt.Fprintf(out, "Usage: %s\n", cmd.Usage)
		return nil
	}

	fmt.Fprintf(out, "\n%sAvailable Commands:%s\n\n", display.Cyan, display.Reset)

	printCommandGroup := func(title string, names []string) {
		fmt.Fprintf(out, "%s%s:%s\n", display.Yellow, title, display.Reset)
		for _, name := range names {
			cmd, exists := r.commands[name]
			if !exists {
				continue
			}
			shortPart := "    "
			if cmd.ShortName != "" {
				shortPart = fmt.Sprintf("[%s%s%s] ", display.Cyan, cmd.ShortName, display.Reset)
			}
			fmt.Fprintf(out, "  %s%-10s %s\n", shortPart, cmd.Name, cmd.Description)
		}
	}

	printCommandGroup("Search Commands", []string{"move", "board", "top", "games", "outcomes", "filter", "filters", "open", "retry", "wait"})
	fmt.Fprintln(out)
	printCommandGroup("Replay Commands", []string{"next", "prev", "goto", "moves", "show", "back"})
	fmt.Fprintln(out)
	printCommandGroup("Utility Commands", []string{"canon", "url", "raw", "clear", "help", "exit"})

	fmt.Fprintf(out, "\nType 'help <command>' for detailed usage\n")
	fmt.Fprintf(out, "Add '-v' to any command for verbose output\n")
	return nil
}

func exitHandler(_ context.Context, sh *Shell, _ []string) error {
	fmt.Fprintf(sh.Out, "%sGoodbye!%s\n", display.Cyan, display.Reset)
	return ErrExit
}
