package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"chessdb/internal/client/commands"
	"chessdb/internal/client/display"
	"chessdb/internal/client/session"
)

func runREPL(ctx context.Context, a *app) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := a.newSession(ctx)
	registry := commands.NewRegistry(&commands.Shell{
		Session: sess,
		Client:  a.client,
		Out:     os.Stdout,
		Level:   a.level,
	})

	items := make([]readline.PrefixCompleterInterface, 0)
	for _, name := range registry.Names() {
		items = append(items, readline.PcItem(name))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("chessdb"),
		HistoryFile:     a.cfg.HistoryFile,
		AutoComplete:    readline.NewPrefixCompleter(items...),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to start line editor: %w", err)
	}
	defer rl.Close()

	fmt.Printf("%sChess Database Explorer%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, a.client.BaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")
	display.RenderPosition(os.Stdout, sess.Board().Position())

	for {
		sess.Drain()
		rl.SetPrompt(buildPrompt(sess))

		line, err := rl.Readline()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" {
			return nil
		}

		if err := registry.Execute(ctx, line); errors.Is(err, commands.ErrExit) {
			return nil
		}
	}
}

func buildPrompt(s *session.Session) string {
	base := "chessdb"

	if s.Mode() == session.ModeReplay {
		tl, err := s.Timeline()
		if err == nil {
			base += fmt.Sprintf("%s [%sgame %s %d/%d%s]", display.Yellow, display.Magenta,
				tl.Log().Meta().ID, tl.Cursor()+1, tl.Len(), display.Yellow)
		}
		return display.Prompt(base)
	}

	turn := display.ColorForTurn(s.Board().Position().Turn())
	base += display.Yellow + " [" + display.Reset + turn + display.Yellow + "]"
	if n := s.Pending(); n > 0 {
		base += fmt.Sprintf(" %s(%d pending)", display.Cyan, n)
	}
	return display.Prompt(base)
}
