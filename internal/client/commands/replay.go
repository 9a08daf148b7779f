package commands

import (
	"context"
	"fmt"
	"strconv"

	"chessdb/internal/client/display"
	"chessdb/internal/game"
	"chessdb/internal/position"
)

func (r *Registry) registerReplayCommands() {
	r.Register(&Command{
		Name:        "next",
		ShortName:   "n",
		Description: "Step one move forward",
		Usage:       "next",
		Handler:     stepHandler((*game.Timeline).Advance),
	})

	r.Register(&Command{
		Name:        "prev",
		ShortName:   "p",
		Description: "Step one move back",
		Usage:       "prev",
		Handler:     stepHandler((*game.Timeline).Retreat),
	})

	r.Register(&Command{
		Name:        "goto",
		ShortName:   "j",
		Description: "Jump to a ply from the move list, 0 for the start",
		Usage:       "goto <ply>",
		Handler:     gotoHandler,
	})

	r.Register(&Command{
		Name:        "moves",
		ShortName:   "l",
		Description: "Show the move list",
		Usage:       "moves",
		Handler:     movesHandler,
	})

	r.Register(&Command{
		Name:        "show",
		ShortName:   "s",
		Description: "Show the replay board and game details",
		Usage:       "show",
		Handler:     showHandler,
	})

	r.Register(&Command{
		Name:        "back",
		ShortName:   "q",
		Description: "Leave the replay and return to the search board",
		Usage:       "back",
		Handler:     backHandler,
	})
}

func stepHandler(step func(*game.Timeline) (position.Position, error)) func(context.Context, *Shell, []string) error {
	return func(_ context.Context, sh *Shell, _ []string) error {
		tl, err := sh.Session.Timeline()
		if err != nil {
			return err
		}
		p, err := step(tl)
		if err != nil {
			return err
		}
		renderReplayPosition(sh, tl, p)
		return nil
	}
}

func gotoHandler(_ context.Context, sh *Shell, args []string) error {
	tl, err := sh.Session.Timeline()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: goto <ply>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid ply: %s", args[0])
	}

	// Ply n is shown in the move list as [n]; cursor index is n-1.
	p, err := tl.Seek(n - 1)
	if err != nil {
		return err
	}
	renderReplayPosition(sh, tl, p)
	return nil
}

func movesHandler(_ context.Context, sh *Shell, _ []string) error {
	tl, err := sh.Session.Timeline()
	if err != nil {
		return err
	}
	display.RenderMoveList(sh.Out, tl.MoveList())
	return nil
}

func showHandler(_ context.Context, sh *Shell, _ []string) error {
	tl, err := sh.Session.Timeline()
	if err != nil {
		return err
	}
	display.RenderGameHeader(sh.Out, tl.Log().Meta())
	return showReplay(sh)
}

func backHandler(_ context.Context, sh *Shell, _ []string) error {
	if err := sh.Session.LeaveReplay(); err != nil {
		return err
	}
	display.RenderPosition(sh.Out, sh.Session.Board().Position())
	return nil
}

func showReplay(sh *Shell) error {
	tl, err := sh.Session.Timeline()
	if err != nil {
		return err
	}
	p, err := tl.CurrentPosition()
	if err != nil {
		return err
	}
	renderReplayPosition(sh, tl, p)
	return nil
}

func renderReplayPosition(sh *Shell, tl *game.Timeline, p position.Position) {
	display.RenderPosition(sh.Out, p)
	switch {
	case tl.AtStart():
		fmt.Fprintf(sh.Out, "Start of game, %d plies\n", tl.Len())
	default:
		rec := tl.Log().Move(tl.Cursor())
		dots := "."
		if !rec.WhiteToMove() {
			dots = "..."
		}
		fmt.Fprintf(sh.Out, "Ply %d/%d: %d%s %s\n", tl.Cursor()+1, tl.Len(), rec.TurnNo, dots, rec.SAN)
	}
}
