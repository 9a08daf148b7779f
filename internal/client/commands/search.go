package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"chessdb/internal/client/api"
	"chessdb/internal/client/display"
	"chessdb/internal/client/feed"
	"chessdb/internal/client/session"
	"chessdb/internal/freeboard"
	"chessdb/internal/query"
)

func (r *Registry) registerSearchCommands() {
	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Move a piece on the search board",
		Usage:       "move <from> <to>  (e.g. move e2 e4, or move e2e4)",
		Handler:     moveHandler,
	})

	r.Register(&Command{
		Name:        "board",
		ShortName:   "b",
		Description: "Show the search board",
		Usage:       "board",
		Handler:     boardHandler,
	})

	r.Register(&Command{
		Name:        "top",
		ShortName:   "t",
		Description: "Most played replies from the board position",
		Usage:       "top",
		Handler:     feedHandler(func(s *session.Session) *feed.Feed { return s.TopMoves() }),
	})

	r.Register(&Command{
		Name:        "games",
		ShortName:   "g",
		Description: "Games reaching the board position, filtered",
		Usage:       "games",
		Handler:     feedHandler(func(s *session.Session) *feed.Feed { return s.Games() }),
	})

	r.Register(&Command{
		Name:        "outcomes",
		ShortName:   "o",
		Description: "Outcomes by rating band for the board position",
		Usage:       "outcomes",
		Handler:     feedHandler(func(s *session.Session) *feed.Feed { return s.Outcomes() }),
	})

	r.Register(&Command{
		Name:        "filter",
		ShortName:   "f",
		Description: "Set or clear one game search filter",
		Usage:       "filter <" + strings.Join(query.FieldNames, "|") + "> [value]",
		Handler:     filterHandler,
	})

	r.Register(&Command{
		Name:        "filters",
		Description: "Show game search filters",
		Usage:       "filters",
		Handler:     filtersHandler,
	})

	r.Register(&Command{
		Name:        "open",
		ShortName:   "op",
		Description: "Replay a game from the search results",
		Usage:       "open <gameId>",
		Handler:     openHandler,
	})

	r.Register(&Command{
		Name:        "retry",
		ShortName:   "r",
		Description: "Re-issue failed queries",
		Usage:       "retry",
		Handler:     retryHandler,
	})

	r.Register(&Command{
		Name:        "wait",
		ShortName:   "w",
		Description: "Wait for outstanding queries",
		Usage:       "wait",
		Handler:     waitHandler,
	})
}

func requireSearch(sh *Shell) error {
	if sh.Session.Mode() != session.ModeSearch {
		return fmt.Errorf("%w: use 'back' to leave the replay", session.ErrNotSearching)
	}
	return nil
}

// squares accepts "e2 e4" or "e2e4".
func squares(args []string) (string, string, bool) {
	switch {
	case len(args) == 2:
		return strings.ToLower(args[0]), strings.ToLower(args[1]), true
	case len(args) == 1 && len(args[0]) == 4:
		s := strings.ToLower(args[0])
		return s[:2], s[2:], true
	default:
		return "", "", false
	}
}

func moveHandler(_ context.Context, sh *Shell, args []string) error {
	from, to, ok := squares(args)
	if !ok {
		return fmt.Errorf("usage: move <from> <to>")
	}

	outcome, err := sh.Session.Move(from, to)
	if err != nil {
		return err
	}
	if outcome == freeboard.Rejected {
		fmt.Fprintf(sh.Out, "%sIllegal move: %s%s%s\n", display.Yellow, from, to, display.Reset)
		return nil
	}

	display.RenderPosition(sh.Out, sh.Session.Board().Position())
	return nil
}

func boardHandler(_ context.Context, sh *Shell, _ []string) error {
	display.RenderPosition(sh.Out, sh.Session.Board().Position())
	fmt.Fprintf(sh.Out, "%sKey: %s%s\n", display.Cyan, sh.Session.Board().Key(), display.Reset)
	return nil
}

func feedHandler(pick func(*session.Session) *feed.Feed) func(context.Context, *Shell, []string) error {
	return func(ctx context.Context, sh *Shell, _ []string) error {
		if err := requireSearch(sh); err != nil {
			return err
		}
		f := pick(sh.Session)
		if f.Pending() > 0 && !f.Fresh() {
			sh.Session.Wait(ctx, sh.WaitTimeout)
		}
		renderFeed(sh, f)
		return nil
	}
}

func renderFeed(sh *Shell, f *feed.Feed) {
	if err := f.Err(); err != nil {
		display.Error(sh.Out, err)
		fmt.Fprintln(sh.Out, "Type 'retry' to query again.")
	}
	switch {
	case f.Payload() == nil && f.Pending() > 0:
		display.Info(sh.Out, "Loading...")
		return
	case f.Payload() == nil:
		return
	case !f.Fresh():
		display.Info(sh.Out, "Showing results for a previous position.")
	}

	switch rows := f.Payload().(type) {
	case []api.MoveStat:
		display.RenderTopMoves(sh.Out, rows)
	case []api.GameSummary:
		display.RenderGames(sh.Out, rows)
	case []api.EloOutcome:
		display.RenderOutcomes(sh.Out, rows)
	default:
		display.PrettyPrintJSON(sh.Out, rows)
	}
}

func filterHandler(_ context.Context, sh *Shell, args []string) error {
	if err := requireSearch(sh); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: filter <%s> [value]", strings.Join(query.FieldNames, "|"))
	}

	filters := sh.Session.Games().Filters()
	value := strings.Join(args[1:], " ")
	if !filters.Set(args[0], value) {
		return fmt.Errorf("unknown filter %q or value %q", args[0], value)
	}
	if err := sh.Session.SetFilters(filters); err != nil {
		return err
	}

	if value == "" {
		display.Success(sh.Out, "%s cleared", args[0])
	} else {
		display.Success(sh.Out, "%s = %s", args[0], value)
	}
	return nil
}

func filtersHandler(_ context.Context, sh *Shell, _ []string) error {
	filters := sh.Session.Games().Filters()
	for _, name := range query.FieldNames {
		v, ok := filters.Get(name)
		if !ok {
			v = "-"
		}
		fmt.Fprintf(sh.Out, "  %-7s %s\n", name, v)
	}
	return nil
}

func openHandler(ctx context.Context, sh *Shell, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: open <gameId>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id < 0 {
		return fmt.Errorf("invalid game id: %s", args[0])
	}

	if err := sh.Session.EnterReplay(ctx, id); err != nil {
		return err
	}
	tl, err := sh.Session.Timeline()
	if err != nil {
		return err
	}
	display.RenderGameHeader(sh.Out, tl.Log().Meta())
	return showReplay(sh)
}

func retryHandler(_ context.Context, sh *Shell, _ []string) error {
	if err := requireSearch(sh); err != nil {
		return err
	}
	n := 0
	for _, f := range sh.Session.Feeds() {
		if f.Err() != nil && f.Retry() {
			n++
		}
	}
	if n == 0 {
		display.Info(sh.Out, "Nothing to retry.")
		return nil
	}
	display.Info(sh.Out, "Retrying %d queries.", n)
	return nil
}

func waitHandler(ctx context.Context, sh *Shell, _ []string) error {
	applied := sh.Session.Wait(ctx, sh.WaitTimeout)
	if pending := sh.Session.Pending(); pending > 0 {
		display.Info(sh.Out, "%d results applied, %d still outstanding.", applied, pending)
		return nil
	}
	display.Info(sh.Out, "%d results applied.", applied)
	return nil
}
