package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"chessdb/internal/client/display"
	"chessdb/internal/game"
	"chessdb/internal/position"
	"chessdb/internal/rules"
)

func newGameCmd(current func() *app) *cobra.Command {
	var ply int

	cmd := &cobra.Command{
		Use:   "game <id>",
		Short: "Print a recorded game",
		Long:  "Fetches a game, prints its details and move list, and the board after --ply half-moves.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id < 0 {
				return fmt.Errorf("invalid game id: %s", args[0])
			}

			a := current()
			log, err := a.games.Game(cmd.Context(), id)
			if err != nil {
				return err
			}

			tl := game.NewTimeline(log, rules.NewEngine())
			var p position.Position
			if ply < 0 {
				p, err = tl.Seek(tl.Len() - 1)
			} else {
				p, err = tl.Seek(ply - 1)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			display.RenderGameHeader(out, log.Meta())
			fmt.Fprintln(out)
			display.RenderMoveList(out, tl.MoveList())
			fmt.Fprintln(out)
			display.RenderPosition(out, p)
			return nil
		},
	}

	cmd.Flags().IntVar(&ply, "ply", -1, "Half-move to show, 0 for the start (default: final position)")
	return cmd
}
