package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chessdb/internal/position"
)

func newCanonCmd() *cobra.Command {
	var board bool

	cmd := &cobra.Command{
		Use:   "canon <fen>",
		Short: "Print the canonical search key of a position",
		Args:  cobra.MinimumNArgs(1),
		// Needs no API or cache
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := position.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, position.Canonicalize(p))
			if board {
				fmt.Fprintln(out, p.ToASCII())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&board, "board", false, "Also print the board")
	return cmd
}
