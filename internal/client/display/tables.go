package display

import (
	"fmt"
	"io"
	"strings"

	"chessdb/internal/client/api"
	"chessdb/internal/game"
)

const barWidth = 30

// RenderGameHeader prints players, ratings, event, date and outcome.
func RenderGameHeader(w io.Writer, meta game.Meta) {
	fmt.Fprintf(w, "%sGame %s%s\n", Yellow, meta.ID, Reset)
	fmt.Fprintf(w, "  %sWhite:%s %s%s\n", Blue, Reset, meta.White, elo(meta.WhiteElo))
	fmt.Fprintf(w, "  %sBlack:%s %s%s\n", Red, Reset, meta.Black, elo(meta.BlackElo))
	if meta.Event != "" {
		fmt.Fprintf(w, "  Event: %s\n", meta.Event)
	}
	if meta.Date != "" {
		fmt.Fprintf(w, "  Date:  %s\n", meta.Date)
	}
	if meta.Outcome != "" {
		fmt.Fprintf(w, "  Result: %s (%s)\n", string(meta.Outcome), meta.Outcome.String())
	}
}

func elo(v int) string {
	if v <= 0 {
		return ""
	}
	return fmt.Sprintf(" (%d)", v)
}

// RenderMoveList prints numbered rows with the current ply highlighted.
// Ply numbers shown in brackets are the goto targets.
func RenderMoveList(w io.Writer, rows []game.MoveListRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no moves)")
		return
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%3d. %-14s %s\n", row.TurnNo, ply(row.White, "..."), ply(row.Black, ""))
	}
}

func ply(p *game.Ply, empty string) string {
	if p == nil {
		return empty
	}
	text := fmt.Sprintf("%s[%d]", p.SAN, p.Index+1)
	if p.Current {
		return Inverse + text + Reset
	}
	return text
}

// RenderTopMoves prints replies with occurrences and outcome percentages.
// A move with no occurrences shows "-" for each percentage.
func RenderTopMoves(w io.Writer, rows []api.MoveStat) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No games reach this position.")
		return
	}
	fmt.Fprintf(w, "%s%-8s %8s %7s %7s %7s%s\n", Cyan, "Move", "Games", "White", "Draw", "Black", Reset)
	for _, m := range rows {
		white, draw, black, ok := m.Percentages()
		fmt.Fprintf(w, "%-8s %8d %7s %7s %7s\n", m.SAN, m.Occurrences, pct(white, ok), pct(draw, ok), pct(black, ok))
	}
}

func pct(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", v)
}

// RenderGames prints a game search result list.
func RenderGames(w io.Writer, rows []api.GameSummary) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No matching games.")
		return
	}
	fmt.Fprintf(w, "%s%-8s %-10s %-7s %s%s\n", Cyan, "ID", "Date", "Result", "Players", Reset)
	for _, g := range rows {
		fmt.Fprintf(w, "%-8d %-10s %-7s %s%s - %s%s\n",
			g.ID, g.Date, g.Outcome, g.White, elo(g.WhiteElo), g.Black, elo(g.BlackElo))
	}
}

// RenderOutcomes prints one stacked bar per rating band, white wins then
// draws then black wins.
func RenderOutcomes(w io.Writer, rows []api.EloOutcome) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No rated games reach this position.")
		return
	}
	for _, o := range rows {
		band := fmt.Sprintf("%d-%d", o.BandStart(), o.BandStart()+199)
		if o.Occurrences <= 0 {
			fmt.Fprintf(w, "%-10s %s %6d\n", band, strings.Repeat(" ", barWidth), 0)
			continue
		}
		wn := o.WhiteWins * barWidth / o.Occurrences
		dn := o.Draws * barWidth / o.Occurrences
		bn := o.BlackWins * barWidth / o.Occurrences
		pad := barWidth - wn - dn - bn
		if pad < 0 {
			pad = 0
		}
		fmt.Fprintf(w, "%-10s %s%s%s%s%s%s%s %6d\n", band,
			Blue, strings.Repeat("W", wn),
			White, strings.Repeat("=", dn),
			Red, strings.Repeat("B", bn),
			Reset+strings.Repeat(" ", pad), o.Occurrences)
	}
}
