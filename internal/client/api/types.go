package api

// MoveStat is one reply played from the queried position.
type MoveStat struct {
	SAN         string `json:"san_str" validate:"required"`
	Occurrences int    `json:"occurrences" validate:"min=0"`
	WhiteWins   int    `json:"wwin" validate:"min=0"`
	BlackWins   int    `json:"bwin" validate:"min=0"`
	Draws       int    `json:"draws" validate:"min=0"`
}

// Percentages returns white, draw and black shares of Occurrences.
// ok is false when the move was never played.
func (m MoveStat) Percentages() (white, draw, black float64, ok bool) {
	if m.Occurrences <= 0 {
		return 0, 0, 0, false
	}
	n := float64(m.Occurrences)
	return 100 * float64(m.WhiteWins) / n, 100 * float64(m.Draws) / n, 100 * float64(m.BlackWins) / n, true
}

// GameSummary is one row of a game search.
type GameSummary struct {
	ID          int    `json:"id" validate:"min=0"`
	Date        string `json:"date"`
	Outcome     string `json:"outcome" validate:"omitempty,oneof=1-0 0-1 1/2-1/2 *"`
	White       string `json:"w_player"`
	Black       string `json:"b_player"`
	WhiteElo    int    `json:"w_elo"`
	BlackElo    int    `json:"b_elo"`
	CombinedElo int    `json:"combined_elo"`
}

// EloOutcome aggregates games whose players both fall in the 200 point
// band starting at Band.
type EloOutcome struct {
	Band        float64 `json:"elor"`
	Occurrences int     `json:"occs" validate:"min=0"`
	WhiteWins   int     `json:"wwin" validate:"min=0"`
	BlackWins   int     `json:"bwin" validate:"min=0"`
	Draws       int     `json:"draw" validate:"min=0"`
}

// BandStart returns the lower bound of the band as an integer rating.
func (e EloOutcome) BandStart() int {
	return int(e.Band)
}

type gamePayload struct {
	Data  *gameData      `json:"data" validate:"required"`
	Moves []moveRecordIn `json:"moves" validate:"dive"`
}

type gameData struct {
	Outcome  string `json:"outcome" validate:"omitempty,oneof=1-0 0-1 1/2-1/2 *"`
	White    string `json:"w_player"`
	Black    string `json:"b_player"`
	Event    string `json:"event"`
	Date     string `json:"date"`
	WhiteElo int    `json:"w_elo"`
	BlackElo int    `json:"b_elo"`
}

type moveRecordIn struct {
	GameID      int    `json:"game_id"`
	TurnNo      int    `json:"turn_no" validate:"min=0"`
	WhiteToMove bool   `json:"white_to_move"`
	SAN         string `json:"san_str" validate:"required"`
	FenBefore   string `json:"fen_before" validate:"required"`
	FenAfter    string `json:"fen_after"`
}
