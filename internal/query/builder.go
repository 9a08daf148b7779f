// Package query turns a canonical position and optional filters into
// request descriptors for the search and statistics API.
package query

import (
	"net/url"
	"strconv"

	"chessdb/internal/position"
)

// Kind selects the API endpoint.
type Kind string

const (
	KindTopMoves      Kind = "top_moves"
	KindGames         Kind = "games"
	KindOutcomesByElo Kind = "outcomes_by_elo"
)

const DefaultTopMovesLimit = 10

var endpoints = map[Kind]string{
	KindTopMoves:      "/get_moves",
	KindGames:         "/get_games",
	KindOutcomesByElo: "/get_outcomes_by_elo",
}

// Query parameter names
const (
	ParamPosition    = "fen_str"
	ParamLimit       = "lim"
	ParamWhiteEloMin = "wmin"
	ParamWhiteEloMax = "wmax"
	ParamBlackEloMin = "bmin"
	ParamBlackEloMax = "bmax"
	ParamWhiteName   = "wname"
	ParamBlackName   = "bname"
	ParamResult      = "result"
)

// Descriptor is one unit of work for the API client.
type Descriptor struct {
	Kind   Kind
	Key    position.CanonicalKey
	Params url.Values
}

// Path returns the endpoint path with the encoded query string.
func (d Descriptor) Path() string {
	return endpoints[d.Kind] + "?" + d.Params.Encode()
}

// ID identifies the (kind, position, filters) combination.
func (d Descriptor) ID() string {
	return string(d.Kind) + " " + d.Params.Encode()
}

// Has reports whether the descriptor carries param.
func (d Descriptor) Has(param string) bool {
	_, ok := d.Params[param]
	return ok
}

// Builder builds descriptors. The zero value uses DefaultTopMovesLimit.
type Builder struct {
	TopMovesLimit int
}

func (b Builder) base(kind Kind, key position.CanonicalKey) Descriptor {
	params := url.Values{}
	params.Set(ParamPosition, string(key))
	return Descriptor{Kind: kind, Key: key, Params: params}
}

// TopMoves builds a most-played-replies request.
func (b Builder) TopMoves(key position.CanonicalKey) Descriptor {
	d := b.base(KindTopMoves, key)
	limit := b.TopMovesLimit
	if limit <= 0 {
		limit = DefaultTopMovesLimit
	}
	d.Params.Set(ParamLimit, strconv.Itoa(limit))
	return d
}

// OutcomesByElo builds a per-rating-band outcome request.
func (b Builder) OutcomesByElo(key position.CanonicalKey) Descriptor {
	return b.base(KindOutcomesByElo, key)
}

// Games builds a game search request. Absent or empty fields are left
// out, as is ResultAny. An ELO bound that is not an integer is dropped
// on its own.
func (b Builder) Games(key position.CanonicalKey, f Filters) Descriptor {
	d := b.base(KindGames, key)

	for param, v := range map[string]*string{
		ParamWhiteEloMin: f.WhiteEloMin,
		ParamWhiteEloMax: f.WhiteEloMax,
		ParamBlackEloMin: f.BlackEloMin,
		ParamBlackEloMax: f.BlackEloMax,
	} {
		if n, ok := eloBound(v); ok {
			d.Params.Set(param, n)
		}
	}

	if name, ok := present(f.WhiteName); ok {
		d.Params.Set(ParamWhiteName, name)
	}
	if name, ok := present(f.BlackName); ok {
		d.Params.Set(ParamBlackName, name)
	}
	if f.Result.Concrete() {
		d.Params.Set(ParamResult, string(f.Result))
	}
	return d
}

// Build dispatches on kind. Filters only apply to KindGames.
func (b Builder) Build(kind Kind, key position.CanonicalKey, f Filters) Descriptor {
	switch kind {
	case KindGames:
		return b.Games(key, f)
	case KindOutcomesByElo:
		return b.OutcomesByElo(key)
	default:
		return b.TopMoves(key)
	}
}
