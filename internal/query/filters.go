package query

import (
	"strconv"
	"strings"

	"chessdb/internal/core"
)

// Filters are the optional game-search constraints as entered by the user.
// A nil field is absent; an empty string is also unconstrained.
type Filters struct {
	WhiteEloMin *string
	WhiteEloMax *string
	BlackEloMin *string
	BlackEloMax *string
	WhiteName   *string
	BlackName   *string
	Result      core.Result
}

// Field names accepted by Set, in display order.
var FieldNames = []string{"wmin", "wmax", "bmin", "bmax", "wname", "bname", "result"}

// Set assigns one field by its parameter name. An empty value clears it.
// It returns false for an unknown field, or for a result value other than
// any or a finished outcome.
func (f *Filters) Set(name, value string) bool {
	var target **string
	switch name {
	case "wmin":
		target = &f.WhiteEloMin
	case "wmax":
		target = &f.WhiteEloMax
	case "bmin":
		target = &f.BlackEloMin
	case "bmax":
		target = &f.BlackEloMax
	case "wname":
		target = &f.WhiteName
	case "bname":
		target = &f.BlackName
	case "result":
		r, ok := core.ParseResult(value)
		if !ok || r == core.ResultUnknown {
			return false
		}
		f.Result = r
		return true
	default:
		return false
	}

	if value == "" {
		*target = nil
	} else {
		v := value
		*target = &v
	}
	return true
}

// Get returns a field's raw value and whether it is present.
func (f Filters) Get(name string) (string, bool) {
	var v *string
	switch name {
	case "wmin":
		v = f.WhiteEloMin
	case "wmax":
		v = f.WhiteEloMax
	case "bmin":
		v = f.BlackEloMin
	case "bmax":
		v = f.BlackEloMax
	case "wname":
		v = f.WhiteName
	case "bname":
		v = f.BlackName
	case "result":
		if f.Result.Concrete() {
			return string(f.Result), true
		}
		return string(core.ResultAny), false
	}
	if v == nil {
		return "", false
	}
	return *v, true
}

func present(v *string) (string, bool) {
	if v == nil || *v == "" {
		return "", false
	}
	return *v, true
}

func eloBound(v *string) (string, bool) {
	s, ok := present(v)
	if !ok {
		return "", false
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return strconv.Itoa(n), true
}
