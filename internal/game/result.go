// apps/go-server/internal/game/result.go
//
// Hand-off format between a finished trip and the results view.
//
//	route=FRA,DEU,POL&status=cleared
//
// The route is the ordered, comma-joined history; status is cleared or given_up.

package game

import (
	"errors"
	"net/url"
	"strings"
)

// ErrBadResult is returned by ParseResult for malformed input.
var ErrBadResult = errors.New("game: malformed result")

// Result is a finished route plus how it ended.
type Result struct {
	Route  []string `json:"route"`
	Status Status   `json:"status"`
}

// Encode renders the result as query parameters.
func (r Result) Encode() url.Values {
	v := url.Values{}
	v.Set("route", strings.Join(r.Route, ","))
	v.Set("status", string(r.Status))
	return v
}

// ParseResult reads a result from query parameters. A missing status is
// treated as cleared, the only status older links carried implicitly.
func ParseResult(v url.Values) (Result, error) {
	raw := strings.TrimSpace(v.Get("route"))
	if raw == "" {
		return Result{}, ErrBadResult
	}
	var route []string
	for _, id := range strings.Split(raw, ",") {
		id = normalize(id)
		if id == "" {
			return Result{}, ErrBadResult
		}
		route = append(route, id)
	}

	st := Status(strings.TrimSpace(v.Get("status")))
	switch st {
	case "":
		st = StatusCleared
	case StatusCleared, StatusGivenUp:
	default:
		return Result{}, ErrBadResult
	}
	return Result{Route: route, Status: st}, nil
}
