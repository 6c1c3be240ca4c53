// apps/go-server/internal/game/validate.go
//
// Move validation, kept pure so it can be checked without a session.
//
// Order matters: it decides which message the player sees.
//   1. candidate unknown               → OutcomeUnknownCountry
//   2. candidate not bordering current → OutcomeNotAdjacent
//   3. candidate == goal               → OutcomeCleared
//   4. otherwise                       → OutcomeAccepted

package game

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Borders is the read-only view of the adjacency graph the engine needs.
type Borders interface {
	Known(id string) bool
	IsAdjacent(a, b string) bool
	Neighbors(id string) mapset.Set[string]
	SortedNeighbors(id string) []string
}

// Validate classifies moving from current to candidate. It never mutates anything.
func Validate(b Borders, current, goal, candidate string) Outcome {
	candidate = normalize(candidate)
	if candidate == "" || !b.Known(candidate) {
		return OutcomeUnknownCountry
	}
	if !b.IsAdjacent(current, candidate) {
		return OutcomeNotAdjacent
	}
	if candidate == goal {
		return OutcomeCleared
	}
	return OutcomeAccepted
}

func normalize(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
