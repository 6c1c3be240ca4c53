// apps/go-server/internal/scenario/scenario.go
//
// Random scenario generator: picks a solvable (start, goal) pair.
//
// Algorithm:
//   1. start ← uniform over the playable countries.
//   2. peers ← countries in start's component, start excluded.
//   3. goal  ← uniform over peers.
//   4. An empty peer set means the playable filter is broken; it is logged as a
//      data-integrity error and the draw is retried up to MaxAttempts times.
//
// Every pair returned shares a component and has start != goal.

package scenario

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultMaxAttempts bounds the retry loop in Random.
const DefaultMaxAttempts = 16

var (
	// ErrNoPlayable is returned when no country has a reachable peer.
	ErrNoPlayable = errors.New("scenario: no playable countries")
	// ErrNoScenario is returned when every attempt drew a start without peers.
	ErrNoScenario = errors.New("scenario: retry limit reached without a solvable pair")
)

// Reachability is the part of the component index the generator needs.
type Reachability interface {
	Playable() []string
	Peers(id string) []string
}

// Scenario is a start/goal pair.
type Scenario struct {
	Start string `json:"start"`
	Goal  string `json:"goal"`
}

// Generator draws random scenarios. It is not safe for concurrent use unless
// the random source is.
type Generator struct {
	idx         Reachability
	rnd         *rand.Rand
	MaxAttempts int
}

// New returns a Generator seeded from the clock. Use NewWithRand in tests.
func New(idx Reachability) *Generator {
	now := uint64(time.Now().UnixNano())
	return NewWithRand(idx, rand.New(rand.NewPCG(now, now>>17|1)))
}

// NewWithRand returns a Generator using rnd.
func NewWithRand(idx Reachability, rnd *rand.Rand) *Generator {
	return &Generator{idx: idx, rnd: rnd, MaxAttempts: DefaultMaxAttempts}
}

// Random draws a solvable scenario.
func (g *Generator) Random() (Scenario, error) {
	playable := g.idx.Playable()
	if len(playable) == 0 {
		return Scenario{}, ErrNoPlayable
	}
	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	for i := 0; i < attempts; i++ {
		start := playable[g.rnd.IntN(len(playable))]
		peers := g.idx.Peers(start)
		if len(peers) == 0 {
			log.Error().Str("start", start).Int("attempt", i+1).Msg("playable country has no reachable peers")
			continue
		}
		return Scenario{Start: start, Goal: peers[g.rnd.IntN(len(peers))]}, nil
	}
	return Scenario{}, ErrNoScenario
}
