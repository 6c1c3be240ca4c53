// apps/go-server/internal/game/types.go
//
// Core type definitions for the route-finding game engine.
// Defines:
//   - Status:  lifecycle of a session (playing → cleared | given_up).
//   - Outcome: classification of a single proposed move.
//   - Session: state of one playthrough (start, goal, current, history).

package game

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a Session.
// The zero value means the session was never initialized.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusCleared Status = "cleared"
	StatusGivenUp Status = "given_up"
)

// Terminal reports whether no further moves are accepted.
func (s Status) Terminal() bool {
	return s == StatusCleared || s == StatusGivenUp
}

// Outcome classifies the result of ProposeMove.
type Outcome string

const (
	// OutcomeAccepted: the candidate borders the current country; the traveller moved.
	OutcomeAccepted Outcome = "accepted"
	// OutcomeCleared: the move reached the goal.
	OutcomeCleared Outcome = "cleared"
	// OutcomeUnknownCountry: the candidate is not a country at all.
	OutcomeUnknownCountry Outcome = "unknown_country"
	// OutcomeNotAdjacent: a real country, but not reachable by land from here.
	OutcomeNotAdjacent Outcome = "not_adjacent"
	// OutcomeNotPlaying: the session is finished or was never started.
	OutcomeNotPlaying Outcome = "not_playing"
)

// Moved reports whether the outcome changed the traveller's position.
func (o Outcome) Moved() bool {
	return o == OutcomeAccepted || o == OutcomeCleared
}

// Message is the short player-facing text for a rejected move.
func (o Outcome) Message() string {
	switch o {
	case OutcomeUnknownCountry:
		return "That country does not exist."
	case OutcomeNotAdjacent:
		return "Wrong answer: you cannot travel there by land."
	case OutcomeNotPlaying:
		return "This trip is already over."
	case OutcomeCleared:
		return "You made it!"
	}
	return ""
}

var (
	// ErrUnknownCountry is returned by Initialize for an id not in the border graph.
	ErrUnknownCountry = errors.New("game: unknown country")
	// ErrSameCountry is returned by Initialize when start equals goal.
	ErrSameCountry = errors.New("game: start and goal must differ")
)

// Session holds the state of a single trip.
type Session struct {
	ID         string    // Unique game identifier (uuid).
	Start      string    // Starting country id; fixed once initialized.
	Goal       string    // Goal country id; fixed once initialized.
	Current    string    // Where the traveller is now.
	History    []string  // Route so far; History[0] == Start, last == Current.
	Status     Status    // "" until Initialize.
	StartedAt  time.Time // Set by Initialize.
	FinishedAt time.Time // Zero while playing.

	borders Borders
}
