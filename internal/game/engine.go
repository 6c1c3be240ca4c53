// apps/go-server/internal/game/engine.go
//
// Core game engine for a single trip.
// Responsibilities:
//   - Create sessions bound to a border graph.
//   - Initialize (or restart) a trip from start to goal.
//   - Validate and apply proposed moves (see validate.go for the order of checks).
//   - Track state transitions: playing → cleared / given_up, both terminal.
//
// Notes:
//   - Rejected moves are ordinary outcomes, not errors; the session is untouched.
//   - Calls on a finished or uninitialized session are no-ops.
//   - A session is not safe for concurrent use; callers serialise access
//     (the HTTP layer does so through store.Update).
package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// New constructs an uninitialized session over the given border graph.
func New(b Borders) *Session {
	return &Session{
		ID:      uuid.NewString(),
		History: []string{},
		borders: b,
	}
}

// Initialize starts (or restarts) the trip. Any previous route is discarded.
//
// start and goal must be known countries and must differ. A goal that cannot be
// reached from start is allowed; such a trip can only end by giving up.
func (s *Session) Initialize(start, goal string) error {
	start, goal = normalize(start), normalize(goal)
	if !s.borders.Known(start) || !s.borders.Known(goal) {
		return ErrUnknownCountry
	}
	if start == goal {
		return ErrSameCountry
	}
	s.Start = start
	s.Goal = goal
	s.Current = start
	s.History = []string{start}
	s.Status = StatusPlaying
	s.StartedAt = time.Now().UTC()
	s.FinishedAt = time.Time{}
	return nil
}

// ProposeMove validates candidate against the current position and applies it
// when legal. The returned Outcome tells the caller what happened.
func (s *Session) ProposeMove(candidate string) Outcome {
	if s.Status != StatusPlaying {
		return OutcomeNotPlaying
	}
	if !s.borders.Known(s.Current) {
		log.Warn().Str("gameId", s.ID).Str("current", s.Current).Msg("current country missing from border graph")
	}

	out := Validate(s.borders, s.Current, s.Goal, candidate)
	if !out.Moved() {
		return out
	}

	next := normalize(candidate)
	s.History = append(s.History, next)
	s.Current = next
	if out == OutcomeCleared {
		s.finish(StatusCleared)
	}
	return out
}

// GiveUp abandons the trip, keeping the partial route. It reports whether the
// status changed.
func (s *Session) GiveUp() bool {
	if s.Status != StatusPlaying {
		return false
	}
	s.finish(StatusGivenUp)
	return true
}

func (s *Session) finish(st Status) {
	s.Status = st
	s.FinishedAt = time.Now().UTC()
}

// NeighborsOfCurrent lists the legal next moves, sorted. It is valid at any
// status and reflects the frozen position once the trip is over.
func (s *Session) NeighborsOfCurrent() []string {
	if s.Current == "" {
		return []string{}
	}
	return s.borders.SortedNeighbors(s.Current)
}

// Moves is the number of accepted moves so far.
func (s *Session) Moves() int {
	if len(s.History) == 0 {
		return 0
	}
	return len(s.History) - 1
}

// Route returns a copy of the history.
func (s *Session) Route() []string {
	return append([]string(nil), s.History...)
}

// Result captures the route and status for the results view.
func (s *Session) Result() Result {
	return Result{Route: s.Route(), Status: s.Status}
}

// Elapsed is the time from Initialize to finish (or now while playing).
func (s *Session) Elapsed() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// View is the JSON shape of a session sent to clients.
type View struct {
	GameID  string   `json:"gameId"`
	Start   string   `json:"start"`
	Goal    string   `json:"goal"`
	Current string   `json:"current"`
	Route   []string `json:"route"`
	Moves   int      `json:"moves"`
	Status  Status   `json:"status"`
}

// View snapshots the session.
func (s *Session) View() View {
	return View{
		GameID:  s.ID,
		Start:   s.Start,
		Goal:    s.Goal,
		Current: s.Current,
		Route:   s.Route(),
		Moves:   s.Moves(),
		Status:  s.Status,
	}
}
