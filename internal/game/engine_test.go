package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/robalobadob/overland/apps/go-server/internal/atlas"
)

func testBorders(t testing.TB) *atlas.Graph {
	t.Helper()
	g, err := atlas.NewGraph(map[string][]string{
		"FRA": {"DEU", "ESP", "BEL"},
		"DEU": {"FRA", "POL", "BEL"},
		"BEL": {"FRA", "DEU"},
		"POL": {"DEU"},
		"ESP": {"FRA"},
		"JPN": {},
	}, atlas.Options{Strict: true})
	require.NoError(t, err)
	return g
}

func newTrip(t *testing.T, start, goal string) *Session {
	t.Helper()
	s := New(testBorders(t))
	require.NoError(t, s.Initialize(start, goal))
	return s
}

func TestInitialize(t *testing.T) {
	s := newTrip(t, "FRA", "DEU")

	assert.Equal(t, "FRA", s.Current)
	assert.Equal(t, []string{"FRA"}, s.History)
	assert.Equal(t, StatusPlaying, s.Status)
	assert.Equal(t, 0, s.Moves())
	assert.NotEmpty(t, s.ID)
	assert.False(t, s.StartedAt.IsZero())
}

func TestInitialize_Rejects(t *testing.T) {
	s := New(testBorders(t))

	assert.ErrorIs(t, s.Initialize("XYZ", "DEU"), ErrUnknownCountry)
	assert.ErrorIs(t, s.Initialize("FRA", "XYZ"), ErrUnknownCountry)
	assert.ErrorIs(t, s.Initialize("FRA", "fra"), ErrSameCountry)
	assert.Equal(t, Status(""), s.Status, "failed init leaves the session untouched")
}

func TestInitialize_UnreachableGoalAllowed(t *testing.T) {
	s := newTrip(t, "FRA", "JPN")
	assert.Equal(t, StatusPlaying, s.Status)
}

func TestInitialize_Restarts(t *testing.T) {
	s := newTrip(t, "FRA", "POL")
	require.Equal(t, OutcomeAccepted, s.ProposeMove("DEU"))
	s.GiveUp()

	require.NoError(t, s.Initialize("ESP", "BEL"))
	assert.Equal(t, []string{"ESP"}, s.History)
	assert.Equal(t, "ESP", s.Current)
	assert.Equal(t, StatusPlaying, s.Status)
	assert.True(t, s.FinishedAt.IsZero())
}

func TestProposeMove_ClearsOnGoal(t *testing.T) {
	s := newTrip(t, "FRA", "DEU")

	out := s.ProposeMove("DEU")
	assert.Equal(t, OutcomeCleared, out)
	assert.Equal(t, []string{"FRA", "DEU"}, s.History)
	assert.Equal(t, StatusCleared, s.Status)
	assert.False(t, s.FinishedAt.IsZero())
}

func TestProposeMove_UnknownCountry(t *testing.T) {
	s := newTrip(t, "FRA", "DEU")

	assert.Equal(t, OutcomeUnknownCountry, s.ProposeMove("XYZ"))
	assert.Equal(t, OutcomeUnknownCountry, s.ProposeMove(""))
	assert.Equal(t, []string{"FRA"}, s.History)
	assert.Equal(t, StatusPlaying, s.Status)
}

func TestProposeMove_NotAdjacent(t *testing.T) {
	s := newTrip(t, "FRA", "DEU")

	assert.Equal(t, OutcomeNotAdjacent, s.ProposeMove("JPN"))
	assert.Equal(t, OutcomeNotAdjacent, s.ProposeMove("POL"))
	assert.Equal(t, OutcomeNotAdjacent, s.ProposeMove("FRA"), "staying put is not a move")
	assert.Equal(t, []string{"FRA"}, s.History)
	assert.Equal(t, "FRA", s.Current)
}

func TestProposeMove_NormalisesCandidate(t *testing.T) {
	s := newTrip(t, "FRA", "POL")
	assert.Equal(t, OutcomeAccepted, s.ProposeMove(" bel "))
	assert.Equal(t, "BEL", s.Current)
}

func TestProposeMove_Uninitialized(t *testing.T) {
	s := New(testBorders(t))
	assert.Equal(t, OutcomeNotPlaying, s.ProposeMove("FRA"))
	assert.False(t, s.GiveUp())
	assert.Empty(t, s.NeighborsOfCurrent())
}

func TestGiveUp(t *testing.T) {
	s := newTrip(t, "FRA", "POL")
	require.Equal(t, OutcomeAccepted, s.ProposeMove("BEL"))

	assert.True(t, s.GiveUp())
	assert.Equal(t, StatusGivenUp, s.Status)
	assert.Equal(t, []string{"FRA", "BEL"}, s.History, "partial route kept")
	assert.Equal(t, "BEL", s.Current)

	assert.Equal(t, OutcomeNotPlaying, s.ProposeMove("DEU"))
	assert.False(t, s.GiveUp())
	assert.Equal(t, StatusGivenUp, s.Status)
	assert.Equal(t, []string{"FRA", "BEL"}, s.History)
}

func TestNeighborsOfCurrent(t *testing.T) {
	s := newTrip(t, "FRA", "POL")
	assert.Equal(t, []string{"BEL", "DEU", "ESP"}, s.NeighborsOfCurrent())

	require.Equal(t, OutcomeAccepted, s.ProposeMove("DEU"))
	assert.Equal(t, []string{"BEL", "FRA", "POL"}, s.NeighborsOfCurrent())

	require.Equal(t, OutcomeCleared, s.ProposeMove("POL"))
	assert.Equal(t, []string{"DEU"}, s.NeighborsOfCurrent(), "frozen position after the end")
}

func TestView(t *testing.T) {
	s := newTrip(t, "FRA", "POL")
	s.ProposeMove("DEU")
	v := s.View()

	assert.Equal(t, s.ID, v.GameID)
	assert.Equal(t, []string{"FRA", "DEU"}, v.Route)
	assert.Equal(t, 1, v.Moves)
	assert.Equal(t, StatusPlaying, v.Status)

	v.Route[0] = "XXX"
	assert.Equal(t, "FRA", s.History[0], "view does not alias history")
}

// TestSession_RouteInvariants drives a session with arbitrary candidates and
// checks the route invariants after every step.
func TestSession_RouteInvariants(t *testing.T) {
	g := testBorders(t)
	ids := append(append([]string{}, g.IDs()...), "XYZ", "")

	rapid.Check(t, func(t *rapid.T) {
		start := rapid.SampledFrom(g.IDs()).Draw(t, "start")
		goal := rapid.SampledFrom(g.IDs()).Filter(func(id string) bool { return id != start }).Draw(t, "goal")

		s := New(g)
		if err := s.Initialize(start, goal); err != nil {
			t.Fatalf("initialize: %v", err)
		}

		steps := rapid.IntRange(0, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			beforeLen, beforeCur, beforeStatus := len(s.History), s.Current, s.Status

			var out Outcome
			if rapid.IntRange(0, 20).Draw(t, "giveUp") == 0 {
				s.GiveUp()
			} else {
				cand := rapid.SampledFrom(ids).Draw(t, "candidate")
				out = s.ProposeMove(cand)

				if beforeStatus.Terminal() && (out != OutcomeNotPlaying || len(s.History) != beforeLen) {
					t.Fatalf("terminal session changed: %v", out)
				}
				if !g.IsAdjacent(beforeCur, cand) && beforeStatus == StatusPlaying {
					if out.Moved() || len(s.History) != beforeLen || s.Current != beforeCur || s.Status != beforeStatus {
						t.Fatalf("non-adjacent %q from %s changed state", cand, beforeCur)
					}
				}
				if out == OutcomeCleared && s.Status != StatusCleared {
					t.Fatalf("cleared outcome with status %s", s.Status)
				}
			}

			if s.History[0] != start {
				t.Fatalf("history[0]=%s, want %s", s.History[0], start)
			}
			if s.History[len(s.History)-1] != s.Current {
				t.Fatalf("history tail %s != current %s", s.History[len(s.History)-1], s.Current)
			}
			for j := 0; j+1 < len(s.History); j++ {
				if !g.IsAdjacent(s.History[j], s.History[j+1]) {
					t.Fatalf("route step %s→%s is not a border", s.History[j], s.History[j+1])
				}
			}
			if s.Status == StatusCleared && s.Current != goal {
				t.Fatalf("cleared away from goal")
			}
		}
	})
}
