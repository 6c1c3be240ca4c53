// apps/go-server/internal/httpserver/routes_game.go
//
// Free-play trip endpoints:
//   - POST /game/new          → start a trip ({start, goal} or {random:true})
//   - POST /game/move         → propose the next country
//   - POST /game/giveup       → abandon the trip
//   - GET  /game/{id}         → current state
//   - GET  /game/{id}/neighbors → legal next moves
//   - GET  /game/{id}/ws      → live state stream
//   - GET  /result            → results view for an encoded route
//
// Rejected moves are ordinary 200 responses carrying an outcome and a
// message; only malformed requests and unknown trips are HTTP errors.

package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/overland/apps/go-server/internal/game"
	"github.com/robalobadob/overland/apps/go-server/internal/scenario"
	"github.com/robalobadob/overland/apps/go-server/internal/store"
)

func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Post("/game/move", s.handleMove)
	r.Post("/game/giveup", s.handleGiveUp)
	r.Get("/game/{id}", s.handleGetGame)
	r.Get("/game/{id}/neighbors", s.handleNeighbors)
	r.Get("/game/{id}/ws", s.handleWS)
	r.Get("/result", s.handleResult)
}

// country is an id with its display name.
type country struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) country(id string) country {
	return country{ID: id, Name: s.names.Name(id)}
}

func (s *Server) countryList(ids []string) []country {
	out := make([]country, len(ids))
	for i, id := range ids {
		out[i] = s.country(id)
	}
	return out
}

// gameRes is the client view of a trip.
type gameRes struct {
	game.View
	StartName   string    `json:"startName"`
	GoalName    string    `json:"goalName"`
	CurrentName string    `json:"currentName"`
	Neighbors   []country `json:"neighbors"`
	Solvable    bool      `json:"solvable"`
	Result      string    `json:"result,omitempty"` // encoded query for /result once finished
}

func (s *Server) present(v game.View) gameRes {
	res := gameRes{
		View:        v,
		StartName:   s.names.Name(v.Start),
		GoalName:    s.names.Name(v.Goal),
		CurrentName: s.names.Name(v.Current),
		Neighbors:   s.countryList(s.graph.SortedNeighbors(v.Current)),
		Solvable:    s.idx.Reachable(v.Start, v.Goal),
	}
	if v.Status.Terminal() {
		res.Result = game.Result{Route: v.Route, Status: v.Status}.Encode().Encode()
	}
	return res
}

// resolveAnswer maps a typed answer (alpha-3, English or Japanese name) to an
// id. Unresolvable input is passed through for the engine to reject.
func (s *Server) resolveAnswer(input string) string {
	if id, ok := s.names.Lookup(input); ok {
		return id
	}
	return input
}

// ------------------------------ new ----------------------------------------

type newGameReq struct {
	Start  string `json:"start"`
	Goal   string `json:"goal"`
	Random bool   `json:"random"`
}

func (s *Server) randomScenario() (scenario.Scenario, error) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.gen.Random()
}

// newSession builds and initializes a session from the request, writing the
// HTTP error itself when it fails.
func (s *Server) newSession(w http.ResponseWriter, req newGameReq) (*game.Session, bool) {
	start, goal := s.resolveAnswer(req.Start), s.resolveAnswer(req.Goal)
	if req.Random || (strings.TrimSpace(req.Start) == "" && strings.TrimSpace(req.Goal) == "") {
		sc, err := s.randomScenario()
		if err != nil {
			log.Error().Err(err).Msg("random scenario")
			writeError(w, http.StatusServiceUnavailable, "no_scenario")
			return nil, false
		}
		start, goal = sc.Start, sc.Goal
	}

	g := game.New(s.graph)
	if err := g.Initialize(start, goal); err != nil {
		switch {
		case errors.Is(err, game.ErrUnknownCountry):
			writeError(w, http.StatusBadRequest, "unknown_country")
		case errors.Is(err, game.ErrSameCountry):
			writeError(w, http.StatusBadRequest, "same_country")
		default:
			writeError(w, http.StatusBadRequest, "invalid_scenario")
		}
		return nil, false
	}
	return g, true
}

// handleNewGame creates a trip in the session store and opens a journal row
// owned by the user or the anonymous cookie.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	g, ok := s.newSession(w, req)
	if !ok {
		return
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	v := g.View()
	s.openTrip(r.Context(), v, g.StartedAt, s.owner(w, r))
	if !s.idx.Reachable(v.Start, v.Goal) {
		log.Info().Str("gameId", v.GameID).Str("start", v.Start).Str("goal", v.Goal).Msg("trip goal unreachable by land")
	}
	writeJSON(w, http.StatusOK, s.present(v))
}

// ------------------------------ move ---------------------------------------

type moveReq struct {
	GameID string `json:"gameId"`
	Answer string `json:"answer"`
}

type moveRes struct {
	Outcome game.Outcome `json:"outcome"`
	Message string       `json:"message,omitempty"`
	Game    gameRes      `json:"game"`
}

// applyMove runs one proposal under the store lock and reports the outcome,
// the resulting view and how long the trip took.
func applyMove(r *http.Request, st store.Store, id, answer string) (game.Outcome, game.View, int64, error) {
	var (
		out     game.Outcome
		view    game.View
		elapsed int64
	)
	err := st.Update(r.Context(), id, func(g *game.Session) error {
		out = g.ProposeMove(answer)
		view = g.View()
		elapsed = g.Elapsed().Milliseconds()
		return nil
	})
	return out, view, elapsed, err
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveReq
	if err := decodeJSON(r, &req); err != nil || req.GameID == "" {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	out, view, _, err := applyMove(r, s.store, req.GameID, s.resolveAnswer(req.Answer))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("gameId", req.GameID).Msg("move")
		writeError(w, http.StatusInternalServerError, "move_failed")
		return
	}

	if out.Moved() {
		s.recordTrip(r.Context(), view)
		s.hub.BroadcastToGame(view.GameID, WSEvent{Type: EventMoved, GameID: view.GameID, Data: s.present(view)})
	}
	if out == game.OutcomeCleared {
		s.hub.BroadcastToGame(view.GameID, WSEvent{Type: EventFinished, GameID: view.GameID, Data: s.present(view)})
	}
	msg := ""
	if out != game.OutcomeAccepted {
		msg = out.Message()
	}
	writeJSON(w, http.StatusOK, moveRes{Outcome: out, Message: msg, Game: s.present(view)})
}

// ----------------------------- give up -------------------------------------

type giveUpReq struct {
	GameID string `json:"gameId"`
}

type giveUpRes struct {
	Changed bool    `json:"changed"`
	Game    gameRes `json:"game"`
}

func (s *Server) handleGiveUp(w http.ResponseWriter, r *http.Request) {
	var req giveUpReq
	if err := decodeJSON(r, &req); err != nil || req.GameID == "" {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	var (
		changed bool
		view    game.View
	)
	err := s.store.Update(r.Context(), req.GameID, func(g *game.Session) error {
		changed = g.GiveUp()
		view = g.View()
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("gameId", req.GameID).Msg("give up")
		writeError(w, http.StatusInternalServerError, "giveup_failed")
		return
	}
	if changed {
		s.recordTrip(r.Context(), view)
		s.hub.BroadcastToGame(view.GameID, WSEvent{Type: EventFinished, GameID: view.GameID, Data: s.present(view)})
	}
	writeJSON(w, http.StatusOK, giveUpRes{Changed: changed, Game: s.present(view)})
}

// ------------------------------ read ---------------------------------------

func (s *Server) loadGame(w http.ResponseWriter, r *http.Request) (game.View, bool) {
	v, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return v, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load_failed")
		return v, false
	}
	return v, true
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	if v, ok := s.loadGame(w, r); ok {
		writeJSON(w, http.StatusOK, s.present(v))
	}
}

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	var neighbors []string
	err := s.store.Update(r.Context(), chi.URLParam(r, "id"), func(g *game.Session) error {
		neighbors = g.NeighborsOfCurrent()
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load_failed")
		return
	}
	writeJSON(w, http.StatusOK, s.countryList(neighbors))
}

// ----------------------------- results -------------------------------------

type resultRes struct {
	Route   []country   `json:"route"`
	Display string      `json:"display"` // names joined with " → "
	Status  game.Status `json:"status"`
	Moves   int         `json:"moves"`
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	res, err := game.ParseResult(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_result")
		return
	}
	writeJSON(w, http.StatusOK, resultRes{
		Route:   s.countryList(res.Route),
		Display: strings.Join(s.names.Names(res.Route), " → "),
		Status:  res.Status,
		Moves:   len(res.Route) - 1,
	})
}
