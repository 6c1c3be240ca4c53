// apps/go-server/internal/httpserver/routes_daily.go
//
// HTTP routes for the daily trip.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start today's trip (creates or reuses session)
//   - POST /daily/move        → propose the next country on today's trip
//   - GET  /daily/leaderboard → top 20 results for today (or ?date=)
//
// Everyone gets the same (start, goal) for a date, derived from date + salt.
// Each player can finish once per day (enforced by DB + in-memory session).
// Daily sessions are kept apart from free-play trips so /game/move cannot be
// used to finish them without a result being recorded.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/overland/apps/go-server/internal/daily"
	"github.com/robalobadob/overland/apps/go-server/internal/game"
	"github.com/robalobadob/overland/apps/go-server/internal/store"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	results  *daily.Store
	salt     string
	sessions *store.Memory
	now      func() time.Time

	mu   sync.Mutex
	keys map[string]string // userID|date → game id
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	s.daily = &dailyServer{
		srv:      s,
		results:  daily.NewStore(s.db),
		salt:     s.cfg.DailySalt,
		sessions: store.NewMemoryStore(),
		now:      time.Now,
		keys:     make(map[string]string),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.daily.handleNew)
		r.Post("/move", s.daily.handleMove)
		r.Get("/leaderboard", s.daily.handleLeaderboard)
	})
}

// player returns the authenticated user ID if logged in, otherwise the anon cookie.
func (d *dailyServer) player(w http.ResponseWriter, r *http.Request) string {
	if me := currentUser(r); me != nil {
		return me.ID
	}
	return d.srv.ensureAnonID(w, r)
}

func (d *dailyServer) prune(cutoff time.Time) int {
	n := d.sessions.Prune(cutoff)
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, id := range d.keys {
		if _, err := d.sessions.Get(context.Background(), id); errors.Is(err, store.ErrNotFound) {
			delete(d.keys, k)
		}
	}
	return n
}

// -----------------------------------------------------------------------------
// /daily/new

type dailyNewRes struct {
	Date   string   `json:"date"`
	Played bool     `json:"played"`
	Game   *gameRes `json:"game,omitempty"`
}

// handleNew creates or reuses today's session.
//   - Already finished today (DB row) → played=true, no game.
//   - Otherwise the in-memory session for user+date, created on first call.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid := d.player(w, r)
	now := d.now()
	date := daily.DateKey(now)

	if played, err := d.results.AlreadyPlayed(r.Context(), uid, date); err != nil {
		log.Warn().Err(err).Msg("daily already played")
	} else if played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
		return
	}

	key := uid + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()
	if id, ok := d.keys[key]; ok {
		if v, err := d.sessions.Get(r.Context(), id); err == nil {
			res := d.srv.present(v)
			writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Game: &res})
			return
		}
	}

	sc, err := daily.Scenario(now, d.salt, d.srv.idx)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("daily scenario")
		writeError(w, http.StatusServiceUnavailable, "no_scenario")
		return
	}
	g := game.New(d.srv.graph)
	if err := g.Initialize(sc.Start, sc.Goal); err != nil {
		log.Error().Err(err).Str("date", date).Msg("daily initialize")
		writeError(w, http.StatusInternalServerError, "invalid_scenario")
		return
	}
	_ = d.sessions.Save(r.Context(), g)
	d.keys[key] = g.ID

	res := d.srv.present(g.View())
	writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Game: &res})
}

// -----------------------------------------------------------------------------
// /daily/move

// handleMove applies a move to today's session and records the result once the
// goal is reached.
func (d *dailyServer) handleMove(w http.ResponseWriter, r *http.Request) {
	uid := d.player(w, r)

	var req moveReq
	if err := decodeJSON(r, &req); err != nil || req.GameID == "" {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	date := daily.DateKey(d.now())
	d.mu.Lock()
	id, ok := d.keys[uid+"|"+date]
	d.mu.Unlock()
	if !ok || id != req.GameID {
		writeError(w, http.StatusConflict, "no_session")
		return
	}

	out, view, elapsed, err := applyMove(r, d.sessions, req.GameID, d.srv.resolveAnswer(req.Answer))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusConflict, "no_session")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "move_failed")
		return
	}

	if out == game.OutcomeCleared {
		if err := d.results.InsertResult(r.Context(), daily.Result{
			UserID: uid, Date: date, Start: view.Start, Goal: view.Goal,
			Moves: view.Moves, ElapsedMs: int(elapsed),
		}); err != nil {
			log.Warn().Err(err).Str("user", uid).Msg("insert daily result")
		}
	}
	msg := ""
	if out != game.OutcomeAccepted {
		msg = out.Message()
	}
	writeJSON(w, http.StatusOK, moveRes{Outcome: out, Message: msg, Game: d.srv.present(view)})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date  string        `json:"date"`
	Start string        `json:"start,omitempty"`
	Goal  string        `json:"goal,omitempty"`
	Top   []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	day := d.now()
	if date != "" {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_date")
			return
		}
		day = t
	}
	date = daily.DateKey(day)

	rows, err := d.results.Leaderboard(r.Context(), date, daily.DefaultLeaderboardSize)
	if err != nil {
		log.Error().Err(err).Msg("daily leaderboard")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	res := lbRes{Date: date, Top: rows}
	if sc, err := daily.Scenario(day, d.salt, d.srv.idx); err == nil {
		res.Start, res.Goal = sc.Start, sc.Goal
	}
	writeJSON(w, http.StatusOK, res)
}
