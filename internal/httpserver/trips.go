// apps/go-server/internal/httpserver/trips.go
//
// Trip journal: one SQLite row per trip, owned by a user or an anonymous
// cookie. The live session stays in the store; the journal only feeds
// /trips/mine and the per-user stats. All writes are best effort and logged.

package httpserver

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/overland/apps/go-server/internal/game"
)

// tripOwner identifies who a trip belongs to. Exactly one field is set.
type tripOwner struct {
	userID string
	anonID string
}

// owner returns the signed-in user, or the anonymous cookie (setting it if needed).
func (s *Server) owner(w http.ResponseWriter, r *http.Request) tripOwner {
	if me := currentUser(r); me != nil {
		return tripOwner{userID: me.ID}
	}
	return tripOwner{anonID: s.ensureAnonID(w, r)}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// openTrip inserts the journal row for a new trip.
func (s *Server) openTrip(ctx context.Context, v game.View, startedAt time.Time, o tripOwner) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trips (id, user_id, anonymous_id, start, goal, route, moves, status, started_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		v.GameID, nullable(o.userID), nullable(o.anonID), v.Start, v.Goal,
		strings.Join(v.Route, ","), v.Moves, string(v.Status), startedAt.UTC().Format(time.RFC3339))
	if err != nil {
		log.Warn().Err(err).Str("gameId", v.GameID).Msg("insert trip row")
	}
}

// recordTrip writes the route after a move. The first time the trip reaches a
// terminal status it is stamped finished and the owner's stats are bumped.
func (s *Server) recordTrip(ctx context.Context, v game.View) {
	route := strings.Join(v.Route, ",")
	if !v.Status.Terminal() {
		if _, err := s.db.ExecContext(ctx, `UPDATE trips SET route=?, moves=? WHERE id=?`, route, v.Moves, v.GameID); err != nil {
			log.Warn().Err(err).Str("gameId", v.GameID).Msg("update trip route")
		}
		return
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin trip tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE trips SET route=?, moves=?, status=?, finished_at=? WHERE id=? AND status='playing'`,
		route, v.Moves, string(v.Status), time.Now().UTC().Format(time.RFC3339), v.GameID)
	if err != nil {
		log.Warn().Err(err).Str("gameId", v.GameID).Msg("finish trip")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return
	}

	var userID sql.NullString
	if err := tx.QueryRowContext(ctx, `SELECT user_id FROM trips WHERE id=?`, v.GameID).Scan(&userID); err != nil {
		log.Warn().Err(err).Str("gameId", v.GameID).Msg("trip owner")
		return
	}
	if userID.Valid {
		if err := bumpStats(ctx, tx, userID.String, v.Status == game.StatusCleared); err != nil {
			log.Warn().Err(err).Str("user", userID.String).Msg("bump stats")
			return
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit trip tx")
	}
}

// bumpStats increments trips played; updates cleared and streak based on the result.
func bumpStats(ctx context.Context, tx *sql.Tx, userID string, cleared bool) error {
	var played, clearedCount, streak int
	row := tx.QueryRowContext(ctx, `SELECT trips_played, cleared, streak FROM users WHERE id=?`, userID)
	if err := row.Scan(&played, &clearedCount, &streak); err != nil {
		return err
	}
	played++
	if cleared {
		clearedCount++
		streak++
	} else {
		streak = 0
	}
	_, err := tx.ExecContext(ctx, `UPDATE users SET trips_played=?, cleared=?, streak=? WHERE id=?`,
		played, clearedCount, streak, userID)
	return err
}

// claimAnonTrips transfers anonymous trips to a user account after auth.
func (s *Server) claimAnonTrips(ctx context.Context, anonID, userID string) {
	if anonID == "" || userID == "" {
		return
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE trips SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID); err != nil {
		log.Warn().Err(err).Msg("claim anon trips")
	}
}

// tripRow is one entry of /trips/mine.
type tripRow struct {
	ID         string   `json:"id"`
	Start      string   `json:"start"`
	Goal       string   `json:"goal"`
	Route      []string `json:"route"`
	Moves      int      `json:"moves"`
	Status     string   `json:"status"`
	StartedAt  string   `json:"startedAt"`
	FinishedAt string   `json:"finishedAt,omitempty"`
}

func (s *Server) listTrips(ctx context.Context, userID string, limit int) ([]tripRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, start, goal, route, moves, status, started_at, COALESCE(finished_at,'')
		 FROM trips WHERE user_id=? ORDER BY started_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []tripRow{}
	for rows.Next() {
		var (
			tr    tripRow
			route string
		)
		if err := rows.Scan(&tr.ID, &tr.Start, &tr.Goal, &route, &tr.Moves, &tr.Status, &tr.StartedAt, &tr.FinishedAt); err != nil {
			return nil, err
		}
		tr.Route = []string{}
		if route != "" {
			tr.Route = strings.Split(route, ",")
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}
