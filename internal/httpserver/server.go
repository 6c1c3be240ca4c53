// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the overland backend.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, panic recovery, timeouts,
//     request logging, JSON, CORS).
//   - Public endpoints: "/", "/health", the country table and photos.
//   - Game endpoints (optional auth): /game/*, /result.
//   - Daily trip endpoints (optional auth): mounted under /daily.
//   - Auth + profile endpoints: /auth/*, /stats/me, /trips/mine.
//
// Notes:
//   - Sessions live in the store; SQLite only keeps the trip journal,
//     accounts and daily results.
//   - CORS is origin-aware and credentials-enabled (so cookies work).

package httpserver

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/overland/apps/go-server/internal/atlas"
	"github.com/robalobadob/overland/apps/go-server/internal/config"
	"github.com/robalobadob/overland/apps/go-server/internal/countries"
	"github.com/robalobadob/overland/apps/go-server/internal/imagery"
	"github.com/robalobadob/overland/apps/go-server/internal/logger"
	"github.com/robalobadob/overland/apps/go-server/internal/scenario"
	"github.com/robalobadob/overland/apps/go-server/internal/store"
)

// Deps are the collaborators the server is built from. Config, Index,
// Countries, Store and DB are required.
type Deps struct {
	Config    *config.Config
	Index     *atlas.Index
	Countries *countries.Directory
	Store     store.Store
	DB        *sql.DB
	Images    *imagery.Resolver   // defaults to a local-only resolver
	Scenarios *scenario.Generator // defaults to a clock-seeded generator
}

// Server bundles the router with the game, journal and lookup collaborators.
type Server struct {
	r      *chi.Mux
	cfg    *config.Config
	idx    *atlas.Index
	graph  *atlas.Graph
	names  *countries.Directory
	store  store.Store
	db     *sql.DB
	images *imagery.Resolver
	hub    *Hub
	daily  *dailyServer

	genMu sync.Mutex
	gen   *scenario.Generator
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:      chi.NewRouter(),
		cfg:    d.Config,
		idx:    d.Index,
		graph:  d.Index.Graph(),
		names:  d.Countries,
		store:  d.Store,
		db:     d.DB,
		images: d.Images,
		gen:    d.Scenarios,
		hub:    NewHub(),
	}
	if s.images == nil {
		s.images = imagery.New(imagery.Options{Names: s.names.Name})
	}
	if s.gen == nil {
		s.gen = scenario.New(s.idx)
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(logger.Requests)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "overland-go",
			"endpoints": []string{
				"/health", "/countries", "POST /game/new", "POST /game/move",
				"POST /game/giveup", "/result", "/daily/*", "/auth/*",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":         true,
			"countries":  s.graph.Len(),
			"components": s.idx.Count(),
			"playable":   len(s.idx.Playable()),
		})
	})

	s.mountCountries(s.r)

	// Game endpoints: OPTIONAL AUTH (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		s.mountGame(r)
		s.mountDaily(r)
	})

	s.mountAuthRoutes(s.r)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Sweep drops game and daily sessions idle since before cutoff.
func (s *Server) Sweep(cutoff time.Time) int {
	n := 0
	if p, ok := s.store.(interface{ Prune(time.Time) int }); ok {
		n += p.Prune(cutoff)
	}
	n += s.daily.prune(cutoff)
	return n
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ---------------------------- countries ------------------------------------

func (s *Server) mountCountries(r chi.Router) {
	r.Get("/countries", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.names.All())
	})
	r.Get("/countries/suggest", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.names.Suggest(r.URL.Query().Get("q"), countries.DefaultSuggestions))
	})
	r.Get("/countries/{id}/image", func(w http.ResponseWriter, r *http.Request) {
		id := atlas.Normalize(chi.URLParam(r, "id"))
		if _, ok := s.names.Get(id); !ok && !s.graph.Known(id) {
			writeError(w, http.StatusNotFound, "unknown_country")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id, "url": s.images.Resolve(r.Context(), id)})
	})
}
