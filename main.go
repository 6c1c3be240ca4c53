package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/overland/apps/go-server/assets"
	"github.com/robalobadob/overland/apps/go-server/internal/atlas"
	"github.com/robalobadob/overland/apps/go-server/internal/config"
	"github.com/robalobadob/overland/apps/go-server/internal/countries"
	"github.com/robalobadob/overland/apps/go-server/internal/database"
	"github.com/robalobadob/overland/apps/go-server/internal/httpserver"
	"github.com/robalobadob/overland/apps/go-server/internal/imagery"
	"github.com/robalobadob/overland/apps/go-server/internal/logger"
	"github.com/robalobadob/overland/apps/go-server/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger.Init(!cfg.Production)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	graph, err := atlas.Load(cfg.BordersFile, atlas.Options{Strict: cfg.StrictBorders})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load border graph")
	}
	idx := atlas.NewIndex(graph)
	log.Info().Int("components", idx.Count()).Int("playable", len(idx.Playable())).Msg("component index built")

	names, err := countries.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load country table")
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open db")
	}
	defer db.Close()
	if err := database.Migrate(db, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	images := newResolver(ctx, cfg, names)

	mem := store.NewMemoryStore()
	srv := httpserver.New(httpserver.Deps{
		Config:    cfg,
		Index:     idx,
		Countries: names,
		Store:     mem,
		DB:        db,
		Images:    images,
	})
	go sweep(ctx, srv, cfg.SessionTTL)

	log.Info().Str("port", cfg.Port).Msg("starting go-server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// newResolver builds the photo resolver, sharing its cache through Redis
// when REDIS_URL is set and reachable.
func newResolver(ctx context.Context, cfg *config.Config, names *countries.Directory) *imagery.Resolver {
	manifest, err := assets.ImageManifest()
	if err != nil {
		log.Warn().Err(err).Msg("image manifest")
	}
	opts := imagery.Options{
		Manifest:  manifest,
		StaticDir: cfg.StaticDir,
		APIKey:    cfg.UnsplashKey,
		Names:     names.Name,
	}
	if cfg.RedisURL != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if rc, err := imagery.NewRedisCache(pingCtx, cfg.RedisURL, imagery.DefaultRedisTTL); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using in-process image cache")
		} else {
			opts.Cache = rc
		}
	}
	if cfg.UnsplashKey == "" {
		log.Info().Msg("UNSPLASH_ACCESS_KEY not set, remote photos disabled")
	}
	return imagery.New(opts)
}

// sweep drops stale sessions every few minutes until ctx is done.
func sweep(ctx context.Context, srv *httpserver.Server, ttl time.Duration) {
	t := time.NewTicker(5 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := srv.Sweep(now.Add(-ttl)); n > 0 {
				log.Debug().Int("removed", n).Msg("swept sessions")
			}
		}
	}
}
