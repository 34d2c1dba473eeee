package app

import (
	"context"

	"github.com/cliphub/backend/internal/auth"
	"github.com/cliphub/backend/internal/config"
	"github.com/cliphub/backend/internal/db"
	"github.com/cliphub/backend/internal/handlers"
	"github.com/cliphub/backend/internal/media"
	"github.com/cliphub/backend/internal/middleware"
	"github.com/cliphub/backend/internal/repositories"
	"github.com/cliphub/backend/internal/storage"
	"github.com/cliphub/backend/internal/uploads"
	"github.com/cliphub/backend/internal/views"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	store, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	users := repositories.NewPostgresUserRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	subscriptions := repositories.NewPostgresSubscriptionRepository(pool)
	playlists := repositories.NewPostgresPlaylistRepository(pool)
	comments := repositories.NewPostgresCommentRepository(pool)
	tweets := repositories.NewPostgresTweetRepository(pool)

	issuer := auth.NewTokenIssuer(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	orchestrator := uploads.NewOrchestrator(store)

	engine := &views.Engine{
		Users:         users,
		Videos:        videos,
		Subscriptions: subscriptions,
		Comments:      comments,
		Playlists:     playlists,
		Tweets:        tweets,
	}

	rl := cfg.LoginRateLimit

	return handlers.Dependencies{
		Users:     users,
		Sessions:  auth.NewManager(users, issuer, orchestrator),
		Gate:      auth.NewGate(issuer, users),
		Views:     engine,
		Videos:    videos,
		Playlists: playlists,
		Comments:  comments,
		Tweets:    tweets,
		Uploader:  orchestrator,
		Assets:    store,
		Prober:    media.NewFFProbeProber(cfg.FFProbePath, cfg.FFProbeTimeout),

		LoginLimiter: middleware.NewIPRateLimiter(rl.Requests, rl.Window, rl.Burst, rl.TTL),
		Production:   cfg.Production,
	}, nil
}
