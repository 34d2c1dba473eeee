package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cliphub/backend/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		AccessTokenSecret:  "access-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenSecret: "refresh-secret",
		RefreshTokenTTL:    240 * time.Hour,
		ObjectStore:        config.ObjectStoreConfig{Bucket: "test-bucket", Endpoint: "http://localhost:9000", Region: "us-east-1"},
		FFProbePath:        "ffprobe",
		FFProbeTimeout:     time.Second,
		LoginRateLimit:     config.LoginRateLimitConfig{Requests: 5, Window: time.Minute, Burst: 5, TTL: time.Hour},
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	deps, err := buildDependencies(context.Background(), fakePool{}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if deps.Users == nil {
		t.Fatal("expected user repository to be configured")
	}
	if deps.Sessions == nil {
		t.Fatal("expected session manager to be configured")
	}
	if deps.Gate == nil {
		t.Fatal("expected request authenticator to be configured")
	}
	if deps.Views == nil {
		t.Fatal("expected view engine to be configured")
	}
	if deps.Videos == nil || deps.Playlists == nil || deps.Comments == nil || deps.Tweets == nil {
		t.Fatal("expected content repositories to be configured")
	}
	if deps.Uploader == nil {
		t.Fatal("expected upload orchestrator to be configured")
	}
	if deps.Assets == nil {
		t.Fatal("expected asset store to be configured")
	}
	if deps.Prober == nil {
		t.Fatal("expected duration prober to be configured")
	}
	if deps.LoginLimiter == nil {
		t.Fatal("expected login rate limiter to be configured")
	}
}
