package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cliphub/backend/internal/models"
)

type togglingComposer struct {
	ViewComposer

	toggled     [][2]string
	subscribed  bool
	channels    []models.SubscribedChannelEntry
	subscribers map[string][]models.SubscriberEntry
}

func (f *togglingComposer) ToggleSubscription(_ context.Context, callerID, channelID string) (bool, error) {
	f.toggled = append(f.toggled, [2]string{callerID, channelID})
	return f.subscribed, nil
}

func (f *togglingComposer) SubscribedChannels(context.Context, string) ([]models.SubscribedChannelEntry, error) {
	return f.channels, nil
}

func (f *togglingComposer) Subscribers(_ context.Context, channelID string) ([]models.SubscriberEntry, error) {
	return f.subscribers[channelID], nil
}

// The toggle, subscriber-list, and channel-list patterns share a prefix; each
// must resolve to its own handler without the mux reporting a conflict.
func TestSubscriptionRoutesAreDisjoint(t *testing.T) {
	composer := &togglingComposer{
		subscribed:  true,
		channels:    []models.SubscribedChannelEntry{{ID: "edge-1"}},
		subscribers: map[string][]models.SubscriberEntry{"channel-1": {{ID: "edge-2"}}},
	}
	gate := fakeAuthenticator{user: models.User{ID: "caller-1"}}
	mux := newTestMux(Dependencies{Views: composer, Gate: gate})

	subs := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/c/channel-1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, subs)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing subscribers, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(composer.toggled) != 0 {
		t.Fatal("subscriber listing must not toggle the edge")
	}

	channels := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/u/caller-1", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, channels)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing channels, got %d: %s", rec.Code, rec.Body.String())
	}

	toggle := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/c/channel-1", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, toggle)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 toggling, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(composer.toggled) != 1 {
		t.Fatalf("expected one toggle call, got %d", len(composer.toggled))
	}
}

func TestSubscriptionToggle(t *testing.T) {
	composer := &togglingComposer{subscribed: true}
	gate := fakeAuthenticator{user: models.User{ID: "caller-1"}}
	mux := newTestMux(Dependencies{Views: composer, Gate: gate})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/c/channel-1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(composer.toggled) != 1 || composer.toggled[0] != [2]string{"caller-1", "channel-1"} {
		t.Fatalf("unexpected toggle call: %v", composer.toggled)
	}
}

func TestSubscriptionToggle_OwnChannelRejected(t *testing.T) {
	composer := &togglingComposer{}
	gate := fakeAuthenticator{user: models.User{ID: "caller-1"}}
	mux := newTestMux(Dependencies{Views: composer, Gate: gate})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/c/caller-1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for self-subscription, got %d", rec.Code)
	}
	if len(composer.toggled) != 0 {
		t.Fatal("expected no toggle for self-subscription")
	}
}

func TestSubscribedChannels_OwnerOnly(t *testing.T) {
	composer := &togglingComposer{channels: []models.SubscribedChannelEntry{{ID: "edge-1"}}}
	gate := fakeAuthenticator{user: models.User{ID: "caller-1"}}
	mux := newTestMux(Dependencies{Views: composer, Gate: gate})

	own := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/u/caller-1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, own)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for own listing, got %d", rec.Code)
	}

	other := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/u/someone-else", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, other)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for another user's listing, got %d", rec.Code)
	}
}
