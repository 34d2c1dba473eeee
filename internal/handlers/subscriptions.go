package handlers

import (
	"net/http"

	"github.com/cliphub/backend/internal/apperr"
	"github.com/cliphub/backend/internal/auth"
)

// SubscriptionHandler implements the channel subscription endpoints.
type SubscriptionHandler struct {
	Gate  Authenticator
	Views ViewComposer
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId} requests. It flips
// the caller's subscription to the channel and reports the resulting state.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := h.Gate.Authenticate(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	channelID := r.PathValue("channelId")
	if channelID == caller.ID {
		respondError(ctx, w, apperr.Validation("cannot subscribe to your own channel"))
		return
	}

	subscribed, err := h.Views.ToggleSubscription(ctx, caller.ID, channelID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"subscribed": subscribed})
}

// Subscribers handles GET /api/v1/subscriptions/c/{channelId} requests.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := h.Gate.Authenticate(r); err != nil {
		respondError(ctx, w, err)
		return
	}

	subscribers, err := h.Views.Subscribers(ctx, r.PathValue("channelId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"subscribers": subscribers})
}

// SubscribedChannels handles GET /api/v1/subscriptions/u/{subscriberId}
// requests. Only the subscriber themselves may list their subscriptions.
func (h SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := h.Gate.Authenticate(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	subscriberID := r.PathValue("subscriberId")
	if err := auth.RequireOwnership(subscriberID, caller.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	channels, err := h.Views.SubscribedChannels(ctx, subscriberID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"channels": channels})
}
