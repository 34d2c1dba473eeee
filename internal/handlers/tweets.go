package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliphub/backend/internal/apperr"
	"github.com/cliphub/backend/internal/auth"
	"github.com/cliphub/backend/internal/models"
)

// TweetHandler implements the short text post endpoints.
type TweetHandler struct {
	Gate   Authenticator
	Tweets TweetStore
	Views  ViewComposer
}

type tweetRequest struct {
	Content string `json:"content"`
}

// Create handles POST /api/v1/tweets requests.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := h.Gate.Authenticate(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	content, err := decodeTweetContent(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	now := time.Now().UTC()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   caller.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]any{"tweet": tweet})
}

// ByUser handles GET /api/v1/tweets/user/{userId} requests.
func (h TweetHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweets, err := h.Views.UserTweets(ctx, r.PathValue("userId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"tweets": tweets})
}

// Update handles PATCH /api/v1/tweets/{tweetId} requests.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweet, err := h.ownedTweet(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	content, err := decodeTweetContent(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	updated, err := h.Tweets.Update(ctx, tweet.ID, content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"tweet": updated})
}

// Delete handles DELETE /api/v1/tweets/{tweetId} requests.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweet, err := h.ownedTweet(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Tweets.Delete(ctx, tweet.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "tweet deleted"})
}

func (h TweetHandler) ownedTweet(r *http.Request) (models.Tweet, error) {
	caller, err := h.Gate.Authenticate(r)
	if err != nil {
		return models.Tweet{}, err
	}

	tweet, err := h.Tweets.FindByID(r.Context(), r.PathValue("tweetId"))
	if err != nil {
		return models.Tweet{}, err
	}

	if err := auth.RequireOwnership(tweet.OwnerID, caller.ID); err != nil {
		return models.Tweet{}, err
	}
	return tweet, nil
}

func decodeTweetContent(r *http.Request) (string, error) {
	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", apperr.Validation("invalid request body")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return "", apperr.Validation("tweet content is required")
	}
	return content, nil
}
