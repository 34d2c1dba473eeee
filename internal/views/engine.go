// Package views builds the denormalized read-side response shapes by joining
// entity collections and paginating the results. List endpoints follow the
// platform's "no results is an error" policy: a zero total surfaces as a
// not-found failure rather than an empty page.
package views

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cliphub/backend/internal/apperr"
	"github.com/cliphub/backend/internal/logging"
	"github.com/cliphub/backend/internal/models"
	"github.com/cliphub/backend/internal/repositories"
)

// Engine composes read views over the entity repositories.
type Engine struct {
	Users         repositories.UserRepository
	Videos        repositories.VideoRepository
	Subscriptions repositories.SubscriptionRepository
	Comments      repositories.CommentRepository
	Playlists     repositories.PlaylistRepository
	Tweets        repositories.TweetRepository
}

// VideoListRequest selects, orders and paginates the video listing.
type VideoListRequest struct {
	Query         string
	OwnerID       string
	SortBy        string
	SortDirection string
	Page          PageRequest
}

// VideoPage is one page of the video listing plus the total match count.
type VideoPage struct {
	Videos []models.VideoWithOwner `json:"videos"`
	Total  int64                   `json:"total"`
	Page   int                     `json:"page"`
	Limit  int                     `json:"limit"`
}

// CommentPage is one page of a video's comments plus the total count.
type CommentPage struct {
	Comments []models.CommentWithOwner `json:"comments"`
	Total    int64                     `json:"total"`
	Page     int                       `json:"page"`
	Limit    int                       `json:"limit"`
}

// ListVideos returns the requested page of published videos. Direction
// "descending" reverses the order; any other value sorts ascending.
func (e *Engine) ListVideos(ctx context.Context, req VideoListRequest) (VideoPage, error) {
	params := repositories.VideoListParams{
		Query:      req.Query,
		OwnerID:    req.OwnerID,
		SortBy:     req.SortBy,
		Descending: req.SortDirection == "descending",
		Offset:     req.Page.Offset(),
		Limit:      req.Page.Limit,
	}

	videos, total, err := e.Videos.List(ctx, params)
	if err != nil {
		return VideoPage{}, fmt.Errorf("list videos: %w", err)
	}
	if total == 0 {
		return VideoPage{}, apperr.NotFound("no videos found")
	}

	return VideoPage{Videos: videos, Total: total, Page: req.Page.Page, Limit: req.Page.Limit}, nil
}

// GetVideo fetches a video with its owner projection, bumps the view counter
// and records the watch for an authenticated viewer. Counter and history
// updates are best-effort and never fail the read.
func (e *Engine) GetVideo(ctx context.Context, id, viewerID string) (models.VideoWithOwner, error) {
	video, err := e.Videos.FindWithOwner(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.VideoWithOwner{}, apperr.NotFound("video not found")
		}
		return models.VideoWithOwner{}, fmt.Errorf("fetch video: %w", err)
	}

	logger := logging.FromContext(ctx)
	if err := e.Videos.IncrementViews(ctx, id); err != nil {
		logger.Warn("increment views failed", "videoId", id, "error", err)
	} else {
		video.Views++
	}

	if viewerID != "" {
		if err := e.Videos.RecordWatch(ctx, viewerID, id); err != nil {
			logger.Warn("record watch failed", "videoId", id, "userId", viewerID, "error", err)
		}
	}

	return video, nil
}

// ChannelProfile composes the public channel view with subscription
// aggregates computed for the requesting viewer. An empty viewerID yields
// IsSubscribed false.
func (e *Engine) ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error) {
	user, err := e.Users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.ChannelProfile{}, apperr.NotFound("channel not found")
		}
		return models.ChannelProfile{}, fmt.Errorf("fetch channel: %w", err)
	}

	stats, err := e.Subscriptions.StatsForChannel(ctx, user.ID, viewerID)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("channel stats: %w", err)
	}

	return models.ChannelProfile{
		ID:                user.ID,
		Username:          user.Username,
		FullName:          user.FullName,
		Email:             user.Email,
		AvatarURL:         user.AvatarURL,
		CoverURL:          user.CoverURL,
		SubscriberCount:   stats.SubscriberCount,
		SubscribedToCount: stats.SubscribedToCount,
		IsSubscribed:      stats.IsSubscribed,
	}, nil
}

// ToggleSubscription flips the (caller, channel) edge: present becomes
// absent and vice versa. The unique edge index resolves concurrent toggles;
// a losing insert reads as already-subscribed.
func (e *Engine) ToggleSubscription(ctx context.Context, callerID, channelID string) (bool, error) {
	if _, err := e.Users.FindByID(ctx, channelID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, apperr.NotFound("channel not found")
		}
		return false, fmt.Errorf("fetch channel: %w", err)
	}

	_, err := e.Subscriptions.Find(ctx, callerID, channelID)
	switch {
	case err == nil:
		if err := e.Subscriptions.Delete(ctx, callerID, channelID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return false, fmt.Errorf("delete subscription: %w", err)
		}
		return false, nil
	case errors.Is(err, repositories.ErrNotFound):
		sub := models.Subscription{
			ID:           uuid.NewString(),
			SubscriberID: callerID,
			ChannelID:    channelID,
			CreatedAt:    time.Now().UTC(),
		}
		if err := e.Subscriptions.Create(ctx, sub); err != nil {
			if errors.Is(err, repositories.ErrConflict) {
				return true, nil
			}
			return false, fmt.Errorf("create subscription: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("find subscription: %w", err)
	}
}

// Subscribers lists everyone subscribed to the channel.
func (e *Engine) Subscribers(ctx context.Context, channelID string) ([]models.SubscriberEntry, error) {
	entries, err := e.Subscriptions.ListSubscribers(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	if len(entries) == 0 {
		return nil, apperr.NotFound("no subscribers found")
	}
	return entries, nil
}

// SubscribedChannels lists every channel the subscriber follows.
func (e *Engine) SubscribedChannels(ctx context.Context, subscriberID string) ([]models.SubscribedChannelEntry, error) {
	entries, err := e.Subscriptions.ListSubscribedChannels(ctx, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("list subscribed channels: %w", err)
	}
	if len(entries) == 0 {
		return nil, apperr.NotFound("no subscribed channels found")
	}
	return entries, nil
}

// VideoComments returns the requested page of a video's comments.
func (e *Engine) VideoComments(ctx context.Context, videoID string, page PageRequest) (CommentPage, error) {
	comments, total, err := e.Comments.ListForVideo(ctx, videoID, page.Offset(), page.Limit)
	if err != nil {
		return CommentPage{}, fmt.Errorf("list comments: %w", err)
	}
	if total == 0 {
		return CommentPage{}, apperr.NotFound("no comments found")
	}

	return CommentPage{Comments: comments, Total: total, Page: page.Page, Limit: page.Limit}, nil
}

// UserTweets lists a user's tweets with the author projection. An empty
// result is not an error here; a channel with no tweets is a normal state.
func (e *Engine) UserTweets(ctx context.Context, userID string) ([]models.TweetWithOwner, error) {
	tweets, err := e.Tweets.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tweets: %w", err)
	}
	return tweets, nil
}

// UserPlaylists lists the user's playlists with their member videos.
func (e *Engine) UserPlaylists(ctx context.Context, userID string) ([]models.PlaylistWithVideos, error) {
	playlists, err := e.Playlists.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	if len(playlists) == 0 {
		return nil, apperr.NotFound("no playlists found")
	}
	return playlists, nil
}

// PlaylistDetail fetches one playlist with its member videos.
func (e *Engine) PlaylistDetail(ctx context.Context, playlistID string) (models.PlaylistWithVideos, error) {
	playlist, err := e.Playlists.FindWithVideos(ctx, playlistID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.PlaylistWithVideos{}, apperr.NotFound("playlist not found")
		}
		return models.PlaylistWithVideos{}, fmt.Errorf("fetch playlist: %w", err)
	}
	return playlist, nil
}

// WatchHistory lists the caller's watched videos, most recent first.
func (e *Engine) WatchHistory(ctx context.Context, userID string) ([]models.VideoWithOwner, error) {
	history, err := e.Videos.WatchHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("watch history: %w", err)
	}
	return history, nil
}
