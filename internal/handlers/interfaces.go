package handlers

import (
	"context"
	"net/http"

	"github.com/cliphub/backend/internal/auth"
	"github.com/cliphub/backend/internal/media"
	"github.com/cliphub/backend/internal/models"
	"github.com/cliphub/backend/internal/uploads"
	"github.com/cliphub/backend/internal/views"
)

// SessionManager owns the identity/session lifecycle used by the user handlers.
type SessionManager interface {
	Register(ctx context.Context, input auth.RegisterInput) (models.User, error)
	Login(ctx context.Context, identifier, password string) (models.User, models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Logout(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

// Authenticator resolves inbound requests to verified identities.
type Authenticator interface {
	Authenticate(r *http.Request) (models.User, error)
	Identify(r *http.Request) (models.User, bool)
}

// ViewComposer builds the denormalized read shapes served by list/detail endpoints.
type ViewComposer interface {
	ListVideos(ctx context.Context, req views.VideoListRequest) (views.VideoPage, error)
	GetVideo(ctx context.Context, id, viewerID string) (models.VideoWithOwner, error)
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	ToggleSubscription(ctx context.Context, callerID, channelID string) (bool, error)
	Subscribers(ctx context.Context, channelID string) ([]models.SubscriberEntry, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]models.SubscribedChannelEntry, error)
	VideoComments(ctx context.Context, videoID string, page views.PageRequest) (views.CommentPage, error)
	UserTweets(ctx context.Context, userID string) ([]models.TweetWithOwner, error)
	UserPlaylists(ctx context.Context, userID string) ([]models.PlaylistWithVideos, error)
	PlaylistDetail(ctx context.Context, playlistID string) (models.PlaylistWithVideos, error)
	WatchHistory(ctx context.Context, userID string) ([]models.VideoWithOwner, error)
}

// UserStore captures the account persistence used by the profile endpoints.
type UserStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	UpdateProfile(ctx context.Context, id, fullName, email string) (models.User, error)
	UpdateAvatar(ctx context.Context, id, url, key string) (models.User, error)
	UpdateCover(ctx context.Context, id, url, key string) (models.User, error)
}

// VideoStore captures the video persistence used by the mutation endpoints.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	UpdateDetails(ctx context.Context, id, title, description string) (models.Video, error)
	UpdateThumbnail(ctx context.Context, id, url, key string) (models.Video, error)
	TogglePublished(ctx context.Context, id string) (models.Video, error)
	Delete(ctx context.Context, id string) error
}

// PlaylistStore captures playlist persistence for the mutation endpoints.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	Update(ctx context.Context, id, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// CommentStore captures comment persistence for the mutation endpoints.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	Update(ctx context.Context, id, content string) (models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// TweetStore captures tweet persistence for the mutation endpoints.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	Update(ctx context.Context, id, content string) (models.Tweet, error)
	Delete(ctx context.Context, id string) error
}

// Uploader runs the two-phase asset/record creation saga.
type Uploader interface {
	Run(ctx context.Context, ups []uploads.Upload, insert func(ctx context.Context, assets []uploads.Asset) error) ([]uploads.Asset, error)
}

// AssetDeleter removes stored objects outside the saga (resource deletion).
type AssetDeleter interface {
	Delete(ctx context.Context, key string) error
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users     UserStore
	Sessions  SessionManager
	Gate      Authenticator
	Views     ViewComposer
	Videos    VideoStore
	Playlists PlaylistStore
	Comments  CommentStore
	Tweets    TweetStore
	Uploader  Uploader
	Assets    AssetDeleter
	Prober    media.DurationProber

	LoginLimiter RateLimiter
	Production   bool
}
