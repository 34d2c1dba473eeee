package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Route
// patterns carry the method so handlers never re-check it.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	users := UserHandler{
		Sessions:   deps.Sessions,
		Gate:       deps.Gate,
		Users:      deps.Users,
		Views:      deps.Views,
		Uploader:   deps.Uploader,
		Assets:     deps.Assets,
		Limiter:    deps.LoginLimiter,
		Production: deps.Production,
	}
	videos := VideoHandler{
		Gate:     deps.Gate,
		Videos:   deps.Videos,
		Views:    deps.Views,
		Uploader: deps.Uploader,
		Assets:   deps.Assets,
		Prober:   deps.Prober,
	}
	subscriptions := SubscriptionHandler{Gate: deps.Gate, Views: deps.Views}
	playlists := PlaylistHandler{Gate: deps.Gate, Playlists: deps.Playlists, Videos: deps.Videos, Views: deps.Views}
	comments := CommentHandler{Gate: deps.Gate, Comments: deps.Comments, Videos: deps.Videos, Views: deps.Views}
	tweets := TweetHandler{Gate: deps.Gate, Tweets: deps.Tweets, Views: deps.Views}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/users/register", users.Register)
	mux.HandleFunc("POST /api/v1/users/login", users.Login)
	mux.HandleFunc("POST /api/v1/users/refresh-token", users.Refresh)
	mux.HandleFunc("POST /api/v1/users/logout", users.Logout)
	mux.HandleFunc("POST /api/v1/users/change-password", users.ChangePassword)
	mux.HandleFunc("GET /api/v1/users/current", users.CurrentUser)
	mux.HandleFunc("PATCH /api/v1/users/update", users.UpdateAccount)
	mux.HandleFunc("PATCH /api/v1/users/avatar", users.UpdateAvatar)
	mux.HandleFunc("PATCH /api/v1/users/cover", users.UpdateCover)
	mux.HandleFunc("GET /api/v1/users/channel/{username}", users.ChannelProfile)
	mux.HandleFunc("GET /api/v1/users/history", users.WatchHistory)

	mux.HandleFunc("POST /api/v1/videos", videos.Create)
	mux.HandleFunc("GET /api/v1/videos", videos.List)
	mux.HandleFunc("GET /api/v1/videos/{videoId}", videos.Get)
	mux.HandleFunc("PATCH /api/v1/videos/{videoId}", videos.Update)
	mux.HandleFunc("DELETE /api/v1/videos/{videoId}", videos.Delete)
	mux.HandleFunc("PATCH /api/v1/videos/{videoId}/thumbnail", videos.UpdateThumbnail)
	mux.HandleFunc("PATCH /api/v1/videos/{videoId}/toggle-publish", videos.TogglePublish)

	mux.HandleFunc("POST /api/v1/subscriptions/c/{channelId}", subscriptions.Toggle)
	mux.HandleFunc("GET /api/v1/subscriptions/c/{channelId}", subscriptions.Subscribers)
	mux.HandleFunc("GET /api/v1/subscriptions/u/{subscriberId}", subscriptions.SubscribedChannels)

	mux.HandleFunc("POST /api/v1/playlists", playlists.Create)
	mux.HandleFunc("GET /api/v1/playlists/user/{userId}", playlists.ByUser)
	mux.HandleFunc("GET /api/v1/playlists/{playlistId}", playlists.Get)
	mux.HandleFunc("PATCH /api/v1/playlists/{playlistId}", playlists.Update)
	mux.HandleFunc("DELETE /api/v1/playlists/{playlistId}", playlists.Delete)
	mux.HandleFunc("PATCH /api/v1/playlists/{playlistId}/videos/{videoId}", playlists.AddVideo)
	mux.HandleFunc("DELETE /api/v1/playlists/{playlistId}/videos/{videoId}", playlists.RemoveVideo)

	mux.HandleFunc("POST /api/v1/comments/video/{videoId}", comments.Add)
	mux.HandleFunc("GET /api/v1/comments/video/{videoId}", comments.List)
	mux.HandleFunc("PATCH /api/v1/comments/{commentId}", comments.Update)
	mux.HandleFunc("DELETE /api/v1/comments/{commentId}", comments.Delete)

	mux.HandleFunc("POST /api/v1/tweets", tweets.Create)
	mux.HandleFunc("GET /api/v1/tweets/user/{userId}", tweets.ByUser)
	mux.HandleFunc("PATCH /api/v1/tweets/{tweetId}", tweets.Update)
	mux.HandleFunc("DELETE /api/v1/tweets/{tweetId}", tweets.Delete)
}
