package models

import "time"

// VideoWithOwner is a video joined with its owner's public projection.
type VideoWithOwner struct {
	Video
	Owner PublicUser `json:"owner"`
}

// CommentWithOwner is a comment joined with its author's public projection.
type CommentWithOwner struct {
	Comment
	Owner PublicUser `json:"owner"`
}

// TweetWithOwner is a tweet joined with its author's public projection.
type TweetWithOwner struct {
	Tweet
	Owner PublicUser `json:"owner"`
}

// SubscriberEntry is a subscription edge joined with the subscribing user.
type SubscriberEntry struct {
	ID           string     `json:"id"`
	SubscribedAt time.Time  `json:"subscribedAt"`
	Subscriber   PublicUser `json:"subscriber"`
}

// SubscribedChannelEntry is a subscription edge joined with the channel user.
type SubscribedChannelEntry struct {
	ID           string     `json:"id"`
	SubscribedAt time.Time  `json:"subscribedAt"`
	Channel      PublicUser `json:"channel"`
}

// ChannelProfile is the denormalized channel view with subscription
// aggregates computed for the requesting caller.
type ChannelProfile struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	FullName          string `json:"fullName"`
	Email             string `json:"email"`
	AvatarURL         string `json:"avatarUrl"`
	CoverURL          string `json:"coverUrl,omitempty"`
	SubscriberCount   int64  `json:"subscriberCount"`
	SubscribedToCount int64  `json:"subscribedToCount"`
	IsSubscribed      bool   `json:"isSubscribed"`
}

// PlaylistWithVideos is a playlist joined with its member videos in
// insertion order.
type PlaylistWithVideos struct {
	Playlist
	Videos []Video `json:"videos"`
}
