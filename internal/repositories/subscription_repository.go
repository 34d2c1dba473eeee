package repositories

import (
	"context"

	"github.com/cliphub/backend/internal/models"
)

// ChannelStats aggregates the subscription edges around one channel from the
// point of view of a single caller.
type ChannelStats struct {
	SubscriberCount   int64
	SubscribedToCount int64
	IsSubscribed      bool
}

// SubscriptionRepository defines data access for subscription edges. The
// store enforces at most one edge per (subscriber, channel) pair, so a
// duplicate Create returns ErrConflict instead of inserting a second row.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub models.Subscription) error
	Find(ctx context.Context, subscriberID, channelID string) (models.Subscription, error)
	Delete(ctx context.Context, subscriberID, channelID string) error
	ListSubscribers(ctx context.Context, channelID string) ([]models.SubscriberEntry, error)
	ListSubscribedChannels(ctx context.Context, subscriberID string) ([]models.SubscribedChannelEntry, error)
	// StatsForChannel computes subscriber counts plus whether viewerID is
	// currently subscribed. An empty viewerID always yields IsSubscribed false.
	StatsForChannel(ctx context.Context, channelID, viewerID string) (ChannelStats, error)
}
