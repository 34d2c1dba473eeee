package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cliphub/backend/internal/db"
	"github.com/cliphub/backend/internal/models"
)

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for
// subscription edges. The unique (subscriber_id, channel_id) index makes the
// at-most-one-edge invariant structural: concurrent double inserts collapse
// into one row plus an ErrConflict for the loser.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Create inserts a subscription edge.
func (r *PostgresSubscriptionRepository) Create(ctx context.Context, sub models.Subscription) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
        VALUES ($1, $2, $3, $4)
    `, sub.ID, sub.SubscriberID, sub.ChannelID, sub.CreatedAt)
	if err != nil {
		return mapPgError("insert subscription", err)
	}

	return nil
}

// Find fetches the edge for an ordered (subscriber, channel) pair.
func (r *PostgresSubscriptionRepository) Find(ctx context.Context, subscriberID, channelID string) (models.Subscription, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, subscriber_id, channel_id, created_at
        FROM subscriptions
        WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID)

	var sub models.Subscription
	if err := row.Scan(&sub.ID, &sub.SubscriberID, &sub.ChannelID, &sub.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Subscription{}, ErrNotFound
		}
		return models.Subscription{}, fmt.Errorf("select subscription: %w", err)
	}

	return sub, nil
}

// Delete removes the edge for an ordered (subscriber, channel) pair.
func (r *PostgresSubscriptionRepository) Delete(ctx context.Context, subscriberID, channelID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM subscriptions
        WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListSubscribers returns everyone subscribed to the channel, projected to
// public user fields.
func (r *PostgresSubscriptionRepository) ListSubscribers(ctx context.Context, channelID string) ([]models.SubscriberEntry, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT s.id, s.created_at, `+publicUserColumns+`
        FROM subscriptions s
        LEFT JOIN users u ON u.id = s.subscriber_id
        WHERE s.channel_id = $1
        ORDER BY s.created_at DESC
    `, channelID)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()

	var entries []models.SubscriberEntry
	for rows.Next() {
		var e models.SubscriberEntry
		if err := rows.Scan(&e.ID, &e.SubscribedAt,
			&e.Subscriber.ID, &e.Subscriber.Username, &e.Subscriber.FullName,
			&e.Subscriber.AvatarURL, &e.Subscriber.CoverURL); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}

	return entries, nil
}

// ListSubscribedChannels returns every channel the subscriber follows,
// projected to public user fields.
func (r *PostgresSubscriptionRepository) ListSubscribedChannels(ctx context.Context, subscriberID string) ([]models.SubscribedChannelEntry, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT s.id, s.created_at, `+publicUserColumns+`
        FROM subscriptions s
        LEFT JOIN users u ON u.id = s.channel_id
        WHERE s.subscriber_id = $1
        ORDER BY s.created_at DESC
    `, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("query subscribed channels: %w", err)
	}
	defer rows.Close()

	var entries []models.SubscribedChannelEntry
	for rows.Next() {
		var e models.SubscribedChannelEntry
		if err := rows.Scan(&e.ID, &e.SubscribedAt,
			&e.Channel.ID, &e.Channel.Username, &e.Channel.FullName,
			&e.Channel.AvatarURL, &e.Channel.CoverURL); err != nil {
			return nil, fmt.Errorf("scan subscribed channel: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribed channels: %w", err)
	}

	return entries, nil
}

// StatsForChannel computes subscription aggregates for a channel as seen by
// one viewer. An empty viewerID never matches, so IsSubscribed stays false
// for unauthenticated callers.
func (r *PostgresSubscriptionRepository) StatsForChannel(ctx context.Context, channelID, viewerID string) (ChannelStats, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return ChannelStats{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT
            (SELECT count(*) FROM subscriptions WHERE channel_id = $1),
            (SELECT count(*) FROM subscriptions WHERE subscriber_id = $1),
            EXISTS (SELECT 1 FROM subscriptions WHERE channel_id = $1 AND subscriber_id = $2)
    `, channelID, viewerID)

	var stats ChannelStats
	if err := row.Scan(&stats.SubscriberCount, &stats.SubscribedToCount, &stats.IsSubscribed); err != nil {
		return ChannelStats{}, fmt.Errorf("scan channel stats: %w", err)
	}

	return stats, nil
}

var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
