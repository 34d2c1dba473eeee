package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cliphub/backend/internal/db"
	"github.com/cliphub/backend/internal/models"
)

const videoColumns = "id, owner_id, title, description, video_url, video_key, thumbnail_url, thumbnail_key, duration_seconds, views, published, created_at, updated_at"

// sortableVideoColumns is the allow-list for caller-chosen sort fields.
var sortableVideoColumns = map[string]string{
	"createdAt": "v.created_at",
	"views":     "v.views",
	"duration":  "v.duration_seconds",
	"title":     "v.title",
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, title, description, video_url, video_key, thumbnail_url, thumbnail_key, duration_seconds, views, published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, video.ID, video.OwnerID, video.Title, video.Description, video.VideoURL,
		video.VideoKey, video.ThumbnailURL, video.ThumbnailKey, video.Duration,
		video.Views, video.Published, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		return mapPgError("insert video", err)
	}

	return nil
}

// FindByID fetches a video by primary key.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, "SELECT "+videoColumns+" FROM videos WHERE id = $1", id)
	return scanVideo(row)
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var v models.Video
	if err := row.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoURL,
		&v.VideoKey, &v.ThumbnailURL, &v.ThumbnailKey, &v.Duration, &v.Views,
		&v.Published, &v.CreatedAt, &v.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("scan video: %w", err)
	}
	return v, nil
}

// FindWithOwner fetches a video joined with its owner's public projection.
func (r *PostgresVideoRepository) FindWithOwner(ctx context.Context, id string) (models.VideoWithOwner, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.VideoWithOwner{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.video_key,
               v.thumbnail_url, v.thumbnail_key, v.duration_seconds, v.views, v.published,
               v.created_at, v.updated_at, `+publicUserColumns+`
        FROM videos v
        LEFT JOIN users u ON u.id = v.owner_id
        WHERE v.id = $1
    `, id)

	var vw models.VideoWithOwner
	if err := row.Scan(&vw.ID, &vw.OwnerID, &vw.Title, &vw.Description, &vw.VideoURL,
		&vw.VideoKey, &vw.ThumbnailURL, &vw.ThumbnailKey, &vw.Duration, &vw.Views,
		&vw.Published, &vw.CreatedAt, &vw.UpdatedAt,
		&vw.Owner.ID, &vw.Owner.Username, &vw.Owner.FullName, &vw.Owner.AvatarURL, &vw.Owner.CoverURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.VideoWithOwner{}, ErrNotFound
		}
		return models.VideoWithOwner{}, fmt.Errorf("scan video with owner: %w", err)
	}

	return vw, nil
}

// List returns one page of published videos with their owner projections plus
// the total match count. Filtering and ordering happen store-side.
func (r *PostgresVideoRepository) List(ctx context.Context, params VideoListParams) ([]models.VideoWithOwner, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	sortColumn, ok := sortableVideoColumns[params.SortBy]
	if !ok {
		sortColumn = "v.created_at"
	}
	direction := "ASC"
	if params.Descending {
		direction = "DESC"
	}

	query := fmt.Sprintf(`
        SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.video_key,
               v.thumbnail_url, v.thumbnail_key, v.duration_seconds, v.views, v.published,
               v.created_at, v.updated_at, `+publicUserColumns+`,
               count(*) OVER () AS total
        FROM videos v
        LEFT JOIN users u ON u.id = v.owner_id
        WHERE v.published
          AND ($1 = '' OR v.title ILIKE '%%' || $1 || '%%' OR v.description ILIKE '%%' || $1 || '%%')
          AND ($2 = '' OR v.owner_id = $2)
        ORDER BY %s %s
        OFFSET $3 LIMIT $4
    `, sortColumn, direction)

	rows, err := conn.Query(ctx, query, params.Query, params.OwnerID, params.Offset, params.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var (
		results []models.VideoWithOwner
		total   int64
	)
	for rows.Next() {
		var vw models.VideoWithOwner
		if err := rows.Scan(&vw.ID, &vw.OwnerID, &vw.Title, &vw.Description, &vw.VideoURL,
			&vw.VideoKey, &vw.ThumbnailURL, &vw.ThumbnailKey, &vw.Duration, &vw.Views,
			&vw.Published, &vw.CreatedAt, &vw.UpdatedAt,
			&vw.Owner.ID, &vw.Owner.Username, &vw.Owner.FullName, &vw.Owner.AvatarURL, &vw.Owner.CoverURL,
			&total); err != nil {
			return nil, 0, fmt.Errorf("scan video row: %w", err)
		}
		results = append(results, vw)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate videos: %w", err)
	}

	// An offset past the last row yields no rows, which would collapse the
	// windowed total to zero; recount so out-of-range pages report the truth.
	if len(results) == 0 {
		row := conn.QueryRow(ctx, `
        SELECT count(*)
        FROM videos v
        WHERE v.published
          AND ($1 = '' OR v.title ILIKE '%' || $1 || '%' OR v.description ILIKE '%' || $1 || '%')
          AND ($2 = '' OR v.owner_id = $2)
    `, params.Query, params.OwnerID)
		if err := row.Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count videos: %w", err)
		}
	}

	return results, total, nil
}

// UpdateDetails replaces title and description and returns the updated row.
func (r *PostgresVideoRepository) UpdateDetails(ctx context.Context, id, title, description string) (models.Video, error) {
	return r.updateReturning(ctx, `
        UPDATE videos
        SET title = $2, description = $3, updated_at = $4
        WHERE id = $1
        RETURNING `+videoColumns, id, title, description, time.Now().UTC())
}

// UpdateThumbnail replaces the thumbnail asset reference.
func (r *PostgresVideoRepository) UpdateThumbnail(ctx context.Context, id, url, key string) (models.Video, error) {
	return r.updateReturning(ctx, `
        UPDATE videos
        SET thumbnail_url = $2, thumbnail_key = $3, updated_at = $4
        WHERE id = $1
        RETURNING `+videoColumns, id, url, key, time.Now().UTC())
}

// TogglePublished flips the publish flag in a single statement.
func (r *PostgresVideoRepository) TogglePublished(ctx context.Context, id string) (models.Video, error) {
	return r.updateReturning(ctx, `
        UPDATE videos
        SET published = NOT published, updated_at = $2
        WHERE id = $1
        RETURNING `+videoColumns, id, time.Now().UTC())
}

func (r *PostgresVideoRepository) updateReturning(ctx context.Context, query string, args ...any) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	video, err := scanVideo(conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, mapPgError("update video", err)
	}
	return video, nil
}

// IncrementViews bumps the view counter with a single atomic update.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a video record. Comments referencing it are left in place.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return mapPgError("delete video", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// RecordWatch upserts a watch-history entry, refreshing the watched_at time
// when the user re-watches.
func (r *PostgresVideoRepository) RecordWatch(ctx context.Context, userID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (user_id, video_id, watched_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, video_id)
        DO UPDATE SET watched_at = EXCLUDED.watched_at
    `, userID, videoID, time.Now().UTC())
	if err != nil {
		return mapPgError("record watch", err)
	}

	return nil
}

// WatchHistory lists the user's watched videos, most recent first, each with
// its owner's public projection.
func (r *PostgresVideoRepository) WatchHistory(ctx context.Context, userID string) ([]models.VideoWithOwner, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.video_key,
               v.thumbnail_url, v.thumbnail_key, v.duration_seconds, v.views, v.published,
               v.created_at, v.updated_at, `+publicUserColumns+`
        FROM watch_history h
        JOIN videos v ON v.id = h.video_id
        LEFT JOIN users u ON u.id = v.owner_id
        WHERE h.user_id = $1
        ORDER BY h.watched_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	var results []models.VideoWithOwner
	for rows.Next() {
		var vw models.VideoWithOwner
		if err := rows.Scan(&vw.ID, &vw.OwnerID, &vw.Title, &vw.Description, &vw.VideoURL,
			&vw.VideoKey, &vw.ThumbnailURL, &vw.ThumbnailKey, &vw.Duration, &vw.Views,
			&vw.Published, &vw.CreatedAt, &vw.UpdatedAt,
			&vw.Owner.ID, &vw.Owner.Username, &vw.Owner.FullName, &vw.Owner.AvatarURL, &vw.Owner.CoverURL); err != nil {
			return nil, fmt.Errorf("scan watch history row: %w", err)
		}
		results = append(results, vw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watch history: %w", err)
	}

	return results, nil
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)
