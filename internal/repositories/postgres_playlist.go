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

const playlistColumns = "id, owner_id, name, description, created_at, updated_at"

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for
// playlists. Membership lives in playlist_videos with a compound primary key,
// so add and remove are single atomic set operations rather than
// read-modify-write of a membership array.
type PostgresPlaylistRepository struct {
	pool db.Pool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool}
}

// Create persists a new playlist.
func (r *PostgresPlaylistRepository) Create(ctx context.Context, playlist models.Playlist) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlists (id, owner_id, name, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, playlist.ID, playlist.OwnerID, playlist.Name, playlist.Description,
		playlist.CreatedAt, playlist.UpdatedAt)
	if err != nil {
		return mapPgError("insert playlist", err)
	}

	return nil
}

// FindByID fetches a playlist by primary key.
func (r *PostgresPlaylistRepository) FindByID(ctx context.Context, id string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, "SELECT "+playlistColumns+" FROM playlists WHERE id = $1", id)
	return scanPlaylist(row)
}

func scanPlaylist(row pgx.Row) (models.Playlist, error) {
	var p models.Playlist
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("scan playlist: %w", err)
	}
	return p, nil
}

// FindWithVideos fetches a playlist and its member videos in insertion order.
func (r *PostgresPlaylistRepository) FindWithVideos(ctx context.Context, id string) (models.PlaylistWithVideos, error) {
	playlist, err := r.FindByID(ctx, id)
	if err != nil {
		return models.PlaylistWithVideos{}, err
	}

	videos, err := r.memberVideos(ctx, id)
	if err != nil {
		return models.PlaylistWithVideos{}, err
	}

	return models.PlaylistWithVideos{Playlist: playlist, Videos: videos}, nil
}

func (r *PostgresPlaylistRepository) memberVideos(ctx context.Context, playlistID string) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.video_key,
               v.thumbnail_url, v.thumbnail_key, v.duration_seconds, v.views, v.published,
               v.created_at, v.updated_at
        FROM playlist_videos pv
        JOIN videos v ON v.id = pv.video_id
        WHERE pv.playlist_id = $1
        ORDER BY pv.added_at
    `, playlistID)
	if err != nil {
		return nil, fmt.Errorf("query playlist videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var v models.Video
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoURL,
			&v.VideoKey, &v.ThumbnailURL, &v.ThumbnailKey, &v.Duration, &v.Views,
			&v.Published, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan playlist video: %w", err)
		}
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist videos: %w", err)
	}

	return videos, nil
}

// ListByOwner returns every playlist the user owns, each with its videos.
func (r *PostgresPlaylistRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.PlaylistWithVideos, error) {
	playlists, err := r.ownedPlaylists(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	results := make([]models.PlaylistWithVideos, 0, len(playlists))
	for _, p := range playlists {
		videos, err := r.memberVideos(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, models.PlaylistWithVideos{Playlist: p, Videos: videos})
	}

	return results, nil
}

func (r *PostgresPlaylistRepository) ownedPlaylists(ctx context.Context, ownerID string) ([]models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+playlistColumns+`
        FROM playlists
        WHERE owner_id = $1
        ORDER BY created_at DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}

	return playlists, nil
}

// Update replaces name and description and returns the updated row.
func (r *PostgresPlaylistRepository) Update(ctx context.Context, id, name, description string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	playlist, err := scanPlaylist(conn.QueryRow(ctx, `
        UPDATE playlists
        SET name = $2, description = $3, updated_at = $4
        WHERE id = $1
        RETURNING `+playlistColumns, id, name, description, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, mapPgError("update playlist", err)
	}

	return playlist, nil
}

// Delete removes a playlist and, via cascade, its membership rows.
func (r *PostgresPlaylistRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// AddVideo inserts a membership row; adding an existing member is a no-op.
func (r *PostgresPlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlist_videos (playlist_id, video_id, added_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (playlist_id, video_id) DO NOTHING
    `, playlistID, videoID, time.Now().UTC())
	if err != nil {
		return mapPgError("add playlist video", err)
	}

	return nil
}

// RemoveVideo deletes a membership row; removing an absent member is a no-op.
func (r *PostgresPlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        DELETE FROM playlist_videos
        WHERE playlist_id = $1 AND video_id = $2
    `, playlistID, videoID)
	if err != nil {
		return fmt.Errorf("remove playlist video: %w", err)
	}

	return nil
}

var _ PlaylistRepository = (*PostgresPlaylistRepository)(nil)
