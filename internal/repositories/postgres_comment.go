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

const commentColumns = "id, video_id, owner_id, content, created_at, updated_at"

// PostgresCommentRepository provides PostgreSQL-backed persistence for comments.
type PostgresCommentRepository struct {
	pool db.Pool
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

// Create persists a new comment.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment models.Comment) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO comments (id, video_id, owner_id, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, comment.ID, comment.VideoID, comment.OwnerID, comment.Content,
		comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		return mapPgError("insert comment", err)
	}

	return nil
}

// FindByID fetches a comment by primary key.
func (r *PostgresCommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Comment{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, "SELECT "+commentColumns+" FROM comments WHERE id = $1", id)
	return scanComment(row)
}

func scanComment(row pgx.Row) (models.Comment, error) {
	var c models.Comment
	if err := row.Scan(&c.ID, &c.VideoID, &c.OwnerID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("scan comment: %w", err)
	}
	return c, nil
}

// ListForVideo returns one page of a video's comments, newest first, each
// joined with its author's public projection, plus the total count.
func (r *PostgresCommentRepository) ListForVideo(ctx context.Context, videoID string, offset, limit int) ([]models.CommentWithOwner, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT c.id, c.video_id, c.owner_id, c.content, c.created_at, c.updated_at,
               `+publicUserColumns+`,
               count(*) OVER () AS total
        FROM comments c
        LEFT JOIN users u ON u.id = c.owner_id
        WHERE c.video_id = $1
        ORDER BY c.created_at DESC
        OFFSET $2 LIMIT $3
    `, videoID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var (
		comments []models.CommentWithOwner
		total    int64
	)
	for rows.Next() {
		var cw models.CommentWithOwner
		if err := rows.Scan(&cw.ID, &cw.VideoID, &cw.OwnerID, &cw.Content,
			&cw.CreatedAt, &cw.UpdatedAt,
			&cw.Owner.ID, &cw.Owner.Username, &cw.Owner.FullName,
			&cw.Owner.AvatarURL, &cw.Owner.CoverURL,
			&total); err != nil {
			return nil, 0, fmt.Errorf("scan comment row: %w", err)
		}
		comments = append(comments, cw)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate comments: %w", err)
	}

	// An offset past the last row yields no rows, which would collapse the
	// windowed total to zero; recount so out-of-range pages report the truth.
	if len(comments) == 0 {
		row := conn.QueryRow(ctx, "SELECT count(*) FROM comments WHERE video_id = $1", videoID)
		if err := row.Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count comments: %w", err)
		}
	}

	return comments, total, nil
}

// Update replaces the comment content and returns the updated row.
func (r *PostgresCommentRepository) Update(ctx context.Context, id, content string) (models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Comment{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	comment, err := scanComment(conn.QueryRow(ctx, `
        UPDATE comments
        SET content = $2, updated_at = $3
        WHERE id = $1
        RETURNING `+commentColumns, id, content, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, mapPgError("update comment", err)
	}

	return comment, nil
}

// Delete removes a comment.
func (r *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var _ CommentRepository = (*PostgresCommentRepository)(nil)
