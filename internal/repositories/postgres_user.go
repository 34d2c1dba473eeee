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

const userColumns = "id, username, email, full_name, password_hash, avatar_url, avatar_key, cover_url, cover_key, refresh_token, created_at, updated_at"

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, email, full_name, password_hash, avatar_url, avatar_key, cover_url, cover_key, refresh_token, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `, user.ID, user.Username, user.Email, user.FullName, user.PasswordHash,
		user.AvatarURL, user.AvatarKey, user.CoverURL, user.CoverKey,
		user.RefreshToken, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return mapPgError("insert user", err)
	}

	return nil
}

// FindByID fetches a user by primary key.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, "WHERE id = $1", id)
}

// FindByUsername fetches a user by their unique username.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findOne(ctx, "WHERE username = $1", username)
}

// FindByIdentifier matches the identifier against username or email.
func (r *PostgresUserRepository) FindByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	return r.findOne(ctx, "WHERE username = $1 OR email = $1", identifier)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, where string, args ...any) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, "SELECT "+userColumns+" FROM users "+where, args...)
	return scanUser(row)
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName,
		&user.PasswordHash, &user.AvatarURL, &user.AvatarKey, &user.CoverURL,
		&user.CoverKey, &user.RefreshToken, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

// ExistsByUsernameOrEmail reports whether either unique field is taken.
func (r *PostgresUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	err = conn.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)
    `, username, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}

	return exists, nil
}

// UpdateProfile replaces the mutable account fields and returns the updated row.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, id, fullName, email string) (models.User, error) {
	return r.updateReturning(ctx, `
        UPDATE users
        SET full_name = $2, email = $3, updated_at = $4
        WHERE id = $1
        RETURNING `+userColumns, id, fullName, email, time.Now().UTC())
}

// UpdateAvatar replaces the avatar asset reference.
func (r *PostgresUserRepository) UpdateAvatar(ctx context.Context, id, url, key string) (models.User, error) {
	return r.updateReturning(ctx, `
        UPDATE users
        SET avatar_url = $2, avatar_key = $3, updated_at = $4
        WHERE id = $1
        RETURNING `+userColumns, id, url, key, time.Now().UTC())
}

// UpdateCover replaces the cover asset reference.
func (r *PostgresUserRepository) UpdateCover(ctx context.Context, id, url, key string) (models.User, error) {
	return r.updateReturning(ctx, `
        UPDATE users
        SET cover_url = $2, cover_key = $3, updated_at = $4
        WHERE id = $1
        RETURNING `+userColumns, id, url, key, time.Now().UTC())
}

func (r *PostgresUserRepository) updateReturning(ctx context.Context, query string, args ...any) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, mapPgError("update user", err)
	}
	return user, nil
}

// UpdatePasswordHash replaces the stored credential hash.
func (r *PostgresUserRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return r.exec(ctx, "update password", `
        UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1
    `, id, hash, time.Now().UTC())
}

// UpdateRefreshToken overwrites the single refresh-token slot. An empty token
// clears it, terminating the session server-side.
func (r *PostgresUserRepository) UpdateRefreshToken(ctx context.Context, id, token string) error {
	return r.exec(ctx, "update refresh token", `
        UPDATE users SET refresh_token = $2, updated_at = $3 WHERE id = $1
    `, id, token, time.Now().UTC())
}

func (r *PostgresUserRepository) exec(ctx context.Context, op, query string, args ...any) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(op, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
