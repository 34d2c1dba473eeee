package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// mapPgError translates PostgreSQL constraint violations into the package
// sentinels so callers never depend on pg error codes directly.
func mapPgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrConflict
		case "23503":
			return ErrNotFound
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// publicUserColumns is the allow-listed owner projection joined into
// denormalized views. Password hashes and refresh tokens never appear here.
const publicUserColumns = "u.id, u.username, u.full_name, u.avatar_url, u.cover_url"
