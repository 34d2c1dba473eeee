package repositories

import (
	"context"

	"github.com/cliphub/backend/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	// FindByIdentifier matches the identifier against username or email.
	FindByIdentifier(ctx context.Context, identifier string) (models.User, error)
	// ExistsByUsernameOrEmail reports whether either unique field is taken.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdateProfile(ctx context.Context, id, fullName, email string) (models.User, error)
	UpdateAvatar(ctx context.Context, id, url, key string) (models.User, error)
	UpdateCover(ctx context.Context, id, url, key string) (models.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	// UpdateRefreshToken overwrites the single refresh-token slot. An empty
	// token clears it.
	UpdateRefreshToken(ctx context.Context, id, token string) error
}
