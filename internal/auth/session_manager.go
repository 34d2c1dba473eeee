package auth

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cliphub/backend/internal/apperr"
	"github.com/cliphub/backend/internal/logging"
	"github.com/cliphub/backend/internal/models"
	"github.com/cliphub/backend/internal/repositories"
	"github.com/cliphub/backend/internal/uploads"
)

// CredentialStore captures the user persistence operations the session
// manager needs.
type CredentialStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	UpdateRefreshToken(ctx context.Context, id, token string) error
}

// Manager owns the identity/session lifecycle: registration, credential
// verification, token pair issuance and single-use refresh rotation.
type Manager struct {
	users    CredentialStore
	tokens   *TokenIssuer
	uploader *uploads.Orchestrator
}

// NewManager constructs a session manager.
func NewManager(users CredentialStore, tokens *TokenIssuer, uploader *uploads.Orchestrator) *Manager {
	if users == nil || tokens == nil {
		panic("auth: users store and token issuer must not be nil")
	}
	return &Manager{users: users, tokens: tokens, uploader: uploader}
}

// RegisterInput carries the registration fields plus the avatar (mandatory)
// and cover (optional) asset uploads.
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
	Avatar   *uploads.Upload
	Cover    *uploads.Upload
}

// Register creates a new identity. Validation failures are reported in field
// order before any network call; the avatar upload and the user insert run as
// one compensated two-phase operation.
func (m *Manager) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	input.Username = strings.ToLower(strings.TrimSpace(input.Username))
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FullName = strings.TrimSpace(input.FullName)

	switch {
	case input.Username == "":
		return models.User{}, apperr.Validation("username is required")
	case input.Email == "":
		return models.User{}, apperr.Validation("email is required")
	case input.FullName == "":
		return models.User{}, apperr.Validation("full name is required")
	case strings.TrimSpace(input.Password) == "":
		return models.User{}, apperr.Validation("password is required")
	case input.Avatar == nil:
		return models.User{}, apperr.Validation("avatar file is required")
	}

	exists, err := m.users.ExistsByUsernameOrEmail(ctx, input.Username, input.Email)
	if err != nil {
		return models.User{}, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return models.User{}, apperr.Conflict("username or email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	id := uuid.NewString()
	ups := []uploads.Upload{withKey(*input.Avatar, "avatars", id)}
	if input.Cover != nil {
		cover := withKey(*input.Cover, "covers", id)
		cover.Optional = true
		ups = append(ups, cover)
	}

	var created models.User
	_, err = m.uploader.Run(ctx, ups, func(ctx context.Context, assets []uploads.Asset) error {
		now := time.Now().UTC()
		user := models.User{
			ID:           id,
			Username:     input.Username,
			Email:        input.Email,
			FullName:     input.FullName,
			PasswordHash: string(hash),
			AvatarURL:    assets[0].URL,
			AvatarKey:    assets[0].Key,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if len(assets) > 1 {
			user.CoverURL = assets[1].URL
			user.CoverKey = assets[1].Key
		}

		if err := m.users.Create(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrConflict) {
				return apperr.Conflict("username or email already exists")
			}
			return err
		}

		readBack, err := m.users.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("read back created user: %w", err)
		}
		created = readBack
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	logging.FromContext(ctx).Info("user registered", "userId", created.ID, "username", created.Username)
	return sanitize(created), nil
}

// Login verifies credentials against the identifier (username or email) and
// mints a fresh token pair, persisting the refresh token on the identity and
// superseding any prior one.
func (m *Manager) Login(ctx context.Context, identifier, password string) (models.User, models.SessionTokens, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" || password == "" {
		return models.User{}, models.SessionTokens{}, apperr.Validation("identifier and password are required")
	}

	user, err := m.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, models.SessionTokens{}, apperr.NotFound("user not found")
		}
		return models.User{}, models.SessionTokens{}, fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, models.SessionTokens{}, apperr.Auth("invalid credentials")
	}

	tokens, err := m.issueAndStore(ctx, user.ID)
	if err != nil {
		return models.User{}, models.SessionTokens{}, err
	}

	return sanitize(user), tokens, nil
}

// Refresh rotates a refresh token. The incoming token must verify
// cryptographically, reference a live identity, and equal the value currently
// stored on that identity; a superseded token fails the last check, so every
// refresh token is single-use.
func (m *Manager) Refresh(ctx context.Context, incoming string) (models.SessionTokens, error) {
	if strings.TrimSpace(incoming) == "" {
		return models.SessionTokens{}, apperr.Auth("refresh token is required")
	}

	userID, err := m.tokens.VerifyRefresh(incoming)
	if err != nil {
		return models.SessionTokens{}, apperr.Wrap(apperr.KindAuth, "invalid refresh token", err)
	}

	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.SessionTokens{}, apperr.Auth("invalid refresh token")
		}
		return models.SessionTokens{}, fmt.Errorf("lookup user: %w", err)
	}

	if user.RefreshToken == "" || user.RefreshToken != incoming {
		return models.SessionTokens{}, apperr.Auth("invalid refresh token")
	}

	return m.issueAndStore(ctx, user.ID)
}

func (m *Manager) issueAndStore(ctx context.Context, userID string) (models.SessionTokens, error) {
	tokens, err := m.tokens.Issue(userID)
	if err != nil {
		return models.SessionTokens{}, err
	}
	if err := m.users.UpdateRefreshToken(ctx, userID, tokens.RefreshToken); err != nil {
		return models.SessionTokens{}, fmt.Errorf("store refresh token: %w", err)
	}
	return tokens, nil
}

// Logout clears the stored refresh token, ending the session server-side.
// Access tokens already issued remain valid until their own expiry.
func (m *Manager) Logout(ctx context.Context, userID string) error {
	if err := m.users.UpdateRefreshToken(ctx, userID, ""); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.Auth("unknown user")
		}
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// ChangePassword replaces the credential hash after verifying the old
// password. The existing refresh token stays valid.
func (m *Manager) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return apperr.Validation("new password is required")
	}

	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.Auth("unknown user")
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return apperr.Auth("old password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return m.users.UpdatePasswordHash(ctx, userID, string(hash))
}

// withKey namespaces the object key under prefix/ownerID, preserving the
// original file extension.
func withKey(up uploads.Upload, prefix, ownerID string) uploads.Upload {
	ext := path.Ext(up.Key)
	up.Key = fmt.Sprintf("%s/%s/%s%s", prefix, ownerID, uuid.NewString(), ext)
	return up
}

// sanitize suppresses credential material in returned identities.
func sanitize(user models.User) models.User {
	user.PasswordHash = ""
	user.RefreshToken = ""
	return user
}
