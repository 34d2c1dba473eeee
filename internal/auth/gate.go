package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/cliphub/backend/internal/apperr"
	"github.com/cliphub/backend/internal/models"
	"github.com/cliphub/backend/internal/repositories"
)

// Cookie names shared between the gate and the auth handlers.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// UserFinder resolves a verified token subject to a live identity.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// Gate verifies inbound access tokens and resolves them to identities. It is
// the single entry point for every handler that requires an authenticated
// caller; it has no side effects beyond identity resolution.
type Gate struct {
	tokens *TokenIssuer
	users  UserFinder
}

// NewGate constructs an authorization gate.
func NewGate(tokens *TokenIssuer, users UserFinder) *Gate {
	if tokens == nil || users == nil {
		panic("auth: token issuer and user finder must not be nil")
	}
	return &Gate{tokens: tokens, users: users}
}

// Authenticate extracts the access token (cookie first, then bearer header),
// verifies it and resolves the embedded identity.
func (g *Gate) Authenticate(r *http.Request) (models.User, error) {
	token := extractToken(r)
	if token == "" {
		return models.User{}, apperr.Auth("missing access token")
	}

	userID, err := g.tokens.VerifyAccess(token)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.KindAuth, "invalid access token", err)
	}

	user, err := g.users.FindByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, apperr.Auth("invalid access token")
		}
		return models.User{}, err
	}

	return user, nil
}

// Identify is the best-effort variant for endpoints that only personalize
// their response. It never fails; an unauthenticated caller gets ok=false.
func (g *Gate) Identify(r *http.Request) (models.User, bool) {
	user, err := g.Authenticate(r)
	if err != nil {
		return models.User{}, false
	}
	return user, true
}

// extractToken prefers the session cookie over the Authorization header when
// both are present.
func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(rest)
	}
	return ""
}

// RequireOwnership is the single ownership predicate applied across every
// mutate/delete path. Resource types must not re-derive this check.
func RequireOwnership(ownerID, callerID string) error {
	if ownerID == "" || callerID == "" || ownerID != callerID {
		return apperr.Auth("only the owner may perform this action")
	}
	return nil
}
