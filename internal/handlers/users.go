package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cliphub/backend/internal/apperr"
	"github.com/cliphub/backend/internal/auth"
	"github.com/cliphub/backend/internal/logging"
	"github.com/cliphub/backend/internal/uploads"
)

// UserHandler implements the account, session and channel endpoints.
type UserHandler struct {
	Sessions   SessionManager
	Gate       Authenticator
	Users      UserStore
	Views      ViewComposer
	Uploader   Uploader
	Assets     AssetDeleter
	Limiter    RateLimiter
	Production bool
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Register handles POST /api/v1/users/register requests. The payload is a
// multipart form carrying the profile fields plus an avatar file and an
// optional cover image.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowRequest(h.Limiter, r, "register") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		respondError(ctx, w, apperr.Validation("expected multipart form data"))
		return
	}

	avatar, closeAvatar, err := formUpload(r, "avatar", "avatar")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	cover, closeCover, err := formUpload(r, "coverImage", "cover image")
	if err != nil {
		closeAll([]func() error{closeAvatar})
		respondError(ctx, w, err)
		return
	}
	defer closeAll([]func() error{closeAvatar, closeCover})

	user, err := h.Sessions.Register(ctx, auth.RegisterInput{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		FullName: r.FormValue("fullName"),
		Password: r.FormValue("password"),
		Avatar:   avatar,
		Cover:    cover,
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	logging.FromContext(ctx).Info("user registered", "userId", user.ID, "username", user.Username)
	respondJSON(ctx, w, http.StatusCreated, map[string]any{"user": user})
}

// Login handles POST /api/v1/users/login requests. The caller may identify
// themselves by username or email; on success both token cookies are set and
// the tokens are echoed in the body for non-browser clients.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowRequest(h.Limiter, r, "login") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apperr.Validation("invalid request body"))
		return
	}

	identifier := strings.TrimSpace(req.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}

	user, tokens, err := h.Sessions.Login(ctx, identifier, req.Password)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	setSessionCookies(w, tokens, h.Production)
	respondJSON(ctx, w, http.StatusOK, map[string]any{"user": user, "tokens": tokens})
}

// Refresh handles POST /api/v1/users/refresh-token requests. The refresh
// token is read from the cookie, falling back to the request body. A
// successful rotation replaces both cookies.
func (h UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := ""
	if cookie, err := r.Cookie(auth.RefreshTokenCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		respondError(ctx, w, apperr.Auth("missing refresh token"))
		return
	}

	tokens, err := h.Sessions.Refresh(ctx, token)
	if err != nil {
		clearSessionCookies(w, h.Production)
		respondError(ctx, w, err)
		return
	}

	setSessionCookies(w, tokens, h.Production)
	respondJSON(ctx, w, http.StatusOK, map[string]any{"tokens": tokens})
}

// Logout handles POST /api/v1/users/logout requests. It invalidates the
// stored refresh token and clears both cookies.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.Gate.Authenticate(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Sessions.Logout(ctx, user.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	clearSessionCookies(w, h.Production)
	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "logged out"})
}

// ChangePassword handles POST /api/v1/users/change-password requests.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.Gate.Authenticate(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apperr.Validation("invalid request body"))
		return
	}

	if err := h.Sessions.ChangePassword(ctx, user.ID, req.OldPassword, req.NewPassword); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "password changed"})
}

// CurrentUser handles GET /api/v1/users/current requests.
func (h UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.Gate.Authenticate(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"user": user})
}

// UpdateAccount handles PATCH /api/v1/users/update requests.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.Gate.Authenticate(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apperr.Validation("invalid request body"))
		return
	}

	fullName := strings.TrimSpace(req.FullName)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if fullName == "" || email == "" {
		respondError(ctx, w, apperr.Validation("fullName and email are required"))
		return
	}

	updated, err := h.Users.UpdateProfile(ctx, user.ID, fullName, email)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"user": updated})
}

// UpdateAvatar handles PATCH /api/v1/users/avatar requests.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar", "avatars")
}

// UpdateCover handles PATCH /api/v1/users/cover requests.
func (h UserHandler) UpdateCover(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage", "covers")
}

// replaceImage uploads the new image through the saga so the profile row is
// only updated once the object is stored, then removes the superseded object
// best effort.
func (h UserHandler) replaceImage(w http.ResponseWriter, r *http.Request, field, prefix string) {
	ctx := r.Context()

	user, err := h.Gate.Authenticate(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		respondError(ctx, w, apperr.Validation("expected multipart form data"))
		return
	}

	up, closeFile, err := formUpload(r, field, field)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if up == nil {
		respondError(ctx, w, apperr.Validation(field+" file is required"))
		return
	}
	defer closeAll([]func() error{closeFile})

	up.Key = assetKey(prefix, user.ID, up.Key)

	oldKey := user.AvatarKey
	if prefix == "covers" {
		oldKey = user.CoverKey
	}

	updated := user
	_, err = h.Uploader.Run(ctx, []uploads.Upload{*up}, func(ctx context.Context, assets []uploads.Asset) error {
		var updateErr error
		if prefix == "covers" {
			updated, updateErr = h.Users.UpdateCover(ctx, user.ID, assets[0].URL, assets[0].Key)
		} else {
			updated, updateErr = h.Users.UpdateAvatar(ctx, user.ID, assets[0].URL, assets[0].Key)
		}
		return updateErr
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if oldKey != "" {
		if err := h.Assets.Delete(ctx, oldKey); err != nil {
			logging.FromContext(ctx).Warn("superseded image not deleted", "key", oldKey, "error", err)
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"user": updated})
}

// ChannelProfile handles GET /api/v1/users/channel/{username} requests. The
// viewer is identified best effort so IsSubscribed can be personalized.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := strings.TrimSpace(strings.ToLower(r.PathValue("username")))
	if username == "" {
		respondError(ctx, w, apperr.Validation("username is required"))
		return
	}

	viewerID := ""
	if viewer, ok := h.Gate.Identify(r); ok {
		viewerID = viewer.ID
	}

	profile, err := h.Views.ChannelProfile(ctx, username, viewerID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"channel": profile})
}

// WatchHistory handles GET /api/v1/users/history requests.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.Gate.Authenticate(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	history, err := h.Views.WatchHistory(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"videos": history})
}
