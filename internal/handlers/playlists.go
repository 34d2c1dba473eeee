package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliphub/backend/internal/apperr"
	"github.com/cliphub/backend/internal/auth"
	"github.com/cliphub/backend/internal/models"
)

// PlaylistHandler implements the playlist endpoints.
type PlaylistHandler struct {
	Gate      Authenticator
	Playlists PlaylistStore
	Videos    VideoStore
	Views     ViewComposer
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /api/v1/playlists requests.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := h.Gate.Authenticate(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	req, err := decodePlaylistRequest(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	now := time.Now().UTC()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     caller.ID,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]any{"playlist": playlist})
}

// ByUser handles GET /api/v1/playlists/user/{userId} requests.
func (h PlaylistHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlists, err := h.Views.UserPlaylists(ctx, r.PathValue("userId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"playlists": playlists})
}

// Get handles GET /api/v1/playlists/{playlistId} requests.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.Views.PlaylistDetail(ctx, r.PathValue("playlistId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"playlist": playlist})
}

// Update handles PATCH /api/v1/playlists/{playlistId} requests.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.ownedPlaylist(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	req, err := decodePlaylistRequest(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	updated, err := h.Playlists.Update(ctx, playlist.ID, req.Name, req.Description)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"playlist": updated})
}

// Delete handles DELETE /api/v1/playlists/{playlistId} requests.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.ownedPlaylist(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "playlist deleted"})
}

// AddVideo handles PATCH /api/v1/playlists/{playlistId}/videos/{videoId}
// requests. Adding a video that is already present is a no-op.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	h.mutateMembership(w, r, h.Playlists.AddVideo)
}

// RemoveVideo handles DELETE /api/v1/playlists/{playlistId}/videos/{videoId}
// requests. Removing an absent video succeeds silently.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	h.mutateMembership(w, r, h.Playlists.RemoveVideo)
}

func (h PlaylistHandler) mutateMembership(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, playlistID, videoID string) error) {
	ctx := r.Context()

	playlist, err := h.ownedPlaylist(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	video, err := h.Videos.FindByID(ctx, r.PathValue("videoId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := op(ctx, playlist.ID, video.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	detail, err := h.Views.PlaylistDetail(ctx, playlist.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"playlist": detail})
}

func (h PlaylistHandler) ownedPlaylist(r *http.Request) (models.Playlist, error) {
	caller, err := h.Gate.Authenticate(r)
	if err != nil {
		return models.Playlist{}, err
	}

	playlist, err := h.Playlists.FindByID(r.Context(), r.PathValue("playlistId"))
	if err != nil {
		return models.Playlist{}, err
	}

	if err := auth.RequireOwnership(playlist.OwnerID, caller.ID); err != nil {
		return models.Playlist{}, err
	}
	return playlist, nil
}

func decodePlaylistRequest(r *http.Request) (playlistRequest, error) {
	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return playlistRequest{}, apperr.Validation("invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" {
		return playlistRequest{}, apperr.Validation("playlist name is required")
	}
	return req, nil
}
