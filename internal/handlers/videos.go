package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliphub/backend/internal/apperr"
	"github.com/cliphub/backend/internal/auth"
	"github.com/cliphub/backend/internal/logging"
	"github.com/cliphub/backend/internal/media"
	"github.com/cliphub/backend/internal/models"
	"github.com/cliphub/backend/internal/uploads"
	"github.com/cliphub/backend/internal/views"
)

// VideoHandler implements the video publishing and listing endpoints.
type VideoHandler struct {
	Gate     Authenticator
	Videos   VideoStore
	Views    ViewComposer
	Uploader Uploader
	Assets   AssetDeleter
	Prober   media.DurationProber
}

type updateVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Create handles POST /api/v1/videos requests. The payload is a multipart
// form with title, description, a video file and a thumbnail. The video is
// spooled to disk first so its duration can be probed before upload.
func (h VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		respondError(ctx, w, apperr.Validation("title and description are required"))
		return
	}

	videoUp, closeVideo, err := formUpload(r, "videoFile", "video")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if videoUp == nil {
		respondError(ctx, w, apperr.Validation("video file is required"))
		return
	}
	thumbUp, closeThumb, err := formUpload(r, "thumbnail", "thumbnail")
	if err != nil {
		closeAll([]func() error{closeVideo})
		respondError(ctx, w, err)
		return
	}
	if thumbUp == nil {
		closeAll([]func() error{closeVideo})
		respondError(ctx, w, apperr.Validation("thumbnail file is required"))
		return
	}
	defer closeAll([]func() error{closeVideo, closeThumb})

	spooled, cleanup, err := spoolToDisk(videoUp.Body)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindUpload, "failed to stage video file", err))
		return
	}
	defer cleanup()

	duration := 0.0
	if h.Prober != nil {
		duration, err = h.Prober.Duration(ctx, spooled.Name())
		if err != nil {
			logging.FromContext(ctx).Warn("duration probe failed", "error", err)
			duration = 0
		}
		if _, err := spooled.Seek(0, io.SeekStart); err != nil {
			respondError(ctx, w, apperr.Wrap(apperr.KindUpload, "failed to stage video file", err))
			return
		}
	}

	id := uuid.NewString()
	videoUp.Key = assetKey("videos", user.ID, videoUp.Key)
	videoUp.Body = spooled
	thumbUp.Key = assetKey("thumbnails", user.ID, thumbUp.Key)

	var created models.Video
	_, err = h.Uploader.Run(ctx, []uploads.Upload{*videoUp, *thumbUp}, func(ctx context.Context, assets []uploads.Asset) error {
		now := time.Now().UTC()
		video := models.Video{
			ID:           id,
			OwnerID:      user.ID,
			Title:        title,
			Description:  description,
			VideoURL:     assets[0].URL,
			VideoKey:     assets[0].Key,
			ThumbnailURL: assets[1].URL,
			ThumbnailKey: assets[1].Key,
			Duration:     duration,
			Published:    true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := h.Videos.Create(ctx, video); err != nil {
			return err
		}
		readBack, err := h.Videos.FindByID(ctx, id)
		if err != nil {
			return err
		}
		created = readBack
		return nil
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	logging.FromContext(ctx).Info("video published", "videoId", created.ID, "ownerId", user.ID)
	respondJSON(ctx, w, http.StatusCreated, map[string]any{"video": created})
}

// List handles GET /api/v1/videos requests.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	page, err := h.Views.ListVideos(ctx, views.VideoListRequest{
		Query:         strings.TrimSpace(q.Get("query")),
		OwnerID:       strings.TrimSpace(q.Get("userId")),
		SortBy:        strings.TrimSpace(q.Get("sortBy")),
		SortDirection: strings.TrimSpace(q.Get("sortType")),
		Page:          views.ParsePage(q.Get("page"), q.Get("limit")),
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, page)
}

// Get handles GET /api/v1/videos/{videoId} requests. An identified viewer
// also gets the fetch recorded in their watch history.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID := r.PathValue("videoId")
	viewerID := ""
	if viewer, ok := h.Gate.Identify(r); ok {
		viewerID = viewer.ID
	}

	video, err := h.Views.GetVideo(ctx, videoID, viewerID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"video": video})
}

// Update handles PATCH /api/v1/videos/{videoId} requests.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, caller, err := h.ownedVideo(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req updateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apperr.Validation("invalid request body"))
		return
	}

	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		respondError(ctx, w, apperr.Validation("title and description are required"))
		return
	}

	updated, err := h.Videos.UpdateDetails(ctx, video.ID, title, description)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	logging.FromContext(ctx).Info("video updated", "videoId", video.ID, "ownerId", caller.ID)
	respondJSON(ctx, w, http.StatusOK, map[string]any{"video": updated})
}

// Delete handles DELETE /api/v1/videos/{videoId} requests. The row is removed
// first; orphaned objects are preferable to dangling rows, so asset deletion
// failures are only logged.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, caller, err := h.ownedVideo(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	for _, key := range []string{video.VideoKey, video.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := h.Assets.Delete(ctx, key); err != nil {
			logging.FromContext(ctx).Warn("video asset not deleted", "key", key, "error", err)
		}
	}

	logging.FromContext(ctx).Info("video deleted", "videoId", video.ID, "ownerId", caller.ID)
	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "video deleted"})
}

// UpdateThumbnail handles PATCH /api/v1/videos/{videoId}/thumbnail requests.
// The new thumbnail goes through the saga so the row only changes once the
// object is stored; the superseded object is then removed best effort.
func (h VideoHandler) UpdateThumbnail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, caller, err := h.ownedVideo(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		respondError(ctx, w, apperr.Validation("expected multipart form data"))
		return
	}

	up, closeFile, err := formUpload(r, "thumbnail", "thumbnail")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if up == nil {
		respondError(ctx, w, apperr.Validation("thumbnail file is required"))
		return
	}
	defer closeAll([]func() error{closeFile})

	up.Key = assetKey("thumbnails", caller.ID, up.Key)

	updated := video
	_, err = h.Uploader.Run(ctx, []uploads.Upload{*up}, func(ctx context.Context, assets []uploads.Asset) error {
		var updateErr error
		updated, updateErr = h.Videos.UpdateThumbnail(ctx, video.ID, assets[0].URL, assets[0].Key)
		return updateErr
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if video.ThumbnailKey != "" {
		if err := h.Assets.Delete(ctx, video.ThumbnailKey); err != nil {
			logging.FromContext(ctx).Warn("superseded thumbnail not deleted", "key", video.ThumbnailKey, "error", err)
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"video": updated})
}

// TogglePublish handles PATCH /api/v1/videos/{videoId}/toggle-publish requests.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, _, err := h.ownedVideo(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	updated, err := h.Videos.TogglePublished(ctx, video.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"video": updated})
}

// ownedVideo authenticates the caller and loads the addressed video, failing
// unless the caller owns it.
func (h VideoHandler) ownedVideo(r *http.Request) (models.Video, models.User, error) {
	caller, err := h.Gate.Authenticate(r)
	if err != nil {
		return models.Video{}, models.User{}, err
	}

	video, err := h.Videos.FindByID(r.Context(), r.PathValue("videoId"))
	if err != nil {
		return models.Video{}, models.User{}, err
	}

	if err := auth.RequireOwnership(video.OwnerID, caller.ID); err != nil {
		return models.Video{}, models.User{}, err
	}
	return video, caller, nil
}

// spoolToDisk copies an upload to a temp file so it can be probed and then
// re-read for storage. The cleanup closes and removes the file.
func spoolToDisk(body io.Reader) (*os.File, func(), error) {
	f, err := os.CreateTemp("", "cliphub-upload-*")
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}
	if _, err := io.Copy(f, body); err != nil {
		cleanup()
		return nil, nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, nil, err
	}
	return f, cleanup, nil
}
