package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliphub/backend/internal/apperr"
	"github.com/cliphub/backend/internal/auth"
	"github.com/cliphub/backend/internal/models"
	"github.com/cliphub/backend/internal/views"
)

// CommentHandler implements the video comment endpoints.
type CommentHandler struct {
	Gate     Authenticator
	Comments CommentStore
	Videos   VideoStore
	Views    ViewComposer
}

type commentRequest struct {
	Content string `json:"content"`
}

// Add handles POST /api/v1/comments/video/{videoId} requests.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := h.Gate.Authenticate(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	content, err := decodeCommentContent(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	video, err := h.Videos.FindByID(ctx, r.PathValue("videoId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	now := time.Now().UTC()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   video.ID,
		OwnerID:   caller.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Comments.Create(ctx, comment); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]any{"comment": comment})
}

// List handles GET /api/v1/comments/video/{videoId} requests.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	page, err := h.Views.VideoComments(ctx, r.PathValue("videoId"), views.ParsePage(q.Get("page"), q.Get("limit")))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, page)
}

// Update handles PATCH /api/v1/comments/{commentId} requests.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, err := h.ownedComment(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	content, err := decodeCommentContent(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	updated, err := h.Comments.Update(ctx, comment.ID, content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"comment": updated})
}

// Delete handles DELETE /api/v1/comments/{commentId} requests.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, err := h.ownedComment(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "comment deleted"})
}

func (h CommentHandler) ownedComment(r *http.Request) (models.Comment, error) {
	caller, err := h.Gate.Authenticate(r)
	if err != nil {
		return models.Comment{}, err
	}

	comment, err := h.Comments.FindByID(r.Context(), r.PathValue("commentId"))
	if err != nil {
		return models.Comment{}, err
	}

	if err := auth.RequireOwnership(comment.OwnerID, caller.ID); err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

func decodeCommentContent(r *http.Request) (string, error) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", apperr.Validation("invalid request body")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return "", apperr.Validation("comment content is required")
	}
	return content, nil
}
