package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cliphub/backend/internal/apperr"
	"github.com/cliphub/backend/internal/models"
)

type fakeCommentStore struct {
	comments map[string]models.Comment

	created []models.Comment
	deleted []string
}

func (f *fakeCommentStore) Create(_ context.Context, comment models.Comment) error {
	if f.comments == nil {
		f.comments = map[string]models.Comment{}
	}
	f.comments[comment.ID] = comment
	f.created = append(f.created, comment)
	return nil
}

func (f *fakeCommentStore) FindByID(_ context.Context, id string) (models.Comment, error) {
	comment, ok := f.comments[id]
	if !ok {
		return models.Comment{}, apperr.NotFound("comment not found")
	}
	return comment, nil
}

func (f *fakeCommentStore) Update(_ context.Context, id, content string) (models.Comment, error) {
	comment := f.comments[id]
	comment.Content = content
	f.comments[id] = comment
	return comment, nil
}

func (f *fakeCommentStore) Delete(_ context.Context, id string) error {
	delete(f.comments, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func TestCommentAdd(t *testing.T) {
	videos := &fakeVideoStore{videos: map[string]models.Video{"v1": {ID: "v1"}}}
	comments := &fakeCommentStore{}
	gate := fakeAuthenticator{user: models.User{ID: "caller-1"}}
	mux := newTestMux(Dependencies{Gate: gate, Videos: videos, Comments: comments})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/video/v1", strings.NewReader(`{"content":"  nice video  "}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(comments.created) != 1 {
		t.Fatalf("expected one created comment, got %d", len(comments.created))
	}
	got := comments.created[0]
	if got.VideoID != "v1" || got.OwnerID != "caller-1" {
		t.Fatalf("unexpected comment attribution: %+v", got)
	}
	if got.Content != "nice video" {
		t.Fatalf("expected trimmed content, got %q", got.Content)
	}
}

func TestCommentAdd_UnknownVideo(t *testing.T) {
	comments := &fakeCommentStore{}
	gate := fakeAuthenticator{user: models.User{ID: "caller-1"}}
	mux := newTestMux(Dependencies{Gate: gate, Videos: &fakeVideoStore{}, Comments: comments})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/video/missing", strings.NewReader(`{"content":"hello"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if len(comments.created) != 0 {
		t.Fatal("expected no comment for a missing video")
	}
}

func TestCommentAdd_BlankContent(t *testing.T) {
	gate := fakeAuthenticator{user: models.User{ID: "caller-1"}}
	mux := newTestMux(Dependencies{Gate: gate, Videos: &fakeVideoStore{}, Comments: &fakeCommentStore{}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/video/v1", strings.NewReader(`{"content":"   "}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCommentUpdateAndDelete_OwnerOnly(t *testing.T) {
	comments := &fakeCommentStore{comments: map[string]models.Comment{
		"c1": {ID: "c1", OwnerID: "owner-1", Content: "original"},
	}}
	intruder := fakeAuthenticator{user: models.User{ID: "intruder"}}
	mux := newTestMux(Dependencies{Gate: intruder, Comments: comments})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/comments/c1", strings.NewReader(`{"content":"hijacked"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-owner update, got %d", rec.Code)
	}
	if comments.comments["c1"].Content != "original" {
		t.Fatal("non-owner update must not change the comment")
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/comments/c1", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-owner delete, got %d", rec.Code)
	}
	if len(comments.deleted) != 0 {
		t.Fatal("non-owner delete must not remove the comment")
	}

	owner := fakeAuthenticator{user: models.User{ID: "owner-1"}}
	mux = newTestMux(Dependencies{Gate: owner, Comments: comments})

	req = httptest.NewRequest(http.MethodPatch, "/api/v1/comments/c1", strings.NewReader(`{"content":"edited"}`))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner update, got %d: %s", rec.Code, rec.Body.String())
	}
	if comments.comments["c1"].Content != "edited" {
		t.Fatalf("expected edited content, got %q", comments.comments["c1"].Content)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/comments/c1", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner delete, got %d", rec.Code)
	}
	if len(comments.deleted) != 1 || comments.deleted[0] != "c1" {
		t.Fatalf("unexpected deletions: %v", comments.deleted)
	}
}
