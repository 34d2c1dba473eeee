package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cliphub/backend/internal/apperr"
	"github.com/cliphub/backend/internal/models"
	"github.com/cliphub/backend/internal/uploads"
	"github.com/cliphub/backend/internal/views"
)

type fakeVideoStore struct {
	videos map[string]models.Video

	created []models.Video
	deleted []string
}

func (f *fakeVideoStore) Create(_ context.Context, video models.Video) error {
	if f.videos == nil {
		f.videos = map[string]models.Video{}
	}
	f.videos[video.ID] = video
	f.created = append(f.created, video)
	return nil
}

func (f *fakeVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	video, ok := f.videos[id]
	if !ok {
		return models.Video{}, apperr.NotFound("video not found")
	}
	return video, nil
}

func (f *fakeVideoStore) UpdateDetails(_ context.Context, id, title, description string) (models.Video, error) {
	video := f.videos[id]
	video.Title = title
	video.Description = description
	f.videos[id] = video
	return video, nil
}

func (f *fakeVideoStore) UpdateThumbnail(_ context.Context, id, url, key string) (models.Video, error) {
	video := f.videos[id]
	video.ThumbnailURL = url
	video.ThumbnailKey = key
	f.videos[id] = video
	return video, nil
}

func (f *fakeVideoStore) TogglePublished(_ context.Context, id string) (models.Video, error) {
	video := f.videos[id]
	video.Published = !video.Published
	f.videos[id] = video
	return video, nil
}

func (f *fakeVideoStore) Delete(_ context.Context, id string) error {
	delete(f.videos, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeComposer embeds the interface so tests only implement the methods a
// route exercises.
type fakeComposer struct {
	ViewComposer

	listErr  error
	listPage views.VideoPage

	video    models.VideoWithOwner
	videoErr error
}

func (f *fakeComposer) ListVideos(context.Context, views.VideoListRequest) (views.VideoPage, error) {
	if f.listErr != nil {
		return views.VideoPage{}, f.listErr
	}
	return f.listPage, nil
}

func (f *fakeComposer) GetVideo(context.Context, string, string) (models.VideoWithOwner, error) {
	if f.videoErr != nil {
		return models.VideoWithOwner{}, f.videoErr
	}
	return f.video, nil
}

type fakeUploader struct {
	assets []uploads.Asset
}

func (f *fakeUploader) Run(ctx context.Context, ups []uploads.Upload, insert func(ctx context.Context, assets []uploads.Asset) error) ([]uploads.Asset, error) {
	assets := make([]uploads.Asset, len(ups))
	for i, up := range ups {
		assets[i] = uploads.Asset{URL: "https://cdn.example.com/" + up.Key, Key: up.Key}
	}
	f.assets = assets
	if err := insert(ctx, assets); err != nil {
		return nil, err
	}
	return assets, nil
}

type fakeAssetDeleter struct {
	deleted []string
}

func (f *fakeAssetDeleter) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type fixedProber struct {
	seconds float64
}

func (p fixedProber) Duration(context.Context, string) (float64, error) {
	return p.seconds, nil
}

func ownedVideoFixture() models.Video {
	return models.Video{
		ID:           "v1",
		OwnerID:      "owner-1",
		Title:        "Original",
		Description:  "Original description",
		VideoKey:     "videos/owner-1/v1.mp4",
		ThumbnailKey: "thumbnails/owner-1/v1.png",
		Published:    true,
	}
}

func TestVideoList_EmptyIsNotFound(t *testing.T) {
	composer := &fakeComposer{listErr: apperr.NotFound("no videos found")}
	mux := newTestMux(Dependencies{Views: composer})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos?query=nothing", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for empty listing, got %d", rec.Code)
	}
}

func TestVideoGet_AnonymousViewer(t *testing.T) {
	composer := &fakeComposer{video: models.VideoWithOwner{Video: ownedVideoFixture()}}
	gate := fakeAuthenticator{err: apperr.Auth("missing access token")}
	mux := newTestMux(Dependencies{Views: composer, Gate: gate})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/v1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	// Anonymous viewers still read videos; identification is best effort.
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestVideoMutations_RequireOwnership(t *testing.T) {
	store := &fakeVideoStore{videos: map[string]models.Video{"v1": ownedVideoFixture()}}
	gate := fakeAuthenticator{user: models.User{ID: "intruder"}}
	mux := newTestMux(Dependencies{Videos: store, Gate: gate, Assets: &fakeAssetDeleter{}})

	requests := []*http.Request{
		httptest.NewRequest(http.MethodPatch, "/api/v1/videos/v1", strings.NewReader(`{"title":"x","description":"y"}`)),
		httptest.NewRequest(http.MethodDelete, "/api/v1/videos/v1", nil),
		httptest.NewRequest(http.MethodPatch, "/api/v1/videos/v1/toggle-publish", nil),
	}

	for _, req := range requests {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 for non-owner, got %d", req.Method, req.URL.Path, rec.Code)
		}
	}

	if len(store.deleted) != 0 {
		t.Fatalf("expected no deletions by non-owner, got %v", store.deleted)
	}
}

func TestVideoUpdate_ByOwner(t *testing.T) {
	store := &fakeVideoStore{videos: map[string]models.Video{"v1": ownedVideoFixture()}}
	gate := fakeAuthenticator{user: models.User{ID: "owner-1"}}
	mux := newTestMux(Dependencies{Videos: store, Gate: gate})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/videos/v1", strings.NewReader(`{"title":"New Title","description":"New description"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.videos["v1"].Title != "New Title" {
		t.Fatalf("expected title to change, got %q", store.videos["v1"].Title)
	}
}

func TestVideoDelete_RemovesRowThenAssets(t *testing.T) {
	store := &fakeVideoStore{videos: map[string]models.Video{"v1": ownedVideoFixture()}}
	assets := &fakeAssetDeleter{}
	gate := fakeAuthenticator{user: models.User{ID: "owner-1"}}
	mux := newTestMux(Dependencies{Videos: store, Gate: gate, Assets: assets})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/videos/v1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.deleted) != 1 {
		t.Fatalf("expected the row to be deleted, got %v", store.deleted)
	}
	if len(assets.deleted) != 2 {
		t.Fatalf("expected both stored objects to be deleted, got %v", assets.deleted)
	}
}

func TestVideoCreate_MultipartPublish(t *testing.T) {
	store := &fakeVideoStore{}
	uploader := &fakeUploader{}
	gate := fakeAuthenticator{user: models.User{ID: "owner-1"}}
	mux := newTestMux(Dependencies{
		Videos:   store,
		Gate:     gate,
		Uploader: uploader,
		Prober:   fixedProber{seconds: 93.5},
	})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("title", "My Clip")
	_ = writer.WriteField("description", "A description")
	filePart, _ := writer.CreateFormFile("videoFile", "clip.mp4")
	_, _ = filePart.Write([]byte("mp4-bytes"))
	thumbPart, _ := writer.CreateFormFile("thumbnail", "thumb.png")
	_, _ = thumbPart.Write([]byte("png-bytes"))
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if len(store.created) != 1 {
		t.Fatalf("expected one created video, got %d", len(store.created))
	}
	created := store.created[0]
	if created.OwnerID != "owner-1" || created.Title != "My Clip" {
		t.Fatalf("unexpected created video: %+v", created)
	}
	if created.Duration != 93.5 {
		t.Fatalf("expected probed duration 93.5, got %v", created.Duration)
	}
	if !strings.HasPrefix(created.VideoKey, "videos/owner-1/") || !strings.HasPrefix(created.ThumbnailKey, "thumbnails/owner-1/") {
		t.Fatalf("unexpected asset keys: %q %q", created.VideoKey, created.ThumbnailKey)
	}

	var payload struct {
		Video models.Video `json:"video"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Video.ID != created.ID {
		t.Fatalf("expected the stored video to be echoed, got %+v", payload.Video)
	}
}

func TestVideoCreate_MissingFields(t *testing.T) {
	gate := fakeAuthenticator{user: models.User{ID: "owner-1"}}
	mux := newTestMux(Dependencies{Gate: gate, Videos: &fakeVideoStore{}, Uploader: &fakeUploader{}})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("title", "No files")
	_ = writer.WriteField("description", "Missing uploads")
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a video file, got %d", rec.Code)
	}
}
