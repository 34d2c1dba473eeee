package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/cliphub/backend/internal/apperr"
)

type recordingStore struct {
	uploaded  []string
	deleted   []string
	failKeys  map[string]error
	deleteErr error
}

func (s *recordingStore) Upload(_ context.Context, key, _ string, body io.Reader) (Asset, error) {
	if err, ok := s.failKeys[key]; ok {
		return Asset{}, err
	}
	size, _ := io.Copy(io.Discard, body)
	s.uploaded = append(s.uploaded, key)
	return Asset{URL: "https://cdn.example.com/" + key, Key: key, Size: size}, nil
}

func (s *recordingStore) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return s.deleteErr
}

func step(label, key string) Upload {
	return Upload{Label: label, Key: key, ContentType: "application/octet-stream", Body: strings.NewReader(key + "-bytes")}
}

func TestOrchestratorRun_Success(t *testing.T) {
	store := &recordingStore{}
	orch := NewOrchestrator(store)

	var got []Asset
	assets, err := orch.Run(context.Background(), []Upload{step("video", "v1"), step("thumbnail", "t1")}, func(_ context.Context, assets []Asset) error {
		got = assets
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(assets) != 2 || assets[0].Key != "v1" || assets[1].Key != "t1" {
		t.Fatalf("unexpected assets: %+v", assets)
	}
	if len(got) != 2 {
		t.Fatalf("expected insert to receive both assets, got %d", len(got))
	}
	if len(store.deleted) != 0 {
		t.Fatalf("expected no compensation on success, got deletes %v", store.deleted)
	}
}

func TestOrchestratorRun_RequiredUploadFailureCompensatesPrior(t *testing.T) {
	store := &recordingStore{failKeys: map[string]error{"t1": fmt.Errorf("bucket unavailable")}}
	orch := NewOrchestrator(store)

	inserted := false
	_, err := orch.Run(context.Background(), []Upload{step("video", "v1"), step("thumbnail", "t1")}, func(context.Context, []Asset) error {
		inserted = true
		return nil
	})

	if !errors.Is(err, apperr.ErrUpload) {
		t.Fatalf("expected upload error, got %v", err)
	}
	if !strings.Contains(apperr.Message(err), "thumbnail") {
		t.Fatalf("expected error to name the failed asset, got %q", apperr.Message(err))
	}
	if inserted {
		t.Fatal("insert must not run after a failed required upload")
	}
	if len(store.deleted) != 1 || store.deleted[0] != "v1" {
		t.Fatalf("expected the earlier upload to be compensated, got %v", store.deleted)
	}
}

func TestOrchestratorRun_OptionalUploadFailureSkipsSlot(t *testing.T) {
	store := &recordingStore{failKeys: map[string]error{"c1": fmt.Errorf("bucket unavailable")}}
	orch := NewOrchestrator(store)

	optional := step("cover image", "c1")
	optional.Optional = true

	var got []Asset
	assets, err := orch.Run(context.Background(), []Upload{step("avatar", "a1"), optional}, func(_ context.Context, assets []Asset) error {
		got = assets
		return nil
	})
	if err != nil {
		t.Fatalf("run with failed optional upload: %v", err)
	}

	if assets[0].Key != "a1" {
		t.Fatalf("unexpected first asset: %+v", assets[0])
	}
	if got[1].Key != "" {
		t.Fatalf("expected the optional slot to stay empty, got %+v", got[1])
	}
	if len(store.deleted) != 0 {
		t.Fatalf("expected no compensation, got %v", store.deleted)
	}
}

func TestOrchestratorRun_InsertFailureCompensatesAllInReverse(t *testing.T) {
	store := &recordingStore{}
	orch := NewOrchestrator(store)

	_, err := orch.Run(context.Background(), []Upload{step("video", "v1"), step("thumbnail", "t1")}, func(context.Context, []Asset) error {
		return fmt.Errorf("unique violation")
	})

	if !errors.Is(err, apperr.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if len(store.deleted) != 2 || store.deleted[0] != "t1" || store.deleted[1] != "v1" {
		t.Fatalf("expected reverse-order compensation, got %v", store.deleted)
	}
}

func TestOrchestratorRun_ClassifiedInsertErrorPropagates(t *testing.T) {
	store := &recordingStore{}
	orch := NewOrchestrator(store)

	_, err := orch.Run(context.Background(), []Upload{step("avatar", "a1")}, func(context.Context, []Asset) error {
		return apperr.Conflict("username or email already exists")
	})

	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected the conflict classification to survive, got %v", err)
	}
	if len(store.deleted) != 1 {
		t.Fatalf("expected compensation despite classified error, got %v", store.deleted)
	}
}

func TestOrchestratorRun_CompensationFailureDoesNotMaskError(t *testing.T) {
	store := &recordingStore{deleteErr: fmt.Errorf("delete refused")}
	orch := NewOrchestrator(store)

	_, err := orch.Run(context.Background(), []Upload{step("avatar", "a1")}, func(context.Context, []Asset) error {
		return fmt.Errorf("insert failed")
	})

	if !errors.Is(err, apperr.ErrPersistence) {
		t.Fatalf("expected the insert failure to surface, got %v", err)
	}
}
