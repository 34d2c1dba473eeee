// Package uploads coordinates two-phase resource creation: binary assets go
// to an external object store, then the database record is written. The two
// systems share no transaction, so partial failure is reconciled with
// best-effort compensating deletes.
package uploads

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cliphub/backend/internal/apperr"
	"github.com/cliphub/backend/internal/logging"
)

// Asset describes one stored object as reported by the asset store.
type Asset struct {
	URL  string
	Key  string
	Size int64
}

// AssetStore is the external object-store boundary. Delete is best-effort:
// the orchestrator logs failures but never retries beyond the store's own
// contract.
type AssetStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (Asset, error)
	Delete(ctx context.Context, key string) error
}

// Upload is one forward step of the creation saga.
type Upload struct {
	// Label names the asset in error messages ("avatar", "thumbnail").
	Label       string
	Key         string
	ContentType string
	Body        io.Reader
	// Optional uploads do not abort the operation on failure; their slot in
	// the asset list stays zero.
	Optional bool
}

// Orchestrator runs upload sagas against a single asset store.
type Orchestrator struct {
	store AssetStore
}

// NewOrchestrator constructs an orchestrator over the provided store.
func NewOrchestrator(store AssetStore) *Orchestrator {
	if store == nil {
		panic("uploads: asset store must not be nil")
	}
	return &Orchestrator{store: store}
}

// Run uploads each asset in order, then invokes insert with the stored
// assets (indexed to match ups). A required upload failure deletes the
// already-stored assets and returns an upload-classified error naming the
// asset. An insert failure deletes every stored asset; unclassified insert
// errors surface as persistence failures. Compensation failures are logged
// and never mask the primary error.
func (o *Orchestrator) Run(ctx context.Context, ups []Upload, insert func(ctx context.Context, assets []Asset) error) ([]Asset, error) {
	logger := logging.FromContext(ctx)

	assets := make([]Asset, len(ups))
	for idx, up := range ups {
		asset, err := o.store.Upload(ctx, up.Key, up.ContentType, up.Body)
		if err != nil {
			if up.Optional {
				logger.Warn("optional asset upload failed", "asset", up.Label, "error", err)
				continue
			}
			o.compensate(ctx, logger, assets[:idx])
			return nil, apperr.Wrap(apperr.KindUpload, fmt.Sprintf("failed to store %s", up.Label), err)
		}
		assets[idx] = asset
	}

	if err := insert(ctx, assets); err != nil {
		o.compensate(ctx, logger, assets)
		if apperr.KindOf(err) != apperr.KindUnknown {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to persist record", err)
	}

	return assets, nil
}

// compensate deletes stored assets in reverse order of completion.
func (o *Orchestrator) compensate(ctx context.Context, logger *slog.Logger, assets []Asset) {
	for idx := len(assets) - 1; idx >= 0; idx-- {
		if assets[idx].Key == "" {
			continue
		}
		if err := o.store.Delete(ctx, assets[idx].Key); err != nil {
			logger.Error("compensating delete failed, asset may be orphaned", "key", assets[idx].Key, "error", err)
		}
	}
}
