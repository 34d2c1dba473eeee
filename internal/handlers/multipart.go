package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/cliphub/backend/internal/apperr"
	"github.com/cliphub/backend/internal/uploads"
)

// maxMultipartMemory bounds the in-memory portion of a multipart parse;
// anything larger spills to a temp file managed by net/http.
const maxMultipartMemory = 32 << 20

// formUpload pulls a file field out of an already-parsed multipart form.
// A missing field returns a nil upload with no error so callers can decide
// whether the field was required. The returned closer must be called once
// the upload body has been consumed.
func formUpload(r *http.Request, field, label string) (*uploads.Upload, func() error, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, apperr.Validation(fmt.Sprintf("invalid %s upload", label))
	}
	up := &uploads.Upload{
		Label:       label,
		Key:         header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
	return up, file.Close, nil
}

// assetKey derives a collision-free object key namespaced by owner. Only the
// extension of the client-supplied filename survives.
func assetKey(prefix, ownerID, filename string) string {
	return fmt.Sprintf("%s/%s/%s%s", prefix, ownerID, uuid.NewString(), strings.ToLower(filepath.Ext(filename)))
}

func closeAll(closers []func() error) {
	for _, c := range closers {
		if c != nil {
			_ = c()
		}
	}
}
