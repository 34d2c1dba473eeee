package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cliphub/backend/internal/apperr"
	"github.com/cliphub/backend/internal/logging"
	"github.com/cliphub/backend/internal/repositories"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// classify promotes bare repository sentinels into the taxonomy so handlers
// can hand errors over without wrapping each lookup.
func classify(err error) error {
	if apperr.KindOf(err) != apperr.KindUnknown {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apperr.NotFound("resource not found")
	case errors.Is(err, repositories.ErrConflict):
		return apperr.Conflict("resource already exists")
	}
	return err
}

// respondError maps the error taxonomy onto HTTP statuses. Unclassified
// errors surface as opaque 500s; internal detail stays in the logs.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	err = classify(err)

	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindAuth:
		status = http.StatusUnauthorized
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindUpload, apperr.KindPersistence:
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		logging.FromContext(ctx).Error("request error", "error", err)
	}

	respondJSON(ctx, w, status, map[string]string{"error": apperr.Message(err)})
}
