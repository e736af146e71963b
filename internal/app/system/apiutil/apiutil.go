// internal/app/system/apiutil/apiutil.go
//
// Package apiutil holds the JSON request/response helpers shared by the API
// feature handlers.
package apiutil

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	minutesstore "github.com/bubonicfred/5minitz-sub000/internal/app/store/minutes"
	seriesstore "github.com/bubonicfred/5minitz-sub000/internal/app/store/series"
	"github.com/bubonicfred/5minitz-sub000/internal/app/workflow"
	"github.com/bubonicfred/5minitz-sub000/internal/domain/models"
)

// maxBodyBytes caps request bodies; minutes payloads are small.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields and
// oversized bodies.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// WriteError maps domain errors onto HTTP statuses and writes a JSON error
// body. Unrecognized errors become 500s and are logged; expected domain
// errors are the caller's fault and are not.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, workflow.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, workflow.ErrNotModerator),
		errors.Is(err, workflow.ErrNotUploader),
		errors.Is(err, workflow.ErrNotAllowed):
		status = http.StatusForbidden
	case errors.Is(err, seriesstore.ErrNotFound),
		errors.Is(err, minutesstore.ErrNotFound),
		errors.Is(err, models.ErrTopicNotFound),
		errors.Is(err, models.ErrItemNotFound),
		errors.Is(err, models.ErrDetailNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateTopicID),
		errors.Is(err, models.ErrDuplicateItemID):
		status = http.StatusConflict
	case errors.Is(err, workflow.ErrAlreadyFinalized),
		errors.Is(err, workflow.ErrNotFinalized),
		errors.Is(err, workflow.ErrNotLatestMinutes),
		errors.Is(err, workflow.ErrConcurrentModification),
		errors.Is(err, seriesstore.ErrDuplicateName),
		errors.Is(err, minutesstore.ErrDuplicateDate):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError && log != nil {
		log.Error("request failed", zap.Error(err))
	}
	WriteJSON(w, status, errorResponse{Error: err.Error()})
}
