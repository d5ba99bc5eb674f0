package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"scan-station/internal/domain"
	apperrors "scan-station/pkg/errors"
)

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeServiceError maps service-layer errors onto the AppError taxonomy and
// writes the corresponding status.
func writeServiceError(w http.ResponseWriter, err error) {
	appErr := toAppError(err)
	writeJSON(w, appErr.StatusCode, appErr)
}

func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return apperrors.NewValidationError(validationErr.Error())
	}
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound),
		errors.Is(err, domain.ErrPageNotFound),
		errors.Is(err, domain.ErrJobNotFound),
		errors.Is(err, domain.ErrDeviceNotFound):
		return apperrors.NewNotFoundError(err.Error())
	case errors.Is(err, domain.ErrDeviceBusy):
		return apperrors.NewConflictError(err.Error())
	case errors.Is(err, domain.ErrHardwareUnavailable):
		return apperrors.NewUnavailableError(err.Error(), err)
	case errors.Is(err, domain.ErrInvalidFile):
		return apperrors.NewValidationError(err.Error())
	default:
		return apperrors.NewInternalError(err.Error(), err)
	}
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
