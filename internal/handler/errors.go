package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jhartung/tripvault/internal/domain"
)

// ErrorDetail is the machine-readable body of an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps every error the API returns:
// {"error": {"code": "...", "message": "..."}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// writeJSON encodes data as the response body with the given status.
// An encoding failure at this point means the response is already partially
// written; log it and move on.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("response encoding failed", "error", err)
	}
}

// writeError maps a service error onto the HTTP status and error code the
// API contract promises:
//
//	domain.ErrNotFound         → 404 not_found
//	domain.ErrForbidden        → 403 forbidden
//	domain.ErrInvalidShareLink → 422 invalid_share_link
//	domain.ErrValidation       → 422 validation_error
//
// Anything else is an unexpected server failure: logged in full, returned
// as an opaque 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: ErrorDetail{Code: "not_found", Message: unwrapMessage(err)}})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: ErrorDetail{Code: "forbidden", Message: unwrapMessage(err)}})
	case errors.Is(err, domain.ErrInvalidShareLink):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: ErrorDetail{Code: "invalid_share_link", Message: unwrapMessage(err)}})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: unwrapMessage(err)}})
	default:
		slog.Error("handler error", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorDetail{Code: "internal_error", Message: "internal server error"}})
	}
}

// badRequest rejects a request before it reaches the service layer
// (missing or malformed body).
func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorDetail{Code: "bad_request", Message: message}})
}

// unwrapMessage extracts the human-readable tail from a wrapped service
// error, e.g. "service.TripService.Create: validation error: title is
// required" → "title is required". Falls back to the full message when no
// known sentinel text is present.
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, marker := range []string{
		domain.ErrValidation.Error() + ": ",
		domain.ErrForbidden.Error() + ": ",
		domain.ErrNotFound.Error() + ": ",
		domain.ErrInvalidShareLink.Error() + ": ",
	} {
		if i := strings.LastIndex(msg, marker); i >= 0 {
			tail := msg[i+len(marker):]
			if tail != "" {
				return tail
			}
		}
	}
	// No suffix after the sentinel; strip the call-site prefixes instead.
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

// decodeBody decodes the request body into dst, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
