package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the store.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, negative amount).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrForbidden is returned when the acting user's role on a trip does not
// permit the operation (viewers cannot edit, only owners can delete).
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidShareLink is returned when a share link cannot be parsed or its
// payload does not decode to well-formed SharedData. It is raised before any
// merge is attempted — a link that fails to decode imports nothing.
var ErrInvalidShareLink = errors.New("invalid share link")
