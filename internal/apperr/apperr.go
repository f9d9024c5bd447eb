// Package apperr defines the typed error taxonomy shared by every layer.
// Components fail fast with one of these errors; the HTTP boundary maps them
// to a status and a sanitized JSON body.
package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error carries a machine-readable code and the HTTP status the boundary
// maps it to. The wrapped cause, if any, is for logs only and is never
// serialized to the client.
type Error struct {
	Code    string
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Unauthenticated covers missing, malformed, expired and unverifiable
// tokens as well as principals that vanished between issuance and use.
func Unauthenticated(message string) *Error {
	return &Error{Code: "unauthenticated", Status: http.StatusUnauthorized, Message: message}
}

// Forbidden signals a role mismatch on an already-authenticated request.
func Forbidden(message string) *Error {
	return &Error{Code: "forbidden", Status: http.StatusForbidden, Message: message}
}

// Validation signals malformed or rejected request content.
func Validation(message string) *Error {
	return &Error{Code: "validation_failed", Status: http.StatusBadRequest, Message: message}
}

// NotFound signals a referenced entity that does not exist.
func NotFound(message string) *Error {
	return &Error{Code: "not_found", Status: http.StatusNotFound, Message: message}
}

// PayloadTooLarge signals an upload over the configured size ceiling.
func PayloadTooLarge(message string) *Error {
	return &Error{Code: "payload_too_large", Status: http.StatusRequestEntityTooLarge, Message: message}
}

// UnsupportedMedia signals an upload outside the image allow-list.
func UnsupportedMedia(message string) *Error {
	return &Error{Code: "unsupported_media_type", Status: http.StatusUnsupportedMediaType, Message: message}
}

// Internal wraps an unexpected failure. The cause is kept for logging; the
// client only ever sees the generic message.
func Internal(cause error) *Error {
	return &Error{Code: "internal_error", Status: http.StatusInternalServerError, Message: "internal server error", cause: cause}
}

// From normalizes any error into an *Error. Unknown errors become Internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// Write maps err onto the HTTP response as {"code": ..., "message": ...}.
func Write(w http.ResponseWriter, err error) {
	e := From(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	json.NewEncoder(w).Encode(map[string]string{"code": e.Code, "message": e.Message})
}
