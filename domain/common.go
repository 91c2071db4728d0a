package domain

import (
	"fmt"
	"net/http"
)

// ErrorKind is the machine-readable classification carried on every error
// payload. Handlers map it straight onto the response body.
type ErrorKind string

const (
	KindValidation      ErrorKind = "validation_error"
	KindMissingAsset    ErrorKind = "missing_asset"
	KindNotFound        ErrorKind = "not_found"
	KindInvalidID       ErrorKind = "invalid_id"
	KindForbidden       ErrorKind = "forbidden"
	KindNoCredentials   ErrorKind = "no_credentials"
	KindInvalidToken    ErrorKind = "invalid_token"
	KindAccountDisabled ErrorKind = "account_disabled"
	KindAuthUnavailable ErrorKind = "auth_unavailable"
	KindAssetUpload     ErrorKind = "asset_upload_error"
	KindPersistence     ErrorKind = "persistence_error"
)

// Error is the service error type. Message is safe to return to callers,
// Err holds the internal cause and is only ever logged.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	Detail  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches errors by kind so callers can test against the sentinels below
// with errors.Is regardless of the wrapped cause or detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrValidation      = &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: "payload did not match schema"}
	ErrMissingAsset    = &Error{Kind: KindMissingAsset, Status: http.StatusBadRequest, Message: "image not found"}
	ErrNotFound        = &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: "resource not found"}
	ErrInvalidID       = &Error{Kind: KindInvalidID, Status: http.StatusBadRequest, Message: "invalid id"}
	ErrForbidden       = &Error{Kind: KindForbidden, Status: http.StatusForbidden, Message: "forbidden"}
	ErrNoCredentials   = &Error{Kind: KindNoCredentials, Status: http.StatusUnauthorized, Message: "no credentials provided"}
	ErrInvalidToken    = &Error{Kind: KindInvalidToken, Status: http.StatusUnauthorized, Message: "invalid token"}
	ErrAccountDisabled = &Error{Kind: KindAccountDisabled, Status: http.StatusUnauthorized, Message: "account disabled"}
	ErrAuthUnavailable = &Error{Kind: KindAuthUnavailable, Status: http.StatusServiceUnavailable, Message: "identity provider unavailable"}
	ErrAssetUpload     = &Error{Kind: KindAssetUpload, Status: http.StatusInternalServerError, Message: "error uploading image"}
	ErrPersistence     = &Error{Kind: KindPersistence, Status: http.StatusInternalServerError, Message: "persistence failure"}
)

// NewValidationError carries field-level detail back to the caller.
func NewValidationError(detail map[string]string) *Error {
	return &Error{
		Kind:    KindValidation,
		Status:  http.StatusBadRequest,
		Message: ErrValidation.Message,
		Detail:  detail,
	}
}

func NewAssetUploadError(err error) *Error {
	return &Error{Kind: KindAssetUpload, Status: http.StatusInternalServerError, Message: ErrAssetUpload.Message, Err: err}
}

func NewPersistenceError(err error) *Error {
	return &Error{Kind: KindPersistence, Status: http.StatusInternalServerError, Message: ErrPersistence.Message, Err: err}
}

func NewInvalidTokenError(err error) *Error {
	return &Error{Kind: KindInvalidToken, Status: http.StatusUnauthorized, Message: ErrInvalidToken.Message, Err: err}
}

func NewAuthUnavailableError(err error) *Error {
	return &Error{Kind: KindAuthUnavailable, Status: http.StatusServiceUnavailable, Message: ErrAuthUnavailable.Message, Err: err}
}
