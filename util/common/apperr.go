package common

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies an error for the HTTP boundary and for clients.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindInternal       Kind = "internal"
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// FieldError is one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is a classified error. Sentinel values below are compared with
// errors.Is; wrapped causes stay reachable through Unwrap.
type AppError struct {
	Kind   Kind
	Msg    string
	Fields []FieldError
	Err    error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		return e.Msg + " (" + strings.Join(parts, "; ") + ")"
	}
	return e.Msg
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches sentinels by kind and message so that wrapped copies still match.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Msg == t.Msg
}

var (
	ErrInvalidToken           = &AppError{Kind: KindAuthentication, Msg: "invalid token"}
	ErrTokenExpired           = &AppError{Kind: KindAuthentication, Msg: "token expired"}
	ErrUnauthenticated        = &AppError{Kind: KindAuthentication, Msg: "authentication required"}
	ErrInvalidCredentials     = &AppError{Kind: KindAuthentication, Msg: "invalid credentials"}
	ErrForbidden              = &AppError{Kind: KindAuthorization, Msg: "forbidden"}
	ErrInvalidOwner           = &AppError{Kind: KindValidation, Msg: "invalid owner id or user is not a store owner"}
	ErrNotFoundOrUnauthorized = &AppError{Kind: KindNotFound, Msg: "rating not found or not authorized"}
	ErrEmailTaken             = &AppError{Kind: KindConflict, Msg: "email already registered"}
)

func NewValidationError(fields ...FieldError) *AppError {
	return &AppError{Kind: KindValidation, Msg: "validation failed", Fields: fields}
}

func NotFound(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Msg: msg}
}

func Conflict(msg string, err error) *AppError {
	return &AppError{Kind: KindConflict, Msg: msg, Err: err}
}

func Forbidden(msg string) *AppError {
	return &AppError{Kind: KindAuthorization, Msg: msg}
}

func Unauthenticated(msg string) *AppError {
	return &AppError{Kind: KindAuthentication, Msg: msg}
}

func Internal(msg string, err error) *AppError {
	return &AppError{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf reports the kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
