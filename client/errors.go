package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/storerate/storerate/util/common"
	"github.com/storerate/storerate/web/entity"
)

// ErrSessionExpired is returned when a 401 could not be recovered by a token
// refresh. The stored token has been cleared and the caller must log in again.
var ErrSessionExpired = errors.New("session expired, please log in again")

const fallbackMessage = "something went wrong, please try again"

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Kind    common.Kind
	Status  int
	Message string
	Fields  []common.FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%d %s: %s: %s", e.Status, e.Kind, e.Message, e.Fields[0].Message)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Kind, e.Message)
}

// FirstMessage is the text a user should see: the first field message, else
// the error message, else a generic fallback.
func (e *APIError) FirstMessage() string {
	for _, f := range e.Fields {
		if f.Message != "" {
			if f.Field != "" {
				return f.Field + " " + f.Message
			}
			return f.Message
		}
	}
	if e.Message != "" {
		return e.Message
	}
	return fallbackMessage
}

// FirstMessage returns the user-facing message for any error returned by
// this package.
func FirstMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.FirstMessage()
	}
	if errors.Is(err, ErrSessionExpired) {
		return ErrSessionExpired.Error()
	}
	return fallbackMessage
}

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind common.Kind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

func decodeError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Kind: kindForStatus(status)}
	var msg entity.ErrorMsg
	if err := json.Unmarshal(body, &msg); err == nil {
		if msg.Kind != "" {
			apiErr.Kind = msg.Kind
		}
		apiErr.Message = msg.Msg
		apiErr.Fields = msg.Errors
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func kindForStatus(status int) common.Kind {
	switch status {
	case http.StatusBadRequest:
		return common.KindValidation
	case http.StatusUnauthorized:
		return common.KindAuthentication
	case http.StatusForbidden:
		return common.KindAuthorization
	case http.StatusNotFound:
		return common.KindNotFound
	case http.StatusConflict:
		return common.KindConflict
	default:
		return common.KindInternal
	}
}
