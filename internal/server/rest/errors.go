package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
)

const (
	msgBadRequest      = "Bad Request"
	msgUnauthorized    = "Unauthorized"
	msgForbidden       = "Unauthorized access"
	msgNotFound        = "User not found"
	msgConflict        = "Conflict"
	msgInternalServer  = "Internal Server Error"
	msgInvalidResetTok = "Invalid or expired token."
)

// HTTPError carries a status code and the message shown to the client.
type HTTPError struct {
	cause   error
	Code    int
	Message string
}

func (he *HTTPError) Error() string {
	return he.Message
}

func (he *HTTPError) Unwrap() error {
	return he.cause
}

func newHTTPError(code int, message string, cause error) *HTTPError {
	return &HTTPError{cause: cause, Code: code, Message: message}
}

func errBadRequest(message string, cause error) *HTTPError {
	if message == "" {
		message = msgBadRequest
	}
	return newHTTPError(http.StatusBadRequest, message, cause)
}

// toHTTPError maps the common error taxonomy onto status codes.
func toHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, common.ErrInvalidResetToken):
		return newHTTPError(http.StatusBadRequest, msgInvalidResetTok, err)
	case errors.Is(err, common.ErrorValidation):
		return newHTTPError(http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, common.ErrTokenMissing):
		return newHTTPError(http.StatusUnauthorized, "missing token", err)
	case errors.Is(err, common.ErrTokenExpired):
		return newHTTPError(http.StatusUnauthorized, "token expired", err)
	case errors.Is(err, common.ErrInvalidToken):
		return newHTTPError(http.StatusUnauthorized, "invalid token", err)
	case errors.Is(err, common.ErrorUnauthorized):
		return newHTTPError(http.StatusUnauthorized, msgUnauthorized, err)
	case errors.Is(err, common.ErrorForbidden):
		return newHTTPError(http.StatusForbidden, msgForbidden, err)
	case errors.Is(err, common.ErrorNotFound):
		return newHTTPError(http.StatusNotFound, msgNotFound, err)
	case errors.Is(err, common.ErrorAlreadyExists):
		return newHTTPError(http.StatusConflict, conflictMessage(err), err)
	default:
		return newHTTPError(http.StatusInternalServerError, msgInternalServer, err)
	}
}

// conflictMessage keeps the detail after the sentinel text, e.g.
// "username is taken".
func conflictMessage(err error) string {
	detail, ok := strings.CutPrefix(err.Error(), common.ErrorAlreadyExists.Error()+": ")
	if !ok || detail == "" {
		return msgConflict
	}
	return detail
}
