// Package errs defines the JSON error envelope every failed request renders
// and the mapping from domain error kinds onto it.
package errs

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"trivia-service/internal/domain"
)

// HTTPError is the error envelope: {"success": false, "error": <status>, "message": <text>}.
type HTTPError struct {
	Success bool                `json:"success"`
	Status  int                 `json:"error"`
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

func newHTTPError(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Message: message}
}

func NewBadRequestError() *HTTPError {
	return newHTTPError(http.StatusBadRequest, "bad request")
}

func NewNotFoundError() *HTTPError {
	return newHTTPError(http.StatusNotFound, "resource not found")
}

func NewMethodNotAllowedError() *HTTPError {
	return newHTTPError(http.StatusMethodNotAllowed, "method not allowed")
}

// NewUnprocessableError carries optional per-field details.
func NewUnprocessableError(fields []domain.FieldError) *HTTPError {
	e := newHTTPError(http.StatusUnprocessableEntity, "unprocessable")
	e.Errors = fields
	return e
}

// NewInternalServerError never leaks the underlying error to the client.
func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, "internal server error")
}

// From classifies err into the envelope it should render as.
func From(err error) *HTTPError {
	var (
		httpErr *HTTPError
		verr    *domain.ValidationError
		echoErr *echo.HTTPError
	)
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.As(err, &verr):
		return NewUnprocessableError(verr.Fields)
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError()
	case errors.Is(err, domain.ErrUnprocessable):
		return NewUnprocessableError(nil)
	case errors.Is(err, domain.ErrBadRequest):
		return NewBadRequestError()
	case errors.As(err, &echoErr):
		return fromEcho(echoErr)
	default:
		return NewInternalServerError()
	}
}

func fromEcho(e *echo.HTTPError) *HTTPError {
	switch e.Code {
	case http.StatusNotFound:
		return NewNotFoundError()
	case http.StatusMethodNotAllowed:
		return NewMethodNotAllowedError()
	case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		return NewBadRequestError()
	case http.StatusUnprocessableEntity:
		return NewUnprocessableError(nil)
	}
	if e.Code >= 400 && e.Code < 500 {
		return newHTTPError(e.Code, http.StatusText(e.Code))
	}
	return NewInternalServerError()
}
