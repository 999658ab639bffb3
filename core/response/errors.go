package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/rememberme/core/handler"
	"github.com/dmitrymomot/rememberme/core/router"
)

// HTTPError is an error with an HTTP status and a JSON shape.
type HTTPError struct {
	Status  int            `json:"-"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e HTTPError) Error() string { return e.Message }

// StatusCode returns the HTTP status.
func (e HTTPError) StatusCode() int { return e.Status }

// WithError returns a copy carrying err as the "cause" detail.
func (e HTTPError) WithError(err error) HTTPError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details["cause"] = err.Error()
	e.Details = details
	return e
}

func newHTTPError(status int) HTTPError {
	text := http.StatusText(status)
	return HTTPError{
		Status:  status,
		Code:    strings.ReplaceAll(strings.ToLower(text), " ", "_"),
		Message: text,
	}
}

var (
	ErrBadRequest          = newHTTPError(http.StatusBadRequest)
	ErrUnauthorized        = newHTTPError(http.StatusUnauthorized)
	ErrForbidden           = newHTTPError(http.StatusForbidden)
	ErrNotFound            = newHTTPError(http.StatusNotFound)
	ErrMethodNotAllowed    = newHTTPError(http.StatusMethodNotAllowed)
	ErrTooManyRequests     = newHTTPError(http.StatusTooManyRequests)
	ErrInternalServerError = newHTTPError(http.StatusInternalServerError)
	ErrServiceUnavailable  = newHTTPError(http.StatusServiceUnavailable)
)

var byStatus = map[int]HTTPError{
	http.StatusBadRequest:          ErrBadRequest,
	http.StatusUnauthorized:        ErrUnauthorized,
	http.StatusForbidden:           ErrForbidden,
	http.StatusNotFound:            ErrNotFound,
	http.StatusMethodNotAllowed:    ErrMethodNotAllowed,
	http.StatusTooManyRequests:     ErrTooManyRequests,
	http.StatusInternalServerError: ErrInternalServerError,
	http.StatusServiceUnavailable:  ErrServiceUnavailable,
}

// Error returns a response that hands err to the router's error handler.
func Error(err error) handler.Response {
	return func(http.ResponseWriter, *http.Request) error {
		return err
	}
}

func toHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	var sc interface{ StatusCode() int }
	switch {
	case errors.As(err, &sc):
		status = sc.StatusCode()
	case errors.Is(err, router.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, router.ErrMethodNotAllowed):
		status = http.StatusMethodNotAllowed
	}

	base, ok := byStatus[status]
	if !ok {
		base = ErrInternalServerError
	}
	return base.WithError(err)
}

// ErrorHandler renders errors as plain text.
func ErrorHandler[C handler.Context](ctx C, err error) {
	e := toHTTPError(err)
	Render(ctx, StringWithStatus(e.Message, e.Status))
}

// JSONErrorHandler renders errors as HTTPError JSON.
func JSONErrorHandler[C handler.Context](ctx C, err error) {
	e := toHTTPError(err)
	Render(ctx, JSONWithStatus(e, e.Status))
}
