package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/rememberme/core/handler"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrNilResponse      = errors.New("handler returned nil response")

	// Registration errors. These are raised as panics while routes are built.
	ErrNoContextFactory = errors.New("router: context factory required for custom context type")
	ErrInvalidMethod    = errors.New("router: unsupported http method")
	ErrInvalidPattern   = errors.New("router: pattern must start with '/'")
	ErrNilRouter        = errors.New("router: cannot mount nil router")
	ErrNilSubrouter     = errors.New("router: nil route function")
)

// PanicError is what the error handler receives for a recovered panic.
type PanicError interface {
	error
	Value() any
	Stack() []byte
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.value) }
func (e *panicError) Value() any    { return e.value }
func (e *panicError) Stack() []byte { return e.stack }

func (e *panicError) Unwrap() error {
	err, _ := e.value.(error)
	return err
}

func defaultErrorHandler[C handler.Context](ctx C, err error) {
	w := ctx.ResponseWriter()
	if tw, ok := w.(*trackingWriter); ok && tw.written {
		return
	}

	status := http.StatusInternalServerError
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}
	http.Error(w, err.Error(), status)
}

// trackingWriter remembers whether headers went out so the error handler
// never writes a second response.
type trackingWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *trackingWriter) WriteHeader(status int) {
	if w.written {
		return
	}
	w.status, w.written = status, true
	w.ResponseWriter.WriteHeader(status)
}

func (w *trackingWriter) Write(b []byte) (int, error) {
	w.WriteHeader(http.StatusOK)
	return w.ResponseWriter.Write(b)
}

func (w *trackingWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *trackingWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
