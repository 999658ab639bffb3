package handler

import (
	"context"
	"net/http"
)

// Context is the request scope seen by handlers and middleware.
// router.Context is the stock implementation; applications may embed it.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	// Param is "" for unknown path parameters.
	Param(key string) string
	// SetValue makes val visible through Value for the rest of the request.
	SetValue(key, val any)
}

// Response writes the reply. It runs after the whole middleware chain has
// returned, so wrappers can still add headers or cookies.
type Response func(w http.ResponseWriter, r *http.Request) error

type HandlerFunc[C Context] func(ctx C) Response

// ErrorHandler receives errors returned by a Response and router failures.
type ErrorHandler[C Context] func(ctx C, err error)

// Middleware that returns without calling next short-circuits the request.
type Middleware[C Context] func(next HandlerFunc[C]) HandlerFunc[C]
