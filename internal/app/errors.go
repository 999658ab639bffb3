package app

import "errors"

var (
	ErrUnknownStore   = errors.New("unknown store backend")
	ErrMissingBackend = errors.New("store backend is not connected")
	ErrNoCookieSecret = errors.New("COOKIE_SECRETS must be set")
)
