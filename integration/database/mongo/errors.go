package mongo

import "errors"

var (
	ErrEmptyURL  = errors.New("mongo: empty connection url")
	ErrNotReady  = errors.New("mongo: server not ready")
	ErrUnhealthy = errors.New("mongo: ping failed")
)
