package health

import (
	"github.com/dmitrymomot/rememberme/core/handler"
	"github.com/dmitrymomot/rememberme/core/response"
)

// Liveness reports that the process is running. It checks no dependencies.
func Liveness[C handler.Context](C) handler.Response {
	return response.String("ALIVE")
}
