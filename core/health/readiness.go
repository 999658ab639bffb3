package health

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/rememberme/core/handler"
	"github.com/dmitrymomot/rememberme/core/logger"
	"github.com/dmitrymomot/rememberme/core/response"
)

// DefaultTimeout bounds a single readiness probe.
const DefaultTimeout = 3 * time.Second

// Check is a named dependency probe such as pg.Healthcheck(pool).
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// Report is the body of a readiness response.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Readiness runs every check concurrently within DefaultTimeout.
func Readiness[C handler.Context](log *slog.Logger, checks ...Check) handler.HandlerFunc[C] {
	return ReadinessWithTimeout[C](log, DefaultTimeout, checks...)
}

// ReadinessWithTimeout is Readiness with an explicit probe timeout.
func ReadinessWithTimeout[C handler.Context](log *slog.Logger, timeout time.Duration, checks ...Check) handler.HandlerFunc[C] {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return func(ctx C) handler.Response {
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		report := Report{Status: "ready", Checks: make(map[string]string, len(checks))}
		var mu sync.Mutex

		// Checks never cancel each other: every failing dependency shows up in the report.
		var g errgroup.Group
		for _, c := range checks {
			g.Go(func() error {
				err := c.Fn(probeCtx)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					report.Checks[c.Name] = "unavailable"
					log.ErrorContext(ctx, "readiness check failed",
						logger.Component("health"),
						logger.Key("check", c.Name),
						logger.Error(err))
					return err
				}
				report.Checks[c.Name] = "ok"
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			report.Status = "unavailable"
			return response.JSONWithStatus(report, http.StatusServiceUnavailable)
		}
		return response.JSON(report)
	}
}
