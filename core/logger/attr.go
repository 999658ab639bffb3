package logger

import (
	"fmt"
	"log/slog"
	"time"
)

// Helpers taking optional values return the zero slog.Attr, which handlers
// drop, so callers can pass nil errors and empty IDs straight through.

func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func Component(name string) slog.Attr { return slog.String("component", name) }
func Event(name string) slog.Attr     { return slog.String("event", name) }

// Count logs n under key, e.g. Count("revoked", n).
func Count(key string, n int) slog.Attr { return slog.Int(key, n) }

func Key(key string, value any) slog.Attr {
	if value == nil {
		return slog.Attr{}
	}
	return slog.Any(key, value)
}

func UserID(id fmt.Stringer) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.String("user_id", id.String())
}

// seriesPrefix is how much of a series identifier may appear in logs.
const seriesPrefix = 8

// Series logs a truncated remember-me series. A full series is a lookup key
// and must not be written to logs.
func Series(series string) slog.Attr {
	if series == "" {
		return slog.Attr{}
	}
	if len(series) > seriesPrefix {
		series = series[:seriesPrefix] + "..."
	}
	return slog.String("series", series)
}

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

func Method(m string) slog.Attr          { return slog.String("method", m) }
func Path(p string) slog.Attr            { return slog.String("path", p) }
func StatusCode(code int) slog.Attr      { return slog.Int("status_code", code) }
func ClientIP(ip string) slog.Attr       { return slog.String("client_ip", ip) }
func BytesOut(n int64) slog.Attr         { return slog.Int64("bytes_out", n) }
func Duration(d time.Duration) slog.Attr { return slog.Duration("duration", d) }
