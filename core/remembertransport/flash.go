package remembertransport

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/rememberme/core/cookie"
	"github.com/dmitrymomot/rememberme/core/rememberme"
)

// DefaultFlashKey is the flash slot used for notifications.
const DefaultFlashKey = "notice"

// Message is one user-facing notification.
type Message struct {
	Severity rememberme.Severity `json:"severity"`
	Text     string              `json:"text"`
}

// Flash delivers notifications through one-time encrypted cookies.
type Flash struct {
	manager *cookie.Manager
	key     string
}

// NewFlash creates a flash notifier. An empty key falls back to DefaultFlashKey.
func NewFlash(manager *cookie.Manager, key string) *Flash {
	if manager == nil {
		panic("remembertransport: cookie manager is required")
	}
	if key == "" {
		key = DefaultFlashKey
	}
	return &Flash{manager: manager, key: key}
}

// Notifier binds the flash to a response.
func (f *Flash) Notifier(w http.ResponseWriter, _ *http.Request) rememberme.Notifier {
	return rememberme.NotifierFunc(func(_ context.Context, severity rememberme.Severity, message string) {
		// A notification that does not fit in a cookie is dropped.
		_ = f.manager.SetFlash(w, f.key, Message{Severity: severity, Text: message})
	})
}

// Pop returns and removes the pending message, if any.
func (f *Flash) Pop(w http.ResponseWriter, r *http.Request) (Message, bool) {
	var msg Message
	if err := f.manager.GetFlash(w, r, f.key, &msg); err != nil {
		return Message{}, false
	}
	return msg, true
}
