package rememberme

import (
	"context"

	"github.com/google/uuid"
)

// AuthenticatorName identifies logins performed by this package.
const AuthenticatorName = "cookie_token"

// Authenticator is one pluggable login strategy a host can chain with others.
type Authenticator interface {
	TryAuthenticate(ctx context.Context, cred Credential) Result
}

// Listener receives login and logout notifications from the host authentication flow.
type Listener interface {
	// OnLogin may issue a new chain. The bool reports whether a credential was issued.
	OnLogin(ctx context.Context, event LoginEvent) (Credential, bool, error)
	// OnLogout revokes the presented credential if it is valid.
	OnLogout(ctx context.Context, cred Credential) Result
}

// UserLookup reports whether a user still exists and may sign in.
type UserLookup func(ctx context.Context, userID uuid.UUID) (bool, error)

// Notifier delivers user-facing messages (flash messages, banners).
type Notifier interface {
	Notify(ctx context.Context, severity Severity, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, severity Severity, message string)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, severity Severity, message string) {
	f(ctx, severity, message)
}

// Severity of a user-facing notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// TheftMessage is shown to the user after a token mismatch.
const TheftMessage = "A session token mismatch was detected. You have been logged out."

// IssuePolicy controls opportunistic issuance on logins through other authenticators.
type IssuePolicy int

const (
	// IssueOnEveryLogin starts a new chain on every non-cookie login.
	IssueOnEveryLogin IssuePolicy = iota
	// IssueOncePerSession starts at most one chain per interactive session.
	IssueOncePerSession
)

// ParseIssuePolicy maps a config string to a policy.
func ParseIssuePolicy(s string) (IssuePolicy, bool) {
	switch s {
	case "", "every_login":
		return IssueOnEveryLogin, true
	case "once_per_session":
		return IssueOncePerSession, true
	default:
		return IssueOnEveryLogin, false
	}
}

// LoginEvent is passed to Listener.OnLogin by the host.
type LoginEvent struct {
	UserID uuid.UUID
	// Source names the authenticator that performed the login.
	Source string
	// IssuedThisSession is true when a chain was already issued in the current session.
	IssuedThisSession bool
}
