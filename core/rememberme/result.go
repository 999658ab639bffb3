package rememberme

import "github.com/google/uuid"

// State is the terminal state reached by one authentication attempt.
type State int

const (
	// StateNoCredential: cookie absent or missing a field. The store is not touched.
	StateNoCredential State = iota
	// StateSeriesUnknown: no record for the presented series.
	StateSeriesUnknown
	// StateSeriesExpired: the record exists but is past its expiry.
	StateSeriesExpired
	// StateSecretMismatch: known series, wrong secret. Treated as theft.
	StateSecretMismatch
	// StateUserUnknown: valid secret, but the owning user no longer exists.
	StateUserUnknown
	// StateStoreUnavailable: the store failed; nothing was deleted.
	StateStoreUnavailable
	// StateRotationFailed: the secret matched but a replacement could not be minted.
	StateRotationFailed
	// StateValid: the secret matched and the chain was rotated.
	StateValid
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case StateNoCredential:
		return "no_credential"
	case StateSeriesUnknown:
		return "series_unknown"
	case StateSeriesExpired:
		return "series_expired"
	case StateSecretMismatch:
		return "secret_mismatch"
	case StateUserUnknown:
		return "user_unknown"
	case StateStoreUnavailable:
		return "store_unavailable"
	case StateRotationFailed:
		return "rotation_failed"
	case StateValid:
		return "valid"
	default:
		return "unknown"
	}
}

// Outcome is what the caller acts on.
type Outcome int

const (
	// Unauthenticated: the request proceeds anonymously.
	Unauthenticated Outcome = iota
	// Authenticated: the request belongs to Result.UserID.
	Authenticated
	// TheftDetected: a negative outcome that also requires a user-facing warning.
	TheftDetected
)

// String returns the outcome name used in logs.
func (o Outcome) String() string {
	switch o {
	case Authenticated:
		return "authenticated"
	case TheftDetected:
		return "theft_detected"
	default:
		return "unauthenticated"
	}
}

// Result describes one authentication attempt and what the caller must do with the cookie.
type Result struct {
	Outcome Outcome
	State   State
	UserID  uuid.UUID
	// Issued is the rotated credential to write back into the cookie. Set only when authenticated.
	Issued *Credential
	// ClearCookie is true when the presented cookie must be removed from the client.
	// It stays false for StateStoreUnavailable so the chain can be retried.
	ClearCookie bool
	// Err carries the infrastructure error behind StateStoreUnavailable or a failed revocation.
	Err error
}

// IsAuthenticated reports whether the attempt authenticated a user.
func (r Result) IsAuthenticated() bool {
	return r.Outcome == Authenticated
}

// IsTheft reports whether the attempt looked like a replayed, stolen cookie.
func (r Result) IsTheft() bool {
	return r.Outcome == TheftDetected
}

func unauthenticated(state State, clear bool) Result {
	return Result{Outcome: Unauthenticated, State: state, ClearCookie: clear}
}
