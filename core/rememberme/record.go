package rememberme

import (
	"time"

	"github.com/google/uuid"
)

// Record is the persisted state of one remember-me chain.
// Series and UserID never change once the record is created; rotation only
// replaces TokenHash, ExpiresAt and UpdatedAt.
type Record struct {
	// Series is the stable, non-secret lookup key of the chain.
	Series string
	// TokenHash is the bcrypt hash of the current secret. The secret itself is never stored.
	TokenHash string
	// UserID owns the chain.
	UserID uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the record is logically dead at now.
// A record expiring exactly at now is still alive.
func (r Record) IsExpired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}

// IsPersisted reports whether the record was loaded from or already written to a store.
func (r Record) IsPersisted() bool {
	return !r.CreatedAt.IsZero()
}

// Credential is the cleartext pair carried by the remember-me cookie.
type Credential struct {
	Series string `json:"series"`
	Token  string `json:"token"`
}

// IsZero reports whether no credential was presented at all.
func (c Credential) IsZero() bool {
	return c.Series == "" && c.Token == ""
}

// Valid reports whether both fields are present.
func (c Credential) Valid() bool {
	return c.Series != "" && c.Token != ""
}
