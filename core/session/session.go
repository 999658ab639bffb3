package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"maps"
	"time"

	"github.com/google/uuid"
)

// Session is one browser's server-side state.
type Session[Data any] struct {
	ID uuid.UUID
	// Token is the cookie value: 32 random bytes, base64url. It changes on
	// every sign-in while ID stays put.
	Token string
	// UserID is uuid.Nil while anonymous.
	UserID uuid.UUID
	Data   Data
	// Values are string flags owned by middleware, e.g. the remember-me attempt state.
	Values map[string]string

	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt time.Time

	isModified bool
}

// New returns an unsaved anonymous session that expires after ttl.
func New[Data any](ttl time.Duration) (Session[Data], error) {
	token, err := generateToken()
	if err != nil {
		return Session[Data]{}, errors.Join(ErrTokenGeneration, err)
	}

	now := time.Now()
	return Session[Data]{
		ID:         uuid.New(),
		Token:      token,
		UserID:     uuid.Nil,
		Data:       *new(Data),
		Values:     make(map[string]string),
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
		UpdatedAt:  now,
		isModified: true,
	}, nil
}

// Authenticate signs userID in. The token rotates so a token observed
// before sign-in is worthless afterwards.
func (s *Session[Data]) Authenticate(userID uuid.UUID, data ...Data) error {
	if err := s.rotateToken(); err != nil {
		return err
	}
	s.UserID = userID
	if len(data) > 0 {
		s.Data = data[0]
	}
	s.UpdatedAt = time.Now()
	s.isModified = true
	return nil
}

// Refresh rotates the token only.
func (s *Session[Data]) Refresh() error {
	if err := s.rotateToken(); err != nil {
		return err
	}
	s.UpdatedAt = time.Now()
	s.isModified = true
	return nil
}

// Logout marks the session; Manager.Store deletes it.
func (s *Session[Data]) Logout() {
	s.DeletedAt = time.Now()
	s.isModified = true
}

func (s *Session[Data]) SetData(data Data) {
	s.Data = data
	s.UpdatedAt = time.Now()
	s.isModified = true
}

func (s Session[Data]) Get(key string) (string, bool) {
	v, ok := s.Values[key]
	return v, ok
}

// Set leaves the session unmodified when value is already current.
func (s *Session[Data]) Set(key, value string) {
	if cur, ok := s.Values[key]; ok && cur == value {
		return
	}
	if s.Values == nil {
		s.Values = make(map[string]string)
	} else {
		// The map may be shared with a store copy.
		s.Values = maps.Clone(s.Values)
	}
	s.Values[key] = value
	s.UpdatedAt = time.Now()
	s.isModified = true
}

// Touch pushes ExpiresAt out once touchInterval has passed since the last update.
func (s *Session[Data]) Touch(ttl, touchInterval time.Duration) {
	if time.Since(s.UpdatedAt) >= touchInterval {
		s.ExpiresAt = time.Now().Add(ttl)
		s.UpdatedAt = time.Now()
		s.isModified = true
	}
}

func (s Session[Data]) IsAuthenticated() bool {
	return s.UserID != uuid.Nil && s.Token != ""
}

func (s Session[Data]) IsDeleted() bool {
	return !s.DeletedAt.IsZero()
}

func (s Session[Data]) IsModified() bool {
	return s.isModified
}

func (s Session[Data]) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

func (s *Session[Data]) rotateToken() error {
	token, err := generateToken()
	if err != nil {
		return errors.Join(ErrTokenGeneration, err)
	}
	s.Token = token
	s.isModified = true
	return nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
