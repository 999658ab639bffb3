// Package users is the identity store of the demo server: password login
// with bcrypt and the user lookup used by the remember-me lifecycle.
package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("email and password are required")
)

// User is an account that can sign in.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, u User) error
	FindByID(ctx context.Context, id uuid.UUID) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TxFunc runs fn in a transaction carried by the context passed to fn.
type TxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// TokenRevoker removes every remember-me chain of a user.
// rememberme.Store satisfies it.
type TokenRevoker interface {
	DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Service implements registration, password login and deletion.
type Service struct {
	repo   Repository
	tokens TokenRevoker
	inTx   TxFunc
	cost   int
}

// Option configures a Service.
type Option func(*Service)

// WithTokenRevoker deletes the user's remember-me chains together with the user.
func WithTokenRevoker(r TokenRevoker) Option {
	return func(s *Service) {
		s.tokens = r
	}
}

// WithTx runs deletions through fn so user and tokens go away atomically.
func WithTx(fn TxFunc) Option {
	return func(s *Service) {
		if fn != nil {
			s.inTx = fn
		}
	}
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.cost = cost
	}
}

// NewService creates a Service on repo.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		cost: bcrypt.DefaultCost,
		inTx: func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, err
	}

	u := User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate checks email and password. Unknown emails and wrong passwords
// both return ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Get returns the user with id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// Exists reports whether id belongs to a user. It matches rememberme.UserLookup.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.repo.FindByID(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Delete removes the user and, when a TokenRevoker is set, all of its
// remember-me chains in the same transaction.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.inTx(ctx, func(ctx context.Context) error {
		if s.tokens != nil {
			if _, err := s.tokens.DeleteAllByUser(ctx, id); err != nil {
				return err
			}
		}
		return s.repo.Delete(ctx, id)
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
