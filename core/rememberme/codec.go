package rememberme

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/bcrypt"
)

// secretSize is the number of random bytes behind every series and secret (256 bits).
const secretSize = 32

// Codec generates series identifiers and secrets and protects secrets at rest.
type Codec interface {
	// GenerateSeries returns a new random lookup key.
	GenerateSeries() (string, error)
	// GenerateSecret returns a new random secret, drawn independently of the series.
	GenerateSecret() (string, error)
	// Hash returns a self-contained salted hash of secret.
	Hash(secret string) (string, error)
	// Verify reports whether secret matches hash without leaking partial-match timing.
	Verify(secret, hash string) bool
}

// BcryptCodec is the default Codec. Secrets are hashed with bcrypt; series are
// plain random strings meant to be indexed as-is.
type BcryptCodec struct {
	rand io.Reader
	cost int
}

// CodecOption configures a BcryptCodec.
type CodecOption func(*BcryptCodec)

// WithRandReader replaces crypto/rand as the source of series and secrets.
func WithRandReader(r io.Reader) CodecOption {
	return func(c *BcryptCodec) {
		if r != nil {
			c.rand = r
		}
	}
}

// WithBcryptCost sets the bcrypt work factor.
func WithBcryptCost(cost int) CodecOption {
	return func(c *BcryptCodec) {
		c.cost = cost
	}
}

// NewCodec creates a bcrypt-backed codec.
func NewCodec(opts ...CodecOption) (*BcryptCodec, error) {
	c := &BcryptCodec{
		rand: rand.Reader,
		cost: bcrypt.DefaultCost,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cost < bcrypt.MinCost || c.cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: bcrypt cost %d outside [%d, %d]",
			ErrInvalidConfig, c.cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	return c, nil
}

// GenerateSeries returns 32 random bytes encoded as unpadded base64url.
func (c *BcryptCodec) GenerateSeries() (string, error) {
	return c.random()
}

// GenerateSecret returns 32 random bytes encoded as unpadded base64url.
func (c *BcryptCodec) GenerateSecret() (string, error) {
	return c.random()
}

// Hash bcrypt-hashes the secret. Each call uses a fresh salt.
func (c *BcryptCodec) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrInvalidCredential
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), c.cost)
	if err != nil {
		return "", errors.Join(ErrHashFailed, err)
	}
	return string(hash), nil
}

// Verify compares secret against a bcrypt hash.
func (c *BcryptCodec) Verify(secret, hash string) bool {
	if secret == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

func (c *BcryptCodec) random() (string, error) {
	b := make([]byte, secretSize)
	if _, err := io.ReadFull(c.rand, b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
