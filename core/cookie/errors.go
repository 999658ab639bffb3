package cookie

import (
	"errors"
	"fmt"
)

var (
	ErrNoSecret       = errors.New("cookie: no secret configured")
	ErrSecretTooShort = errors.New("cookie: secret shorter than 32 bytes")
	ErrInvalidConfig  = errors.New("cookie: invalid config")

	ErrNotFound         = errors.New("cookie: not found")
	ErrInvalidFormat    = errors.New("cookie: malformed value")
	ErrInvalidSignature = errors.New("cookie: bad signature")
	ErrDecrypt          = errors.New("cookie: cannot decrypt value")
)

// TooLargeError is returned instead of writing a cookie browsers would drop.
type TooLargeError struct {
	Name string
	Size int
	Max  int
}

func (e TooLargeError) Error() string {
	return fmt.Sprintf("cookie: %q is %d bytes, limit %d", e.Name, e.Size, e.Max)
}
