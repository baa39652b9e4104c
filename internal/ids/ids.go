package ids

import (
	"crypto/rand"
	"fmt"
)

// alphabet deliberately omits 0/O, 1/l/I and other glyphs that are easy to
// misread when a session code is typed off a phone screen.
const alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz"

// Standard lengths used across the service.
const (
	SessionIDLength = 10
	UserIDLength    = 12
)

// New generates a random identifier of the given length drawn from the
// non-ambiguous alphabet, using crypto/rand for collision resistance.
func New(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("ids: invalid length %d", length)
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("ids: failed to read random bytes: %w", err)
	}

	out := make([]byte, length)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out), nil
}

// NewSessionID generates a session identifier.
func NewSessionID() (string, error) {
	return New(SessionIDLength)
}

// NewUserID generates a member identifier.
func NewUserID() (string, error) {
	return New(UserIDLength)
}
