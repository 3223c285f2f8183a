package auth

import (
	"crypto/rand"
	"fmt"

	"github.com/dishcool/github-go/internal/config"
)

// stateAlphabet is the character set for anti-forgery state tokens.
const stateAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// StateLength is the length of generated state tokens. RFC 6749 requires
// the state to be unguessable; 32 alphanumeric characters comfortably
// exceed the configured minimum.
const StateLength = 32

// GenerateState returns a cryptographically random alphanumeric state
// token of the given length. Lengths below the configured minimum are
// raised to it.
func GenerateState(length int) (string, error) {
	if length < config.MinStateLength {
		length = config.MinStateLength
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes for state token: %w", err)
	}

	for i, b := range buf {
		buf[i] = stateAlphabet[int(b)%len(stateAlphabet)]
	}
	return string(buf), nil
}
