// Package credentials abstracts durable secret storage for the single
// OAuth access token the client holds. The production implementation is
// backed by the platform secret store (keychain, libsecret, wincred); an
// in-memory implementation exists for tests and headless environments.
//
// No operation returns an error: failure is represented as false/"" so
// callers never have to distinguish "absent" from "backend unavailable".
// The token is the most sensitive value in the process; implementations
// must never log it.
package credentials

import (
	"github.com/sirupsen/logrus"
	"github.com/zalando/go-keyring"
)

// Store is the narrow contract the authentication layer and HTTP client
// depend on. Implementations serialize access internally.
type Store interface {
	// HasToken reports whether an access token is stored.
	HasToken() bool
	// RetrieveToken returns the stored access token, if any.
	RetrieveToken() (string, bool)
	// StoreToken stores the access token, replacing any previous value.
	// Returns true on success.
	StoreToken(token string) bool
	// DeleteToken removes the stored access token. Returns true when the
	// store no longer holds a token.
	DeleteToken() bool
}

// keyringService namespaces this application's entries in the platform
// secret store.
const keyringService = "github-go"

// KeyringStore stores the access token in the operating system secret
// store under a single well-known key.
type KeyringStore struct {
	key    string
	logger *logrus.Logger
}

// NewKeyringStore creates a Store backed by the platform secret store.
// The key names the single entry the token lives under.
func NewKeyringStore(key string, logger *logrus.Logger) *KeyringStore {
	return &KeyringStore{key: key, logger: logger}
}

// HasToken reports whether an access token is stored.
func (s *KeyringStore) HasToken() bool {
	_, ok := s.RetrieveToken()
	return ok
}

// RetrieveToken returns the stored access token, if any.
func (s *KeyringStore) RetrieveToken() (string, bool) {
	token, err := keyring.Get(keyringService, s.key)
	if err != nil {
		if err != keyring.ErrNotFound {
			s.logger.WithError(err).Warn("Failed to read token from secret store")
		}
		return "", false
	}
	if token == "" {
		return "", false
	}
	return token, true
}

// StoreToken stores the access token, replacing any previous value.
func (s *KeyringStore) StoreToken(token string) bool {
	if token == "" {
		return false
	}
	if err := keyring.Set(keyringService, s.key, token); err != nil {
		s.logger.WithError(err).Error("Failed to write token to secret store")
		return false
	}
	s.logger.Debug("Access token stored in secret store")
	return true
}

// DeleteToken removes the stored access token.
func (s *KeyringStore) DeleteToken() bool {
	err := keyring.Delete(keyringService, s.key)
	if err != nil && err != keyring.ErrNotFound {
		s.logger.WithError(err).Error("Failed to delete token from secret store")
		return false
	}
	s.logger.Debug("Access token deleted from secret store")
	return true
}
