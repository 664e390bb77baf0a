package auth

import (
	"os"
	"time"
)

// TokenEnvVar holds a token that overrides every stored one except the
// configured cookie file.
const TokenEnvVar = "WVDL_ACCESS_TOKEN"

// EnvironmentStore implements TokenStore using an environment variable
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based token store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Name() string {
	return "environment " + TokenEnvVar
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(token *Token) error {
	return ErrStoreUnavailable
}

// Retrieve reads the token from the environment
func (e *EnvironmentStore) Retrieve() (*Token, error) {
	value := os.Getenv(TokenEnvVar)
	if value == "" {
		return nil, ErrTokenNotFound
	}
	return &Token{Value: value, LastModified: time.Now()}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete() error {
	return ErrStoreUnavailable
}
